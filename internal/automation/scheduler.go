// ABOUTME: Cron scheduler for routines that declare a schedule
// ABOUTME: Wraps robfig/cron; each firing runs the routine through the Runner
package automation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// ScheduledRoutine describes one cron entry
type ScheduledRoutine struct {
	Routine  string    `json:"routine"`
	Schedule string    `json:"schedule"`
	Next     time.Time `json:"next"`
}

// Scheduler runs routines on their cron schedules
type Scheduler struct {
	cron    *cron.Cron
	runner  *Runner
	mu      sync.Mutex
	entries map[string]cron.EntryID
	specs   map[string]string
}

// NewScheduler creates a stopped scheduler over runner
func NewScheduler(runner *Runner) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		runner:  runner,
		entries: make(map[string]cron.EntryID),
		specs:   make(map[string]string),
	}
}

// Schedule runs the named routine on a standard five-field cron spec,
// replacing any earlier schedule for it
func (s *Scheduler) Schedule(ctx context.Context, routine, spec string) error {
	if _, ok := s.runner.Routine(routine); !ok {
		return &ValidationError{Kind: "routine", Name: routine, Reason: "not registered"}
	}

	id, err := s.cron.AddFunc(spec, func() {
		res, err := s.runner.Run(ctx, routine)
		if err != nil {
			log.Error().Err(err).Str("routine", routine).Msg("scheduled routine failed")
			return
		}
		log.Info().Str("routine", routine).Int("steps", len(res.Steps)).Msg("scheduled routine launched")
	})
	if err != nil {
		return fmt.Errorf("schedule routine %s: %w", routine, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.entries[routine]; ok {
		s.cron.Remove(old)
	}
	s.entries[routine] = id
	s.specs[routine] = spec
	return nil
}

// ScheduleAll schedules every registered routine that has a Schedule
func (s *Scheduler) ScheduleAll(ctx context.Context) (int, error) {
	n := 0
	for _, rt := range s.runner.Routines() {
		if rt.Schedule == "" {
			continue
		}
		if err := s.Schedule(ctx, rt.Name, rt.Schedule); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Entries lists scheduled routines with their next fire time
func (s *Scheduler) Entries() []ScheduledRoutine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ScheduledRoutine, 0, len(s.entries))
	for name, id := range s.entries {
		out = append(out, ScheduledRoutine{
			Routine:  name,
			Schedule: s.specs[name],
			Next:     s.cron.Entry(id).Next,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Routine < out[j].Routine })
	return out
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
