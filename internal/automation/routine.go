// ABOUTME: Routine runner: named, ordered lists of operation invocations
// ABOUTME: Steps launch strictly in order; only launch acks are collected
package automation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Step is one operation invocation inside a routine
type Step struct {
	Operation string `yaml:"operation" json:"operation"`
	Params    Params `yaml:"params,omitempty" json:"params,omitempty"`
}

// Routine is a named sequence of steps, optionally on a cron schedule
type Routine struct {
	Name        string `yaml:"name" json:"name"`
	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Schedule    string `yaml:"schedule,omitempty" json:"schedule,omitempty"`
	Steps       []Step `yaml:"steps" json:"steps"`
}

// Validate checks the routine is runnable in shape. Operation names are
// checked at run time.
func (r Routine) Validate() error {
	if r.Name == "" {
		return errors.New("routine name is required")
	}
	if len(r.Steps) == 0 {
		return fmt.Errorf("routine %q has no steps", r.Name)
	}
	for i, s := range r.Steps {
		if s.Operation == "" {
			return fmt.Errorf("routine %q step %d: operation is required", r.Name, i+1)
		}
	}
	return nil
}

// StepResult is the launch acknowledgment of one step
type StepResult struct {
	Operation   string `json:"operation"`
	ExecutionID string `json:"execution_id,omitempty"`
	Success     bool   `json:"success"`
	Message     string `json:"message"`
}

// RoutineResult collects every step's launch outcome in declared order
type RoutineResult struct {
	Routine string       `json:"routine"`
	Message string       `json:"message"`
	Steps   []StepResult `json:"results"`
}

// Runner sequences routines over an Executor
type Runner struct {
	exec     *Executor
	mu       sync.RWMutex
	routines map[string]Routine
}

// NewRunner creates a runner with no routines
func NewRunner(exec *Executor) *Runner {
	return &Runner{exec: exec, routines: make(map[string]Routine)}
}

// AddRoutine registers a routine; names must be unique
func (r *Runner) AddRoutine(rt Routine) error {
	if err := rt.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routines[rt.Name]; ok {
		return fmt.Errorf("%w: %s", ErrRoutineExists, rt.Name)
	}
	r.routines[rt.Name] = rt
	return nil
}

// Routine returns a registered routine by name
func (r *Runner) Routine(name string) (Routine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.routines[name]
	return rt, ok
}

// Routines lists registered routines sorted by name
func (r *Runner) Routines() []Routine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Routine, 0, len(r.routines))
	for _, rt := range r.routines {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Run launches each step of the named routine in order. An unknown routine
// is a *ValidationError. A step that fails validation is recorded with
// Success=false and the remaining steps still launch.
func (r *Runner) Run(ctx context.Context, name string) (*RoutineResult, error) {
	rt, ok := r.Routine(name)
	if !ok {
		return nil, &ValidationError{Kind: "routine", Name: name, Reason: "not registered"}
	}

	res := &RoutineResult{
		Routine: name,
		Message: fmt.Sprintf("Routine '%s' executed", name),
		Steps:   make([]StepResult, 0, len(rt.Steps)),
	}
	for _, step := range rt.Steps {
		ack, err := r.exec.Execute(ctx, step.Operation, step.Params)
		if err != nil {
			res.Steps = append(res.Steps, StepResult{Operation: step.Operation, Message: err.Error()})
			continue
		}
		res.Steps = append(res.Steps, StepResult{
			Operation:   step.Operation,
			ExecutionID: ack.ExecutionID,
			Success:     true,
			Message:     ack.Message,
		})
	}
	return res, nil
}

// DefaultRoutines returns the morning, evening, and bedtime routines
func DefaultRoutines() []Routine {
	return []Routine{
		{
			Name:        "morning",
			Title:       "Morning Routine",
			Description: "Tasks to run in the morning",
			Steps: []Step{
				{Operation: OpTurnOnLights, Params: Params{"room": "bedroom"}},
				{Operation: OpCheckWeather, Params: Params{"location": "current"}},
				{Operation: OpPlayMusic, Params: Params{"genre": "upbeat", "source": "spotify"}},
			},
		},
		{
			Name:        "evening",
			Title:       "Evening Routine",
			Description: "Tasks to run in the evening",
			Steps: []Step{
				{Operation: OpTurnOnLights, Params: Params{"room": "living room"}},
				{Operation: OpPlayMusic, Params: Params{"genre": "relaxing", "source": "spotify"}},
			},
		},
		{
			Name:        "bedtime",
			Title:       "Bedtime Routine",
			Description: "Tasks to run before bed",
			Steps: []Step{
				{Operation: OpTurnOffLights, Params: Params{"room": "all"}},
				{Operation: OpSetReminder, Params: Params{"message": "Wake up", "time": "08:00"}},
			},
		},
	}
}
