// ABOUTME: Tests for routines, the YAML loader, and the scheduler
// ABOUTME: Verifies ordered launches, validation, and cron registration
package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T) (*Executor, *Runner) {
	t.Helper()
	e := NewExecutor(0)
	require.NoError(t, RegisterBuiltins(e, 0))
	r := NewRunner(e)
	for _, rt := range DefaultRoutines() {
		require.NoError(t, r.AddRoutine(rt))
	}
	return e, r
}

func TestRunMorningRoutine(t *testing.T) {
	e, r := newTestRunner(t)

	res, err := r.Run(context.Background(), "morning")
	require.NoError(t, err)
	require.Len(t, res.Steps, 3)

	want := []string{OpTurnOnLights, OpCheckWeather, OpPlayMusic}
	for i, step := range res.Steps {
		assert.Equal(t, want[i], step.Operation)
		assert.True(t, step.Success)
		assert.NotEmpty(t, step.ExecutionID)
	}

	e.Wait()
	history := e.History(0)
	assert.Len(t, history, 3)
}

func TestRunUnknownRoutine(t *testing.T) {
	_, r := newTestRunner(t)

	_, err := r.Run(context.Background(), "brunch")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "routine", verr.Kind)
}

func TestRunContinuesPastInvalidStep(t *testing.T) {
	e, r := newTestRunner(t)
	require.NoError(t, r.AddRoutine(Routine{
		Name: "broken",
		Steps: []Step{
			{Operation: OpTurnOnLights},
			{Operation: OpPlayMusic, Params: Params{"genre": "jazz", "source": "radio"}},
		},
	}))

	res, err := r.Run(context.Background(), "broken")
	require.NoError(t, err)
	require.Len(t, res.Steps, 2)
	assert.False(t, res.Steps[0].Success)
	assert.Empty(t, res.Steps[0].ExecutionID)
	assert.Contains(t, res.Steps[0].Message, "room")
	assert.True(t, res.Steps[1].Success)
	e.Wait()
}

func TestAddRoutineValidation(t *testing.T) {
	_, r := newTestRunner(t)

	assert.ErrorIs(t, r.AddRoutine(DefaultRoutines()[0]), ErrRoutineExists)
	assert.Error(t, r.AddRoutine(Routine{Name: "empty"}))
	assert.Error(t, r.AddRoutine(Routine{Steps: []Step{{Operation: OpPlayMusic}}}))

	names := []string{}
	for _, rt := range r.Routines() {
		names = append(names, rt.Name)
	}
	assert.Equal(t, []string{"bedtime", "evening", "morning"}, names)
}

const routinesYAML = `routines:
  - name: movie
    title: Movie Night
    schedule: "0 20 * * 5"
    steps:
      - operation: turn_off_lights
        params:
          room: living room
      - operation: play_music
        params:
          genre: soundtrack
          source: spotify
  - name: morning
    steps:
      - operation: turn_on_lights
        params:
          room: kitchen
`

func TestLoadFile(t *testing.T) {
	_, r := newTestRunner(t)
	path := filepath.Join(t.TempDir(), "routines.yaml")
	require.NoError(t, os.WriteFile(path, []byte(routinesYAML), 0o600))

	added, err := r.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, added) // morning already exists

	movie, ok := r.Routine("movie")
	require.True(t, ok)
	assert.Equal(t, "Movie Night", movie.Title)
	require.Len(t, movie.Steps, 2)
	assert.Equal(t, "living room", movie.Steps[0].Params["room"])
}

func TestLoadRoutinesErrors(t *testing.T) {
	_, err := LoadRoutines(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("routines:\n  - name: nosteps\n"), 0o600))
	_, err = LoadRoutines(path)
	assert.ErrorContains(t, err, "no steps")
}

func TestSchedulerScheduleAll(t *testing.T) {
	_, r := newTestRunner(t)
	require.NoError(t, r.AddRoutine(Routine{
		Name:     "nightly",
		Schedule: "0 22 * * *",
		Steps:    []Step{{Operation: OpTurnOffLights, Params: Params{"room": "all"}}},
	}))

	s := NewScheduler(r)
	n, err := s.ScheduleAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s.Start()
	defer s.Stop()

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "nightly", entries[0].Routine)
	assert.False(t, entries[0].Next.IsZero())

	// rescheduling replaces the entry
	require.NoError(t, s.Schedule(context.Background(), "nightly", "0 23 * * *"))
	entries = s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "0 23 * * *", entries[0].Schedule)
}

func TestSchedulerRejectsBadInput(t *testing.T) {
	_, r := newTestRunner(t)
	s := NewScheduler(r)

	assert.ErrorIs(t, s.Schedule(context.Background(), "ghost", "* * * * *"), ErrValidation)
	assert.Error(t, s.Schedule(context.Background(), "morning", "not a cron spec"))
}
