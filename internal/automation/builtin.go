// ABOUTME: Built-in simulated home-automation operations
// ABOUTME: Lights, reminders, weather checks, and music with configurable latency
package automation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Builtin operation names
const (
	OpTurnOnLights  = "turn_on_lights"
	OpTurnOffLights = "turn_off_lights"
	OpSetReminder   = "set_reminder"
	OpCheckWeather  = "check_weather"
	OpPlayMusic     = "play_music"
)

// BuiltinOperations returns the simulated operations. Each handler sleeps
// for delay (or until ctx is done) before reporting success.
func BuiltinOperations(delay time.Duration) []Operation {
	return []Operation{
		{
			Name:           OpTurnOnLights,
			Title:          "Turn on lights",
			Description:    "Turn on the lights in a specified room",
			RequiredParams: []string{"room"},
			Handler: func(ctx context.Context, p Params) (Result, error) {
				if err := pause(ctx, delay); err != nil {
					return nil, err
				}
				return Result{"success": true, "message": fmt.Sprintf("Turned on lights in %s", p.String("room"))}, nil
			},
		},
		{
			Name:           OpTurnOffLights,
			Title:          "Turn off lights",
			Description:    "Turn off the lights in a specified room",
			RequiredParams: []string{"room"},
			Handler: func(ctx context.Context, p Params) (Result, error) {
				if err := pause(ctx, delay); err != nil {
					return nil, err
				}
				return Result{"success": true, "message": fmt.Sprintf("Turned off lights in %s", p.String("room"))}, nil
			},
		},
		{
			Name:           OpSetReminder,
			Title:          "Set reminder",
			Description:    "Set a reminder for a specific time",
			RequiredParams: []string{"message", "time"},
			Handler: func(ctx context.Context, p Params) (Result, error) {
				if err := pause(ctx, delay); err != nil {
					return nil, err
				}
				return Result{"success": true, "message": fmt.Sprintf("Set reminder '%s' for %s", p.String("message"), p.String("time"))}, nil
			},
		},
		{
			Name:           OpCheckWeather,
			Title:          "Check weather",
			Description:    "Check the weather for a location",
			RequiredParams: []string{"location"},
			Handler: func(ctx context.Context, p Params) (Result, error) {
				if err := pause(ctx, 2*delay); err != nil {
					return nil, err
				}
				condition := []string{"sunny", "cloudy", "rainy", "snowy"}[rand.IntN(4)]
				temperature := fmt.Sprintf("%d°F", 32+5*rand.IntN(13))
				location := p.String("location")
				return Result{
					"success":     true,
					"location":    location,
					"condition":   condition,
					"temperature": temperature,
					"message":     fmt.Sprintf("Weather in %s: %s, %s", location, condition, temperature),
				}, nil
			},
		},
		{
			Name:           OpPlayMusic,
			Title:          "Play music",
			Description:    "Play music from a specified source",
			RequiredParams: []string{"genre", "source"},
			Handler: func(ctx context.Context, p Params) (Result, error) {
				if err := pause(ctx, delay); err != nil {
					return nil, err
				}
				return Result{"success": true, "message": fmt.Sprintf("Playing %s music from %s", p.String("genre"), p.String("source"))}, nil
			},
		},
	}
}

// RegisterBuiltins registers every built-in operation on e
func RegisterBuiltins(e *Executor, delay time.Duration) error {
	for _, op := range BuiltinOperations(delay) {
		if err := e.Register(op); err != nil {
			return err
		}
	}
	return nil
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
