// ABOUTME: Weather, time, and date providers
// ABOUTME: Time and date read the injected clock; weather is randomized
package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/harper/jarvis/internal/dispatch"
)

var conditions = []string{"sunny", "partly cloudy", "cloudy", "rainy", "thunderstorms", "snowy"}

// Weather returns simulated current conditions and a two-day forecast
func Weather(opts Options) dispatch.Provider {
	var mu sync.Mutex // *rand.Rand is not safe for concurrent use
	return func(ctx context.Context, query string) (dispatch.Result, error) {
		if err := simulate(ctx, opts.Latency); err != nil {
			return nil, err
		}

		location := ExtractLocation(query)
		if location == "" {
			location = "current location"
		}

		mu.Lock()
		condition := conditions[opts.Rand.IntN(len(conditions))]
		temp := 32 + 5*opts.Rand.IntN(13)
		humidity := 30 + opts.Rand.IntN(61)
		wind := opts.Rand.IntN(21)
		tomorrow := conditions[opts.Rand.IntN(len(conditions))]
		tomorrowHigh := 50 + opts.Rand.IntN(36)
		tomorrowLow := 30 + opts.Rand.IntN(31)
		mu.Unlock()

		return dispatch.Result{
			"location": location,
			"current": map[string]any{
				"condition":   condition,
				"temperature": fmt.Sprintf("%d°F", temp),
				"humidity":    fmt.Sprintf("%d%%", humidity),
				"wind":        fmt.Sprintf("%d mph", wind),
			},
			"forecast": []map[string]any{
				{"day": "Today", "condition": condition, "high": fmt.Sprintf("%d°F", temp), "low": fmt.Sprintf("%d°F", temp-10)},
				{"day": "Tomorrow", "condition": tomorrow, "high": fmt.Sprintf("%d°F", tomorrowHigh), "low": fmt.Sprintf("%d°F", tomorrowLow)},
			},
		}, nil
	}
}

// Time reports the current clock time
func Time(opts Options) dispatch.Provider {
	return func(_ context.Context, query string) (dispatch.Result, error) {
		now := opts.Now()
		location := ExtractLocation(query)
		if location == "" {
			location = "local"
		}
		return dispatch.Result{
			"current_time":     now.Format("15:04:05"),
			"current_time_12h": now.Format("03:04:05 PM"),
			"location":         location,
			"timezone":         now.Format("MST"),
		}, nil
	}
}

// Date reports the current calendar date
func Date(opts Options) dispatch.Provider {
	return func(_ context.Context, _ string) (dispatch.Result, error) {
		now := opts.Now()
		return dispatch.Result{
			"current_date":   now.Format("2006-01-02"),
			"formatted_date": now.Format("January 02, 2006"),
			"day_of_week":    now.Weekday().String(),
			"day":            now.Day(),
			"month":          int(now.Month()),
			"year":           now.Year(),
		}, nil
	}
}
