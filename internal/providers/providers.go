// ABOUTME: Built-in information providers with simulated content
// ABOUTME: Defaults registers every provider on a dispatcher
package providers

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/harper/jarvis/internal/dispatch"
)

// Options tunes the simulated providers
type Options struct {
	// Latency is how long each simulated lookup takes. Zero answers at once.
	Latency time.Duration
	// Now supplies the clock. Defaults to time.Now.
	Now func() time.Time
	// Rand drives simulated weather. Defaults to an auto-seeded source.
	Rand *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return o
}

// Defaults registers web, knowledge_base, news, weather, time, date, and
// calculator on d
func Defaults(d *dispatch.Dispatcher, opts Options) {
	opts = opts.withDefaults()

	d.Register(dispatch.SourceWeb, Web(opts))
	d.Register(dispatch.SourceKnowledgeBase, KnowledgeBase(opts))
	d.Register(dispatch.SourceNews, News(opts))
	d.Register(dispatch.SourceWeather, Weather(opts))
	d.Register(dispatch.SourceTime, Time(opts))
	d.Register(dispatch.SourceDate, Date(opts))
	d.Register(dispatch.SourceCalculator, Calculator())
}

// simulate waits for the configured latency or until ctx is done
func simulate(ctx context.Context, latency time.Duration) error {
	if latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ExtractLocation returns the capitalized word after in/at/for/near, or ""
func ExtractLocation(query string) string {
	words := strings.Fields(strings.ToLower(query))
	for i, w := range words {
		switch w {
		case "in", "at", "for", "near":
			if i < len(words)-1 {
				loc := strings.Trim(words[i+1], "?!.,;:")
				if loc == "" {
					continue
				}
				return strings.ToUpper(loc[:1]) + loc[1:]
			}
		}
	}
	return ""
}
