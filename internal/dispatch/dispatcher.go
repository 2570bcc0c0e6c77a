// ABOUTME: Fan-out query dispatcher over named information providers
// ABOUTME: Each source runs in its own goroutine under a shared per-call deadline
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/harper/jarvis/internal/metrics"
	"github.com/harper/jarvis/internal/models"
	"github.com/harper/jarvis/internal/util"
	"github.com/rs/zerolog/log"
)

// Defaults
const (
	DefaultTimeout     = 10 * time.Second
	DefaultHistorySize = 100
)

// Result is a provider's structured answer
type Result map[string]any

// Provider answers one category of query. It must honor ctx cancellation
// where it can; results delivered after the deadline are discarded.
type Provider func(ctx context.Context, query string) (Result, error)

// SourceResult is one source's slot in a Response: data or an error
type SourceResult struct {
	Data Result
	Err  error
}

// MarshalJSON renders the slot as its data, or {"error": msg}
func (r SourceResult) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(map[string]string{"error": r.Err.Error()})
	}
	return json.Marshal(r.Data)
}

// Response aggregates one search
type Response struct {
	Query      string                  `json:"query"`
	Sources    []string                `json:"sources"`
	Results    map[string]SourceResult `json:"results"`
	Incomplete []string                `json:"incomplete,omitempty"`
	Timestamp  time.Time               `json:"timestamp"`
}

// Data returns the successful result for source, if any
func (r *Response) Data(source string) (Result, bool) {
	res, ok := r.Results[source]
	if !ok || res.Err != nil {
		return nil, false
	}
	return res.Data, true
}

// Outcome returns the data or error for a searched source. Timed-out
// sources yield a ProviderError wrapping ErrProviderTimeout.
func (r *Response) Outcome(source string) (Result, error) {
	if res, ok := r.Results[source]; ok {
		return res.Data, res.Err
	}
	if slices.Contains(r.Incomplete, source) {
		return nil, &ProviderError{Source: source, Err: ErrProviderTimeout}
	}
	return nil, fmt.Errorf("source %q was not searched", source)
}

// Options configures a Dispatcher
type Options struct {
	Timeout     time.Duration
	HistorySize int
}

// Dispatcher fans queries out to registered providers
type Dispatcher struct {
	mu        sync.RWMutex
	providers map[string]Provider
	timeout   time.Duration
	history   *util.Ring[models.SearchRecord]
}

// New creates a Dispatcher with no providers registered
func New(opts Options) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = DefaultHistorySize
	}
	return &Dispatcher{
		providers: make(map[string]Provider),
		timeout:   opts.Timeout,
		history:   util.NewRing[models.SearchRecord](opts.HistorySize),
	}
}

// Register adds or replaces the provider for a source name
func (d *Dispatcher) Register(name string, p Provider) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.providers[name] = p
}

// Sources returns the registered source names, sorted
func (d *Dispatcher) Sources() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.providers))
	for name := range d.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type outcome struct {
	source string
	data   Result
	err    error
}

// Search queries the given sources concurrently. A nil sources slice routes
// the query by keyword. Unknown names are skipped. List-valued "results"
// and "articles" entries are cut to maxResults when it is positive.
func (d *Dispatcher) Search(ctx context.Context, query string, sources []string, maxResults int) *Response {
	start := time.Now()
	if sources == nil {
		sources = Route(query)
	}

	selected := make([]string, 0, len(sources))
	calls := make(map[string]Provider, len(sources))
	d.mu.RLock()
	for _, name := range sources {
		p, ok := d.providers[name]
		if !ok {
			log.Debug().Str("source", name).Msg("ignoring unknown source")
			continue
		}
		if _, dup := calls[name]; dup {
			continue
		}
		calls[name] = p
		selected = append(selected, name)
	}
	d.mu.RUnlock()

	resp := &Response{
		Query:   query,
		Sources: selected,
		Results: make(map[string]SourceResult, len(selected)),
	}

	// Buffered to len(selected) so no provider goroutine blocks after we stop reading.
	out := make(chan outcome, len(selected))
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	for _, name := range selected {
		go invoke(callCtx, name, calls[name], query, out)
	}

	pending := make(map[string]bool, len(selected))
	for _, name := range selected {
		pending[name] = true
	}

collect:
	for len(pending) > 0 {
		select {
		case o := <-out:
			delete(pending, o.source)
			if o.err != nil {
				resp.Results[o.source] = SourceResult{Err: &ProviderError{Source: o.source, Err: o.err}}
				metrics.ProviderResults.WithLabelValues(o.source, "error").Inc()
				log.Warn().Str("source", o.source).Err(o.err).Msg("provider failed")
				continue
			}
			resp.Results[o.source] = SourceResult{Data: truncate(o.data, maxResults)}
			metrics.ProviderResults.WithLabelValues(o.source, "ok").Inc()
		case <-callCtx.Done():
			break collect
		}
	}

	for name := range pending {
		resp.Incomplete = append(resp.Incomplete, name)
		metrics.ProviderResults.WithLabelValues(name, "timeout").Inc()
		log.Warn().Str("source", name).Dur("timeout", d.timeout).Msg("provider abandoned at deadline")
	}
	sort.Strings(resp.Incomplete)

	resp.Timestamp = time.Now()
	d.history.Push(models.SearchRecord{
		Query:     query,
		Sources:   slices.Clone(selected),
		Timestamp: resp.Timestamp,
	})
	metrics.Searches.Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())

	return resp
}

// History returns up to limit recent searches, oldest first
func (d *Dispatcher) History(limit int) []models.SearchRecord {
	return d.history.Last(limit)
}

func invoke(ctx context.Context, name string, p Provider, query string, out chan<- outcome) {
	o := outcome{source: name}
	defer func() {
		if r := recover(); r != nil {
			o.data = nil
			o.err = fmt.Errorf("panic: %v", r)
		}
		out <- o
	}()
	o.data, o.err = p(ctx, query)
}

// truncate copies data, cutting list-valued results to max entries
func truncate(data Result, max int) Result {
	if data == nil {
		return Result{}
	}
	out := make(Result, len(data))
	for k, v := range data {
		out[k] = v
	}
	if max <= 0 {
		return out
	}
	for _, key := range []string{"results", "articles"} {
		switch list := out[key].(type) {
		case []map[string]any:
			if len(list) > max {
				out[key] = list[:max]
			}
		case []any:
			if len(list) > max {
				out[key] = list[:max]
			}
		case []string:
			if len(list) > max {
				out[key] = list[:max]
			}
		}
	}
	return out
}
