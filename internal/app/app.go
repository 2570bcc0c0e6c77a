// ABOUTME: Composition root wiring the store, dispatcher, executor, and session
// ABOUTME: Shared by the CLI, the MCP server, and tests
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/harper/jarvis/internal/automation"
	"github.com/harper/jarvis/internal/charm"
	"github.com/harper/jarvis/internal/config"
	"github.com/harper/jarvis/internal/core"
	"github.com/harper/jarvis/internal/dispatch"
	"github.com/harper/jarvis/internal/llm"
	"github.com/harper/jarvis/internal/providers"
	"github.com/harper/jarvis/internal/storage"
	"github.com/rs/zerolog/log"
)

// Options adjusts how an App is assembled
type Options struct {
	// InMemory uses a throwaway database instead of cfg.DBPath
	InMemory bool
	// Source feeds wake and speech events to the session; nil for none
	Source core.EventSource
	// SkipCharm leaves the cloud mirror off even when configured
	SkipCharm bool
}

// App holds every long-lived component
type App struct {
	Config     *config.Config
	Store      *storage.Store
	Dispatcher *dispatch.Dispatcher
	Executor   *automation.Executor
	Runner     *automation.Runner
	Scheduler  *automation.Scheduler
	Session    *core.Session

	// Optional collaborators, nil when not configured
	Charm *charm.Client
	LLM   *llm.OpenAIClient
}

// New assembles an App from configuration
func New(cfg *config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	storeOpts := storage.Options{
		Matcher:            storage.MatcherByName(cfg.SignatureMatcher, cfg.SignatureThreshold),
		ConversationWindow: cfg.ConversationCacheSize,
	}
	var (
		store *storage.Store
		err   error
	)
	if opts.InMemory {
		store, err = storage.OpenInMemory(storeOpts)
	} else {
		store, err = storage.Open(cfg.DBPath, storeOpts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	a := &App{Config: cfg, Store: store}

	if cfg.CharmEnabled && !opts.SkipCharm {
		a.Charm, err = charm.NewClient(&charm.Config{
			Host:     cfg.CharmHost,
			DBName:   cfg.CharmDBName,
			AutoSync: cfg.AutoSync,
		})
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		store.SetMirror(a.Charm)
	}

	a.Dispatcher = dispatch.New(dispatch.Options{
		Timeout:     cfg.SearchTimeout,
		HistorySize: cfg.SearchHistorySize,
	})
	providers.Defaults(a.Dispatcher, providers.Options{Latency: cfg.ProviderLatency})

	var sentiment core.SentimentAnalyzer
	if cfg.LLMEnabled() {
		a.LLM, err = llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
			APIKey:     cfg.OpenAIKey,
			ChatModel:  cfg.ChatModel,
			Timeout:    cfg.OpenAITimeout,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		})
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Dispatcher.Register(llm.SourceName, a.LLM.Provider())
		sentiment = a.LLM
	}

	a.Executor = automation.NewExecutor(cfg.TaskHistorySize)
	if err := automation.RegisterBuiltins(a.Executor, cfg.TaskDelay); err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Runner = automation.NewRunner(a.Executor)
	for _, rt := range automation.DefaultRoutines() {
		if err := a.Runner.AddRoutine(rt); err != nil {
			_ = a.Close()
			return nil, err
		}
	}
	if cfg.RoutinesFile != "" {
		n, err := a.Runner.LoadFile(cfg.RoutinesFile)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		log.Debug().Int("routines", n).Str("file", cfg.RoutinesFile).Msg("loaded routines")
	}
	a.Scheduler = automation.NewScheduler(a.Runner)

	a.Session, err = core.NewSession(core.Deps{
		Store:      store,
		Dispatcher: a.Dispatcher,
		Executor:   a.Executor,
		Runner:     a.Runner,
		Source:     opts.Source,
		Sentiment:  sentiment,
		WakeWord:   cfg.WakeWord,
		MaxResults: cfg.MaxResults,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// Start runs the session and schedules routines that declare a schedule
func (a *App) Start(ctx context.Context) error {
	n, err := a.Scheduler.ScheduleAll(ctx)
	if err != nil {
		return err
	}
	a.Scheduler.Start()
	log.Debug().Int("scheduled", n).Msg("routine scheduler started")
	return a.Session.Start(ctx)
}

// Close stops the session, waits for running tasks, and releases storage
func (a *App) Close() error {
	var errs []error
	if a.Session != nil {
		errs = append(errs, a.Session.Stop())
	}
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Executor != nil {
		a.Executor.Wait()
	}
	if a.Charm != nil {
		errs = append(errs, a.Charm.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
