// ABOUTME: Task executor: registry of operations and asynchronous executions
// ABOUTME: Tracks queued -> running -> completed|failed with a bounded history
package automation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harper/jarvis/internal/metrics"
	"github.com/harper/jarvis/internal/models"
	"github.com/harper/jarvis/internal/util"
	"github.com/rs/zerolog/log"
)

// DefaultHistorySize bounds the terminal execution history
const DefaultHistorySize = 100

// Ack is the immediate acknowledgment of a launched execution
type Ack struct {
	ExecutionID string `json:"execution_id"`
	Operation   string `json:"operation"`
	Message     string `json:"message"`
}

// CompletionHook observes every execution reaching a terminal state
type CompletionHook func(exec models.Execution)

// Executor launches registered operations asynchronously
type Executor struct {
	mu       sync.RWMutex
	ops      map[string]Operation
	execs    map[string]*models.Execution
	finished []string // terminal ids, oldest first, pruned with history
	history  *util.Ring[models.Execution]
	hooks    []CompletionHook
	wg       sync.WaitGroup
}

// NewExecutor creates an executor with an empty registry
func NewExecutor(historySize int) *Executor {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &Executor{
		ops:     make(map[string]Operation),
		execs:   make(map[string]*models.Execution),
		history: util.NewRing[models.Execution](historySize),
	}
}

// Register adds an operation; names must be unique
func (e *Executor) Register(op Operation) error {
	if op.Name == "" || op.Handler == nil {
		return fmt.Errorf("register operation %q: name and handler are required", op.Name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.ops[op.Name]; ok {
		return fmt.Errorf("%w: %s", ErrOperationExists, op.Name)
	}
	e.ops[op.Name] = op
	return nil
}

// Operations lists registered operations sorted by name
func (e *Executor) Operations() []Operation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ops := make([]Operation, 0, len(e.ops))
	for _, op := range e.ops {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return ops
}

// OnComplete registers a hook run after each terminal transition
func (e *Executor) OnComplete(hook CompletionHook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, hook)
}

// Execute validates and launches an operation. Validation failures return
// a *ValidationError and create no execution record. The handler outlives
// ctx cancellation; it only inherits ctx values.
func (e *Executor) Execute(ctx context.Context, name string, params Params) (*Ack, error) {
	e.mu.Lock()
	op, ok := e.ops[name]
	if !ok {
		e.mu.Unlock()
		return nil, &ValidationError{Kind: "operation", Name: name, Reason: "not registered"}
	}
	if key, missing := op.missingParam(params); missing {
		e.mu.Unlock()
		return nil, &ValidationError{Kind: "operation", Name: name, Reason: "missing required parameter: " + key}
	}

	now := time.Now()
	exec := &models.Execution{
		ID:        fmt.Sprintf("%s_%s_%s", name, now.Format("20060102_150405"), uuid.New().String()[:8]),
		Operation: name,
		Params:    copyParams(params),
		State:     models.StateQueued,
		CreatedAt: now,
	}
	e.execs[exec.ID] = exec

	exec.State = models.StateRunning
	exec.StartedAt = time.Now()
	e.wg.Add(1)
	e.mu.Unlock()

	log.Debug().Str("execution_id", exec.ID).Str("operation", name).Msg("task started")
	go e.run(context.WithoutCancel(ctx), exec.ID, op, copyParams(params))

	return &Ack{
		ExecutionID: exec.ID,
		Operation:   name,
		Message:     fmt.Sprintf("Task '%s' started", name),
	}, nil
}

func (e *Executor) run(ctx context.Context, id string, op Operation, params Params) {
	defer e.wg.Done()

	var (
		result Result
		err    error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		result, err = op.Handler(ctx, params)
	}()

	e.finish(id, result, err)
}

func (e *Executor) finish(id string, result Result, err error) {
	e.mu.Lock()
	exec := e.execs[id]
	exec.FinishedAt = time.Now()
	if err != nil {
		exec.State = models.StateFailed
		exec.Error = err.Error()
	} else {
		exec.State = models.StateCompleted
		exec.Result = map[string]any(result)
	}
	snapshot := exec.Clone()
	e.history.Push(snapshot)

	e.finished = append(e.finished, id)
	for len(e.finished) > e.history.Cap() {
		delete(e.execs, e.finished[0])
		e.finished = e.finished[1:]
	}
	hooks := append([]CompletionHook(nil), e.hooks...)
	e.mu.Unlock()

	metrics.TaskExecutions.WithLabelValues(snapshot.Operation, string(snapshot.State)).Inc()
	if err != nil {
		log.Warn().Str("execution_id", id).Str("operation", snapshot.Operation).Err(err).Msg("task failed")
	} else {
		log.Debug().Str("execution_id", id).Str("operation", snapshot.Operation).Msg("task completed")
	}

	for _, hook := range hooks {
		hook(snapshot.Clone())
	}
}

// Status returns a copy of the live record for id
func (e *Executor) Status(id string) (models.Execution, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	exec, ok := e.execs[id]
	if !ok {
		return models.Execution{}, fmt.Errorf("%w: %s", ErrExecutionNotFound, id)
	}
	return exec.Clone(), nil
}

// History returns up to limit terminal executions, newest last
func (e *Executor) History(limit int) []models.Execution {
	return e.history.Last(limit)
}

// Wait blocks until every launched handler has returned
func (e *Executor) Wait() {
	e.wg.Wait()
}

func copyParams(p Params) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
