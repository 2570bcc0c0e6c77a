// ABOUTME: Session orchestrates wake words, speech, visitors, and replies
// ABOUTME: Ties the store, dispatcher, executor, and routine runner together
package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/harper/jarvis/internal/automation"
	"github.com/harper/jarvis/internal/dispatch"
	"github.com/harper/jarvis/internal/models"
	"github.com/harper/jarvis/internal/storage"
	"github.com/rs/zerolog/log"
)

// DefaultWakeWord is used when Deps.WakeWord is empty
const DefaultWakeWord = "jarvis"

// ErrNoSighting is returned by DetectVisitor when neither a signature nor a name is given
var ErrNoSighting = errors.New("signature or name is required")

// SentimentAnalyzer labels a user utterance (positive, negative, neutral)
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) (string, error)
}

// Listener types, one per observable event kind
type (
	CommandListener  func(command string)
	ResponseListener func(command, reply string)
	VisitorListener  func(v models.Visitor)
	StatusListener   func(running bool)
	TaskListener     func(exec models.Execution)
)

// Deps are the collaborators a Session drives. Store, Dispatcher, Executor
// and Runner are required.
type Deps struct {
	Store      *storage.Store
	Dispatcher *dispatch.Dispatcher
	Executor   *automation.Executor
	Runner     *automation.Runner
	Source     EventSource
	Classifier Classifier
	Mapper     TaskMapper
	Sentiment  SentimentAnalyzer
	WakeWord   string
	MaxResults int
}

// SessionStatus is a point-in-time summary of the session
type SessionStatus struct {
	Running             bool            `json:"running"`
	WakeWord            string          `json:"wake_word"`
	CurrentVisitor      *models.Visitor `json:"current_visitor,omitempty"`
	KnownVisitors       int             `json:"known_visitors"`
	RecentConversations int             `json:"recent_conversations"`
	Operations          int             `json:"operations"`
	Routines            int             `json:"routines"`
	Sources             []string        `json:"sources"`
}

// Session is the assistant's running state machine (stopped <-> running)
type Session struct {
	deps Deps

	mu        sync.RWMutex
	running   bool
	ctx       context.Context
	cancel    context.CancelFunc
	visitor   *models.Visitor
	commands  []CommandListener
	responses []ResponseListener
	visitors  []VisitorListener
	statuses  []StatusListener
	tasks     []TaskListener
}

// NewSession validates deps, fills defaults, and hooks executor completions
func NewSession(deps Deps) (*Session, error) {
	if deps.Store == nil || deps.Dispatcher == nil || deps.Executor == nil || deps.Runner == nil {
		return nil, errors.New("session requires store, dispatcher, executor, and runner")
	}
	if deps.Classifier == nil {
		deps.Classifier = KeywordClassifier{}
	}
	if deps.Mapper == nil {
		deps.Mapper = DefaultTaskMapper()
	}
	if deps.WakeWord == "" {
		deps.WakeWord = DefaultWakeWord
	}

	s := &Session{deps: deps, ctx: context.Background()}
	deps.Executor.OnComplete(s.taskFinished)
	return s, nil
}

// Start moves the session to running. Calling Start while running is a no-op.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	if s.deps.Source != nil {
		if err := s.deps.Source.Start(s); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to start event source: %w", err)
		}
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	listeners := append([]StatusListener(nil), s.statuses...)
	s.mu.Unlock()

	if _, err := s.deps.Store.LogEvent(models.EventSystemStart, "Jarvis system started",
		map[string]any{"wake_word": s.deps.WakeWord}); err != nil {
		log.Warn().Err(err).Msg("failed to log system start")
	}
	log.Info().Str("wake_word", s.deps.WakeWord).Msg("session started")

	for _, l := range listeners {
		l(true)
	}
	return nil
}

// Stop moves the session to stopped. Calling Stop while stopped is a no-op.
func (s *Session) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	if s.cancel != nil {
		s.cancel()
	}
	listeners := append([]StatusListener(nil), s.statuses...)
	s.mu.Unlock()

	var srcErr error
	if s.deps.Source != nil {
		srcErr = s.deps.Source.Stop()
	}

	if _, err := s.deps.Store.LogEvent(models.EventSystemStop, "Jarvis system stopped", nil); err != nil {
		log.Warn().Err(err).Msg("failed to log system stop")
	}
	log.Info().Msg("session stopped")

	for _, l := range listeners {
		l(false)
	}
	if srcErr != nil {
		return fmt.Errorf("failed to stop event source: %w", srcErr)
	}
	return nil
}

// Running reports whether the session is started
func (s *Session) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// WakeWordDetected implements EventHandler
func (s *Session) WakeWordDetected() {
	if _, err := s.deps.Store.LogEvent(models.EventWakeWord, "Wake word detected",
		map[string]any{"wake_word": s.deps.WakeWord}); err != nil {
		log.Warn().Err(err).Msg("failed to log wake word")
	}
	log.Debug().Msg("wake word detected")
}

// SpeechRecognized implements EventHandler
func (s *Session) SpeechRecognized(text string) {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()

	if _, err := s.HandleSpeech(ctx, text); err != nil {
		log.Error().Err(err).Str("command", text).Msg("failed to handle speech")
	}
}

// HandleSpeech processes one utterance end to end and returns the reply
func (s *Session) HandleSpeech(ctx context.Context, text string) (string, error) {
	visitorID := s.currentVisitorID()

	sentiment := ""
	if s.deps.Sentiment != nil {
		label, err := s.deps.Sentiment.Analyze(ctx, text)
		if err != nil {
			log.Warn().Err(err).Msg("sentiment analysis failed")
		} else {
			sentiment = label
		}
	}

	if _, err := s.deps.Store.AppendConversation(models.SpeakerUser, text, visitorID, sentiment); err != nil {
		return "", fmt.Errorf("failed to record command: %w", err)
	}

	s.mu.RLock()
	commands := append([]CommandListener(nil), s.commands...)
	s.mu.RUnlock()
	for _, l := range commands {
		l(text)
	}

	if _, err := s.deps.Store.LogEvent(models.EventCommandReceived, "Command received",
		map[string]any{"command": text}); err != nil {
		log.Warn().Err(err).Msg("failed to log command")
	}

	reply := s.respond(ctx, text)

	if _, err := s.deps.Store.AppendConversation(models.SpeakerAssistant, reply, visitorID, ""); err != nil {
		return reply, fmt.Errorf("failed to record reply: %w", err)
	}

	s.mu.RLock()
	responses := append([]ResponseListener(nil), s.responses...)
	s.mu.RUnlock()
	for _, l := range responses {
		l(text, reply)
	}
	return reply, nil
}

func (s *Session) respond(ctx context.Context, text string) string {
	c := s.deps.Classifier.Classify(text)
	log.Debug().Str("kind", string(c.Kind)).Str("command", c.Command).Msg("classified command")

	switch c.Kind {
	case KindTask:
		return s.runTask(ctx, c.Command)
	case KindQuery:
		resp := s.deps.Dispatcher.Search(ctx, c.Command, nil, s.deps.MaxResults)
		return FormatResponse(resp)
	default:
		return ReplyUnknownCommand
	}
}

func (s *Session) runTask(ctx context.Context, command string) string {
	routines := s.deps.Runner.Routines()
	names := make([]string, len(routines))
	for i, rt := range routines {
		names[i] = rt.Name
	}

	plan, ok := s.deps.Mapper.Map(command, names)
	if !ok {
		return ReplyUnknownTask
	}

	if plan.Routine != "" {
		if _, err := s.deps.Runner.Run(ctx, plan.Routine); err != nil {
			log.Warn().Err(err).Str("routine", plan.Routine).Msg("routine failed to start")
			return fmt.Sprintf("I couldn't start the %s routine.", plan.Routine)
		}
		return plan.Reply
	}

	ack, err := s.deps.Executor.Execute(ctx, plan.Operation, plan.Params)
	if err != nil {
		log.Warn().Err(err).Str("operation", plan.Operation).Msg("task rejected")
		return ReplyUnknownTask
	}
	log.Debug().Str("execution_id", ack.ExecutionID).Msg("task launched")
	return plan.Reply
}

// DetectVisitor resolves a sighting to a visitor record, creating one when
// neither the signature nor the name matches, and makes it current
func (s *Session) DetectVisitor(signature []float64, name string) (*models.Visitor, error) {
	if len(signature) == 0 && name == "" {
		return nil, ErrNoSighting
	}

	v, err := s.resolveVisitor(signature, name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	current := *v
	s.visitor = &current
	listeners := append([]VisitorListener(nil), s.visitors...)
	s.mu.Unlock()

	if _, err := s.deps.Store.LogEvent(models.EventVisitorDetected, "Visitor detected: "+v.Name,
		map[string]any{"visitor_id": v.ID, "known": v.Known, "name": v.Name}); err != nil {
		log.Warn().Err(err).Msg("failed to log visitor detection")
	}

	for _, l := range listeners {
		l(*v)
	}
	return v, nil
}

func (s *Session) resolveVisitor(signature []float64, name string) (*models.Visitor, error) {
	store := s.deps.Store

	if len(signature) > 0 {
		match, err := store.FindVisitorBySignature(signature)
		if err != nil {
			return nil, err
		}
		if match != nil {
			return s.revisit(match.ID)
		}
	}

	if name != "" {
		match, err := store.FindVisitorByName(name)
		if err != nil {
			return nil, err
		}
		if match != nil {
			if len(signature) > 0 && len(match.Signature) == 0 {
				if _, err := store.UpdateVisitor(match.ID, models.VisitorUpdate{Signature: signature}); err != nil {
					return nil, err
				}
			}
			return s.revisit(match.ID)
		}
	}

	known := name != ""
	if !known {
		name = models.UnknownVisitorName
	}
	id, err := store.AddVisitor(name, signature, known, "")
	if err != nil {
		return nil, err
	}
	return store.GetVisitor(id)
}

func (s *Session) revisit(id int64) (*models.Visitor, error) {
	if _, err := s.deps.Store.RecordVisit(id); err != nil {
		return nil, err
	}
	return s.deps.Store.GetVisitor(id)
}

// CurrentVisitor returns a copy of the most recently detected visitor
func (s *Session) CurrentVisitor() *models.Visitor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.visitor == nil {
		return nil
	}
	v := *s.visitor
	return &v
}

func (s *Session) currentVisitorID() *int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.visitor == nil {
		return nil
	}
	id := s.visitor.ID
	return &id
}

// OnCommand registers a listener for recognized commands
func (s *Session) OnCommand(l CommandListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, l)
}

// OnResponse registers a listener for replies
func (s *Session) OnResponse(l ResponseListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, l)
}

// OnVisitor registers a listener for visitor detections
func (s *Session) OnVisitor(l VisitorListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visitors = append(s.visitors, l)
}

// OnStatus registers a listener for start/stop transitions
func (s *Session) OnStatus(l StatusListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, l)
}

// OnTaskCompleted registers a listener for terminal executions
func (s *Session) OnTaskCompleted(l TaskListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, l)
}

func (s *Session) taskFinished(exec models.Execution) {
	eventType := models.EventTaskCompleted
	desc := fmt.Sprintf("Task '%s' completed", exec.Operation)
	meta := map[string]any{"execution_id": exec.ID, "operation": exec.Operation}
	if exec.State == models.StateFailed {
		eventType = models.EventTaskFailed
		desc = fmt.Sprintf("Task '%s' failed", exec.Operation)
		meta["error"] = exec.Error
	}
	if _, err := s.deps.Store.LogEvent(eventType, desc, meta); err != nil {
		log.Warn().Err(err).Str("execution_id", exec.ID).Msg("failed to log task outcome")
	}

	s.mu.RLock()
	listeners := append([]TaskListener(nil), s.tasks...)
	s.mu.RUnlock()
	for _, l := range listeners {
		l(exec)
	}
}

// Status summarizes the session
func (s *Session) Status() SessionStatus {
	return SessionStatus{
		Running:             s.Running(),
		WakeWord:            s.deps.WakeWord,
		CurrentVisitor:      s.CurrentVisitor(),
		KnownVisitors:       s.deps.Store.KnownVisitorCount(),
		RecentConversations: len(s.deps.Store.RecentConversations(0)),
		Operations:          len(s.deps.Executor.Operations()),
		Routines:            len(s.deps.Runner.Routines()),
		Sources:             s.deps.Dispatcher.Sources(),
	}
}
