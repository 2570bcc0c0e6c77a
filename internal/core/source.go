// ABOUTME: Event sources feed wake-word and speech events into a session
// ABOUTME: LineSource reads one utterance per line from any io.Reader
package core

import (
	"bufio"
	"io"
	"strings"
	"sync"
	"unicode"

	"github.com/rs/zerolog/log"
)

// EventHandler receives events from an EventSource
type EventHandler interface {
	WakeWordDetected()
	SpeechRecognized(text string)
}

// EventSource produces wake and speech events. Start and Stop are idempotent;
// no callbacks are delivered while stopped.
type EventSource interface {
	Start(h EventHandler) error
	Stop() error
}

// LineSource turns lines of text into events. A line that begins with the
// wake word raises a wake event and any remainder is recognized as speech.
// With RequireWake set, other lines are dropped unless they directly follow
// a bare wake word.
type LineSource struct {
	WakeWord    string
	RequireWake bool

	r       *bufio.Scanner
	mu      sync.RWMutex
	handler EventHandler
	active  bool
	reading bool
	awake   bool
	done    chan struct{}
}

// NewLineSource wraps r
func NewLineSource(r io.Reader, wakeWord string) *LineSource {
	return &LineSource{
		WakeWord: wakeWord,
		r:        bufio.NewScanner(r),
		done:     make(chan struct{}),
	}
}

// Start begins (or resumes) delivering events to h
func (s *LineSource) Start(h EventHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
	s.active = true
	if !s.reading {
		s.reading = true
		go s.read()
	}
	return nil
}

// Stop pauses delivery. It waits for an in-flight callback to return, so a
// handler must not call Stop itself.
func (s *LineSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	return nil
}

// Done is closed once the reader is exhausted
func (s *LineSource) Done() <-chan struct{} {
	return s.done
}

func (s *LineSource) read() {
	defer close(s.done)
	for s.r.Scan() {
		s.deliver(strings.TrimSpace(s.r.Text()))
	}
	if err := s.r.Err(); err != nil {
		log.Warn().Err(err).Msg("line source read failed")
	}
}

func (s *LineSource) deliver(line string) {
	if line == "" {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.active || s.handler == nil {
		return
	}

	if rest, ok := s.stripWake(line); ok {
		s.handler.WakeWordDetected()
		if rest == "" {
			s.awake = true
			return
		}
		s.awake = false
		s.handler.SpeechRecognized(rest)
		return
	}

	if s.RequireWake && !s.awake {
		log.Debug().Str("line", line).Msg("ignoring line without wake word")
		return
	}
	s.awake = false
	s.handler.SpeechRecognized(line)
}

// stripWake reports whether line starts with the wake word as a whole word
// and returns what follows it
func (s *LineSource) stripWake(line string) (string, bool) {
	wake := strings.ToLower(strings.TrimSpace(s.WakeWord))
	if wake == "" || len(line) < len(wake) || strings.ToLower(line[:len(wake)]) != wake {
		return "", false
	}
	rest := line[len(wake):]
	if rest != "" {
		r := []rune(rest)[0]
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return "", false
		}
	}
	return strings.TrimLeft(rest, " ,.!?:;-"), true
}
