// ABOUTME: Tests for LineSource wake-word parsing and delivery control
// ABOUTME: Uses in-memory readers and pipes; no terminal required
package core

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []string
}

func (h *recordingHandler) WakeWordDetected() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, "wake")
}

func (h *recordingHandler) SpeechRecognized(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, "speech:"+text)
}

func (h *recordingHandler) snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.events...)
}

func waitDone(t *testing.T, s *LineSource) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("line source did not finish")
	}
}

func TestLineSourceWakeWord(t *testing.T) {
	input := "Jarvis, turn on the lights\njarvisville is a town\n\njarvis\nwhat time is it\n"
	src := NewLineSource(strings.NewReader(input), "jarvis")
	h := &recordingHandler{}

	require.NoError(t, src.Start(h))
	require.NoError(t, src.Start(h))
	waitDone(t, src)

	assert.Equal(t, []string{
		"wake",
		"speech:turn on the lights",
		"speech:jarvisville is a town",
		"wake",
		"speech:what time is it",
	}, h.snapshot())
}

func TestLineSourceRequireWake(t *testing.T) {
	input := "hello there\njarvis\nwhat time is it\nand the weather\n"
	src := NewLineSource(strings.NewReader(input), "jarvis")
	src.RequireWake = true
	h := &recordingHandler{}

	require.NoError(t, src.Start(h))
	waitDone(t, src)

	assert.Equal(t, []string{"wake", "speech:what time is it"}, h.snapshot())
}

func TestLineSourceStopPausesDelivery(t *testing.T) {
	r, w := io.Pipe()
	src := NewLineSource(r, "jarvis")
	h := &recordingHandler{}

	require.NoError(t, src.Start(h))
	require.NoError(t, src.Stop())
	require.NoError(t, src.Stop())

	// the second write returns only once the first line has been handled
	_, err := io.WriteString(w, "jarvis hello\n")
	require.NoError(t, err)
	_, err = io.WriteString(w, "filler\n")
	require.NoError(t, err)

	require.NoError(t, src.Start(h))
	_, err = io.WriteString(w, "what time is it\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	waitDone(t, src)

	events := h.snapshot()
	assert.NotContains(t, events, "wake")
	assert.NotContains(t, events, "speech:hello")
	assert.Contains(t, events, "speech:what time is it")
}
