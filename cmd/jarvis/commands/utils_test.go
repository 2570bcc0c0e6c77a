// ABOUTME: Tests for CLI utility functions
// ABOUTME: Covers truncation, time formatting, and argument parsing
package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
		{"héllo wörld", 8, "héllo..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.maxLen), tt.in)
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "-", formatTime(time.Time{}))
	assert.Equal(t, "just now", formatTime(time.Now()))
	assert.Equal(t, "5m ago", formatTime(time.Now().Add(-5*time.Minute-time.Second)))
	assert.Equal(t, "3h ago", formatTime(time.Now().Add(-3*time.Hour-time.Minute)))
	assert.Equal(t, "2d ago", formatTime(time.Now().Add(-49*time.Hour)))

	old := time.Date(2020, 3, 4, 12, 0, 0, 0, time.Local)
	assert.Equal(t, "2020-03-04", formatTime(old))
}

func TestValidatePositiveInt(t *testing.T) {
	assert.NoError(t, validatePositiveInt(1, "limit"))
	assert.EqualError(t, validatePositiveInt(0, "limit"), "limit must be positive, got 0")
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, 0.7, parseValue("0.7"))
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, []any{"a", "b"}, parseValue(`["a","b"]`))
	assert.Equal(t, "Oslo", parseValue("Oslo"))
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"room=kitchen", "message=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"room": "kitchen", "message": "a=b"}, params)

	_, err = parseParams([]string{"room"})
	assert.Error(t, err)
	_, err = parseParams([]string{"=x"})
	assert.Error(t, err)
}

func TestParseSignature(t *testing.T) {
	sig, err := parseSignature("0.1, 0.2,0.3")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, sig)

	sig, err = parseSignature("  ")
	require.NoError(t, err)
	assert.Nil(t, sig)

	_, err = parseSignature("0.1,abc")
	assert.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "(unset)", formatValue(nil))
	assert.Equal(t, "dark", formatValue("dark"))
	assert.Equal(t, "0.7", formatValue(0.7))
	assert.Equal(t, `["jazz"]`, formatValue([]any{"jazz"}))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, map[string]int{"n": 1}))
	assert.Equal(t, "{\n  \"n\": 1\n}\n", buf.String())
}
