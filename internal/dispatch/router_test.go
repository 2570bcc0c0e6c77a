// ABOUTME: Tests for keyword routing
// ABOUTME: Verifies the fixed category priority and whole-word matching
package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"what time is it", []string{SourceTime}},
		{"What's the weather like", []string{SourceWeather}},
		{"will it rain today", []string{SourceWeather}},
		{"what day is it", []string{SourceDate}},
		{"calculate 25 * 4 + 10", []string{SourceCalculator}},
		{"what is 5 times 3", []string{SourceCalculator}},
		{"12 / 4", []string{SourceCalculator}},
		{"latest news on go", []string{SourceNews}},
		{"who created jarvis", []string{SourceWeb, SourceKnowledgeBase}},
		{"what is ai", []string{SourceWeb, SourceKnowledgeBase}},
		// priority: time beats date, weather beats date
		{"what time is it today", []string{SourceTime}},
		{"weather tomorrow", []string{SourceWeather}},
		// symbols without digits are not arithmetic
		{"tell me about e-mail", []string{SourceWeb, SourceKnowledgeBase}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.query))
		})
	}
}

func TestRouteFallbackIsACopy(t *testing.T) {
	got := Route("hello there")
	got[0] = "mutated"
	assert.Equal(t, []string{SourceWeb, SourceKnowledgeBase}, FallbackSources)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"what", "s", "the", "time"}, Tokenize("What's the TIME?"))
	assert.Empty(t, Tokenize("  ?! "))
}
