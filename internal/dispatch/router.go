// ABOUTME: Keyword routing from a query to the sources that should answer it
// ABOUTME: Categories are checked in a fixed priority order; first match wins
package dispatch

import (
	"slices"
	"strings"
	"unicode"
)

// Source names
const (
	SourceTime          = "time"
	SourceWeather       = "weather"
	SourceDate          = "date"
	SourceCalculator    = "calculator"
	SourceNews          = "news"
	SourceWeb           = "web"
	SourceKnowledgeBase = "knowledge_base"

	// SourceLLM is never routed to; callers select it explicitly
	SourceLLM = "llm"
)

// FallbackSources answer queries no category claims
var FallbackSources = []string{SourceWeb, SourceKnowledgeBase}

type route struct {
	source   string
	keywords []string
}

// routes is the priority table: time, weather, date, calculator, news.
// Do not reorder.
var routes = []route{
	{SourceTime, []string{"time", "hour", "clock"}},
	{SourceWeather, []string{"weather", "temperature", "forecast", "rain", "snow", "sunny"}},
	{SourceDate, []string{"date", "day", "today", "tomorrow", "month", "year"}},
	{SourceCalculator, []string{"calculate", "compute", "math", "plus", "minus", "times", "multiplied", "divided"}},
	{SourceNews, []string{"news", "latest", "headlines", "article"}},
}

// Route maps a query to its source set. Keywords match whole words, so
// "5 times 3" is arithmetic rather than a time question.
func Route(query string) []string {
	lower := strings.ToLower(query)
	words := Tokenize(lower)

	for _, r := range routes {
		for _, kw := range r.keywords {
			if slices.Contains(words, kw) {
				return []string{r.source}
			}
		}
		if r.source == SourceCalculator && looksArithmetic(lower) {
			return []string{SourceCalculator}
		}
	}
	return slices.Clone(FallbackSources)
}

// Tokenize splits text into lowercase words of letters and digits
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// looksArithmetic reports an operator symbol next to at least one digit
func looksArithmetic(s string) bool {
	return strings.ContainsAny(s, "+-*/=") && strings.ContainsAny(s, "0123456789")
}
