// ABOUTME: Command classification into task, query, or unknown
// ABOUTME: KeywordClassifier matches task phrases before interrogatives
package core

import (
	"slices"
	"strings"

	"github.com/harper/jarvis/internal/dispatch"
)

// Kind is the classified intent of a command
type Kind string

const (
	KindTask    Kind = "task"
	KindQuery   Kind = "query"
	KindUnknown Kind = "unknown"
)

// Classification is the classifier's verdict
type Classification struct {
	Kind    Kind
	Command string // normalized (lowercased, trimmed) command
}

// Classifier decides what kind of command some recognized text is
type Classifier interface {
	Classify(text string) Classification
}

// KeywordClassifier treats turn on/off, set, play, and routine requests as
// tasks and what/who/when/where/how/why questions as queries
type KeywordClassifier struct{}

var (
	taskPhrases   = [][]string{{"turn", "on"}, {"turn", "off"}, {"set"}, {"play"}, {"routine"}}
	interrogative = []string{"what", "who", "when", "where", "how", "why"}
)

// Classify implements Classifier
func (KeywordClassifier) Classify(text string) Classification {
	command := strings.ToLower(strings.TrimSpace(text))
	words := dispatch.Tokenize(command)

	for _, phrase := range taskPhrases {
		if containsPhrase(words, phrase) {
			return Classification{Kind: KindTask, Command: command}
		}
	}
	for _, w := range interrogative {
		if slices.Contains(words, w) {
			return Classification{Kind: KindQuery, Command: command}
		}
	}
	return Classification{Kind: KindUnknown, Command: command}
}

// containsPhrase reports whether phrase appears as consecutive words
func containsPhrase(words, phrase []string) bool {
	for i := 0; i+len(phrase) <= len(words); i++ {
		if slices.Equal(words[i:i+len(phrase)], phrase) {
			return true
		}
	}
	return false
}
