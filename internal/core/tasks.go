// ABOUTME: Maps task commands to executor operations or routines
// ABOUTME: Extracts rooms, genres, and reminder times from the command text
package core

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/harper/jarvis/internal/automation"
	"github.com/harper/jarvis/internal/dispatch"
)

// TaskPlan is what a task command resolves to. Exactly one of Operation
// or Routine is set.
type TaskPlan struct {
	Operation string
	Params    automation.Params
	Routine   string
	Reply     string // spoken once the launch is acknowledged
}

// TaskMapper turns a task command into a plan
type TaskMapper interface {
	Map(command string, routines []string) (TaskPlan, bool)
}

// KeywordTaskMapper recognizes the built-in operations and routine names
type KeywordTaskMapper struct {
	DefaultRoom  string
	DefaultGenre string
	MusicSource  string
}

// DefaultTaskMapper returns a mapper with living room / relaxing / spotify defaults
func DefaultTaskMapper() KeywordTaskMapper {
	return KeywordTaskMapper{DefaultRoom: "living room", DefaultGenre: "relaxing", MusicSource: "spotify"}
}

var (
	rooms      = []string{"living room", "dining room", "bedroom", "kitchen", "bathroom", "office", "garage", "hallway", "all"}
	genres     = []string{"relaxing", "upbeat", "jazz", "classical", "rock", "pop", "ambient", "blues"}
	clockTime  = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	lightWords = []string{"light", "lights", "lamp", "lamps"}
)

// Map implements TaskMapper
func (m KeywordTaskMapper) Map(command string, routines []string) (TaskPlan, bool) {
	words := dispatch.Tokenize(command)

	if slices.Contains(words, "routine") {
		for _, name := range routines {
			if slices.Contains(words, strings.ToLower(name)) {
				return TaskPlan{Routine: name, Reply: "Starting the " + name + " routine."}, true
			}
		}
	}

	lights := slices.ContainsFunc(lightWords, func(w string) bool { return slices.Contains(words, w) })
	switch {
	case lights && containsPhrase(words, []string{"turn", "on"}):
		room := m.room(words)
		return TaskPlan{
			Operation: automation.OpTurnOnLights,
			Params:    automation.Params{"room": room},
			Reply:     "I've turned on the lights in the " + room + ".",
		}, true

	case lights && containsPhrase(words, []string{"turn", "off"}):
		room := m.room(words)
		return TaskPlan{
			Operation: automation.OpTurnOffLights,
			Params:    automation.Params{"room": room},
			Reply:     "I've turned off the lights in the " + room + ".",
		}, true

	case slices.Contains(words, "set") && slices.Contains(words, "reminder"):
		at := reminderTime(command)
		return TaskPlan{
			Operation: automation.OpSetReminder,
			Params:    automation.Params{"message": "User reminder", "time": at},
			Reply:     "I've set a reminder for " + spokenTime(at) + ".",
		}, true

	case slices.Contains(words, "play") && slices.Contains(words, "music"):
		genre := m.DefaultGenre
		for _, g := range genres {
			if slices.Contains(words, g) {
				genre = g
				break
			}
		}
		return TaskPlan{
			Operation: automation.OpPlayMusic,
			Params:    automation.Params{"genre": genre, "source": m.MusicSource},
			Reply:     "Playing some " + genre + " music from " + titleCase(m.MusicSource) + ".",
		}, true
	}

	return TaskPlan{}, false
}

// room returns the first known room named as a whole word or phrase
func (m KeywordTaskMapper) room(words []string) string {
	for _, r := range rooms {
		if containsPhrase(words, strings.Fields(r)) {
			return r
		}
	}
	return m.DefaultRoom
}

// reminderTime returns a 24h HH:MM time found in the command, or 18:00
func reminderTime(command string) string {
	match := clockTime.FindStringSubmatch(command)
	if match == nil {
		return "18:00"
	}

	layout, value := "15", match[1]
	if match[2] != "" {
		layout, value = "15:04", match[1]+":"+match[2]
	}
	if match[3] != "" {
		layout = strings.Replace(layout, "15", "3", 1) + "pm"
		value += match[3]
	}

	t, err := time.Parse(layout, value)
	if err != nil {
		return "18:00"
	}
	return t.Format("15:04")
}

// spokenTime renders "18:00" as "6:00 PM"
func spokenTime(hhmm string) string {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format("3:04 PM")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
