// ABOUTME: Export functionality for assistant data
// ABOUTME: Supports YAML and Markdown export formats
package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/jarvis/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the complete exportable data structure
type ExportData struct {
	Version       string                     `yaml:"version" json:"version"`
	ExportedAt    string                     `yaml:"exported_at" json:"exported_at"`
	Tool          string                     `yaml:"tool" json:"tool"`
	Preferences   []models.Preference        `yaml:"preferences,omitempty" json:"preferences,omitempty"`
	Visitors      []models.Visitor           `yaml:"visitors,omitempty" json:"visitors,omitempty"`
	Conversations []models.ConversationEntry `yaml:"conversations,omitempty" json:"conversations,omitempty"`
	Events        []models.Event             `yaml:"events,omitempty" json:"events,omitempty"`
}

// Export exports all data from storage. Conversations and events are
// returned oldest first so the export reads chronologically.
func (s *Storage) Export() (*ExportData, error) {
	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       "jarvis",
	}

	prefs, err := s.Preferences.ListByCategory("")
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	data.Preferences = prefs

	visitors, err := s.Visitors.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list visitors: %w", err)
	}
	data.Visitors = visitors

	entries, err := s.Conversations.History(0, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	data.Conversations = reversed(entries)

	events, err := s.Events.List("", 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	data.Events = reversed(events)

	return data, nil
}

// ExportToYAML exports data to a YAML file
func (s *Storage) ExportToYAML(outputPath string) error {
	data, err := s.Export()
	if err != nil {
		return err
	}

	file, err := createOutput(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

// ExportToMarkdown exports data to a Markdown file
func (s *Storage) ExportToMarkdown(outputPath string) error {
	data, err := s.Export()
	if err != nil {
		return err
	}

	file, err := createOutput(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	_, _ = fmt.Fprintf(file, "# Jarvis Export - %s\n\n", time.Now().Format("2006-01-02"))
	_, _ = fmt.Fprintf(file, "Generated: %s\n\n", data.ExportedAt)

	if len(data.Preferences) > 0 {
		_, _ = fmt.Fprintln(file, "## Preferences")
		_, _ = fmt.Fprintln(file)
		_, _ = fmt.Fprintln(file, "| Category | Key | Value |")
		_, _ = fmt.Fprintln(file, "|----------|-----|-------|")
		for _, pref := range data.Preferences {
			_, _ = fmt.Fprintf(file, "| %s | %s | %v |\n", pref.Category, pref.Key, pref.Value)
		}
		_, _ = fmt.Fprintln(file)
	}

	if len(data.Visitors) > 0 {
		_, _ = fmt.Fprintln(file, "## Visitors")
		_, _ = fmt.Fprintln(file)
		_, _ = fmt.Fprintln(file, "| ID | Name | Known | Visits | Last Seen |")
		_, _ = fmt.Fprintln(file, "|----|------|-------|--------|-----------|")
		for _, v := range data.Visitors {
			_, _ = fmt.Fprintf(file, "| %d | %s | %t | %d | %s |\n",
				v.ID, v.Name, v.Known, v.VisitCount, v.LastSeen.Format(time.RFC3339))
		}
		_, _ = fmt.Fprintln(file)
	}

	if len(data.Conversations) > 0 {
		_, _ = fmt.Fprintln(file, "## Conversations")
		_, _ = fmt.Fprintln(file)
		for _, entry := range data.Conversations {
			speaker := "User"
			if entry.Speaker == models.SpeakerAssistant {
				speaker = "Jarvis"
			} else if entry.VisitorName != "" {
				speaker = entry.VisitorName
			}
			_, _ = fmt.Fprintf(file, "**%s:** %s\n\n", speaker, entry.Message)
		}
	}

	if len(data.Events) > 0 {
		_, _ = fmt.Fprintln(file, "## Events")
		_, _ = fmt.Fprintln(file)
		for _, ev := range data.Events {
			_, _ = fmt.Fprintf(file, "- `%s` %s: %s\n",
				ev.Timestamp.Format(time.RFC3339), ev.Type, strings.TrimSpace(ev.Description))
		}
		_, _ = fmt.Fprintln(file)
	}

	return nil
}

func createOutput(outputPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, nil
}

func reversed[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
