// ABOUTME: Renders dispatcher responses as a single spoken reply
// ABOUTME: Sources are consulted in a fixed priority order
package core

import (
	"fmt"

	"github.com/harper/jarvis/internal/dispatch"
)

// Canned replies
const (
	ReplyUnknownCommand = "I'm not sure how to help with that. Could you please rephrase?"
	ReplyNoAnswer       = "I'm searching for information on that, but I don't have a specific answer yet."
	ReplyUnknownTask    = "I'm not sure which task you want me to perform."
)

// FormatResponse picks the highest-priority source that answered and turns
// it into a sentence
func FormatResponse(resp *dispatch.Response) string {
	if resp == nil {
		return ReplyNoAnswer
	}

	if data, ok := resp.Data(dispatch.SourceWeather); ok {
		current, _ := data["current"].(map[string]any)
		return fmt.Sprintf("The weather in %s is currently %s with a temperature of %s.",
			strOr(data["location"], "your location"), strOr(current["condition"], "unknown"),
			strOr(current["temperature"], "unknown"))
	}

	if data, ok := resp.Data(dispatch.SourceTime); ok {
		t := strOr(data["current_time_12h"], str(data["current_time"]))
		return fmt.Sprintf("The current time is %s.", strOr(t, "unknown"))
	}

	if data, ok := resp.Data(dispatch.SourceDate); ok {
		date := strOr(data["formatted_date"], "unknown")
		if day := str(data["day_of_week"]); day != "" {
			return fmt.Sprintf("Today is %s, %s.", day, date)
		}
		return fmt.Sprintf("Today is %s.", date)
	}

	if data, ok := resp.Data(dispatch.SourceCalculator); ok {
		if success, _ := data["success"].(bool); success {
			return fmt.Sprintf("The result of %s is %s.", strOr(data["expression"], "that"),
				strOr(data["formatted_result"], strOr(data["result"], "unknown")))
		}
		return "I couldn't calculate that. Please try again."
	}

	if data, ok := resp.Data(dispatch.SourceLLM); ok {
		if answer := str(data["answer"]); answer != "" {
			return answer
		}
	}

	if data, ok := resp.Data(dispatch.SourceWeb); ok {
		if first, ok := firstResult(data["results"]); ok {
			return fmt.Sprintf("I found this on the web: %s - %s", str(first["title"]), str(first["snippet"]))
		}
		return "I couldn't find any information about that on the web."
	}

	if data, ok := resp.Data(dispatch.SourceKnowledgeBase); ok {
		if found, _ := data["found"].(bool); found {
			return str(data["content"])
		}
		return "I don't have that information in my knowledge base."
	}

	return ReplyNoAnswer
}

func firstResult(v any) (map[string]any, bool) {
	switch list := v.(type) {
	case []map[string]any:
		if len(list) > 0 {
			return list[0], true
		}
	case []any:
		if len(list) > 0 {
			m, ok := list[0].(map[string]any)
			return m, ok
		}
	}
	return nil, false
}

func str(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// strOr is str with a fallback for missing or empty values
func strOr(v any, def string) string {
	if s := str(v); s != "" {
		return s
	}
	return def
}
