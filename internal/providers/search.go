// ABOUTME: Simulated web, knowledge base, and news lookups
// ABOUTME: Return canned results shaped like real search APIs
package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/harper/jarvis/internal/dispatch"
)

// Web returns three canned search results for the query
func Web(opts Options) dispatch.Provider {
	return func(ctx context.Context, query string) (dispatch.Result, error) {
		if err := simulate(ctx, opts.Latency); err != nil {
			return nil, err
		}

		q := url.QueryEscape(query)
		results := []map[string]any{
			{
				"title":   fmt.Sprintf("Result 1 for %s", query),
				"url":     "https://example.com/result1?q=" + q,
				"snippet": fmt.Sprintf("This is a sample result for the query '%s'. It contains relevant information...", query),
			},
			{
				"title":   fmt.Sprintf("Result 2 for %s", query),
				"url":     "https://example.com/result2?q=" + q,
				"snippet": fmt.Sprintf("Another sample result with information about '%s'. Click to learn more...", query),
			},
			{
				"title":   fmt.Sprintf("Result 3 for %s", query),
				"url":     "https://example.com/result3?q=" + q,
				"snippet": fmt.Sprintf("A third sample result that might be useful for '%s'. Contains additional details...", query),
			},
		}
		return dispatch.Result{"results": results, "total_results": len(results)}, nil
	}
}

type article struct {
	title   string
	content string
}

var knowledge = map[string]article{
	"what is ai": {
		title:   "Artificial Intelligence",
		content: "Artificial Intelligence (AI) refers to the simulation of human intelligence in machines that are programmed to think like humans and mimic their actions.",
	},
	"who created jarvis": {
		title:   "Jarvis Creation",
		content: "Jarvis was created as an AI assistant project. The name Jarvis was inspired by the fictional AI assistant in the Iron Man movies.",
	},
	"how does voice recognition work": {
		title:   "Voice Recognition Technology",
		content: "Voice recognition works by analyzing the sounds a person makes when speaking and converting them into digital data that can be processed by a computer.",
	},
}

// KnowledgeBase looks the query up in a small built-in knowledge base
func KnowledgeBase(opts Options) dispatch.Provider {
	return func(ctx context.Context, query string) (dispatch.Result, error) {
		if err := simulate(ctx, opts.Latency); err != nil {
			return nil, err
		}

		q := strings.ToLower(strings.TrimSpace(query))
		if q != "" {
			for key, a := range knowledge {
				if strings.Contains(key, q) || strings.Contains(q, key) {
					return dispatch.Result{
						"found":      true,
						"title":      a.title,
						"content":    a.content,
						"confidence": 0.9,
					}, nil
				}
			}
		}
		return dispatch.Result{"found": false, "message": "No information found in knowledge base"}, nil
	}
}

// News returns two canned articles about the query
func News(opts Options) dispatch.Provider {
	return func(ctx context.Context, query string) (dispatch.Result, error) {
		if err := simulate(ctx, opts.Latency); err != nil {
			return nil, err
		}

		today := opts.Now().Format("2006-01-02")
		topic := url.QueryEscape(query)
		articles := []map[string]any{
			{
				"title":          fmt.Sprintf("Breaking News about %s", query),
				"source":         "News Source 1",
				"published_date": today,
				"url":            "https://news-example.com/article1?topic=" + topic,
				"snippet":        fmt.Sprintf("Latest developments regarding %s. Experts weigh in on recent events...", query),
			},
			{
				"title":          fmt.Sprintf("Analysis: The Impact of %s", query),
				"source":         "News Source 2",
				"published_date": today,
				"url":            "https://news-example.com/article2?topic=" + topic,
				"snippet":        fmt.Sprintf("An in-depth analysis of how %s is affecting various sectors...", query),
			},
		}
		return dispatch.Result{"articles": articles, "total_results": len(articles)}, nil
	}
}
