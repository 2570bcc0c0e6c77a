// ABOUTME: Exposes the OpenAI client as a dispatcher provider
// ABOUTME: Registered as the "llm" source only when an API key is configured
package llm

import (
	"context"

	"github.com/harper/jarvis/internal/dispatch"
)

// SourceName is the dispatcher source the LLM answers under
const SourceName = dispatch.SourceLLM

// Provider answers free-form queries through the model
func (c *OpenAIClient) Provider() dispatch.Provider {
	return func(ctx context.Context, query string) (dispatch.Result, error) {
		answer, err := c.Answer(ctx, query)
		if err != nil {
			return nil, err
		}
		return dispatch.Result{
			"answer": answer,
			"model":  c.chatModel,
		}, nil
	}
}
