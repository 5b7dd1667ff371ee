// Package classify requests category suggestions for flagged
// transactions from an external model, best-effort only.
package classify

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// SuggestionUnavailable is the sentinel carried by flagged transactions
// when no suggestion could be obtained: the adapter was not configured,
// the request failed, or it timed out.
const SuggestionUnavailable = "No AI suggestion available."

// DefaultModelName is the model used for classification requests.
const DefaultModelName = "gemini-2.5-flash"

// Suggester returns a free-text category suggestion for one statement
// narration.
type Suggester interface {
	Suggest(ctx context.Context, narration string) (string, error)
}

// SuggesterFunc adapts a function to the Suggester interface.
type SuggesterFunc func(ctx context.Context, narration string) (string, error)

// Suggest implements the Suggester interface.
func (f SuggesterFunc) Suggest(ctx context.Context, narration string) (string, error) {
	return f(ctx, narration)
}

// GeminiSuggester asks Gemini to classify a narration. Credentials come
// from the environment (GEMINI_API_KEY, or the Vertex variables when
// GOOGLE_GENAI_USE_VERTEXAI is set).
type GeminiSuggester struct {
	client *genai.Client
	model  string
}

// NewGeminiSuggester creates a Gemini-backed suggester.
func NewGeminiSuggester(ctx context.Context) (*GeminiSuggester, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiSuggester: create genai client: %w", err)
	}
	return &GeminiSuggester{client: client, model: DefaultModelName}, nil
}

// Suggest implements the Suggester interface.
func (s *GeminiSuggester) Suggest(ctx context.Context, narration string) (string, error) {
	prompt :=
		"You are a financial statement classification expert.\n\n" +
			fmt.Sprintf("Classify this bank statement entry: %q. ", narration) +
			"Is it income, expense, transfer, or other? " +
			"Start your answer with the single best category word, then give a brief explanation."

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Suggest: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("Suggest: empty response from model")
	}
	return text, nil
}
