package backend

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/aristath/taskplanner/internal/model"
)

// GeminiAdapter sends prompts to Google's Gemini API.
type GeminiAdapter struct {
	client       *genai.Client
	model        string
	systemPrompt string
}

// NewGeminiAdapter creates the Gemini session. A missing API key is a
// configuration error and is reported before any network traffic.
func NewGeminiAdapter(ctx context.Context, cfg Config) (*GeminiAdapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY not found in environment variables", model.ErrConfiguration)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiAdapter{
		client:       client,
		model:        modelName,
		systemPrompt: cfg.SystemPrompt,
	}, nil
}

// Send issues a single GenerateContent call.
func (a *GeminiAdapter) Send(ctx context.Context, msg Message) (Response, error) {
	var genCfg *genai.GenerateContentConfig
	if a.systemPrompt != "" {
		genCfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(a.systemPrompt, genai.RoleUser),
		}
	}

	result, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(msg.Content), genCfg)
	if err != nil {
		return Response{}, fmt.Errorf("gemini generate content: %w", err)
	}

	return Response{Content: result.Text(), Model: a.model}, nil
}

// Name returns "gemini:<model>".
func (a *GeminiAdapter) Name() string {
	return "gemini:" + a.model
}

// Close is a no-op; the GenAI client holds no resources that need releasing.
func (a *GeminiAdapter) Close() error {
	return nil
}
