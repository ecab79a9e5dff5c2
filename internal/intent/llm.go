package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"siipcoffee/internal/models"
)

// LLMProvider answers chat turns with a language model instead of the
// remote NLP backend. It fills the same Provider seam as the keyword
// fallback, so swapping understanding strategies never touches cart or
// checkout code.
type LLMProvider struct {
	model   llms.Model
	catalog models.Catalog
}

// NewLLMProvider initializes an OpenAI-backed provider.
func NewLLMProvider(apiKey, modelName string, catalog models.Catalog) (*LLMProvider, error) {
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	llm, err := openai.New(
		openai.WithModel(modelName),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}
	return &LLMProvider{model: llm, catalog: catalog}, nil
}

// NewLLMProviderWithModel wraps an existing model, used by tests.
func NewLLMProviderWithModel(model llms.Model, catalog models.Catalog) *LLMProvider {
	return &LLMProvider{model: model, catalog: catalog}
}

// Reply prompts the model with the menu and the user message and decodes
// the answer. A JSON answer is decoded into the structured reply shape; a
// natural-language answer degrades to plain text with no intent.
func (p *LLMProvider) Reply(ctx context.Context, userID, message string) (*models.ChatReply, error) {
	prompt := p.buildPrompt(message)

	text, err := llms.GenerateFromSinglePrompt(ctx, p.model, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm generation failed: %w", err)
	}

	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var structured struct {
		Message     string              `json:"message"`
		Intent      string              `json:"intent"`
		OrderIntent *models.OrderIntent `json:"order_intent,omitempty"`
	}
	if err := json.Unmarshal([]byte(text), &structured); err == nil && structured.Message != "" {
		return &models.ChatReply{
			Response:    structured.Message,
			Intent:      structured.Intent,
			OrderIntent: structured.OrderIntent,
		}, nil
	}

	return &models.ChatReply{Response: text, Intent: IntentGeneral}, nil
}

func (p *LLMProvider) buildPrompt(message string) string {
	menuJSON, _ := json.Marshal(p.catalog)

	return fmt.Sprintf(`You are the AI barista for SiipCoffee. The menu, as JSON keyed by category:

%s

Reply to the customer message below. Respond ONLY with a JSON object:
{
  "message": "text shown to the customer",
  "intent": "greeting|view_menu|category_recommendation|ask_price|create_order|general",
  "order_intent": {
    "action": "create_order",
    "items": [{"menu_id": "...", "name": "...", "price": 0, "quantity": 1, "notes": ""}]
  }
}
Include order_intent only when the customer clearly orders specific items,
and copy menu_id, name and price exactly from the menu.

Customer: %s`, menuJSON, message)
}
