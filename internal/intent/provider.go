package intent

import (
	"context"

	"siipcoffee/internal/models"
)

// Provider turns an inbound user message into a chat reply. The remote NLP
// backend, the local keyword classifier, and the LLM provider all satisfy
// it, so a real NLU backend can supersede the fallback without touching the
// cart or checkout code.
type Provider interface {
	Reply(ctx context.Context, userID, message string) (*models.ChatReply, error)
}
