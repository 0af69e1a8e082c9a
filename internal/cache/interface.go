package cache

import (
	"context"
	"time"

	"github.com/srujan5570/Communications-App/internal/domain"
)

// ConversationCache stores conversation histories keyed by user pair.
type ConversationCache interface {
	Get(ctx context.Context, key string) ([]domain.Message, error)
	Set(ctx context.Context, key string, messages []domain.Message, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	BuildKey(userA, userB string) string
	Close() error
}
