package kafka

import (
	"context"

	"github.com/srujan5570/Communications-App/internal/domain"
)

// EventProducer publishes message lifecycle events.
type EventProducer interface {
	ProduceEvent(ctx context.Context, event *domain.MessageEvent) error
	Close() error
}
