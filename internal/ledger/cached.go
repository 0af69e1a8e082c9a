package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/srujan5570/Communications-App/internal/cache"
	"github.com/srujan5570/Communications-App/internal/domain"
	"github.com/srujan5570/Communications-App/pkg/log"
)

// CachedLedger serves conversation histories from a cache and drops the
// cached copy whenever a message in that conversation changes.
type CachedLedger struct {
	Ledger
	cache cache.ConversationCache
	ttl   time.Duration
	sf    singleflight.Group
}

// NewCachedLedger wraps inner with a conversation cache.
func NewCachedLedger(inner Ledger, c cache.ConversationCache, ttl time.Duration) *CachedLedger {
	return &CachedLedger{
		Ledger: inner,
		cache:  c,
		ttl:    ttl,
	}
}

func (r *CachedLedger) Append(ctx context.Context, senderID, receiverID, content string) (*domain.Message, error) {
	msg, err := r.Ledger.Append(ctx, senderID, receiverID, content)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, msg.SenderID, msg.ReceiverID)
	return msg, nil
}

func (r *CachedLedger) UpdateStatus(ctx context.Context, messageID string, status domain.MessageStatus) (*domain.Message, error) {
	msg, err := r.Ledger.UpdateStatus(ctx, messageID, status)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, msg.SenderID, msg.ReceiverID)
	return msg, nil
}

func (r *CachedLedger) FindConversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	key := r.cache.BuildKey(userA, userB)

	// Use singleflight to prevent duplicate loads for the same conversation
	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		return r.fetchWithCache(ctx, userA, userB, key)
	})
	if err != nil {
		return nil, err
	}

	messages, ok := result.([]domain.Message)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from singleflight")
	}
	return messages, nil
}

func (r *CachedLedger) fetchWithCache(ctx context.Context, userA, userB, key string) ([]domain.Message, error) {
	l := log.Ctx(ctx)

	cached, err := r.cache.Get(ctx, key)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		// Log error but continue to fetch from DB
		l.Warn().Err(err).Msg("cache get error")
	}

	messages, err := r.Ledger.FindConversation(ctx, userA, userB)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, messages, r.ttl); err != nil {
		l.Warn().Err(err).Msg("cache set error")
	}
	return messages, nil
}

func (r *CachedLedger) invalidate(ctx context.Context, userA, userB string) {
	if err := r.cache.Delete(ctx, r.cache.BuildKey(userA, userB)); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("cache invalidate error")
	}
}

func (r *CachedLedger) Close() error {
	cacheErr := r.cache.Close()
	if err := r.Ledger.Close(); err != nil {
		return err
	}
	return cacheErr
}
