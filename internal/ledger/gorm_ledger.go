package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/srujan5570/Communications-App/internal/domain"
	"github.com/srujan5570/Communications-App/internal/metrics"
	"github.com/srujan5570/Communications-App/pkg/database"
	"github.com/srujan5570/Communications-App/pkg/log"
)

// GormLedger implements Ledger using GORM.
type GormLedger struct {
	db *gorm.DB
}

// NewGormLedger creates a ledger over db and migrates the messages table.
func NewGormLedger(db *gorm.DB) (*GormLedger, error) {
	if err := database.AutoMigrate(db, &MessageModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate messages table: %w", err)
	}
	return &GormLedger{db: db}, nil
}

func observe(op string, start time.Time) {
	metrics.LedgerDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Append stores a new message with status sent.
func (r *GormLedger) Append(ctx context.Context, senderID, receiverID, content string) (*domain.Message, error) {
	defer observe("append", time.Now())
	l := log.Ctx(ctx)

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	now := time.Now().UTC()
	model := &MessageModel{
		ID:         id.String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Status:     string(domain.StatusSent),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Str(log.FieldTargetID, receiverID).Msg("failed to append message")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	l.Debug().Str(log.FieldMessageID, model.ID).Msg("message appended")
	return model.ToDomain(), nil
}

// UpdateStatus moves a message forward to status inside one transaction.
func (r *GormLedger) UpdateStatus(ctx context.Context, messageID string, status domain.MessageStatus) (*domain.Message, error) {
	defer observe("update_status", time.Now())
	l := log.Ctx(ctx)

	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var model MessageModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		below := make([]string, 0, 2)
		for _, s := range domain.Below(status) {
			below = append(below, string(s))
		}
		if len(below) > 0 {
			res := tx.Model(&MessageModel{}).
				Where("id = ? AND status IN ?", messageID, below).
				Updates(map[string]interface{}{
					"status":     string(status),
					"updated_at": time.Now().UTC(),
				})
			if res.Error != nil {
				return res.Error
			}
		}
		return tx.First(&model, "id = ?", messageID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		l.Error().Err(err).Str(log.FieldMessageID, messageID).Msg("failed to update message status")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return model.ToDomain(), nil
}

// FindConversation returns the messages exchanged between two users, oldest first.
func (r *GormLedger) FindConversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	defer observe("find_conversation", time.Now())
	l := log.Ctx(ctx)

	var models []MessageModel
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", userA, userB, userB, userA).
		Order("created_at ASC").
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userA).Str(log.FieldTargetID, userB).Msg("failed to load conversation")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	messages := make([]domain.Message, len(models))
	for i := range models {
		messages[i] = *models[i].ToDomain()
	}
	return messages, nil
}

// FindByID retrieves a message by ID.
func (r *GormLedger) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	defer observe("find_by_id", time.Now())

	var model MessageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return model.ToDomain(), nil
}

// Close closes the underlying connection pool.
func (r *GormLedger) Close() error {
	return database.Close(r.db)
}
