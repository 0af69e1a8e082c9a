package ledger

import (
	"time"

	"github.com/srujan5570/Communications-App/internal/domain"
)

// MessageModel is the GORM model for messages.
type MessageModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	SenderID   string    `gorm:"type:varchar(64);not null;index:idx_messages_pair,priority:1"`
	ReceiverID string    `gorm:"type:varchar(64);not null;index:idx_messages_pair,priority:2"`
	Content    string    `gorm:"type:text;not null"`
	Status     string    `gorm:"type:varchar(16);not null;default:sent"`
	CreatedAt  time.Time `gorm:"not null;index"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM.
func (MessageModel) TableName() string {
	return "messages"
}

// ToDomain converts a MessageModel to domain.Message.
func (m *MessageModel) ToDomain() *domain.Message {
	return &domain.Message{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Status:     domain.MessageStatus(m.Status),
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}
