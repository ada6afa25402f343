package repositories

import (
	"context"
	"time"

	"teenskill-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// messageRepository implements MessageRepository interface
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create appends a message to a task's log
func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// GetByTaskID gets all messages for a task, oldest first
func (r *messageRepository) GetByTaskID(ctx context.Context, taskID uint) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// HasSystemMessageSince checks whether a system message matching the prefix
// was already appended to the task after the given instant. Keeps the
// reminder sweep from spamming the same task every run.
func (r *messageRepository) HasSystemMessageSince(ctx context.Context, taskID uint, contentPrefix string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("task_id = ?", taskID).
		Where("content LIKE ?", contentPrefix+"%").
		Where("created_at >= ?", since).
		Count(&count).Error
	return count > 0, err
}
