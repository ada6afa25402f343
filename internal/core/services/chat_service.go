package services

import (
	"context"
	"errors"
	"strings"

	"teenskill-api/internal/adapters/persistence/models"
	"teenskill-api/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

var (
	ErrNotTaskParticipant = errors.New("only the task's client and freelancer can access its chat")
	ErrEmptyMessage       = errors.New("message content is required")
	ErrReservedPrefix     = errors.New("message uses a reserved prefix")
)

// ChatService handles the per-task message log. The log is append-only:
// there is no edit or delete, and engine notices live in the same stream
// marked with the system prefix.
type ChatService struct {
	messageRepo repositories.MessageRepository
	taskRepo    repositories.TaskRepository
}

// NewChatService creates a new chat service
func NewChatService(messageRepo repositories.MessageRepository, taskRepo repositories.TaskRepository) *ChatService {
	return &ChatService{
		messageRepo: messageRepo,
		taskRepo:    taskRepo,
	}
}

// SendMessageInput represents send message input
type SendMessageInput struct {
	Content string `json:"content" validate:"required"`
}

// Send appends a message to a task's log. Only the task's client and its
// assigned freelancer may write, and the system prefix is reserved for
// engine-generated notices.
func (s *ChatService) Send(ctx context.Context, userID, taskID uint, input *SendMessageInput) (*models.Message, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrEmptyMessage
	}
	if strings.HasPrefix(input.Content, strings.TrimSpace(models.SystemMessagePrefix)) {
		return nil, ErrReservedPrefix
	}

	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(task, userID) {
		return nil, ErrNotTaskParticipant
	}

	message := &models.Message{
		TaskID:   taskID,
		SenderID: userID,
		Content:  input.Content,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}

// History returns a task's messages, oldest first
func (s *ChatService) History(ctx context.Context, userID, taskID uint) ([]*models.Message, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(task, userID) {
		return nil, ErrNotTaskParticipant
	}

	return s.messageRepo.GetByTaskID(ctx, taskID)
}

func (s *ChatService) getTask(ctx context.Context, taskID uint) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func isParticipant(task *models.Task, userID uint) bool {
	if task.ClientID == userID {
		return true
	}
	return task.FreelancerID != nil && *task.FreelancerID == userID
}
