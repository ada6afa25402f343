package repositories

import (
	"context"
	"time"

	"teenskill-api/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// TaskRepository defines task repository interface. The state-changing
// methods (Take, Submit, Complete, DeleteOpen) are conditional writes:
// they return ErrStateConflict when the task was not in the expected
// prior status.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uint) (*models.Task, error)
	ListOpen(ctx context.Context, offset, limit int) ([]*models.Task, int64, error)
	ListByClient(ctx context.Context, clientID uint) ([]*models.Task, error)
	ListByFreelancer(ctx context.Context, freelancerID uint) ([]*models.Task, error)
	ListSubmittedBefore(ctx context.Context, cutoff time.Time) ([]*models.Task, error)
	CountTakenSince(ctx context.Context, freelancerID uint, since time.Time) (int64, error)
	CountByFreelancerAndStatus(ctx context.Context, freelancerID uint, status string) (int64, error)
	CountByClientAndStatus(ctx context.Context, clientID uint, status string) (int64, error)
	Take(ctx context.Context, taskID, freelancerID uint, quota int, windowStart, takenAt time.Time) error
	Submit(ctx context.Context, taskID, freelancerID uint, submissionURL, submissionNote string) error
	Complete(ctx context.Context, taskID, freelancerID uint, budget, xpReward int64) error
	DeleteOpen(ctx context.Context, taskID, clientID uint) error
}

// MessageRepository defines message repository interface (append-only)
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByTaskID(ctx context.Context, taskID uint) ([]*models.Message, error)
	HasSystemMessageSince(ctx context.Context, taskID uint, contentPrefix string, since time.Time) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}
