package repositories

import (
	"context"
	"errors"
	"time"

	"teenskill-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository-level conflict signals. Services translate these into their
// own user-facing errors.
var (
	// ErrStateConflict means a conditional write matched zero rows: the task
	// was no longer in the expected prior status (double-accept, double-pay).
	ErrStateConflict = errors.New("task not in expected status")
	// ErrQuotaReached means the weekly acceptance quota was already used up
	// at the moment of the accept transaction.
	ErrQuotaReached = errors.New("weekly task quota reached")
)

// taskRepository implements TaskRepository interface
type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create creates a new task
func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID gets a task by ID with relations
func (r *taskRepository) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Freelancer").
		First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListOpen lists open tasks, newest first
func (r *taskRepository) ListOpen(ctx context.Context, offset, limit int) ([]*models.Task, int64, error) {
	var tasks []*models.Task
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("status = ?", models.TaskStatusOpen).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("status = ?", models.TaskStatusOpen).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&tasks).Error

	return tasks, total, err
}

// ListByClient lists tasks posted by a client, newest first
func (r *taskRepository) ListByClient(ctx context.Context, clientID uint) ([]*models.Task, error) {
	var tasks []*models.Task
	err := r.db.WithContext(ctx).
		Preload("Freelancer").
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

// ListByFreelancer lists tasks assigned to a freelancer, newest first
func (r *taskRepository) ListByFreelancer(ctx context.Context, freelancerID uint) ([]*models.Task, error) {
	var tasks []*models.Task
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("freelancer_id = ?", freelancerID).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

// CountTakenSince counts tasks a freelancer accepted at or after the given
// instant. Used for the rolling weekly quota window.
func (r *taskRepository) CountTakenSince(ctx context.Context, freelancerID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("freelancer_id = ?", freelancerID).
		Where("taken_at >= ?", since).
		Count(&count).Error
	return count, err
}

// Take accepts an open task for a freelancer. The freelancer's row is read
// FOR UPDATE before counting, which serializes accepts per freelancer:
// without the lock, two transactions accepting different tasks each count
// against a pre-accept snapshot and both commit past the quota. Returns
// ErrQuotaReached or ErrStateConflict.
func (r *taskRepository) Take(ctx context.Context, taskID, freelancerID uint, quota int, windowStart, takenAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var freelancer models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&freelancer, freelancerID).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Task{}).
			Where("freelancer_id = ?", freelancerID).
			Where("taken_at >= ?", windowStart).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(quota) {
			return ErrQuotaReached
		}

		res := tx.Model(&models.Task{}).
			Where("id = ? AND status = ? AND freelancer_id IS NULL", taskID, models.PriorStatus(models.TaskStatusTaken)).
			Updates(map[string]interface{}{
				"status":        models.TaskStatusTaken,
				"freelancer_id": freelancerID,
				"taken_at":      takenAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStateConflict
		}
		return nil
	})
}

// Submit records the freelancer's work on a taken task. Conditional on the
// task still being taken by this freelancer.
func (r *taskRepository) Submit(ctx context.Context, taskID, freelancerID uint, submissionURL, submissionNote string) error {
	res := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND status = ? AND freelancer_id = ?", taskID, models.PriorStatus(models.TaskStatusSubmitted), freelancerID).
		Updates(map[string]interface{}{
			"status":          models.TaskStatusSubmitted,
			"submission_url":  submissionURL,
			"submission_note": submissionNote,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}

// Complete marks a submitted task completed and credits the freelancer's
// balance and XP in the same transaction. A task that is not in submitted
// status is a conflict, which is what makes a second pay attempt a no-credit.
func (r *taskRepository) Complete(ctx context.Context, taskID, freelancerID uint, budget, xpReward int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Task{}).
			Where("id = ? AND status = ?", taskID, models.PriorStatus(models.TaskStatusCompleted)).
			Update("status", models.TaskStatusCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStateConflict
		}

		return tx.Model(&models.User{}).
			Where("id = ?", freelancerID).
			Updates(map[string]interface{}{
				"balance": gorm.Expr("balance + ?", budget),
				"xp":      gorm.Expr("xp + ?", xpReward),
			}).Error
	})
}

// DeleteOpen physically deletes a client's own task while it is still open
func (r *taskRepository) DeleteOpen(ctx context.Context, taskID, clientID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND client_id = ? AND status = ?", taskID, clientID, models.TaskStatusOpen).
		Delete(&models.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}

// ListSubmittedBefore lists tasks sitting in submitted status since before
// the cutoff. Used by the payment reminder sweep.
func (r *taskRepository) ListSubmittedBefore(ctx context.Context, cutoff time.Time) ([]*models.Task, error) {
	var tasks []*models.Task
	err := r.db.WithContext(ctx).
		Where("status = ?", models.TaskStatusSubmitted).
		Where("updated_at < ?", cutoff).
		Find(&tasks).Error
	return tasks, err
}

// CountByFreelancerAndStatus counts a freelancer's tasks in a given status
func (r *taskRepository) CountByFreelancerAndStatus(ctx context.Context, freelancerID uint, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("freelancer_id = ? AND status = ?", freelancerID, status).
		Count(&count).Error
	return count, err
}

// CountByClientAndStatus counts a client's tasks in a given status
func (r *taskRepository) CountByClientAndStatus(ctx context.Context, clientID uint, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("client_id = ? AND status = ?", clientID, status).
		Count(&count).Error
	return count, err
}
