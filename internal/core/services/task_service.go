package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"teenskill-api/internal/adapters/persistence/models"
	"teenskill-api/internal/adapters/persistence/repositories"
	"teenskill-api/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task lifecycle errors. Each guard has its own sentinel so the UI can
// render an accurate message.
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrNotAClient         = errors.New("only clients can perform this action")
	ErrNotAFreelancer     = errors.New("only freelancers can perform this action")
	ErrNotTaskOwner       = errors.New("task belongs to another client")
	ErrNotAssignee        = errors.New("task is assigned to another freelancer")
	ErrPaymentSetupNeeded = errors.New("payment details must be set up first")
	ErrQuotaExhausted     = errors.New("weekly task quota exhausted")
	ErrWrongParentalCode  = errors.New("wrong parental code")
	ErrTaskConflict       = errors.New("task is no longer in the expected status")
	ErrTaskNotAssigned    = errors.New("task has no assigned freelancer")
	ErrInvalidTaskInput   = errors.New("title, description and a positive budget are required")
	ErrInvalidRole        = errors.New("unknown role")
)

// QuotaWindow is the rolling lookback for the weekly acceptance quota.
// It is a 7-day window from the current instant, not a calendar week.
const QuotaWindow = 7 * 24 * time.Hour

// TaskService owns the task state machine, the transition guards and the
// completion side effects.
type TaskService struct {
	taskRepo     repositories.TaskRepository
	userRepo     repositories.UserRepository
	messageRepo  repositories.MessageRepository
	completionXP int64
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo repositories.TaskRepository,
	userRepo repositories.UserRepository,
	messageRepo repositories.MessageRepository,
	completionXP int64,
) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		userRepo:     userRepo,
		messageRepo:  messageRepo,
		completionXP: completionXP,
	}
}

// CreateTaskInput represents create task input
type CreateTaskInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Budget      int64  `json:"budget" validate:"required,gt=0"`
	Deadline    string `json:"deadline,omitempty"`
}

// Create creates a new open task for a client. Safety screening is advisory
// and happens before this call (see SafetyService); the engine does not
// re-validate the verdict.
func (s *TaskService) Create(ctx context.Context, clientID uint, input *CreateTaskInput) (*models.Task, error) {
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !client.IsClient() {
		return nil, ErrNotAClient
	}

	if input.Title == "" || input.Description == "" || input.Budget <= 0 {
		return nil, ErrInvalidTaskInput
	}

	task := &models.Task{
		PublicID:    uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Budget:      input.Budget,
		Status:      models.TaskStatusOpen,
		ClientID:    clientID,
	}
	if input.Deadline != "" {
		task.Deadline = &input.Deadline
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	log.Printf("✅ Task created: #%d %q (client: %d, budget: %d)", task.ID, task.Title, clientID, task.Budget)

	return task, nil
}

// Delete removes a client's own task. Only open tasks can be deleted; an
// accepted task already has a freelancer working on it.
func (s *TaskService) Delete(ctx context.Context, clientID, taskID uint) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	if task.ClientID != clientID {
		return ErrNotTaskOwner
	}

	if err := s.taskRepo.DeleteOpen(ctx, taskID, clientID); err != nil {
		if errors.Is(err, repositories.ErrStateConflict) {
			return ErrTaskConflict
		}
		return err
	}

	return nil
}

// Take accepts an open task for a freelancer. Guards are evaluated in
// order, first failure wins:
//  1. caller must be a freelancer
//  2. payout details must be set
//  3. rolling 7-day quota must not be exhausted
//  4. parental code must match
//  5. the task must still be open (conflict otherwise)
func (s *TaskService) Take(ctx context.Context, freelancerID, taskID uint, parentalCode string) (*models.Task, error) {
	freelancer, err := s.userRepo.GetByID(ctx, freelancerID)
	if err != nil {
		return nil, err
	}
	if !freelancer.IsFreelancer() {
		return nil, ErrNotAFreelancer
	}

	if !freelancer.HasPaymentDetails() {
		return nil, ErrPaymentSetupNeeded
	}

	now := time.Now()
	windowStart := now.Add(-QuotaWindow)

	taken, err := s.taskRepo.CountTakenSince(ctx, freelancerID, windowStart)
	if err != nil {
		return nil, err
	}
	if taken >= int64(freelancer.TaskQuota) {
		return nil, ErrQuotaExhausted
	}

	if !password.Verify(parentalCode, freelancer.ParentalCodeHash) {
		return nil, ErrWrongParentalCode
	}

	if _, err := s.taskRepo.GetByID(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	// The repository re-checks the quota under a lock on the freelancer row
	// inside the accept transaction, so racing accepts cannot slip past the
	// guard above.
	err = s.taskRepo.Take(ctx, taskID, freelancerID, freelancer.TaskQuota, windowStart, now)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrQuotaReached):
			return nil, ErrQuotaExhausted
		case errors.Is(err, repositories.ErrStateConflict):
			return nil, ErrTaskConflict
		default:
			return nil, err
		}
	}

	log.Printf("✅ Task taken: #%d by freelancer %d", taskID, freelancerID)

	return s.taskRepo.GetByID(ctx, taskID)
}

// SubmitInput represents task submission input
type SubmitInput struct {
	SubmissionURL  string `json:"submission_url" validate:"required"`
	SubmissionNote string `json:"submission_note,omitempty"`
}

// Submit records the assigned freelancer's work and appends a system
// message to the task log.
func (s *TaskService) Submit(ctx context.Context, freelancerID, taskID uint, input *SubmitInput) (*models.Task, error) {
	if input.SubmissionURL == "" {
		return nil, ErrInvalidTaskInput
	}

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if task.FreelancerID == nil || *task.FreelancerID != freelancerID {
		return nil, ErrNotAssignee
	}

	err = s.taskRepo.Submit(ctx, taskID, freelancerID, input.SubmissionURL, input.SubmissionNote)
	if err != nil {
		if errors.Is(err, repositories.ErrStateConflict) {
			return nil, ErrTaskConflict
		}
		return nil, err
	}

	content := fmt.Sprintf("%sWork submitted: %s", models.SystemMessagePrefix, input.SubmissionURL)
	if input.SubmissionNote != "" {
		content += " — " + input.SubmissionNote
	}
	msg := &models.Message{
		TaskID:   taskID,
		SenderID: freelancerID,
		Content:  content,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		// The transition already happened; a lost notice is not a failure.
		log.Printf("⚠️ Failed to append submission notice for task %d: %v", taskID, err)
	}

	return s.taskRepo.GetByID(ctx, taskID)
}

// CompletePayment marks a submitted task completed and credits the
// freelancer's balance and XP in one transaction. Only the task's client
// may release payment, and a second call is a conflict, never a second
// credit.
func (s *TaskService) CompletePayment(ctx context.Context, callerID, taskID uint) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if task.ClientID != callerID {
		return nil, ErrNotTaskOwner
	}

	if task.FreelancerID == nil {
		return nil, ErrTaskNotAssigned
	}

	err = s.taskRepo.Complete(ctx, taskID, *task.FreelancerID, task.Budget, s.completionXP)
	if err != nil {
		if errors.Is(err, repositories.ErrStateConflict) {
			return nil, ErrTaskConflict
		}
		return nil, err
	}

	msg := &models.Message{
		TaskID:   taskID,
		SenderID: callerID,
		Content:  fmt.Sprintf("%sPayment released: %d credited to your balance.", models.SystemMessagePrefix, task.Budget),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		log.Printf("⚠️ Failed to append payment notice for task %d: %v", taskID, err)
	}

	log.Printf("✅ Payment completed: task #%d, %d credited to freelancer %d (+%d xp)",
		taskID, task.Budget, *task.FreelancerID, s.completionXP)

	return s.taskRepo.GetByID(ctx, taskID)
}

// WeeklyTakenCount returns how many tasks the freelancer accepted inside
// the rolling quota window. Shares the window definition with Take so the
// displayed and enforced quotas never drift.
func (s *TaskService) WeeklyTakenCount(ctx context.Context, freelancerID uint) (int64, error) {
	return s.taskRepo.CountTakenSince(ctx, freelancerID, time.Now().Add(-QuotaWindow))
}

// GetByID gets a task by ID
func (s *TaskService) GetByID(ctx context.Context, taskID uint) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// ListOpen lists open tasks, newest first
func (s *TaskService) ListOpen(ctx context.Context, offset, limit int) ([]*models.Task, int64, error) {
	return s.taskRepo.ListOpen(ctx, offset, limit)
}

// ListForUser lists tasks for a user by role: a client sees tasks they
// posted, a freelancer sees tasks assigned to them. Newest first.
func (s *TaskService) ListForUser(ctx context.Context, userID uint, role string) ([]*models.Task, error) {
	switch role {
	case models.RoleClient:
		return s.taskRepo.ListByClient(ctx, userID)
	case models.RoleFreelancer:
		return s.taskRepo.ListByFreelancer(ctx, userID)
	default:
		return nil, ErrInvalidRole
	}
}
