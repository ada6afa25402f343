package services

import (
	"context"
	"time"

	"teenskill-api/internal/adapters/persistence/models"
	"teenskill-api/internal/adapters/persistence/repositories"
)

// DashboardService aggregates per-user stats for the home screen
type DashboardService struct {
	taskRepo repositories.TaskRepository
	userRepo repositories.UserRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(taskRepo repositories.TaskRepository, userRepo repositories.UserRepository) *DashboardService {
	return &DashboardService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// FreelancerStats represents a freelancer's dashboard numbers
type FreelancerStats struct {
	Balance        int64 `json:"balance"`
	XP             int64 `json:"xp"`
	ActiveTasks    int64 `json:"active_tasks"`
	SubmittedTasks int64 `json:"submitted_tasks"`
	CompletedTasks int64 `json:"completed_tasks"`
	WeeklyTaken    int64 `json:"weekly_taken"`
	TaskQuota      int   `json:"task_quota"`
}

// ClientStats represents a client's dashboard numbers
type ClientStats struct {
	OpenTasks      int64 `json:"open_tasks"`
	TakenTasks     int64 `json:"taken_tasks"`
	AwaitingReview int64 `json:"awaiting_review"`
	CompletedTasks int64 `json:"completed_tasks"`
}

// DashboardStats wraps the role-specific stats; exactly one side is set
type DashboardStats struct {
	Role       string           `json:"role"`
	Freelancer *FreelancerStats `json:"freelancer,omitempty"`
	Client     *ClientStats     `json:"client,omitempty"`
}

// GetStats builds the dashboard for a user based on their role
func (s *DashboardService) GetStats(ctx context.Context, userID uint) (*DashboardStats, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch user.Role {
	case models.RoleFreelancer:
		stats, err := s.freelancerStats(ctx, user)
		if err != nil {
			return nil, err
		}
		return &DashboardStats{Role: user.Role, Freelancer: stats}, nil
	case models.RoleClient:
		stats, err := s.clientStats(ctx, user)
		if err != nil {
			return nil, err
		}
		return &DashboardStats{Role: user.Role, Client: stats}, nil
	default:
		return nil, ErrInvalidRole
	}
}

func (s *DashboardService) freelancerStats(ctx context.Context, user *models.User) (*FreelancerStats, error) {
	active, err := s.taskRepo.CountByFreelancerAndStatus(ctx, user.ID, models.TaskStatusTaken)
	if err != nil {
		return nil, err
	}
	submitted, err := s.taskRepo.CountByFreelancerAndStatus(ctx, user.ID, models.TaskStatusSubmitted)
	if err != nil {
		return nil, err
	}
	completed, err := s.taskRepo.CountByFreelancerAndStatus(ctx, user.ID, models.TaskStatusCompleted)
	if err != nil {
		return nil, err
	}
	weekly, err := s.taskRepo.CountTakenSince(ctx, user.ID, time.Now().Add(-QuotaWindow))
	if err != nil {
		return nil, err
	}

	return &FreelancerStats{
		Balance:        user.Balance,
		XP:             user.XP,
		ActiveTasks:    active,
		SubmittedTasks: submitted,
		CompletedTasks: completed,
		WeeklyTaken:    weekly,
		TaskQuota:      user.TaskQuota,
	}, nil
}

func (s *DashboardService) clientStats(ctx context.Context, user *models.User) (*ClientStats, error) {
	open, err := s.taskRepo.CountByClientAndStatus(ctx, user.ID, models.TaskStatusOpen)
	if err != nil {
		return nil, err
	}
	taken, err := s.taskRepo.CountByClientAndStatus(ctx, user.ID, models.TaskStatusTaken)
	if err != nil {
		return nil, err
	}
	submitted, err := s.taskRepo.CountByClientAndStatus(ctx, user.ID, models.TaskStatusSubmitted)
	if err != nil {
		return nil, err
	}
	completed, err := s.taskRepo.CountByClientAndStatus(ctx, user.ID, models.TaskStatusCompleted)
	if err != nil {
		return nil, err
	}

	return &ClientStats{
		OpenTasks:      open,
		TakenTasks:     taken,
		AwaitingReview: submitted,
		CompletedTasks: completed,
	}, nil
}
