package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"teenskill-api/internal/adapters/persistence/models"
	"teenskill-api/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// paymentReminderAfter is how long a task may sit in submitted status
// before the client gets nudged.
const paymentReminderAfter = 48 * time.Hour

const paymentReminderPrefix = models.SystemMessagePrefix + "Reminder:"

// CronService runs scheduled maintenance: payment reminders for stale
// submissions and refresh token cleanup.
type CronService struct {
	cron        *cron.Cron
	taskRepo    repositories.TaskRepository
	messageRepo repositories.MessageRepository
	tokenRepo   repositories.RefreshTokenRepository
}

// NewCronService creates a new cron service
func NewCronService(
	taskRepo repositories.TaskRepository,
	messageRepo repositories.MessageRepository,
	tokenRepo repositories.RefreshTokenRepository,
) *CronService {
	return &CronService{
		cron:        cron.New(),
		taskRepo:    taskRepo,
		messageRepo: messageRepo,
		tokenRepo:   tokenRepo,
	}
}

// Start registers and starts the scheduled jobs
func (s *CronService) Start() error {
	// Daily at 09:00 server time
	if _, err := s.cron.AddFunc("0 9 * * *", s.runPaymentReminders); err != nil {
		return err
	}

	// Daily at 03:00 server time
	if _, err := s.cron.AddFunc("0 3 * * *", s.runTokenCleanup); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("✅ Cron jobs started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Cron jobs stopped")
}

// runPaymentReminders nudges clients whose tasks have been sitting in
// submitted status for more than 48 hours. At most one reminder per task
// per day, deduped against the task's own message log.
func (s *CronService) runPaymentReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	tasks, err := s.taskRepo.ListSubmittedBefore(ctx, time.Now().Add(-paymentReminderAfter))
	if err != nil {
		log.Printf("⚠️ Payment reminder sweep failed: %v", err)
		return
	}

	reminded := 0
	for _, task := range tasks {
		sent, err := s.messageRepo.HasSystemMessageSince(ctx, task.ID, paymentReminderPrefix, time.Now().Add(-24*time.Hour))
		if err != nil {
			log.Printf("⚠️ Reminder dedup check failed for task %d: %v", task.ID, err)
			continue
		}
		if sent {
			continue
		}

		msg := &models.Message{
			TaskID:   task.ID,
			SenderID: task.ClientID,
			Content:  fmt.Sprintf("%s work was submitted over 48 hours ago. Please review and release payment.", paymentReminderPrefix),
		}
		if err := s.messageRepo.Create(ctx, msg); err != nil {
			log.Printf("⚠️ Failed to append reminder for task %d: %v", task.ID, err)
			continue
		}
		reminded++
	}

	if reminded > 0 {
		log.Printf("✅ Payment reminders sent: %d", reminded)
	}
}

// runTokenCleanup deletes expired refresh tokens
func (s *CronService) runTokenCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.tokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("⚠️ Token cleanup failed: %v", err)
		return
	}
	log.Println("✅ Expired refresh tokens cleaned up")
}
