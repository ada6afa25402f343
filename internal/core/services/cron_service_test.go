package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentReminderSweep(t *testing.T) {
	f := newTaskServiceFixture(t)
	ctx := context.Background()

	stale := submitTask(t, f, 10000)
	fresh := submitTask(t, f, 20000)

	// Age one submission past the 48h threshold
	f.tasks.tasks[stale.ID].UpdatedAt = time.Now().Add(-72 * time.Hour)
	f.tasks.tasks[fresh.ID].UpdatedAt = time.Now()

	cron := NewCronService(f.tasks, f.messages, newStubTokenRepo())
	cron.runPaymentReminders()

	staleMsgs, err := f.messages.GetByTaskID(ctx, stale.ID)
	require.NoError(t, err)
	// Submission notice plus the reminder
	require.Len(t, staleMsgs, 2)
	assert.Contains(t, staleMsgs[1].Content, "[SYSTEM] Reminder:")

	freshMsgs, err := f.messages.GetByTaskID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Len(t, freshMsgs, 1) // submission notice only
}

func TestPaymentReminderDedupesPerDay(t *testing.T) {
	f := newTaskServiceFixture(t)
	ctx := context.Background()

	stale := submitTask(t, f, 10000)
	f.tasks.tasks[stale.ID].UpdatedAt = time.Now().Add(-72 * time.Hour)

	cron := NewCronService(f.tasks, f.messages, newStubTokenRepo())
	cron.runPaymentReminders()
	cron.runPaymentReminders()

	msgs, err := f.messages.GetByTaskID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 2) // one submission notice, one reminder
}
