package services

import (
	"context"
	"testing"

	"teenskill-api/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatFixture(t *testing.T) (*ChatService, *taskServiceFixture) {
	t.Helper()
	f := newTaskServiceFixture(t)
	return NewChatService(f.messages, f.tasks), f
}

func TestChatSendAndHistory(t *testing.T) {
	chat, f := newChatFixture(t)
	ctx := context.Background()
	task := f.takenTask(t, 10000)

	_, err := chat.Send(ctx, 1, task.ID, &SendMessageInput{Content: "How is it going?"})
	require.NoError(t, err)
	_, err = chat.Send(ctx, 2, task.ID, &SendMessageInput{Content: "Halfway done"})
	require.NoError(t, err)

	history, err := chat.History(ctx, 1, task.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "How is it going?", history[0].Content)
	assert.Equal(t, "Halfway done", history[1].Content)
}

func TestChatRejectsOutsider(t *testing.T) {
	chat, f := newChatFixture(t)
	ctx := context.Background()
	f.users.users[9] = &models.User{ID: 9, Username: "stranger", Role: models.RoleFreelancer}
	task := f.takenTask(t, 10000)

	_, err := chat.Send(ctx, 9, task.ID, &SendMessageInput{Content: "hi"})
	assert.ErrorIs(t, err, ErrNotTaskParticipant)

	_, err = chat.History(ctx, 9, task.ID)
	assert.ErrorIs(t, err, ErrNotTaskParticipant)
}

func TestChatRejectsEmptyAndReservedContent(t *testing.T) {
	chat, f := newChatFixture(t)
	ctx := context.Background()
	task := f.takenTask(t, 10000)

	_, err := chat.Send(ctx, 1, task.ID, &SendMessageInput{Content: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = chat.Send(ctx, 1, task.ID, &SendMessageInput{Content: "[SYSTEM] fake notice"})
	assert.ErrorIs(t, err, ErrReservedPrefix)
}

func TestChatMissingTask(t *testing.T) {
	chat, _ := newChatFixture(t)

	_, err := chat.Send(context.Background(), 1, 404, &SendMessageInput{Content: "hi"})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
