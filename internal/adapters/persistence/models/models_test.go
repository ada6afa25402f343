package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{TaskStatusOpen, TaskStatusTaken, true},
		{TaskStatusTaken, TaskStatusSubmitted, true},
		{TaskStatusSubmitted, TaskStatusCompleted, true},

		// No skipping
		{TaskStatusOpen, TaskStatusSubmitted, false},
		{TaskStatusOpen, TaskStatusCompleted, false},
		{TaskStatusTaken, TaskStatusCompleted, false},

		// No regression
		{TaskStatusTaken, TaskStatusOpen, false},
		{TaskStatusSubmitted, TaskStatusTaken, false},
		{TaskStatusCompleted, TaskStatusSubmitted, false},

		// Completed is terminal
		{TaskStatusCompleted, TaskStatusOpen, false},
		{"bogus", TaskStatusTaken, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

// PriorStatus is the inverse of the transition table; the store keys its
// conditional updates on it.
func TestPriorStatus(t *testing.T) {
	assert.Equal(t, TaskStatusOpen, PriorStatus(TaskStatusTaken))
	assert.Equal(t, TaskStatusTaken, PriorStatus(TaskStatusSubmitted))
	assert.Equal(t, TaskStatusSubmitted, PriorStatus(TaskStatusCompleted))

	// Nothing leads to open, and unknown statuses have no predecessor
	assert.Equal(t, "", PriorStatus(TaskStatusOpen))
	assert.Equal(t, "", PriorStatus("bogus"))
}

func TestUserHelpers(t *testing.T) {
	freelancer := &User{Role: RoleFreelancer}
	client := &User{Role: RoleClient}

	assert.True(t, freelancer.IsFreelancer())
	assert.False(t, freelancer.IsClient())
	assert.True(t, client.IsClient())
	assert.False(t, client.IsFreelancer())
}

func TestHasPaymentDetails(t *testing.T) {
	assert.False(t, (&User{}).HasPaymentDetails())
	assert.False(t, (&User{PaymentMethod: "gopay"}).HasPaymentDetails())
	assert.False(t, (&User{PaymentNumber: "0812345678"}).HasPaymentDetails())
	assert.True(t, (&User{PaymentMethod: "gopay", PaymentNumber: "0812345678"}).HasPaymentDetails())
}

func TestMessageIsSystem(t *testing.T) {
	assert.True(t, (&Message{Content: SystemMessagePrefix + "Work submitted"}).IsSystem())
	assert.False(t, (&Message{Content: "hello there"}).IsSystem())
	// Prefix must be at the start
	assert.False(t, (&Message{Content: "note: [SYSTEM] is reserved"}).IsSystem())
}

func TestUserToResponseHidesSecrets(t *testing.T) {
	user := &User{
		ID: 1, Username: "amy", Name: "Amy", Role: RoleFreelancer,
		PasswordHash: "hash", ParentalCodeHash: "hash",
		Balance: 5000, XP: 300,
	}

	resp := user.ToResponse()
	assert.Equal(t, int64(5000), resp.Balance)
	assert.Equal(t, int64(300), resp.XP)
}

func TestRefreshTokenState(t *testing.T) {
	live := &RefreshToken{ExpiresAt: time.Now().Add(time.Hour)}
	assert.False(t, live.IsExpired())
	assert.False(t, live.IsRevoked())

	expired := &RefreshToken{ExpiresAt: time.Now().Add(-time.Hour)}
	assert.True(t, expired.IsExpired())

	now := time.Now()
	revoked := &RefreshToken{ExpiresAt: time.Now().Add(time.Hour), RevokedAt: &now}
	assert.True(t, revoked.IsRevoked())
}
