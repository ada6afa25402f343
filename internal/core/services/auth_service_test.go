package services

import (
	"context"
	"testing"

	"teenskill-api/internal/adapters/persistence/models"
	"teenskill-api/internal/config"
	"teenskill-api/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubTokenRepo struct {
	tokens map[string]*models.RefreshToken
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{tokens: make(map[string]*models.RefreshToken)}
}

func (r *stubTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	token.ID = uint(len(r.tokens) + 1)
	r.tokens[token.TokenHash] = token
	return nil
}

func (r *stubTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	token, ok := r.tokens[tokenHash]
	if !ok || token.IsRevoked() {
		return nil, gorm.ErrRecordNotFound
	}
	return token, nil
}

func (r *stubTokenRepo) RevokeByTokenHash(_ context.Context, tokenHash string) error {
	if token, ok := r.tokens[tokenHash]; ok {
		now := token.ExpiresAt // any non-nil time works for the stub
		token.RevokedAt = &now
	}
	return nil
}

func (r *stubTokenRepo) RevokeAllByUserID(_ context.Context, userID uint) error {
	for _, token := range r.tokens {
		if token.UserID == userID {
			now := token.ExpiresAt
			token.RevokedAt = &now
		}
	}
	return nil
}

func (r *stubTokenRepo) DeleteExpired(_ context.Context) error {
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:           "test-secret",
		RefreshSecret:    "test-refresh-secret",
		AccessTokenMins:  15,
		RefreshTokenDays: 7,
	}
}

func newAuthFixture() (*AuthService, *stubUserRepo, *stubTokenRepo) {
	users := newStubUserRepo()
	tokens := newStubTokenRepo()
	return NewAuthService(users, tokens, testJWTConfig()), users, tokens
}

func TestRegisterFreelancer(t *testing.T) {
	svc, users, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), &RegisterInput{
		Username:     "amy15",
		Name:         "Amy",
		Password:     "supersecret",
		Role:         models.RoleFreelancer,
		Age:          15,
		ParentalCode: "4321",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleFreelancer, user.Role)

	stored := users.users[user.ID]
	// Secrets are stored hashed, never verbatim
	assert.NotEqual(t, "supersecret", stored.PasswordHash)
	assert.NotEqual(t, "4321", stored.ParentalCodeHash)
	assert.True(t, password.Verify("supersecret", stored.PasswordHash))
	assert.True(t, password.Verify("4321", stored.ParentalCodeHash))
}

func TestRegisterFreelancerAgeGate(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	for _, age := range []int{12, 18, 40} {
		_, err := svc.Register(ctx, &RegisterInput{
			Username: "kid", Name: "Kid", Password: "supersecret",
			Role: models.RoleFreelancer, Age: age, ParentalCode: "1111",
		})
		assert.ErrorIs(t, err, ErrFreelancerAge, "age %d", age)
	}
}

func TestRegisterFreelancerRequiresParentalCode(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), &RegisterInput{
		Username: "amy15", Name: "Amy", Password: "supersecret",
		Role: models.RoleFreelancer, Age: 15,
	})
	assert.ErrorIs(t, err, ErrParentalCodeRequired)
}

func TestRegisterClientNeedsNoParentalCode(t *testing.T) {
	svc, _, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), &RegisterInput{
		Username: "bob", Name: "Bob", Password: "supersecret",
		Role: models.RoleClient, Age: 40,
	})
	require.NoError(t, err)
	assert.Empty(t, user.ParentalCodeHash)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	input := &RegisterInput{
		Username: "bob", Name: "Bob", Password: "supersecret",
		Role: models.RoleClient, Age: 40,
	}
	_, err := svc.Register(ctx, input)
	require.NoError(t, err)

	_, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), &RegisterInput{
		Username: "bob", Name: "Bob", Password: "short",
		Role: models.RoleClient, Age: 40,
	})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{
		Username: "bob", Name: "Bob", Password: "supersecret",
		Role: models.RoleClient, Age: 40,
	})
	require.NoError(t, err)

	user, pair, err := svc.Login(ctx, &LoginInput{Username: "bob", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	_, _, err = svc.Login(ctx, &LoginInput{Username: "bob", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, &LoginInput{Username: "nobody", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{
		Username: "bob", Name: "Bob", Password: "supersecret",
		Role: models.RoleClient, Age: 40,
	})
	require.NoError(t, err)

	_, pair, err := svc.Login(ctx, &LoginInput{Username: "bob", Password: "supersecret"})
	require.NoError(t, err)

	_, rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The old token is revoked after rotation
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{
		Username: "bob", Name: "Bob", Password: "supersecret",
		Role: models.RoleClient, Age: 40,
	})
	require.NoError(t, err)

	_, pair, err := svc.Login(ctx, &LoginInput{Username: "bob", Password: "supersecret"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))

	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, _, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
}
