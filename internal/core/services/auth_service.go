package services

import (
	"context"
	"errors"
	"log"

	"teenskill-api/internal/adapters/persistence/models"
	"teenskill-api/internal/adapters/persistence/repositories"
	"teenskill-api/internal/config"
	"teenskill-api/internal/pkg/jwt"
	"teenskill-api/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken        = errors.New("username is already taken")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrWeakPassword         = errors.New("password must be at least 8 characters")
	ErrInvalidRegisterRole  = errors.New("role must be client or freelancer")
	ErrFreelancerAge        = errors.New("freelancers must be between 13 and 17 years old")
	ErrParentalCodeRequired = errors.New("freelancer registration requires a parental code")
	ErrAccountInactive      = errors.New("account is deactivated")
	ErrRefreshTokenInvalid  = errors.New("refresh token is invalid or revoked")
)

// Freelancer age gate. The platform is for supervised teens; adults sign
// up as clients.
const (
	MinFreelancerAge = 13
	MaxFreelancerAge = 17
)

// AuthService handles registration and the token lifecycle
type AuthService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.RefreshTokenRepository
	jwtConfig config.JWTConfig
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	tokenRepo repositories.RefreshTokenRepository,
	jwtConfig config.JWTConfig,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		jwtConfig: jwtConfig,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Username     string `json:"username" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Password     string `json:"password" validate:"required,min=8"`
	Role         string `json:"role" validate:"required,oneof=client freelancer"`
	Age          int    `json:"age" validate:"required"`
	ParentalCode string `json:"parental_code,omitempty"`
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenPair holds the issued access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"-"` // delivered via httpOnly cookie only
	ExpiresIn    int    `json:"expires_in"` // access token lifetime in seconds
}

// Register creates a new account. Freelancers are age-gated to 13-17 and
// must register a parental code; the code is bcrypt-hashed like a password
// and later verified on every task acceptance.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*models.User, error) {
	if input.Role != models.RoleClient && input.Role != models.RoleFreelancer {
		return nil, ErrInvalidRegisterRole
	}

	if !password.ValidatePassword(input.Password) {
		return nil, ErrWeakPassword
	}

	if input.Role == models.RoleFreelancer {
		if input.Age < MinFreelancerAge || input.Age > MaxFreelancerAge {
			return nil, ErrFreelancerAge
		}
		if input.ParentalCode == "" {
			return nil, ErrParentalCodeRequired
		}
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	passwordHash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		PublicID:     uuid.NewString(),
		Username:     input.Username,
		Name:         input.Name,
		Role:         input.Role,
		Age:          input.Age,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	if input.ParentalCode != "" {
		codeHash, err := password.Hash(input.ParentalCode)
		if err != nil {
			return nil, err
		}
		user.ParentalCodeHash = codeHash
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ User registered: %s (role: %s)", user.Username, user.Role)

	return user, nil
}

// Login authenticates a user and issues a token pair
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*models.User, *TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !password.Verify(input.Password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, ErrAccountInactive
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	log.Printf("✅ User logged in: %s", user.Username)

	return user, pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a
// fresh pair is issued. A revoked or expired token is rejected, so a stolen
// token stops working as soon as the legitimate client rotates.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.User, *TokenPair, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.jwtConfig.RefreshSecret)
	if err != nil {
		return nil, nil, ErrRefreshTokenInvalid
	}

	stored, err := s.tokenRepo.GetByTokenHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRefreshTokenInvalid
		}
		return nil, nil, err
	}

	if stored.IsRevoked() || stored.IsExpired() || stored.UserID != claims.UserID {
		return nil, nil, ErrRefreshTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, ErrAccountInactive
	}

	if err := s.tokenRepo.RevokeByTokenHash(ctx, stored.TokenHash); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// Logout revokes the presented refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.tokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken))
}

// LogoutAll revokes every refresh token the user holds
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	return s.tokenRepo.RevokeAllByUserID(ctx, userID)
}

// CleanupExpiredTokens removes expired refresh tokens (called by cron)
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) error {
	return s.tokenRepo.DeleteExpired(ctx)
}

// issueTokens generates an access/refresh pair and persists the refresh
// token hash
func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID, user.Username, user.Role,
		s.jwtConfig.Secret, s.jwtConfig.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID, uuid.NewString(),
		s.jwtConfig.RefreshSecret, s.jwtConfig.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	record := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.jwtConfig.RefreshTokenDays),
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.jwtConfig.AccessTokenMins * 60,
	}, nil
}
