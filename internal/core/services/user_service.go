package services

import (
	"context"
	"errors"
	"log"

	"teenskill-api/internal/adapters/persistence/models"
	"teenskill-api/internal/adapters/persistence/repositories"
	"teenskill-api/internal/pkg/password"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidProfileInput  = errors.New("name is required")
	ErrInvalidPaymentInput  = errors.New("payment method and number are required")
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
)

// UserService handles profile operations
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile gets a user's profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfileInput represents profile update input
type UpdateProfileInput struct {
	Name string `json:"name" validate:"required"`
}

// UpdateProfile updates the user's display name. Username, role and age are
// fixed at registration.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.User, error) {
	if input.Name == "" {
		return nil, ErrInvalidProfileInput
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = input.Name

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// PaymentDetailsInput represents payout details input
type PaymentDetailsInput struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
	PaymentNumber string `json:"payment_number" validate:"required"`
}

// UpdatePaymentDetails sets the user's payout destination. Freelancers
// cannot accept tasks until both fields are filled.
func (s *UserService) UpdatePaymentDetails(ctx context.Context, userID uint, input *PaymentDetailsInput) (*models.User, error) {
	if input.PaymentMethod == "" || input.PaymentNumber == "" {
		return nil, ErrInvalidPaymentInput
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.PaymentMethod = input.PaymentMethod
	user.PaymentNumber = input.PaymentNumber

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ Payment details updated: user %d (%s)", user.ID, user.PaymentMethod)

	return user, nil
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword verifies the current password before replacing it
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if !password.Verify(input.CurrentPassword, user.PasswordHash) {
		return ErrWrongCurrentPassword
	}

	if !password.ValidatePassword(input.NewPassword) {
		return ErrWeakPassword
	}

	hash, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	return s.userRepo.Update(ctx, user)
}
