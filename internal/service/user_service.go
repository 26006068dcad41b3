package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"quill/internal/models"
	"quill/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var usernameRe = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

// UserService handles registration and credential checks.
type UserService struct {
	userRepo repository.UserRepository
}

// SignupInput carries a registration form.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Signup registers a new user with a hashed password.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	var fields []models.FieldError
	if !usernameRe.MatchString(in.Username) {
		fields = append(fields, models.FieldError{Field: "username", Message: "Enter a valid username"})
	}
	if !strings.Contains(in.Email, "@") {
		fields = append(fields, models.FieldError{Field: "email", Message: "Enter a valid email address"})
	}
	if len(in.Password) < 8 {
		fields = append(fields, models.FieldError{Field: "password", Message: "Password must be at least 8 characters"})
	}
	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	if _, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil {
		return nil, models.NewFieldValidationError([]models.FieldError{
			{Field: "username", Message: "A user with that username already exists"},
		})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks a username and password pair. The same error comes
// back for a missing user and a wrong password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthorizedError("Invalid username or password")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, models.NewUnauthorizedError("Invalid username or password")
	}
	return user, nil
}
