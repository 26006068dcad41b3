package service

import (
	"context"
	"errors"
	"strings"

	"quill/internal/models"
	"quill/internal/repository"

	"gorm.io/gorm"
)

// FollowService manages subscription edges between readers and authors.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	postRepo   repository.PostRepository
}

// NewFollowService creates a new follow service.
func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo, postRepo: postRepo}
}

func (s *FollowService) author(ctx context.Context, username string) (*models.User, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user", username)
		}
		return nil, err
	}
	return author, nil
}

// Follow subscribes userID to the named author. Following yourself or an
// author you already follow is a silent no-op.
func (s *FollowService) Follow(ctx context.Context, userID uint, username string) error {
	author, err := s.author(ctx, username)
	if err != nil {
		return err
	}
	if author.ID == userID {
		return nil
	}

	exists, err := s.followRepo.Exists(ctx, userID, author.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = s.followRepo.Create(ctx, &models.Follow{UserID: userID, AuthorID: author.ID})
	if err != nil && isUniqueViolation(err) {
		// Lost a race with a concurrent follow. The edge exists, which is
		// what the caller wanted.
		return nil
	}
	return err
}

// Unfollow removes the subscription if present. Missing edges are a no-op.
func (s *FollowService) Unfollow(ctx context.Context, userID uint, username string) error {
	author, err := s.author(ctx, username)
	if err != nil {
		return err
	}
	return s.followRepo.Delete(ctx, userID, author.ID)
}

// Feed returns posts by every author userID follows, newest first.
func (s *FollowService) Feed(ctx context.Context, userID uint) ([]*models.Post, error) {
	return s.postRepo.Feed(ctx, userID)
}

// isUniqueViolation matches unique constraint errors across the PostgreSQL
// and SQLite drivers without importing either.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
