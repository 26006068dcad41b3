package service

import (
	"context"
	"strings"
	"testing"

	"quill/internal/models"
	"quill/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCommentServiceAddAttachesToPost(t *testing.T) {
	posts := &postRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
	}
	var created *models.Comment
	comments := &commentRepoStub{
		createFn: func(_ context.Context, comment *models.Comment) error {
			created = comment
			return nil
		},
	}
	svc := NewCommentService(comments, posts)

	comment, err := svc.Add(context.Background(), 4, 9, "well said")
	require.NoError(t, err)
	assert.Equal(t, created, comment)
	assert.Equal(t, uint(9), comment.PostID)
	assert.Equal(t, uint(4), comment.AuthorID)
}

func TestCommentServiceAddToMissingPost(t *testing.T) {
	posts := &postRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	createCalled := false
	comments := &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error {
			createCalled = true
			return nil
		},
	}
	svc := NewCommentService(comments, posts)

	_, err := svc.Add(context.Background(), 4, 999, "into the void")
	assert.True(t, models.IsNotFound(err))
	assert.False(t, createCalled)
}

func TestCommentServiceAddAllowsBlankText(t *testing.T) {
	posts := &postRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
	}
	comments := &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
	}
	svc := NewCommentService(comments, posts)

	_, err := svc.Add(context.Background(), 4, 9, "")
	assert.NoError(t, err)
}

func TestCommentServiceAddRejectsOversizedText(t *testing.T) {
	posts := &postRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
	}
	createCalled := false
	comments := &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error {
			createCalled = true
			return nil
		},
	}
	svc := NewCommentService(comments, posts)

	_, err := svc.Add(context.Background(), 4, 9, strings.Repeat("a", validation.MaxCommentLength+1))
	assert.True(t, models.IsValidation(err))
	assert.False(t, createCalled)
}
