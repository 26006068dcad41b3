package service

import (
	"context"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostServiceEditByAuthorUpdatesMutableFields(t *testing.T) {
	stored := &models.Post{ID: 7, Text: "before", AuthorID: 3}
	var updated *models.Post

	posts := &postRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			require.Equal(t, uint(7), id)
			return stored, nil
		},
		updateFn: func(_ context.Context, post *models.Post) error {
			updated = post
			return nil
		},
	}
	groups := &groupRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Group, error) {
			return &models.Group{ID: id, Title: "Cats"}, nil
		},
	}
	svc := NewPostService(posts, groups, nil, nil, nil, nil)

	groupID := uint(2)
	_, err := svc.Edit(context.Background(), 3, 7, PostInput{Text: "after", GroupID: &groupID})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "after", updated.Text)
	assert.Equal(t, &groupID, updated.GroupID)
}

func TestPostServiceEditByNonAuthorIsForbidden(t *testing.T) {
	updateCalled := false
	posts := &postRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: 7, Text: "original", AuthorID: 3}, nil
		},
		updateFn: func(_ context.Context, _ *models.Post) error {
			updateCalled = true
			return nil
		},
	}
	svc := NewPostService(posts, nil, nil, nil, nil, nil)

	_, err := svc.Edit(context.Background(), 99, 7, PostInput{Text: "hijacked"})
	assert.True(t, models.IsForbidden(err))
	assert.False(t, updateCalled)
}

func TestPostServiceEditClearsGroupWhenNil(t *testing.T) {
	groupID := uint(5)
	var updated *models.Post
	posts := &postRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: 7, Text: "x", AuthorID: 3, GroupID: &groupID}, nil
		},
		updateFn: func(_ context.Context, post *models.Post) error {
			updated = post
			return nil
		},
	}
	svc := NewPostService(posts, nil, nil, nil, nil, nil)

	_, err := svc.Edit(context.Background(), 3, 7, PostInput{Text: "x"})
	require.NoError(t, err)
	assert.Nil(t, updated.GroupID)
}

func TestPostServiceCreateRejectsEmptyText(t *testing.T) {
	createCalled := false
	posts := &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error {
			createCalled = true
			return nil
		},
	}
	svc := NewPostService(posts, nil, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), 3, PostInput{Text: "   "})
	assert.True(t, models.IsValidation(err))
	assert.Len(t, models.ValidationFields(err), 1)
	assert.False(t, createCalled)
}

func TestPostServiceCreateRejectsMissingGroup(t *testing.T) {
	createCalled := false
	posts := &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error {
			createCalled = true
			return nil
		},
	}
	groups := &groupRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Group, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewPostService(posts, groups, nil, nil, nil, nil)

	missing := uint(99)
	_, err := svc.Create(context.Background(), 3, PostInput{Text: "hello", GroupID: &missing})
	require.True(t, models.IsValidation(err))
	fields := models.ValidationFields(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "group", fields[0].Field)
	assert.False(t, createCalled)
}

func TestPostServiceEditRejectsMissingGroup(t *testing.T) {
	updateCalled := false
	posts := &postRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, Text: "original", AuthorID: 3}, nil
		},
		updateFn: func(_ context.Context, _ *models.Post) error {
			updateCalled = true
			return nil
		},
	}
	groups := &groupRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Group, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewPostService(posts, groups, nil, nil, nil, nil)

	missing := uint(99)
	_, err := svc.Edit(context.Background(), 3, 7, PostInput{Text: "edited", GroupID: &missing})
	require.True(t, models.IsValidation(err))
	assert.False(t, updateCalled)
}

func TestPostServiceGroupPostsUnknownSlug(t *testing.T) {
	groups := &groupRepoStub{
		getBySlugFn: func(_ context.Context, slug string) (*models.Group, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewPostService(nil, groups, nil, nil, nil, nil)

	_, err := svc.GroupPosts(context.Background(), "missing")
	assert.True(t, models.IsNotFound(err))
}

func TestPostServiceProfileFollowingFlag(t *testing.T) {
	author := &models.User{ID: 8, Username: "anna"}
	users := &userRepoStub{
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return author, nil
		},
	}
	posts := &postRepoStub{
		listByAuthorFn: func(_ context.Context, authorID uint) ([]*models.Post, error) {
			return []*models.Post{{ID: 1, AuthorID: authorID}}, nil
		},
		countByAuthorFn: func(_ context.Context, authorID uint) (int64, error) {
			return 1, nil
		},
	}
	var checkedViewer uint
	follows := &followRepoStub{
		existsFn: func(_ context.Context, userID, authorID uint) (bool, error) {
			checkedViewer = userID
			return true, nil
		},
	}
	svc := NewPostService(posts, nil, users, nil, follows, nil)

	page, err := svc.Profile(context.Background(), "anna", 4)
	require.NoError(t, err)
	assert.True(t, page.Following)
	assert.Equal(t, uint(4), checkedViewer)
	assert.Equal(t, int64(1), page.PostCount)

	// Anonymous viewers never show as following and skip the lookup.
	checkedViewer = 0
	page, err = svc.Profile(context.Background(), "anna", 0)
	require.NoError(t, err)
	assert.False(t, page.Following)
	assert.Equal(t, uint(0), checkedViewer)
}

func TestPostServiceDetailAggregates(t *testing.T) {
	posts := &postRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, Text: "hello", AuthorID: 2}, nil
		},
		countByAuthorFn: func(_ context.Context, authorID uint) (int64, error) {
			return 5, nil
		},
	}
	comments := &commentRepoStub{
		listByPostFn: func(_ context.Context, postID uint) ([]*models.Comment, error) {
			return []*models.Comment{{ID: 1, PostID: postID}}, nil
		},
	}
	svc := NewPostService(posts, nil, nil, comments, nil, nil)

	detail, err := svc.Detail(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(5), detail.AuthorPostCount)
	assert.Len(t, detail.Comments, 1)
}
