// Package service implements the application's business logic on top of the
// repository layer.
package service

import (
	"context"
	"errors"

	"quill/internal/media"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/validation"

	"gorm.io/gorm"
)

// PostService coordinates post reads and writes.
type PostService struct {
	postRepo    repository.PostRepository
	groupRepo   repository.GroupRepository
	userRepo    repository.UserRepository
	commentRepo repository.CommentRepository
	followRepo  repository.FollowRepository
	media       *media.Store
}

// PostInput carries the user-editable fields of a post.
type PostInput struct {
	Text    string
	GroupID *uint
	Image   *media.Upload
}

// GroupPage is a group with its full post listing.
type GroupPage struct {
	Group *models.Group
	Posts []*models.Post
}

// ProfilePage is an author with their posts and the viewer's follow state.
type ProfilePage struct {
	Author    *models.User
	Posts     []*models.Post
	PostCount int64
	Following bool
}

// PostDetail is a single post with its comments and author stats.
type PostDetail struct {
	Post            *models.Post
	Comments        []*models.Comment
	AuthorPostCount int64
}

// NewPostService creates a new post service.
func NewPostService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	commentRepo repository.CommentRepository,
	followRepo repository.FollowRepository,
	mediaStore *media.Store,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		followRepo:  followRepo,
		media:       mediaStore,
	}
}

// HomePosts returns every post, newest first.
func (s *PostService) HomePosts(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.ListAll(ctx)
}

// GroupPosts returns a group and its posts, newest first.
func (s *PostService) GroupPosts(ctx context.Context, slug string) (*GroupPage, error) {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("group", slug)
		}
		return nil, err
	}

	posts, err := s.postRepo.ListByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	return &GroupPage{Group: group, Posts: posts}, nil
}

// Profile returns an author's page as seen by viewerID. viewerID 0 means
// anonymous, for whom Following is always false.
func (s *PostService) Profile(ctx context.Context, username string, viewerID uint) (*ProfilePage, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user", username)
		}
		return nil, err
	}

	posts, err := s.postRepo.ListByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	count, err := s.postRepo.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	following := false
	if viewerID != 0 {
		following, err = s.followRepo.Exists(ctx, viewerID, author.ID)
		if err != nil {
			return nil, err
		}
	}

	return &ProfilePage{
		Author:    author,
		Posts:     posts,
		PostCount: count,
		Following: following,
	}, nil
}

// Detail returns a single post with its comments and the author's post count.
func (s *PostService) Detail(ctx context.Context, postID uint) (*PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("post", postID)
		}
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	count, err := s.postRepo.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}

	return &PostDetail{Post: post, Comments: comments, AuthorPostCount: count}, nil
}

// resolveImage stores the upload, if any, and returns the media-relative path.
func (s *PostService) resolveImage(in PostInput) (string, error) {
	if in.Image == nil || len(in.Image.Content) == 0 {
		return "", nil
	}
	if s.media == nil {
		return "", models.NewValidationError("Image uploads are disabled")
	}
	return s.media.SavePostImage(*in.Image)
}

// checkGroup verifies that an optional group reference points at an existing
// group. A well-formed id for a missing group is a form error, not a database
// error.
func (s *PostService) checkGroup(ctx context.Context, groupID *uint) error {
	if groupID == nil {
		return nil
	}
	if _, err := s.groupRepo.GetByID(ctx, *groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewFieldValidationError([]models.FieldError{
				{Field: "group", Message: "Select a valid group"},
			})
		}
		return err
	}
	return nil
}

// Create publishes a new post for authorID and returns it.
func (s *PostService) Create(ctx context.Context, authorID uint, in PostInput) (*models.Post, error) {
	if fields := (validation.PostForm{Text: in.Text, GroupID: in.GroupID}).Validate(); len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}
	if err := s.checkGroup(ctx, in.GroupID); err != nil {
		return nil, err
	}

	imagePath, err := s.resolveImage(in)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     in.Text,
		AuthorID: authorID,
		GroupID:  in.GroupID,
		Image:    imagePath,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// Edit updates a post's text, group and image. Only the author may edit;
// anyone else gets a forbidden error and the post stays untouched. A nil
// GroupID detaches the post from its group.
func (s *PostService) Edit(ctx context.Context, callerID, postID uint, in PostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("post", postID)
		}
		return nil, err
	}

	if post.AuthorID != callerID {
		return nil, models.NewForbiddenError("Only the author can edit this post")
	}

	if fields := (validation.PostForm{Text: in.Text, GroupID: in.GroupID}).Validate(); len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}
	if err := s.checkGroup(ctx, in.GroupID); err != nil {
		return nil, err
	}

	imagePath, err := s.resolveImage(in)
	if err != nil {
		return nil, err
	}

	post.Text = in.Text
	post.GroupID = in.GroupID
	if imagePath != "" {
		post.Image = imagePath
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}
