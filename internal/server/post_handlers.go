package server

import (
	"fmt"
	"io"
	"mime/multipart"

	"quill/internal/media"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/pagination"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Index renders the home listing. The whole response is cached by the page
// cache middleware, so new posts can lag behind until the TTL lapses.
func (s *Server) Index(c *fiber.Ctx) error {
	posts, err := s.postService.HomePosts(c.UserContext())
	if err != nil {
		return handleServiceError(c, err)
	}

	return renderPage(c, "posts/index.html", fiber.Map{
		"page_obj": pagination.Paginate(posts, pageNumber(c)),
	})
}

// GroupPosts renders a group's listing.
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	page, err := s.postService.GroupPosts(c.UserContext(), c.Params("slug"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return renderPage(c, "posts/group_list.html", fiber.Map{
		"group":    page.Group,
		"page_obj": pagination.Paginate(page.Posts, pageNumber(c)),
	})
}

// Profile renders an author's page with their posts and the viewer's follow
// state.
func (s *Server) Profile(c *fiber.Ctx) error {
	page, err := s.postService.Profile(c.UserContext(), c.Params("username"), middleware.UserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return renderPage(c, "posts/profile.html", fiber.Map{
		"author":      page.Author,
		"page_obj":    pagination.Paginate(page.Posts, pageNumber(c)),
		"posts_count": page.PostCount,
		"following":   page.Following,
	})
}

// PostDetail renders a single post with its comments and comment form.
func (s *Server) PostDetail(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}

	detail, err := s.postService.Detail(c.UserContext(), postID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return renderPage(c, "posts/post_detail.html", fiber.Map{
		"post":        detail.Post,
		"author":      detail.Post.Author,
		"comments":    detail.Comments,
		"posts_count": detail.AuthorPostCount,
		// Empty comment form for the renderer.
		"form": fiber.Map{"text": ""},
	})
}

// formImage extracts an optional uploaded image from a multipart form.
func formImage(c *fiber.Ctx) (*media.Upload, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		// No file part in the form.
		return nil, nil
	}
	return readUpload(fileHeader)
}

func readUpload(fileHeader *multipart.FileHeader) (*media.Upload, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, media.MaxUploadSizeBytes+1))
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &media.Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

func servicePostInput(text string, groupID *uint, upload *media.Upload) service.PostInput {
	return service.PostInput{Text: text, GroupID: groupID, Image: upload}
}

// CreatePostForm renders the empty post form.
func (s *Server) CreatePostForm(c *fiber.Ctx) error {
	groups, err := s.groupRepo.List(c.UserContext())
	if err != nil {
		return handleServiceError(c, err)
	}
	return renderPage(c, "posts/create_post.html", fiber.Map{
		"groups": groups,
	})
}

// CreatePost publishes a new post and sends the author to their profile.
// Invalid input re-renders the form with field errors.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	groupID, err := formGroupID(c)
	if err != nil {
		return s.rerenderPostForm(c, "posts/create_post.html", nil, err)
	}
	upload, err := formImage(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	userID := middleware.UserID(c)
	post, err := s.postService.Create(c.UserContext(), userID, servicePostInput(c.FormValue("text"), groupID, upload))
	if err != nil {
		if models.IsValidation(err) {
			return s.rerenderPostForm(c, "posts/create_post.html", nil, err)
		}
		return handleServiceError(c, err)
	}

	return c.Redirect(fmt.Sprintf("/profile/%s/", post.Author.Username), fiber.StatusFound)
}

// EditPostForm renders the form pre-filled with the post. Only the author
// sees it; everyone else lands on the post detail page.
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}

	detail, err := s.postService.Detail(c.UserContext(), postID)
	if err != nil {
		return handleServiceError(c, err)
	}

	if detail.Post.AuthorID != middleware.UserID(c) {
		return c.Redirect(fmt.Sprintf("/posts/%d/", postID), fiber.StatusFound)
	}

	groups, err := s.groupRepo.List(c.UserContext())
	if err != nil {
		return handleServiceError(c, err)
	}

	return renderPage(c, "posts/create_post.html", fiber.Map{
		"post":    detail.Post,
		"groups":  groups,
		"is_edit": true,
	})
}

// EditPost applies an edit and returns the author to the edit page, which is
// the long-standing post-save destination. Non-authors are bounced to the
// post detail page with nothing saved.
func (s *Server) EditPost(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}

	groupID, err := formGroupID(c)
	if err != nil {
		return s.rerenderPostForm(c, "posts/create_post.html", nil, err)
	}
	upload, err := formImage(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	_, err = s.postService.Edit(c.UserContext(), middleware.UserID(c), postID, servicePostInput(c.FormValue("text"), groupID, upload))
	if err != nil {
		if models.IsForbidden(err) {
			return c.Redirect(fmt.Sprintf("/posts/%d/", postID), fiber.StatusFound)
		}
		if models.IsValidation(err) {
			return s.rerenderPostForm(c, "posts/create_post.html", fiber.Map{"is_edit": true}, err)
		}
		return handleServiceError(c, err)
	}

	return c.Redirect(fmt.Sprintf("/posts/%d/edit/", postID), fiber.StatusFound)
}

func (s *Server) rerenderPostForm(c *fiber.Ctx, template string, extra fiber.Map, err error) error {
	// The form needs the group choices again to rebuild its selector.
	groups, listErr := s.groupRepo.List(c.UserContext())
	if listErr != nil {
		return handleServiceError(c, listErr)
	}

	context := fiber.Map{
		"errors": models.ValidationFields(err),
		"text":   c.FormValue("text"),
		"group":  c.FormValue("group"),
		"groups": groups,
	}
	for k, v := range extra {
		context[k] = v
	}
	return renderPage(c, template, context)
}

// ServeMedia streams an uploaded image from the media root.
func (s *Server) ServeMedia(c *fiber.Ctx) error {
	path, err := s.mediaStore.Open(c.Params("*"))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.SendFile(path)
}
