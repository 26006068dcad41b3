// Package validation holds form-level input checks for post and comment
// submissions.
package validation

import (
	"strings"

	"quill/internal/models"
)

// MaxCommentLength bounds a single comment body.
const MaxCommentLength = 2000

// PostForm carries the user-editable fields of a post submission.
type PostForm struct {
	Text    string
	GroupID *uint
}

// Validate returns field errors for an unusable post submission. Text is
// required; whitespace-only bodies are rejected.
func (f PostForm) Validate() []models.FieldError {
	var fields []models.FieldError
	if strings.TrimSpace(f.Text) == "" {
		fields = append(fields, models.FieldError{Field: "text", Message: "Text is required"})
	}
	return fields
}

// CommentForm carries the user-editable fields of a comment submission.
type CommentForm struct {
	Text string
}

// Validate returns field errors for an unusable comment submission. Blank
// comments are accepted, matching the long-standing form contract; only
// oversized bodies are rejected.
func (f CommentForm) Validate() []models.FieldError {
	var fields []models.FieldError
	if len(f.Text) > MaxCommentLength {
		fields = append(fields, models.FieldError{Field: "text", Message: "Comment is too long"})
	}
	return fields
}
