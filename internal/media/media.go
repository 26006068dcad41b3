// Package media validates and stores uploaded post images on local disk.
package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"quill/internal/models"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// MaxUploadSizeBytes bounds a single image upload.
	MaxUploadSizeBytes = 10 * 1024 * 1024
	postImageDir       = "posts"
)

// Upload carries a single submitted image file.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Store writes validated uploads under a media root directory.
type Store struct {
	root string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

func isAllowedImageMIME(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

func extensionForFormat(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	default:
		return "." + format
	}
}

// SavePostImage validates in and writes it under <root>/posts/ with a random
// filename. It returns the media-relative path stored on the post, e.g.
// "posts/3f2a….jpg". The declared content type is ignored; the bytes decide.
func (s *Store) SavePostImage(in Upload) (string, error) {
	if len(in.Content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if len(in.Content) > MaxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", MaxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detectedType) {
		return "", models.NewValidationError("Invalid image type")
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(in.Content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	relPath := filepath.Join(postImageDir, uuid.NewString()+extensionForFormat(format))
	fullPath := filepath.Join(s.root, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := os.WriteFile(fullPath, in.Content, 0o644); err != nil {
		return "", models.NewInternalError(err)
	}

	return filepath.ToSlash(relPath), nil
}

// Open returns the absolute path for a stored media-relative path, refusing
// anything that escapes the root.
func (s *Store) Open(relPath string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(relPath))
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", models.NewNotFoundError("media", relPath)
	}
	full := filepath.Join(s.root, cleaned)
	if _, err := os.Stat(full); err != nil {
		return "", models.NewNotFoundError("media", relPath)
	}
	return full, nil
}
