package utils

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

// Uploaded images are capped at 10MB.
const maxImageSize = 10 * 1024 * 1024

// ErrImageTooLarge is returned when an uploaded image exceeds the size cap.
var ErrImageTooLarge = errors.New("image exceeds 10MB")

// SaveImage stores an uploaded image under mediaDir/posts with a unique name
// and returns the media-relative path to record on the post.
func SaveImage(fh *multipart.FileHeader, mediaDir string) (string, error) {
	if fh.Size > maxImageSize {
		return "", ErrImageTooLarge
	}

	name := uuid.NewString() + filepath.Ext(filepath.Base(fh.Filename))
	dstDir := filepath.Join(mediaDir, "posts")
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", err
	}
	dstPath := filepath.Join(dstDir, name)

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	written, err := io.Copy(out, &io.LimitedReader{R: src, N: maxImageSize + 1})
	if err != nil {
		_ = os.Remove(dstPath)
		return "", err
	}
	if written > maxImageSize {
		_ = os.Remove(dstPath)
		return "", ErrImageTooLarge
	}

	// Stored paths use forward slashes; they double as URL suffixes.
	return path.Join("posts", name), nil
}
