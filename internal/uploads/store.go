// Package uploads stores user-submitted images: profile pictures, book
// covers and review images. Files are sniffed to JPEG/PNG, size-capped per
// kind, stored under random names and written atomically. The shared
// default assets are never deleted.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Kind classifies an upload and selects its size cap and subdirectory.
type Kind int

const (
	KindProfilePicture Kind = iota
	KindBookCover
	KindReviewImage
)

// Size caps per upload kind.
const (
	MaxProfilePictureSize = 1 << 20 // 1MB
	MaxImageSize          = 2 << 20 // 2MB for book covers and review images
)

// Default assets shipped with the application. They are shared between
// records and must never be removed.
const (
	DefaultProfilePicture = "default_profile.jpg"
	DefaultCover          = "default_cover.jpg"
)

var (
	ErrFileTooLarge        = errors.New("uploaded file exceeds the size limit")
	ErrUnsupportedFileType = errors.New("only JPEG and PNG images are accepted")
)

func (k Kind) maxSize() int64 {
	if k == KindProfilePicture {
		return MaxProfilePictureSize
	}
	return MaxImageSize
}

func (k Kind) subdir() string {
	if k == KindReviewImage {
		return "reviews"
	}
	return ""
}

// Store writes uploads below a single base directory.
type Store struct {
	dir string
}

// NewStore creates an upload store rooted at dir, creating the directory
// tree if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, "reviews"), 0755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save validates and stores an uploaded image, returning the stable
// reference name to persist (relative to the store root). The write goes
// through a temp file and rename so a failed upload never leaves a
// half-written file behind.
func (s *Store) Save(kind Kind, fh *multipart.FileHeader) (string, error) {
	if fh.Size > kind.maxSize() {
		return "", ErrFileTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}

	var ext string
	switch http.DetectContentType(head[:n]) {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	default:
		return "", ErrUnsupportedFileType
	}

	name := uuid.New().String() + ext
	if sub := kind.subdir(); sub != "" {
		name = sub + "/" + name
	}
	dest := filepath.Join(s.dir, filepath.FromSlash(name))

	tmp, err := os.CreateTemp(filepath.Dir(dest), "upload_tmp_")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(head[:n]); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return name, nil
}

// Remove deletes a previously stored file. Empty names and the shared
// default assets are left alone; the caller does not need to check first.
func (s *Store) Remove(name string) error {
	if name == "" || IsDefaultAsset(name) {
		return nil
	}
	// Reject anything that escapes the store root.
	clean := filepath.Clean(filepath.FromSlash(name))
	if strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return fmt.Errorf("invalid upload name %q", name)
	}
	err := os.Remove(filepath.Join(s.dir, clean))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// IsDefaultAsset reports whether name refers to a shared default asset.
func IsDefaultAsset(name string) bool {
	base := filepath.Base(filepath.FromSlash(name))
	return base == DefaultProfilePicture || base == DefaultCover
}

// Dir returns the store's base directory, for static file serving.
func (s *Store) Dir() string {
	return s.dir
}
