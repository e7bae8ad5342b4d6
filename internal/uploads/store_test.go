package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal valid PNG header so content sniffing sees image/png.
var pngBytes = []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 100))

// JPEG magic bytes for content sniffing.
var jpegBytes = []byte("\xff\xd8\xff\xe0" + strings.Repeat("\x00", 100))

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

// uploadHeader builds a multipart.FileHeader the way a browser form
// submission would produce one.
func uploadHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	_, fh, err := req.FormFile("file")
	require.NoError(t, err)
	return fh
}

func TestStore_Save(t *testing.T) {
	t.Run("stores png with generated name", func(t *testing.T) {
		store := newStore(t)

		name, err := store.Save(KindProfilePicture, uploadHeader(t, "me.png", pngBytes))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(name, ".png"))
		assert.NotContains(t, name, "me")

		_, err = os.Stat(filepath.Join(store.Dir(), name))
		assert.NoError(t, err)
	})

	t.Run("stores jpeg", func(t *testing.T) {
		store := newStore(t)

		name, err := store.Save(KindBookCover, uploadHeader(t, "cover.jpg", jpegBytes))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(name, ".jpg"))
	})

	t.Run("review images land in the reviews subdirectory", func(t *testing.T) {
		store := newStore(t)

		name, err := store.Save(KindReviewImage, uploadHeader(t, "photo.png", pngBytes))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(name, "reviews/"))

		_, err = os.Stat(filepath.Join(store.Dir(), filepath.FromSlash(name)))
		assert.NoError(t, err)
	})

	t.Run("trusts content, not the file extension", func(t *testing.T) {
		store := newStore(t)

		// PHP script disguised as an image
		_, err := store.Save(KindProfilePicture, uploadHeader(t, "evil.png", []byte("<?php system($_GET['c']); ?>")))
		assert.ErrorIs(t, err, ErrUnsupportedFileType)
	})

	t.Run("enforces the profile picture size cap", func(t *testing.T) {
		store := newStore(t)

		big := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, MaxProfilePictureSize)...)
		_, err := store.Save(KindProfilePicture, uploadHeader(t, "big.png", big))
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})
}

func TestStore_Remove(t *testing.T) {
	store := newStore(t)

	name, err := store.Save(KindBookCover, uploadHeader(t, "cover.png", pngBytes))
	require.NoError(t, err)

	require.NoError(t, store.Remove(name))
	_, err = os.Stat(filepath.Join(store.Dir(), name))
	assert.True(t, os.IsNotExist(err))

	// Removing twice is fine
	assert.NoError(t, store.Remove(name))

	// Default assets are never deleted
	assert.NoError(t, store.Remove(DefaultCover))
	assert.NoError(t, store.Remove(DefaultProfilePicture))

	// Path traversal is rejected
	assert.Error(t, store.Remove("../outside.png"))
	assert.Error(t, store.Remove("/etc/passwd"))
}

func TestIsDefaultAsset(t *testing.T) {
	assert.True(t, IsDefaultAsset(DefaultCover))
	assert.True(t, IsDefaultAsset(DefaultProfilePicture))
	assert.False(t, IsDefaultAsset("abc123.png"))
	assert.False(t, IsDefaultAsset(""))
}
