package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalStorage(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "storage_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	storage := NewLocalStorage(tempDir)
	ctx := context.Background()
	content := "hello storage"
	key := "codes/asset_x_barcode.png"
	contentType := "image/png"
	size := int64(len(content))

	t.Run("UploadReader creates file", func(t *testing.T) {
		reader := strings.NewReader(content)
		result, err := storage.UploadReader(ctx, reader, key, contentType, size)
		assert.NoError(t, err)
		assert.Equal(t, key, result.Key)
		assert.Equal(t, size, result.FileSize)

		// Verify file exists
		_, err = os.Stat(filepath.Join(tempDir, key))
		assert.NoError(t, err)
	})

	t.Run("Get retrieves file content", func(t *testing.T) {
		reader, retrievedType, err := storage.Get(ctx, key)
		assert.NoError(t, err)
		defer reader.Close()

		got, _ := io.ReadAll(reader)
		assert.Equal(t, content, string(got))
		assert.Equal(t, "image/png", retrievedType)
	})

	t.Run("Get detects MIME types correctly", func(t *testing.T) {
		pdfKey := "sheets/print.pdf"
		storage.UploadReader(ctx, strings.NewReader("%PDF-1.4"), pdfKey, "application/pdf", 8)

		_, retrievedType, err := storage.Get(ctx, pdfKey)
		assert.NoError(t, err)
		assert.Equal(t, "application/pdf", retrievedType)

		jpgKey := "orgs/o1/camera/photo.jpg"
		storage.UploadReader(ctx, strings.NewReader("fake-jpg"), jpgKey, "image/jpeg", 8)
		_, retrievedType, err = storage.Get(ctx, jpgKey)
		assert.NoError(t, err)
		assert.Equal(t, "image/jpeg", retrievedType)
	})

	t.Run("Delete removes file", func(t *testing.T) {
		err := storage.Delete(ctx, key)
		assert.NoError(t, err)

		_, err = os.Stat(filepath.Join(tempDir, key))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("URLs and paths", func(t *testing.T) {
		expected := "/" + filepath.Join(tempDir, "some/key")
		url := storage.GetPublicURL("some/key")
		assert.Equal(t, expected, url)

		signed, err := storage.GetSignedURL(ctx, "some/key", time.Hour)
		assert.NoError(t, err)
		assert.Equal(t, expected, signed)
	})
}

func TestGenerateCameraImageKey(t *testing.T) {
	key := GenerateCameraImageKey("org-1", ".jpg")
	assert.True(t, strings.HasPrefix(key, filepath.Join("orgs", "org-1", "camera")))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	// Empty extension defaults to PNG
	key = GenerateCameraImageKey("org-1", "")
	assert.True(t, strings.HasSuffix(key, ".png"))

	// Keys are unique per call
	assert.NotEqual(t, GenerateCameraImageKey("org-1", ".png"), GenerateCameraImageKey("org-1", ".png"))
}

func TestIsConfigured(t *testing.T) {
	ls := NewLocalStorage("/tmp")
	assert.True(t, ls.IsConfigured())

	r2 := &R2Storage{bucket: "test-bucket", client: nil}
	assert.False(t, r2.IsConfigured())
}
