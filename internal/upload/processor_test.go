package upload_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaqili/fitroom/internal/ai/mock"
	"github.com/jiaqili/fitroom/internal/upload"
	"github.com/jiaqili/fitroom/pkg/models"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestProcess_StoresOriginalAndThumbnail(t *testing.T) {
	dir := t.TempDir()
	p, err := upload.NewProcessor(dir, mock.NewProvider())
	require.NoError(t, err)

	result, err := p.Process(context.Background(), pngBytes(t, 800, 600), models.ImageKindUser)
	require.NoError(t, err)

	assert.Contains(t, result.Filename, "user-")
	assert.Equal(t, ".png", filepath.Ext(result.Filename))
	assert.Contains(t, result.ThumbnailFilename, "thumb_user-")

	original, err := os.ReadFile(filepath.Join(dir, result.Filename))
	require.NoError(t, err)
	assert.NotEmpty(t, original)

	// The thumbnail is scaled down to fit the bound and re-encoded as JPEG.
	thumbFile, err := os.Open(filepath.Join(dir, result.ThumbnailFilename))
	require.NoError(t, err)
	defer thumbFile.Close()
	thumb, err := jpeg.Decode(thumbFile)
	require.NoError(t, err)
	assert.Equal(t, 300, thumb.Bounds().Dx())
	assert.Equal(t, 225, thumb.Bounds().Dy())
}

func TestProcess_Metadata(t *testing.T) {
	p, err := upload.NewProcessor(t.TempDir(), mock.NewProvider())
	require.NoError(t, err)

	data := pngBytes(t, 320, 240)
	result, err := p.Process(context.Background(), data, models.ImageKindClothing)
	require.NoError(t, err)

	assert.Equal(t, 320, result.Metadata.Width)
	assert.Equal(t, 240, result.Metadata.Height)
	assert.Equal(t, int64(len(data)), result.Metadata.Size)
	assert.Equal(t, "png", result.Metadata.Format)
}

func TestProcess_SmallImageNotEnlarged(t *testing.T) {
	dir := t.TempDir()
	p, err := upload.NewProcessor(dir, mock.NewProvider())
	require.NoError(t, err)

	result, err := p.Process(context.Background(), pngBytes(t, 120, 90), models.ImageKindUser)
	require.NoError(t, err)

	thumbFile, err := os.Open(filepath.Join(dir, result.ThumbnailFilename))
	require.NoError(t, err)
	defer thumbFile.Close()
	thumb, err := jpeg.Decode(thumbFile)
	require.NoError(t, err)
	assert.Equal(t, 120, thumb.Bounds().Dx())
	assert.Equal(t, 90, thumb.Bounds().Dy())
}

func TestProcess_QualityCheck(t *testing.T) {
	p, err := upload.NewProcessor(t.TempDir(), mock.NewProvider())
	require.NoError(t, err)

	result, err := p.Process(context.Background(), pngBytes(t, 50, 50), models.ImageKindUser)
	require.NoError(t, err)
	require.NotNil(t, result.QualityCheck)
	assert.True(t, result.QualityCheck.Valid)
}

func TestProcess_QualityCheckFailureIsNotFatal(t *testing.T) {
	p, err := upload.NewProcessor(t.TempDir(), mock.NewFailingProvider(errors.New("endpoint down")))
	require.NoError(t, err)

	result, err := p.Process(context.Background(), pngBytes(t, 50, 50), models.ImageKindUser)
	require.NoError(t, err)
	assert.Nil(t, result.QualityCheck)
}

func TestProcess_RejectsNonImage(t *testing.T) {
	p, err := upload.NewProcessor(t.TempDir(), mock.NewProvider())
	require.NoError(t, err)

	_, err = p.Process(context.Background(), []byte("not an image"), models.ImageKindUser)
	assert.ErrorIs(t, err, upload.ErrNotImage)
}

func TestNewProcessor_EmptyDir(t *testing.T) {
	_, err := upload.NewProcessor("  ", mock.NewProvider())
	assert.Error(t, err)
}
