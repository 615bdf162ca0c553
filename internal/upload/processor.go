// Package upload prepares user-submitted photos for try-on processing: it
// persists the original, derives a thumbnail, extracts basic metadata, and
// asks the analysis provider for a quality verdict.
package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	// Register decoders for the formats the frontend may submit.
	_ "image/gif"
	_ "image/png"

	"github.com/google/uuid"
	"github.com/jiaqili/fitroom/pkg/models"
	"golang.org/x/image/draw"
)

const (
	thumbnailMaxDim  = 300
	thumbnailQuality = 80
)

// ErrNotImage marks a payload that could not be decoded as an image, as
// opposed to server-side storage failures.
var ErrNotImage = errors.New("not a decodable image")

// Metadata describes a stored image.
type Metadata struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"`
	Format string `json:"format"`
}

// Result is the outcome of processing one uploaded image.
type Result struct {
	Filename          string
	ThumbnailFilename string
	Metadata          Metadata
	QualityCheck      *models.QualityReport
}

// Processor stores uploads on the local filesystem rooted at dir.
type Processor struct {
	dir      string
	provider models.TryOnProvider
}

// NewProcessor ensures the upload directory exists and returns a Processor.
func NewProcessor(dir string, provider models.TryOnProvider) (*Processor, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("upload: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: ensure directory: %w", err)
	}
	return &Processor{dir: dir, provider: provider}, nil
}

// Dir returns the storage root, used to serve /uploads statically.
func (p *Processor) Dir() string { return p.dir }

// Process validates, persists and thumbnails one uploaded image. kind must
// be models.ImageKindUser or models.ImageKindClothing. The quality check is
// best effort: a provider failure is logged and the verdict omitted.
func (p *Processor) Process(ctx context.Context, data []byte, kind string) (*Result, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("upload: %w: %v", ErrNotImage, err)
	}

	base := fmt.Sprintf("%s-%s", kind, uuid.NewString())
	filename := base + extensionForFormat(format)
	if err := os.WriteFile(filepath.Join(p.dir, filename), data, 0o644); err != nil {
		return nil, fmt.Errorf("upload: write image: %w", err)
	}

	thumbName := "thumb_" + base + ".jpg"
	if err := p.writeThumbnail(img, thumbName); err != nil {
		return nil, fmt.Errorf("upload: write thumbnail: %w", err)
	}

	bounds := img.Bounds()
	result := &Result{
		Filename:          filename,
		ThumbnailFilename: thumbName,
		Metadata: Metadata{
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
			Size:   int64(len(data)),
			Format: format,
		},
	}

	report, err := p.provider.CheckImageQuality(ctx, models.QualityRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		Kind:        kind,
	})
	if err != nil {
		slog.Warn("image quality check failed, continuing without verdict", "kind", kind, "error", err)
	} else {
		result.QualityCheck = &report
	}

	return result, nil
}

// writeThumbnail scales img to fit within thumbnailMaxDim on both axes
// without enlarging, and stores it as JPEG.
func (p *Processor) writeThumbnail(img image.Image, filename string) error {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > thumbnailMaxDim || h > thumbnailMaxDim {
		scale := float64(thumbnailMaxDim) / float64(w)
		if h > w {
			scale = float64(thumbnailMaxDim) / float64(h)
		}
		tw, th := int(float64(w)*scale), int(float64(h)*scale)
		if tw < 1 {
			tw = 1
		}
		if th < 1 {
			th = 1
		}
		scaled := image.NewRGBA(image.Rect(0, 0, tw, th))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)
		img = scaled
	}

	f, err := os.Create(filepath.Join(p.dir, filename))
	if err != nil {
		return err
	}
	defer f.Close()
	return jpeg.Encode(f, img, &jpeg.Options{Quality: thumbnailQuality})
}

func extensionForFormat(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "png":
		return ".png"
	case "gif":
		return ".gif"
	default:
		return ".img"
	}
}
