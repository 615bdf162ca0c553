package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jiaqili/fitroom/internal/api/response"
	"github.com/jiaqili/fitroom/internal/upload"
	"github.com/jiaqili/fitroom/pkg/models"
)

// ImageProcessor is the slice of upload.Processor the handler depends on.
type ImageProcessor interface {
	Process(ctx context.Context, data []byte, kind string) (*upload.Result, error)
}

type uploadResponse struct {
	ImageURL     string                `json:"imageUrl"`
	PreviewURL   string                `json:"previewUrl"`
	Metadata     upload.Metadata       `json:"metadata"`
	QualityCheck *models.QualityReport `json:"qualityCheck,omitempty"`
}

// Upload accepts a multipart image under the "image" field, stores it, and
// returns URLs for the original and thumbnail. The "type" field must name
// which side of the try-on the photo belongs to.
func Upload(proc ImageProcessor, maxFileSize int64, publicBaseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFileSize)
		if err := r.ParseMultipartForm(maxFileSize); err != nil {
			response.Error(w, http.StatusBadRequest, "file too large or malformed multipart body")
			return
		}

		kind := r.FormValue("type")
		if kind != models.ImageKindUser && kind != models.ImageKindClothing {
			response.Error(w, http.StatusBadRequest, "type must be user or clothing")
			return
		}

		file, _, err := r.FormFile("image")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "image file is required")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "failed to read uploaded file")
			return
		}

		// Sniff the payload rather than trusting the part's Content-Type,
		// which browsers and multipart writers fill in inconsistently.
		if !strings.HasPrefix(http.DetectContentType(data), "image/") {
			response.Error(w, http.StatusBadRequest, "only image files are accepted")
			return
		}

		result, err := proc.Process(r.Context(), data, kind)
		if err != nil {
			if errors.Is(err, upload.ErrNotImage) {
				response.Error(w, http.StatusBadRequest, "uploaded file is not a valid image")
				return
			}
			slog.Error("processing upload", "kind", kind, "error", err)
			response.Error(w, http.StatusInternalServerError, "failed to store uploaded image")
			return
		}

		base := baseURL(r, publicBaseURL)
		response.JSON(w, http.StatusOK, uploadResponse{
			ImageURL:     fmt.Sprintf("%s/uploads/%s", base, result.Filename),
			PreviewURL:   fmt.Sprintf("%s/uploads/%s", base, result.ThumbnailFilename),
			Metadata:     result.Metadata,
			QualityCheck: result.QualityCheck,
		})
	}
}

// baseURL prefers the configured public base, falling back to the scheme and
// host the request arrived on.
func baseURL(r *http.Request, configured string) string {
	if configured != "" {
		return strings.TrimSuffix(configured, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
