package models

import "context"

// Image kinds passed to quality checks.
const (
	ImageKindUser     = "user"
	ImageKindClothing = "clothing"
)

// TryOnProvider is the remote analysis capability behind try-on generation.
// Never call a specific backend directly — always inject this interface.
type TryOnProvider interface {
	// GenerateTryOn analyzes the user and clothing photos and produces a
	// result image locator plus textual analysis and suggestions.
	GenerateTryOn(ctx context.Context, req TryOnRequest) (TryOnResult, error)
	// CheckImageQuality evaluates an uploaded photo before it is used.
	CheckImageQuality(ctx context.Context, req QualityRequest) (QualityReport, error)
	// Name returns the provider identifier (e.g., "mock", "ark").
	Name() string
}

// TryOnRequest carries the encoded source images and the caller's settings.
type TryOnRequest struct {
	SessionID           string
	UserImageBase64     string
	ClothingImageBase64 string
	Settings            AISettings
	BackgroundType      string
}

// QualityRequest asks the provider to judge a single uploaded image.
type QualityRequest struct {
	ImageBase64 string
	Kind        string // ImageKindUser or ImageKindClothing
}

// QualityReport is the verdict on an uploaded image.
type QualityReport struct {
	Valid       bool     `json:"valid"`
	Score       int      `json:"score"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}
