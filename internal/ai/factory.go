package ai

import (
	"fmt"

	"github.com/jiaqili/fitroom/internal/ai/ark"
	"github.com/jiaqili/fitroom/internal/ai/mock"
	"github.com/jiaqili/fitroom/internal/config"
	"github.com/jiaqili/fitroom/pkg/models"
)

// NewProvider constructs the appropriate try-on provider based on config.
// Called once at server startup. The canned mock backend is the default
// deployment mode; the ark backend performs real network calls.
func NewProvider(cfg config.AIConfig) (models.TryOnProvider, error) {
	switch cfg.Provider {
	case "mock":
		return mock.NewProvider(), nil
	case "ark":
		return ark.NewProvider(cfg.Ark, cfg.InferenceTimeout), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of mock, ark", cfg.Provider)
	}
}
