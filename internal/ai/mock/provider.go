// Package mock provides the deterministic canned analysis backend. It is the
// default deployment mode: the remote vision endpoint is intentionally not
// called, and every session receives a fixed-format analysis derived from the
// caller's settings plus a placeholder result image.
package mock

import (
	"context"
	"fmt"

	"github.com/jiaqili/fitroom/pkg/models"
)

var fittingStyleLabels = map[string]string{
	models.FittingStyleLoose:    "relaxed, loose cut",
	models.FittingStyleStandard: "regular cut",
	models.FittingStyleTight:    "slim, body-hugging cut",
}

var effectIntensityLabels = map[string]string{
	models.EffectIntensityNatural:  "natural rendering",
	models.EffectIntensityEnhanced: "enhanced rendering",
	models.EffectIntensityFashion:  "editorial fashion rendering",
	models.EffectIntensityNone:     "no post-processing",
}

// Provider satisfies models.TryOnProvider with canned responses. It is also
// used directly in tests; the function fields override the defaults.
type Provider struct {
	Name_          string
	GenerateFunc   func(ctx context.Context, req models.TryOnRequest) (models.TryOnResult, error)
	CheckImageFunc func(ctx context.Context, req models.QualityRequest) (models.QualityReport, error)
}

func (p *Provider) Name() string { return p.Name_ }

func (p *Provider) GenerateTryOn(ctx context.Context, req models.TryOnRequest) (models.TryOnResult, error) {
	if p.GenerateFunc != nil {
		return p.GenerateFunc(ctx, req)
	}
	return CannedResult(req.Settings), nil
}

func (p *Provider) CheckImageQuality(ctx context.Context, req models.QualityRequest) (models.QualityReport, error) {
	if p.CheckImageFunc != nil {
		return p.CheckImageFunc(ctx, req)
	}
	return PassingReport(), nil
}

// NewProvider returns the canned provider used in the default deployment.
func NewProvider() *Provider {
	return &Provider{Name_: "mock"}
}

// NewFailingProvider returns a provider whose every call fails with err.
func NewFailingProvider(err error) *Provider {
	return &Provider{
		Name_: "mock-failing",
		GenerateFunc: func(_ context.Context, _ models.TryOnRequest) (models.TryOnResult, error) {
			return models.TryOnResult{}, err
		},
		CheckImageFunc: func(_ context.Context, _ models.QualityRequest) (models.QualityReport, error) {
			return models.QualityReport{}, err
		},
	}
}

// NewBlockingProvider returns a provider that blocks until the context is
// cancelled. Used to exercise the submit/poll decoupling in tests.
func NewBlockingProvider() *Provider {
	return &Provider{
		Name_: "mock-blocking",
		GenerateFunc: func(ctx context.Context, req models.TryOnRequest) (models.TryOnResult, error) {
			<-ctx.Done()
			return models.TryOnResult{}, ctx.Err()
		},
	}
}

// CannedResult is the deterministic mock analysis. The literal fitting style
// and effect intensity values appear in the text so callers can see their
// settings reflected back.
func CannedResult(settings models.AISettings) models.TryOnResult {
	analysis := fmt.Sprintf(`User photo analysis:
- Pose: standing, front-facing, natural posture
- Body type: average proportions, well balanced
- Skin tone: natural, lighting is good
- Photo quality: sharp, suitable for AI processing
- Background: uncluttered, easy to composite

Clothing analysis:
- Garment type: fashion top
- Color and pattern: classic palette, minimal design
- Fabric: quality material with good texture
- Cut: %s (%s)
- Occasions: everyday casual, business casual`,
		settings.FittingStyle, fittingStyleLabels[settings.FittingStyle])

	suggestions := fmt.Sprintf(`Try-on suggestions:

1. Predicted fit:
   - Garment-to-body match: 85%%
   - Color coordination: excellent
   - Overall harmony: good

2. Styling:
   - Pair with darker bottoms to let the top stand out
   - Minimal accessories work well, e.g. a watch or a thin necklace
   - Footwear: casual sneakers or business casual leather shoes

3. Notes:
   - Check the result under natural light for the truest colors
   - Adjust the combination for formal occasions as needed

4. Settings applied:
   - Effect intensity: %s (%s)
   - Try a different angle or fitting style for comparison`,
		settings.EffectIntensity, effectIntensityLabels[settings.EffectIntensity])

	return models.TryOnResult{
		ResultImageURL: "https://via.placeholder.com/800x600/3498db/ffffff?text=AI+Generated+TryOn+Result",
		Analysis:       analysis,
		Suggestions:    suggestions,
	}
}

// PassingReport is the fixed verdict returned for every uploaded image in
// the canned deployment mode.
func PassingReport() models.QualityReport {
	return models.QualityReport{
		Valid:       true,
		Score:       8,
		Issues:      []string{},
		Suggestions: []string{"Image quality is good, suitable for try-on processing"},
	}
}

var _ models.TryOnProvider = (*Provider)(nil)
