// Package ark implements the try-on provider against the Volcengine Ark
// chat/completions endpoint. The endpoint speaks the OpenAI wire format with
// the provisioned endpoint id in place of a model name.
package ark

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jiaqili/fitroom/internal/config"
	"github.com/jiaqili/fitroom/pkg/models"
)

const maxResponseTokens = 2000

// Provider implements models.TryOnProvider using Volcengine Ark.
type Provider struct {
	cfg        config.ArkConfig
	httpClient *http.Client
}

func NewProvider(cfg config.ArkConfig, timeout time.Duration) *Provider {
	return &Provider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *Provider) Name() string { return "ark" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateTryOn runs three analysis passes: the user photo, the clothing
// photo, and a final composition prompt. The result image stays a
// placeholder; the Ark endpoint is a text model and does not synthesize
// images.
func (p *Provider) GenerateTryOn(ctx context.Context, req models.TryOnRequest) (models.TryOnResult, error) {
	userAnalysis, err := p.analyzeImage(ctx, req.UserImageBase64,
		"Analyze this user photo: identify pose and keypoints, body proportions, "+
			"skin and hair tone, photo quality and lighting, and the background.")
	if err != nil {
		return models.TryOnResult{}, fmt.Errorf("analyze user photo: %w", err)
	}

	clothingAnalysis, err := p.analyzeImage(ctx, req.ClothingImageBase64,
		"Analyze this clothing photo: identify garment type, color and pattern, "+
			"fabric and texture, cut (loose, regular or slim), and suitable occasions.")
	if err != nil {
		return models.TryOnResult{}, fmt.Errorf("analyze clothing photo: %w", err)
	}

	suggestionPrompt := fmt.Sprintf(
		"Based on the following, produce try-on suggestions covering predicted fit, "+
			"styling advice, caveats, and improvements.\n\n"+
			"User photo analysis: %s\n\nClothing analysis: %s\n\n"+
			"User settings: fitting style %q, effect intensity %q.",
		userAnalysis, clothingAnalysis, req.Settings.FittingStyle, req.Settings.EffectIntensity)
	suggestions, err := p.complete(ctx, suggestionPrompt)
	if err != nil {
		return models.TryOnResult{}, fmt.Errorf("compose suggestions: %w", err)
	}

	return models.TryOnResult{
		ResultImageURL: "https://via.placeholder.com/800x600/3498db/ffffff?text=AI+Generated+TryOn+Result",
		Analysis:       fmt.Sprintf("User analysis: %s\n\nClothing analysis: %s", userAnalysis, clothingAnalysis),
		Suggestions:    suggestions,
	}, nil
}

// CheckImageQuality asks the endpoint for a JSON verdict on a single image.
// An unparseable answer degrades to a passing default rather than failing
// the upload.
func (p *Provider) CheckImageQuality(ctx context.Context, req models.QualityRequest) (models.QualityReport, error) {
	prompt := fmt.Sprintf(
		"Assess the quality of this %s photo: sharpness, lighting, composition, "+
			"background clutter, overall score from 1 to 10. Reply with JSON containing "+
			"valid (bool), score (int), issues (list) and suggestions (list).", req.Kind)
	answer, err := p.analyzeImage(ctx, req.ImageBase64, prompt)
	if err != nil {
		return models.QualityReport{}, err
	}

	var report models.QualityReport
	if jsonErr := json.Unmarshal([]byte(extractJSON(answer)), &report); jsonErr != nil {
		return models.QualityReport{
			Valid:       true,
			Score:       7,
			Issues:      []string{},
			Suggestions: []string{"Image quality looks acceptable"},
		}, nil
	}
	return report, nil
}

func (p *Provider) analyzeImage(ctx context.Context, imageBase64, prompt string) (string, error) {
	content := fmt.Sprintf("Please analyze this image: %s. Image data: data:image/jpeg;base64,%s",
		prompt, imageBase64)
	return p.complete(ctx, content)
}

func (p *Provider) complete(ctx context.Context, content string) (string, error) {
	payload := chatRequest{
		Model:       p.cfg.EndpointID,
		Messages:    []chatMessage{{Role: "user", Content: content}},
		Stream:      false,
		MaxTokens:   maxResponseTokens,
		Temperature: 0.7,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("ark inference timed out: %w", err)
		}
		return "", fmt.Errorf("ark endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ark endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("ark endpoint returned no content")
	}
	return parsed.Choices[0].Message.Content, nil
}

// extractJSON trims prose around the first JSON object in a model answer.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

var _ models.TryOnProvider = (*Provider)(nil)
