package tryon

import (
	"fmt"
	"strings"

	"github.com/jiaqili/fitroom/pkg/models"
)

// SubmitRequest is the validated input to Submit.
type SubmitRequest struct {
	UserImageURL     string
	ClothingImageURL string
	Settings         models.AISettings
	BackgroundType   string
}

// FieldError describes a single invalid submission field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries per-field problems with a submission. It is
// returned synchronously from Submit; no session is created when it fires.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}

func validate(req SubmitRequest) error {
	var fields []FieldError
	if !isHTTPURL(req.UserImageURL) {
		fields = append(fields, FieldError{Field: "userImage", Message: "must be an http(s) URL"})
	}
	if !isHTTPURL(req.ClothingImageURL) {
		fields = append(fields, FieldError{Field: "clothingImage", Message: "must be an http(s) URL"})
	}
	if !models.ValidFittingStyle(req.Settings.FittingStyle) {
		fields = append(fields, FieldError{
			Field:   "aiSettings.fittingStyle",
			Message: "must be one of loose, standard, tight",
		})
	}
	if !models.ValidEffectIntensity(req.Settings.EffectIntensity) {
		fields = append(fields, FieldError{
			Field:   "aiSettings.effectIntensity",
			Message: "must be one of natural, enhanced, fashion, none",
		})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
