// Package models contains shared data models used across the fitroom codebase.
package models

import "time"

const (
	SessionStatusProcessing = "processing"
	SessionStatusCompleted  = "completed"
	SessionStatusFailed     = "failed"
)

// Fitting styles accepted by POST /tryon/generate.
const (
	FittingStyleLoose    = "loose"
	FittingStyleStandard = "standard"
	FittingStyleTight    = "tight"
)

// Effect intensities accepted by POST /tryon/generate.
const (
	EffectIntensityNatural  = "natural"
	EffectIntensityEnhanced = "enhanced"
	EffectIntensityFashion  = "fashion"
	EffectIntensityNone     = "none"
)

// AISettings are the style preferences chosen by the caller. Immutable after
// session creation.
type AISettings struct {
	FittingStyle    string `json:"fittingStyle"`
	EffectIntensity string `json:"effectIntensity"`
}

// TryOnResult is the output of a completed try-on generation.
type TryOnResult struct {
	ResultImageURL string `json:"resultImageUrl"`
	Analysis       string `json:"analysis"`
	Suggestions    string `json:"suggestions"`
}

// Session tracks one try-on generation request. The API returns a session id
// on POST /tryon/generate; the client polls GET /tryon/status/{id} until
// status is completed or failed. A session is mutated only by the background
// task that owns it; readers get snapshot copies.
type Session struct {
	ID               string       `db:"id"                 json:"id"`
	Status           string       `db:"status"             json:"status"`
	Progress         int          `db:"progress"           json:"progress"`
	UserImageURL     string       `db:"user_image_url"     json:"userImage"`
	ClothingImageURL string       `db:"clothing_image_url" json:"clothingImage"`
	Settings         AISettings   `db:"-"                  json:"aiSettings"`
	BackgroundType   string       `db:"background_type"    json:"backgroundType,omitempty"`
	Result           *TryOnResult `db:"-"                  json:"result,omitempty"`
	ErrorMessage     *string      `db:"error_message"      json:"error,omitempty"`
	CreatedAt        time.Time    `db:"created_at"         json:"created_at"`
	CompletedAt      *time.Time   `db:"completed_at"       json:"completed_at,omitempty"`
}

// Terminal reports whether the session has reached an absorbing state.
func (s *Session) Terminal() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusFailed
}

// Clone returns a deep copy safe to hand to readers while the background
// task keeps writing to the original.
func (s *Session) Clone() *Session {
	cp := *s
	if s.Result != nil {
		r := *s.Result
		cp.Result = &r
	}
	if s.ErrorMessage != nil {
		m := *s.ErrorMessage
		cp.ErrorMessage = &m
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

// ValidFittingStyle reports membership in the fitting style enum.
func ValidFittingStyle(s string) bool {
	switch s {
	case FittingStyleLoose, FittingStyleStandard, FittingStyleTight:
		return true
	}
	return false
}

// ValidEffectIntensity reports membership in the effect intensity enum.
func ValidEffectIntensity(s string) bool {
	switch s {
	case EffectIntensityNatural, EffectIntensityEnhanced, EffectIntensityFashion, EffectIntensityNone:
		return true
	}
	return false
}
