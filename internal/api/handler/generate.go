// Package handler contains the HTTP handlers behind the fitroom routes. Each
// handler decodes and replies; all domain logic lives in the services it
// wraps.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jiaqili/fitroom/internal/api/response"
	"github.com/jiaqili/fitroom/internal/tryon"
	"github.com/jiaqili/fitroom/pkg/models"
)

type generateRequest struct {
	UserImage      string            `json:"userImage"`
	ClothingImage  string            `json:"clothingImage"`
	AISettings     models.AISettings `json:"aiSettings"`
	BackgroundType string            `json:"backgroundType"`
}

type generateResponse struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// Generate accepts a try-on request and returns the new session id
// immediately. The result is retrieved by polling the status route.
func Generate(svc *tryon.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		session, err := svc.Submit(r.Context(), tryon.SubmitRequest{
			UserImageURL:     req.UserImage,
			ClothingImageURL: req.ClothingImage,
			Settings:         req.AISettings,
			BackgroundType:   req.BackgroundType,
		})
		if err != nil {
			var verr *tryon.ValidationError
			if errors.As(err, &verr) {
				response.FieldErrors(w, verr.Fields)
				return
			}
			response.Error(w, http.StatusInternalServerError, "failed to create session")
			return
		}

		response.JSON(w, http.StatusOK, generateResponse{
			SessionID: session.ID,
			Status:    session.Status,
			Message:   "AI try-on generation started",
		})
	}
}
