package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jiaqili/fitroom/internal/api/response"
	"github.com/jiaqili/fitroom/internal/store"
	"github.com/jiaqili/fitroom/internal/tryon"
	"github.com/jiaqili/fitroom/pkg/models"
)

type statusResponse struct {
	SessionID      string `json:"sessionId"`
	Status         string `json:"status"`
	Progress       int    `json:"progress"`
	ResultImageURL string `json:"resultImageUrl,omitempty"`
	Analysis       string `json:"analysis,omitempty"`
	Suggestions    string `json:"suggestions,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Status reports the current state of a try-on session. Completed sessions
// include the generated result; failed ones a human-readable reason.
func Status(svc *tryon.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")

		session, err := svc.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "session not found")
				return
			}
			response.Error(w, http.StatusInternalServerError, "failed to load session")
			return
		}

		response.JSON(w, http.StatusOK, statusView(session))
	}
}

func statusView(s *models.Session) statusResponse {
	resp := statusResponse{
		SessionID: s.ID,
		Status:    s.Status,
		Progress:  s.Progress,
	}
	if s.Result != nil {
		resp.ResultImageURL = s.Result.ResultImageURL
		resp.Analysis = s.Result.Analysis
		resp.Suggestions = s.Result.Suggestions
	}
	if s.ErrorMessage != nil {
		resp.Error = *s.ErrorMessage
	}
	return resp
}
