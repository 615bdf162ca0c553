package handler

import (
	"net/http"

	"github.com/jiaqili/fitroom/internal/api/response"
	"github.com/jiaqili/fitroom/internal/catalog"
)

// Backgrounds lists the selectable backdrop templates as a bare array; the
// web client consumes the response body directly.
func Backgrounds() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, catalog.Backgrounds())
	}
}
