package handler

import (
	"net/http"
	"time"

	"github.com/jiaqili/fitroom/internal/api/response"
	"github.com/jiaqili/fitroom/internal/cache"
	"github.com/jiaqili/fitroom/internal/store"
)

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health pings the session store and cache. Degraded dependencies are
// reported per-check with a 503 overall status.
func Health(st store.Store, ca cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"store": "ok",
			"cache": "ok",
		}
		status := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks["store"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := ca.Ping(r.Context()); err != nil {
			checks["cache"] = err.Error()
			status = http.StatusServiceUnavailable
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		response.JSON(w, status, healthResponse{
			Status:    overall,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    checks,
		})
	}
}
