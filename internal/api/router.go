// Package api wires the HTTP surface: middleware stack, routes, and the
// static upload file server.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jiaqili/fitroom/internal/api/handler"
	"github.com/jiaqili/fitroom/internal/api/middleware"
	"github.com/jiaqili/fitroom/internal/cache"
	"github.com/jiaqili/fitroom/internal/config"
	"github.com/jiaqili/fitroom/internal/store"
	"github.com/jiaqili/fitroom/internal/tryon"
	"github.com/jiaqili/fitroom/internal/upload"
)

// Dependencies carries everything the router needs. All fields are required.
type Dependencies struct {
	Config  *config.Config
	Store   store.Store
	Cache   cache.Cache
	TryOn   *tryon.Service
	Uploads *upload.Processor
}

// NewRouter builds the chi router with the full middleware stack and all
// routes mounted.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS([]string{deps.Config.Server.CORSOrigin}))
	r.Use(middleware.RateLimit(deps.Cache, deps.Config.Server.RatePerMinute))

	r.Get("/health", handler.Health(deps.Store, deps.Cache))

	r.Route("/tryon", func(r chi.Router) {
		r.Post("/generate", handler.Generate(deps.TryOn))
		r.Get("/status/{sessionID}", handler.Status(deps.TryOn))
		r.Get("/backgrounds", handler.Backgrounds())
	})

	r.Post("/upload", handler.Upload(deps.Uploads, deps.Config.Upload.MaxFileSize, deps.Config.Server.PublicBaseURL))

	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.Uploads.Dir())))
	r.Get("/uploads/*", fileServer.ServeHTTP)

	return r
}
