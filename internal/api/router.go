package api

import (
	"courier-route-service/internal/api/handlers"
	"courier-route-service/internal/ports"
	"courier-route-service/internal/services"
	"net/http"

	"github.com/rs/zerolog"
)

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Routes   handlers.RouteReader
	Notifier handlers.Notifier
	Roster   services.Permitter
	Distance ports.DistanceFunc
	Clock    ports.Clock
	Logger   zerolog.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{
		Routes:   deps.Routes,
		Notifier: deps.Notifier,
	}
	previewHandler := &handlers.PreviewHandler{
		Roster:   deps.Roster,
		Distance: deps.Distance,
		Clock:    deps.Clock,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/routes", routeHandler.List)
	mux.HandleFunc("/routes/preview", previewHandler.Preview)
	mux.HandleFunc("/routes/recompute", routeHandler.Recompute)

	return loggingMiddleware(deps.Logger, mux)
}
