package handlers

import (
	"courier-route-service/internal/api/dto"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/ports"
	"courier-route-service/internal/services"
	"net/http"
	"time"
)

// RouteReader exposes the currently rendered route set.
type RouteReader interface {
	Routes() []domain.Route
	LastRun() time.Time
}

// Notifier requests an asynchronous recompute.
type Notifier interface {
	Notify()
}

// RouteHandler serves the rendered routes and triggers recomputes.
type RouteHandler struct {
	Routes   RouteReader
	Notifier Notifier
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	routes := h.Routes.Routes()
	res := dto.ListRoutesResponse{Routes: make([]dto.RouteResponse, 0, len(routes))}
	if last := h.Routes.LastRun(); !last.IsZero() {
		res.LastRun = &last
	}
	for _, rt := range routes {
		res.Routes = append(res.Routes, dto.FromRoute(rt))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Recompute schedules a debounced recompute and returns immediately.
func (h *RouteHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	h.Notifier.Notify()
	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

// PreviewHandler plans routes for a caller-supplied snapshot without
// touching the renderer.
type PreviewHandler struct {
	Roster   services.Permitter
	Distance ports.DistanceFunc
	Clock    ports.Clock
}

func (h *PreviewHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.PreviewRequest
	if msg := decodeBody(r, &req); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	now := domain.TimeOfDayOf(h.Clock.Now())
	if req.Now != nil {
		if !req.Now.Valid() {
			writeError(w, r, http.StatusBadRequest, "now must be a valid time of day")
			return
		}
		now = *req.Now
	}

	routes := services.PlanRoutes(r.Context(), services.PlanRoutesRequest{
		Couriers:   req.Couriers,
		Deliveries: req.Deliveries,
		Now:        now,
	}, h.Roster, h.Distance)

	res := dto.PreviewResponse{Now: now.String(), Routes: make([]dto.RouteResponse, 0, len(routes))}
	for _, rt := range routes {
		res.Routes = append(res.Routes, dto.FromRoute(rt))
	}

	writeJSON(w, r, http.StatusOK, res)
}
