// Package httpserver exposes the hub's aggregation operations and the
// websocket fan-out endpoint. Routing and validation are thin; all behavior
// lives in the aggregation packages.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/disaster-response-hub/internal/domain"
	"github.com/couchcryptid/disaster-response-hub/internal/hub"
	"github.com/couchcryptid/disaster-response-hub/internal/store"
)

// Geocoder resolves a query to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query domain.GeocodeQuery) (domain.GeocodeResult, error)
}

// SocialFeed fetches tag-filtered social-media reports for a disaster.
type SocialFeed interface {
	Fetch(ctx context.Context, disasterID string, tags []string) []domain.FeedItem
}

// OfficialFeed fetches official updates for a disaster and location label.
type OfficialFeed interface {
	Fetch(ctx context.Context, disasterID, location string) []domain.FeedItem
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the aggregation API, health, readiness, metrics, and the
// websocket endpoint.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger

	geocoder  Geocoder
	social    SocialFeed
	official  OfficialFeed
	disasters store.Disasters
	resources store.ResourceFinder
	events    *hub.Hub
	ready     ReadinessChecker
}

// Deps bundles the collaborators the server routes to.
type Deps struct {
	Geocoder  Geocoder
	Social    SocialFeed
	Official  OfficialFeed
	Disasters store.Disasters
	Resources store.ResourceFinder
	Events    *hub.Hub
	Ready     ReadinessChecker
}

// NewServer creates the HTTP server with all routes mounted.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	s := &Server{
		logger:    logger,
		geocoder:  deps.Geocoder,
		social:    deps.Social,
		official:  deps.Official,
		disasters: deps.Disasters,
		resources: deps.Resources,
		events:    deps.Events,
		ready:     deps.Ready,
	}

	r := chi.NewRouter()
	r.Use(requestLogger(logger))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/geocode", s.handleGeocode)
		r.Route("/disasters/{disasterID}", func(r chi.Router) {
			r.Get("/social-media", s.handleSocialMedia)
			r.Get("/social-media/alerts", s.handleSocialAlerts)
			r.Get("/official-updates", s.handleOfficialUpdates)
			r.Get("/resources", s.handleResources)
			r.Post("/resources", s.handleCreateResource)
		})
	})

	r.Get("/ws", s.handleWS)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.ready.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// geocodeRequest is the body of POST /api/geocode. Exactly one of the two
// fields must be set; location wins when both are.
type geocodeRequest struct {
	Description string `json:"description"`
	Location    string `json:"location"`
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	var req geocodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var query domain.GeocodeQuery
	switch {
	case strings.TrimSpace(req.Location) != "":
		query = domain.ByLocation(strings.TrimSpace(req.Location))
	case strings.TrimSpace(req.Description) != "":
		query = domain.ByDescription(req.Description)
	default:
		writeError(w, http.StatusBadRequest, "description or location is required")
		return
	}

	result, err := s.geocoder.Geocode(r.Context(), query)
	if err != nil {
		var extractionErr *domain.ExtractionError
		var geocodeErr *domain.GeocodeError
		switch {
		case errors.As(err, &extractionErr), errors.As(err, &geocodeErr):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.logger.Error("geocode failed", "error", err)
			writeError(w, http.StatusInternalServerError, "geocoding failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSocialMedia(w http.ResponseWriter, r *http.Request) {
	disasterID := chi.URLParam(r, "disasterID")
	tags := parseTags(r.URL.Query().Get("tags"))

	items := s.social.Fetch(r.Context(), disasterID, tags)
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleSocialAlerts(w http.ResponseWriter, r *http.Request) {
	disasterID := chi.URLParam(r, "disasterID")
	tags := parseTags(r.URL.Query().Get("tags"))

	items := s.social.Fetch(r.Context(), disasterID, tags)
	writeJSON(w, http.StatusOK, map[string]any{"items": domain.DetectPriorityAlerts(items)})
}

func (s *Server) handleOfficialUpdates(w http.ResponseWriter, r *http.Request) {
	disasterID := chi.URLParam(r, "disasterID")

	location := r.URL.Query().Get("location")
	if location == "" {
		if d, err := s.disasters.Disaster(r.Context(), disasterID); err == nil {
			location = d.LocationName
		}
	}

	items := s.official.Fetch(r.Context(), disasterID, location)
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	disasterID := chi.URLParam(r, "disasterID")
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "lat and lon query parameters are required")
		return
	}

	radius := 10000.0
	if v := r.URL.Query().Get("radius"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "radius must be a positive number of meters")
			return
		}
		radius = parsed
	}

	resources, err := s.resources.ResourcesNearby(r.Context(), disasterID, lat, lon, radius)
	if err != nil {
		s.logger.Error("resource lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "resource lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resources": resources})
}

func (s *Server) handleCreateResource(w http.ResponseWriter, r *http.Request) {
	disasterID := chi.URLParam(r, "disasterID")

	var res store.Resource
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if res.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	res.DisasterID = disasterID

	created, err := s.resources.CreateResource(r.Context(), res)
	if err != nil {
		s.logger.Error("resource create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "resource create failed")
		return
	}

	s.publishLifecycle("resource", domain.ActionCreate, disasterID, created)
	writeJSON(w, http.StatusCreated, created)
}

// publishLifecycle pushes a completed CRUD result to the fan-out hub.
// Encoding failures are logged and dropped; the write already succeeded.
func (s *Server) publishLifecycle(kind string, action domain.Action, disasterID string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode event payload", "kind", kind, "error", err)
		return
	}
	s.events.Publish(domain.LifecycleEvent{
		Kind:    kind,
		Action:  action,
		Payload: data,
		Scope:   disasterID,
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	hub.ServeWS(s.events, w, r, s.logger)
}

func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.status,
				"duration", time.Since(start),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
