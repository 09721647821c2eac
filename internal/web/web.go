// Package web exposes the calendar service over HTTP. The route table
// mirrors the Service interface one to one, so internal/client can implement
// the same interface on the other side of the wire.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"calgrid/internal/config"
	"calgrid/internal/ics"
	appLog "calgrid/internal/log"
	"calgrid/internal/model"
)

// Server routes HTTP requests onto a model.Service.
type Server struct {
	cfg       *config.Config
	svc       model.Service
	refresher *ics.Refresher
	loc       *time.Location
	router    *mux.Router
}

// NewServer constructs a Server. refresher may be nil; the refresh and
// webhook endpoints then answer 503.
func NewServer(cfg *config.Config, svc model.Service, refresher *ics.Refresher, loc *time.Location) *Server {
	if loc == nil {
		loc = time.Local
	}
	s := &Server{
		cfg:       cfg,
		svc:       svc,
		refresher: refresher,
		loc:       loc,
		router:    mux.NewRouter(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.router

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// Calendar endpoints
	r.HandleFunc("/api/calendars", s.handleListCalendars).Methods(http.MethodGet)
	r.HandleFunc("/api/calendars", s.handleCreateCalendar).Methods(http.MethodPost)
	r.HandleFunc("/api/calendars/{id}", s.handleUpdateCalendar).Methods(http.MethodPut)
	r.HandleFunc("/api/calendars/{id}", s.handleDeleteCalendar).Methods(http.MethodDelete)
	r.HandleFunc("/api/calendars/{id}/visibility", s.handleSetVisibility).Methods(http.MethodPut)
	r.HandleFunc("/api/calendars/{id}/import", s.handleImport).Methods(http.MethodPost)
	r.HandleFunc("/api/calendars/{id}/export", s.handleExport).Methods(http.MethodGet)

	// Event endpoints
	r.HandleFunc("/api/events", s.handleListEvents).Methods(http.MethodGet)
	r.HandleFunc("/api/events/search", s.handleSearchEvents).Methods(http.MethodGet)
	r.HandleFunc("/api/events", s.handleCreateEvent).Methods(http.MethodPost)
	r.HandleFunc("/api/events/{eventId}", s.handleUpdateEvent).Methods(http.MethodPut)
	r.HandleFunc("/api/events/{eventId}", s.handleDeleteEvent).Methods(http.MethodDelete)

	// Navigation endpoints
	r.HandleFunc("/api/current-date", s.handleCurrentDate).Methods(http.MethodGet)
	r.HandleFunc("/api/navigate/{direction}", s.handleNavigate).Methods(http.MethodPost)

	// Subscription refresh, by hand or by sync notification webhook.
	r.HandleFunc("/api/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/webhook", s.handleWebhook).Methods(http.MethodPost)
}

// Handler returns the full middleware-wrapped handler: CORS outermost, then
// optional basic auth, then the router.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.router)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		h = s.basicAuthMiddleware(h)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         86400,
	})
	return c.Handler(h)
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) basicAuthEnabled() bool {
	ba := s.cfg.BasicAuth
	return ba != nil && ba.Username != "" && ba.Password != ""
}

// basicAuthMiddleware guards all handlers except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="calgrid", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleListCalendars(w http.ResponseWriter, r *http.Request) {
	cals, err := s.svc.ListCalendars(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cals)
}

// createCalendarRequest is the POST /api/calendars body.
type createCalendarRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) handleCreateCalendar(w http.ResponseWriter, r *http.Request) {
	var req createCalendarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	color, err := model.ParseColor(req.Color)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	cal, err := s.svc.CreateCalendar(r.Context(), req.Name, color)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cal)
}

func (s *Server) handleUpdateCalendar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var patch model.CalendarPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	cal, err := s.svc.UpdateCalendar(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

func (s *Server) handleDeleteCalendar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.svc.DeleteCalendar(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// visibilityRequest is the PUT /api/calendars/{id}/visibility body.
type visibilityRequest struct {
	Visible bool `json:"visible"`
}

func (s *Server) handleSetVisibility(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req visibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	cals, err := s.svc.SetCalendarVisibility(r.Context(), id, req.Visible)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cals)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if raw := r.URL.Query().Get("calendars"); raw != "" {
		ids = strings.Split(raw, ",")
	}
	events, err := s.svc.ListEvents(r.Context(), ids)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleSearchEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	includeHidden := r.URL.Query().Get("includeHidden") == "true"

	events, err := s.svc.SearchEvents(r.Context(), q, includeHidden)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var ev model.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	created, err := s.svc.CreateEvent(r.Context(), ev)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["eventId"]

	var patch model.EventPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ev, err := s.svc.UpdateEvent(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["eventId"]
	if err := s.svc.DeleteEvent(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dateResponse is the shape of both navigation responses.
type dateResponse struct {
	CurrentDate string `json:"currentDate"`
}

func (s *Server) handleCurrentDate(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.CurrentDate(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dateResponse{CurrentDate: d.In(s.loc).Format(time.RFC3339)})
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	dir, err := model.ParseDirection(mux.Vars(r)["direction"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	d, err := s.svc.Navigate(r.Context(), dir)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dateResponse{CurrentDate: d.In(s.loc).Format(time.RFC3339)})
}

// importResponse is the POST /api/calendars/{id}/import reply.
type importResponse struct {
	Imported int `json:"imported"`
}

// handleImport accepts a raw ICS payload and creates its non-recurring
// events inside the target calendar (the UI's "upload .cal file" action).
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 4<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	parsed, err := ics.ParseEvents(body, id, s.loc)
	if err != nil {
		appLog.Error("ics import parse failed", err, "calendar", id)
		writeError(w, http.StatusBadRequest, "invalid ICS payload")
		return
	}

	imported := 0
	for _, ev := range parsed {
		if _, err := s.svc.CreateEvent(r.Context(), ev); err != nil {
			writeServiceError(w, err)
			return
		}
		imported++
	}
	writeJSON(w, http.StatusOK, importResponse{Imported: imported})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	events, err := s.svc.ListEvents(r.Context(), []string{id})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	payload, err := ics.Export(events, s.loc)
	if err != nil {
		appLog.Error("ics export failed", err, "calendar", id)
		writeError(w, http.StatusInternalServerError, "failed to export calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(payload))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "no subscriptions configured")
		return
	}
	if err := s.refresher.Refresh(r.Context()); err != nil {
		appLog.Error("manual refresh failed", err)
		writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// handleWebhook accepts calendar-sync change notifications. The payload is
// ignored; the notification just triggers a re-fetch of the subscriptions.
// Acknowledge quickly, refresh in the background.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "no subscriptions configured")
		return
	}

	appLog.Info("sync notification received",
		"user_agent", r.UserAgent(),
		"channel", r.Header.Get("X-Goog-Channel-ID"),
		"resource_state", r.Header.Get("X-Goog-Resource-State"),
	)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.refresher.Refresh(ctx); err != nil {
			appLog.Error("webhook refresh failed", err)
		}
	}()

	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

// writeServiceError maps the service error taxonomy onto status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		appLog.Error("internal service error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
