// Package web exposes the HTTP surface the presentation layer talks to:
// listing, deferring, waking, rescheduling and deleting scheduled items.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/noahxzhu/tabwake/internal/model"
)

// ItemService is the engine-facing contract. All mutations go through it so
// the single-writer guarantee holds.
type ItemService interface {
	Items() []*model.ScheduledItem
	Add(items []*model.ScheduledItem) error
	WakeItems(ids []string) error
	Remove(id string) error
	Reschedule(id string, at time.Time) (bool, error)
	NewID() string
}

type SettingsStore interface {
	GetSettings() model.Settings
	UpdateSettings(settings model.Settings) error
}

type Server struct {
	settings SettingsStore
	service  ItemService
	router   *http.ServeMux
}

func NewServer(settings SettingsStore, service ItemService) *Server {
	s := &Server{
		settings: settings,
		service:  service,
		router:   http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /api/items", s.handleList)
	s.router.HandleFunc("POST /api/items", s.handleAdd)
	s.router.HandleFunc("POST /api/wake", s.handleWake)
	s.router.HandleFunc("POST /api/items/reschedule", s.handleReschedule)
	s.router.HandleFunc("DELETE /api/items/{id}", s.handleDelete)
	s.router.HandleFunc("GET /api/settings", s.handleGetSettings)
	s.router.HandleFunc("PUT /api/settings", s.handlePutSettings)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	items := s.service.Items()
	if items == nil {
		items = []*model.ScheduledItem{}
	}
	s.writeJSON(w, http.StatusOK, items)
}

type deferTab struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Favicon string `json:"favicon"`
}

type deferRequest struct {
	Tabs        []deferTab               `json:"tabs"`
	WakeTime    time.Time                `json:"wake_time"`
	IsRecurring bool                     `json:"is_recurring"`
	Recurrence  *model.RecurrencePattern `json:"recurrence,omitempty"`
}

// handleAdd defers one tab or a whole window. More than one tab gets a
// shared window session id and the common wake time, which is all a window
// group is.
func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req deferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Tabs) == 0 {
		s.writeError(w, http.StatusBadRequest, "no tabs given")
		return
	}
	if req.WakeTime.IsZero() {
		s.writeError(w, http.StatusBadRequest, "wake_time is required")
		return
	}

	session := ""
	if len(req.Tabs) > 1 {
		session = s.service.NewID()
	}

	items := make([]*model.ScheduledItem, 0, len(req.Tabs))
	for i, tab := range req.Tabs {
		items = append(items, &model.ScheduledItem{
			ID:              s.service.NewID(),
			URL:             tab.URL,
			Title:           tab.Title,
			Favicon:         tab.Favicon,
			WakeTime:        req.WakeTime,
			WindowSessionID: session,
			WindowIndex:     i,
			IsRecurring:     req.IsRecurring,
			Recurrence:      req.Recurrence,
		})
	}

	if err := s.service.Add(items); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to save: "+err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, items)
}

type wakeRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleWake(w http.ResponseWriter, r *http.Request) {
	var req wakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.IDs) == 0 {
		s.writeError(w, http.StatusBadRequest, "no ids given")
		return
	}

	if err := s.service.WakeItems(req.IDs); err != nil {
		s.writeError(w, http.StatusInternalServerError, "wake failed: "+err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type rescheduleRequest struct {
	ID       string    `json:"id"`
	WakeTime time.Time `json:"wake_time"`
}

func (s *Server) handleReschedule(w http.ResponseWriter, r *http.Request) {
	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ID == "" || req.WakeTime.IsZero() {
		s.writeError(w, http.StatusBadRequest, "id and wake_time are required")
		return
	}

	found, err := s.service.Reschedule(req.ID, req.WakeTime)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to save: "+err.Error())
		return
	}
	if !found {
		s.writeError(w, http.StatusNotFound, "unknown item id")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Remove(r.PathValue("id")); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to save: "+err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.settings.GetSettings())
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var settings model.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.settings.UpdateSettings(settings); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to save settings: "+err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}
