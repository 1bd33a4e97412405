// Package httpapi exposes the profile service over HTTP: JSON
// endpoints for the current snapshot and a server-sent event stream
// for change notifications.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/termprof/core"
	"pkt.systems/termprof/internal/version"
	"pkt.systems/termprof/schema"
)

// Server serves the HTTP API.
type Server struct {
	cfg     Config
	service core.Service
	hub     *Hub
}

// NewServer constructs an HTTP server over the profile service.
func NewServer(cfg Config, service core.Service, hub *Hub) *Server {
	return &Server{
		cfg:     cfg,
		service: service,
		hub:     hub,
	}
}

// Handler returns an http.Handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/profiles", s.handleProfiles)
	mux.HandleFunc("/api/profiles/contributed", s.handleContributed)
	mux.HandleFunc("/api/profiles/default", s.handleDefault)
	mux.HandleFunc("/api/profiles/refresh", s.handleRefresh)
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.HandleFunc("/api/version", s.handleVersion)
	return withRequestLogging(mux)
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	ready := false
	select {
	case <-s.service.ProfilesReady():
		ready = true
	default:
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"platform": s.service.Platform(),
		"ready":    ready,
		"profiles": s.service.AvailableProfiles(),
	})
}

func (s *Server) handleContributed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"platform":    s.service.Platform(),
		"contributed": s.service.ContributedProfiles(),
	})
}

func (s *Server) handleDefault(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	name, err := s.service.DefaultProfileName()
	if err != nil {
		if errors.Is(err, schema.ErrNoDefaultProfile) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"default_profile": name})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	if err := s.service.RefreshAvailableProfiles(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profiles": len(s.service.AvailableProfiles()),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"module":  version.Module(),
		"version": version.Current(),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("stream unsupported"))
		return
	}
	log := pslog.Ctx(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	lastID := parseUint(r.Header.Get("Last-Event-ID"))

	// Seed the client with the current snapshot before streaming.
	name, _ := s.service.DefaultProfileName()
	_ = writeSSEvent(w, StreamEvent{
		Type:           "snapshot",
		Platform:       s.service.Platform(),
		Profiles:       s.service.AvailableProfiles(),
		Contributed:    s.service.ContributedProfiles(),
		DefaultProfile: name,
		Timestamp:      time.Now(),
	})
	flusher.Flush()

	replayCount := 0
	if lastID > 0 {
		replay := s.hub.Replay(lastID)
		replayCount = len(replay)
		for _, event := range replay {
			_ = writeSSEvent(w, event)
		}
		flusher.Flush()
	}

	ch, unsubscribe, _, _ := s.hub.Subscribe()
	defer unsubscribe()

	notify := r.Context().Done()
	log.Info("http stream opened", "last_id", lastID, "replay", replayCount)
	for {
		select {
		case <-notify:
			log.Info("http stream closed")
			return
		case event := <-ch:
			_ = writeSSEvent(w, event)
			flusher.Flush()
		}
	}
}

func parseUint(value string) uint64 {
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeSSEvent(w http.ResponseWriter, event StreamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("id: " + strconv.FormatUint(event.Seq, 10) + "\n")); err != nil {
		return err
	}
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n\n"))
	return err
}
