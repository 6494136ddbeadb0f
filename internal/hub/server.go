package hub

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"
)

// #region http-surface

// Server exposes the hub over HTTP: state snapshots, event polling, and the
// control channel. The surface is unauthenticated and meant for a trusted
// network segment.
type Server struct {
	hub *Hub
	mux *http.ServeMux
}

// NewServer wires the hub's HTTP handlers.
func NewServer(h *Hub) *Server {
	s := &Server{hub: h, mux: http.NewServeMux()}
	s.mux.HandleFunc("/api/state", s.handleState)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/api/control", s.handleControl)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// #endregion http-surface

// #region handlers

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.hub.State())
}

// handleEvents serves GET /api/events?since=<unix seconds>. A missing or
// unparsable since returns the whole retained log.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	since := time.Time{}
	if raw := r.URL.Query().Get("since"); raw != "" {
		if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
			since = time.Unix(secs, 0).UTC()
		}
	}
	events := s.hub.EventsSince(since)
	if events == nil {
		events = []Event{}
	}
	writeJSON(w, map[string]any{"events": events})
}

// handleControl accepts POST /api/control with a JSON body carrying at least
// a timestamp field. Unknown fields are preserved in the recorded entry.
func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if _, ok := body["timestamp"]; !ok {
		http.Error(w, "missing timestamp", http.StatusBadRequest)
		return
	}
	target, _ := body["target"].(string)
	level, _ := body["level"].(string)
	entry := s.hub.RecordControl(target, level, body)
	log.Printf("[HUB] control entry %s target=%q level=%q", entry.EntryID, target, level)
	writeJSON(w, map[string]any{"accepted": true, "entry_id": entry.EntryID})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HUB] encode response: %v", err)
	}
}

// #endregion handlers
