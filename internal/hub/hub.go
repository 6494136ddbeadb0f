// Package hub holds the shared runtime picture of the peer council: per-peer
// availability, a bounded event log, and a bounded control log. Everything is
// in memory behind one mutex; readers get deep copies.
package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// #region caps

const (
	// DefaultEventCap bounds the event log; the oldest events fall off first.
	DefaultEventCap = 512
	// DefaultControlCap bounds the control log.
	DefaultControlCap = 256
)

// #endregion caps

// #region types

// PeerState is the hub's view of one verdict peer.
type PeerState struct {
	CoreName      string    `json:"core_name"`
	Availability  string    `json:"availability"`
	LastAssertion string    `json:"last_assertion,omitempty"`
	LastSeen      time.Time `json:"last_seen"`
}

// Event is one appended hub event. Payload is stored as given; unknown
// fields from callers pass through untouched.
type Event struct {
	EventID string         `json:"event_id"`
	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload,omitempty"`
	At      time.Time      `json:"at"`
}

// ControlEntry is one control-channel message routed through the hub.
type ControlEntry struct {
	EntryID string         `json:"entry_id"`
	Target  string         `json:"target"`
	Level   string         `json:"level"`
	Body    map[string]any `json:"body,omitempty"`
	At      time.Time      `json:"at"`
}

// Snapshot is a point-in-time deep copy of the hub.
type Snapshot struct {
	Peers    map[string]PeerState `json:"peers"`
	Events   []Event              `json:"events"`
	Controls []ControlEntry       `json:"controls"`
	TakenAt  time.Time            `json:"taken_at"`
}

// #endregion types

// #region hub-struct

// Hub is the shared state container. Safe for concurrent use.
type Hub struct {
	mu         sync.Mutex
	peers      map[string]PeerState
	events     []Event
	controls   []ControlEntry
	eventCap   int
	controlCap int
	now        func() time.Time
}

// New creates a hub with the given log caps; non-positive caps take the
// defaults.
func New(eventCap, controlCap int) *Hub {
	if eventCap <= 0 {
		eventCap = DefaultEventCap
	}
	if controlCap <= 0 {
		controlCap = DefaultControlCap
	}
	return &Hub{
		peers:      map[string]PeerState{},
		eventCap:   eventCap,
		controlCap: controlCap,
		now:        time.Now,
	}
}

// #endregion hub-struct

// #region peers

// UpdatePeer records a peer's availability and latest assertion. LastSeen
// never moves backwards, so a late-arriving stale update cannot mask a
// fresher one.
func (h *Hub) UpdatePeer(coreName, availability, lastAssertion string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now().UTC()
	state, ok := h.peers[coreName]
	if ok && state.LastSeen.After(now) {
		now = state.LastSeen
	}
	state.CoreName = coreName
	state.Availability = availability
	if lastAssertion != "" {
		state.LastAssertion = lastAssertion
	}
	state.LastSeen = now
	h.peers[coreName] = state
}

// #endregion peers

// #region logs

// RecordEvent appends an event, evicting the oldest past the cap.
func (h *Hub) RecordEvent(kind string, payload map[string]any) Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	e := Event{
		EventID: uuid.New().String(),
		Kind:    kind,
		Payload: copyPayload(payload),
		At:      h.now().UTC(),
	}
	h.events = append(h.events, e)
	if len(h.events) > h.eventCap {
		h.events = append([]Event(nil), h.events[len(h.events)-h.eventCap:]...)
	}
	return e
}

// RecordControl appends a control entry, evicting the oldest past the cap.
func (h *Hub) RecordControl(target, level string, body map[string]any) ControlEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := ControlEntry{
		EntryID: uuid.New().String(),
		Target:  target,
		Level:   level,
		Body:    copyPayload(body),
		At:      h.now().UTC(),
	}
	h.controls = append(h.controls, c)
	if len(h.controls) > h.controlCap {
		h.controls = append([]ControlEntry(nil), h.controls[len(h.controls)-h.controlCap:]...)
	}
	return c
}

// EventsSince returns copies of events recorded strictly after t, oldest
// first.
func (h *Hub) EventsSince(t time.Time) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []Event
	for _, e := range h.events {
		if e.At.After(t) {
			out = append(out, copyEvent(e))
		}
	}
	return out
}

// #endregion logs

// #region snapshot

// State returns a deep copy of the whole hub. Callers can mutate the result
// freely.
func (h *Hub) State() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	snap := Snapshot{
		Peers:   make(map[string]PeerState, len(h.peers)),
		TakenAt: h.now().UTC(),
	}
	for name, p := range h.peers {
		snap.Peers[name] = p
	}
	snap.Events = make([]Event, len(h.events))
	for i, e := range h.events {
		snap.Events[i] = copyEvent(e)
	}
	snap.Controls = make([]ControlEntry, len(h.controls))
	for i, c := range h.controls {
		snap.Controls[i] = c
		snap.Controls[i].Body = copyPayload(c.Body)
	}
	return snap
}

func copyEvent(e Event) Event {
	e.Payload = copyPayload(e.Payload)
	return e
}

// copyPayload deep-copies nested maps and slices so hub state and snapshot
// readers never share mutable structure.
func copyPayload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyPayload(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}

// #endregion snapshot
