// Package sse streams content change notifications to connected clients as
// Server-Sent Events. The dev site listens for snapshot reloads to refresh
// without a rebuild.
package sse

import "time"

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventConnected is the first event a client receives.
	EventConnected EventType = "connected"
	// EventSnapshotReloaded is sent after the snapshot files were reloaded.
	EventSnapshotReloaded EventType = "snapshot.reloaded"
	// EventSnapshotReloadFailed is sent when a reload left the previous snapshot in place.
	EventSnapshotReloadFailed EventType = "snapshot.reload_failed"
	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Type      EventType `json:"type"`
}

// SnapshotReloadedData is the payload of EventSnapshotReloaded.
type SnapshotReloadedData struct {
	Recipes    int  `json:"recipes"`
	MenuItems  int  `json:"menuItems"`
	HasWebsite bool `json:"hasWebsite"`
}

// ReloadFailedData is the payload of EventSnapshotReloadFailed.
type ReloadFailedData struct {
	Error string `json:"error"`
}

// NewSnapshotReloadedEvent creates a snapshot.reloaded event.
func NewSnapshotReloadedEvent(data SnapshotReloadedData) Event {
	return Event{Type: EventSnapshotReloaded, Data: data, Timestamp: time.Now()}
}

// NewReloadFailedEvent creates a snapshot.reload_failed event.
func NewReloadFailedEvent(err error) Event {
	return Event{Type: EventSnapshotReloadFailed, Data: ReloadFailedData{Error: err.Error()}, Timestamp: time.Now()}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{Type: EventHeartbeat, Timestamp: time.Now()}
}
