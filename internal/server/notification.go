// Package server provides the HTTP/WebSocket transport for the browser
// UI: the diff API, the comment API, and the session broadcaster that
// pushes change notifications.
package server

import "time"

// Notification event types.
const (
	// NotifyConnected is sent to a session immediately after it attaches.
	NotifyConnected = "connected"

	// NotifyReload tells sessions to re-request the diff.
	NotifyReload = "reload"
)

// Notification is the payload pushed to UI sessions.
type Notification struct {
	// Type is "connected" or "reload".
	Type string `json:"type"`

	// Mode is the review mode the server is running in.
	Mode string `json:"mode"`

	// ChangeType classifies what changed: "file", "commit" or "staging".
	// Static per mode, not derived from which file changed.
	ChangeType string `json:"changeType"`

	// Timestamp is Unix milliseconds.
	Timestamp int64 `json:"timestamp"`

	// Message is a human-readable description for debugging.
	Message string `json:"message"`
}

// NewConnectedNotification builds the greeting sent to a new session.
func NewConnectedNotification(mode, changeType string) Notification {
	return Notification{
		Type:       NotifyConnected,
		Mode:       mode,
		ChangeType: changeType,
		Timestamp:  time.Now().UnixMilli(),
		Message:    "connected to diffdeck",
	}
}

// NewReloadNotification builds the invalidation signal sent after a
// debounced change.
func NewReloadNotification(mode, changeType string) Notification {
	return Notification{
		Type:       NotifyReload,
		Mode:       mode,
		ChangeType: changeType,
		Timestamp:  time.Now().UnixMilli(),
		Message:    "repository changed, reload the diff",
	}
}
