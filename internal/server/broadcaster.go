package server

import (
	"log"
	"sync"
)

// Session is one open notification channel, one per connected UI tab.
// Send must not block indefinitely; a failed send marks the session dead.
type Session interface {
	Send(n Notification) error
	Close()
}

// Broadcaster fans a single invalidation signal out to all currently
// connected UI sessions. Session add/remove/iterate is guarded by a
// mutex so the watcher's timer goroutine and the HTTP handlers can call
// in concurrently.
type Broadcaster struct {
	mu       sync.Mutex
	sessions map[Session]bool
	mode     string
	changeTy string
}

// NewBroadcaster creates a Broadcaster for the given review mode and its
// static change-type classification.
func NewBroadcaster(mode, changeType string) *Broadcaster {
	return &Broadcaster{
		sessions: make(map[Session]bool),
		mode:     mode,
		changeTy: changeType,
	}
}

// AddClient registers a session and immediately sends it a "connected"
// notification carrying the current mode. A session whose greeting fails
// is dropped on the spot.
func (b *Broadcaster) AddClient(s Session) {
	b.mu.Lock()
	b.sessions[s] = true
	count := len(b.sessions)
	b.mu.Unlock()

	log.Printf("[Broadcaster] Client connected (%d total)", count)

	if err := s.Send(NewConnectedNotification(b.mode, b.changeTy)); err != nil {
		log.Printf("[Broadcaster] Dropping client, greeting failed: %v", err)
		b.RemoveClient(s)
	}
}

// RemoveClient unregisters a session and closes it.
func (b *Broadcaster) RemoveClient(s Session) {
	b.mu.Lock()
	_, present := b.sessions[s]
	delete(b.sessions, s)
	count := len(b.sessions)
	b.mu.Unlock()

	if present {
		s.Close()
		log.Printf("[Broadcaster] Client disconnected (%d total)", count)
	}
}

// Broadcast writes the same notification to every session. A write
// failure on one session removes only that session and never aborts
// delivery to the others.
func (b *Broadcaster) Broadcast(n Notification) {
	b.mu.Lock()
	sessions := make([]Session, 0, len(b.sessions))
	for s := range b.sessions {
		sessions = append(sessions, s)
	}
	b.mu.Unlock()

	var failed []Session
	for _, s := range sessions {
		if err := s.Send(n); err != nil {
			log.Printf("[Broadcaster] Send failed, dropping client: %v", err)
			failed = append(failed, s)
		}
	}
	for _, s := range failed {
		b.RemoveClient(s)
	}
}

// NotifyReload implements watch.Notifier: one reload notification per
// debounced change.
func (b *Broadcaster) NotifyReload(changeType string) {
	b.Broadcast(NewReloadNotification(b.mode, changeType))
}

// ClientCount returns the number of connected sessions.
func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

// CloseAll drops every session. Used on shutdown.
func (b *Broadcaster) CloseAll() {
	b.mu.Lock()
	sessions := make([]Session, 0, len(b.sessions))
	for s := range b.sessions {
		sessions = append(sessions, s)
	}
	b.sessions = make(map[Session]bool)
	b.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
