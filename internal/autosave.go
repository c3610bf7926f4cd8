package internal

import (
	"sync"
	"time"
)

// DefaultAutoSaveDelay is the quiet period before an auto-save fires.
const DefaultAutoSaveDelay = 2 * time.Second

// SessionSaver is the slice of the store the auto-saver needs.
type SessionSaver interface {
	SaveSession(*EditSession) error
	SaveNoteContent(noteID, content string) error
}

// AutoSaver debounces persistence for one open tracker. Every mutation
// resets a quiet-period timer; when the timer fires the session draft is
// persisted. Auto-save failures never reach the caller: they are logged
// and the write is retried on the next window. Flush persists immediately
// and does surface errors (manual save must not fail silently).
type AutoSaver struct {
	mu      sync.Mutex
	tracker *Tracker
	saver   SessionSaver
	delay   time.Duration
	timer   *time.Timer
	stopped bool
	dirty   bool
}

// NewAutoSaver binds a debounced saver to one tracker.
func NewAutoSaver(tracker *Tracker, saver SessionSaver, delay time.Duration) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutoSaveDelay
	}
	return &AutoSaver{tracker: tracker, saver: saver, delay: delay}
}

// OnMutation schedules (or reschedules) an auto-save after the quiet
// period. Call it after every accepted mutation.
func (a *AutoSaver) OnMutation() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	a.dirty = true
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
}

func (a *AutoSaver) fire() {
	a.mu.Lock()
	// A save landing after close is a no-op against the closed session.
	if a.stopped || a.tracker.Closed() || !a.dirty {
		a.mu.Unlock()
		return
	}
	session := a.tracker.Snapshot()
	a.dirty = false
	a.mu.Unlock()

	if err := a.saver.SaveSession(session); err != nil {
		LogWarn("auto-save failed for session %s, will retry: %v", session.ID, err)
		a.mu.Lock()
		if !a.stopped && !a.tracker.Closed() {
			a.dirty = true
			if a.timer != nil {
				a.timer.Stop()
			}
			a.timer = time.AfterFunc(a.delay, a.fire)
		}
		a.mu.Unlock()
		return
	}
	LogDebug("auto-saved session %s", session.ID)
}

// Flush cancels any pending auto-save and persists the session and note
// content immediately. Unlike the debounced path, errors surface to the
// caller.
func (a *AutoSaver) Flush() error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.dirty = false
	session := a.tracker.Snapshot()
	a.mu.Unlock()

	if err := a.saver.SaveSession(session); err != nil {
		return err
	}
	return a.saver.SaveNoteContent(session.NoteID, session.CurrentContent)
}

// Stop cancels any pending auto-save permanently. Called when the session
// closes.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	if a.timer != nil {
		a.timer.Stop()
	}
}
