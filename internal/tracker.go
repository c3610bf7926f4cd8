package internal

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type trackerState int

const (
	stateOpen trackerState = iota
	stateClosing
	stateClosed
)

// ChangeObserver is notified once per DeltaChange as it is recorded.
type ChangeObserver func(DeltaChange)

// TrackerOption configures a Tracker at start time.
type TrackerOption func(*Tracker)

// WithClock injects the tracker's time source. Tests use a fake clock so
// timing-derived analytics are deterministic.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// WithObserver registers a change-observed callback.
func WithObserver(fn ChangeObserver) TrackerOption {
	return func(t *Tracker) { t.observer = fn }
}

// WithSectionTable overrides the default section vocabulary.
func WithSectionTable(table *SectionTable) TrackerOption {
	return func(t *Tracker) { t.classifier = NewClassifier(table) }
}

// WithClinicalContext attaches opaque passthrough context to the session.
func WithClinicalContext(ctx map[string]interface{}) TrackerOption {
	return func(t *Tracker) { t.session.ClinicalContext = ctx }
}

// Tracker accumulates the edit deltas of one open note. Mutations arrive
// serially from a single editing surface and are processed synchronously;
// the mutex exists only because the debounced auto-saver snapshots the
// session from a timer goroutine.
type Tracker struct {
	mu         sync.Mutex
	session    *EditSession
	state      trackerState
	classifier *Classifier
	observer   ChangeObserver
	now        func() time.Time
	keystrokes int
}

// StartSession opens a tracker for a note, beginning a new edit session
// over the given initial content.
func StartSession(noteID, initialContent string, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		session: &EditSession{
			ID:              uuid.NewString(),
			NoteID:          noteID,
			OriginalContent: initialContent,
			CurrentContent:  initialContent,
		},
		state: stateOpen,
		now:   time.Now,
	}
	defaultTable, _ := NewSectionTable(DefaultSectionRules())
	t.classifier = NewClassifier(defaultTable)
	for _, opt := range opts {
		opt(t)
	}
	t.session.StartTime = t.now()
	return t
}

// RecordMutation ingests a full-content snapshot from the editing surface.
// Unchanged content is a no-op. Otherwise the snapshot is diffed against
// the running content, the resulting deltas are appended to the session,
// and the observer (if any) is invoked per delta.
func (t *Tracker) RecordMutation(newContent string) ([]DeltaChange, error) {
	t.mu.Lock()
	if t.state != stateOpen {
		t.mu.Unlock()
		return nil, &SessionClosedError{SessionID: t.session.ID, NoteID: t.session.NoteID}
	}
	if newContent == t.session.CurrentContent {
		t.mu.Unlock()
		return nil, nil
	}

	t.keystrokes++
	changes := t.classifier.Classify(t.session.CurrentContent, newContent, t.now(), t.session.StartTime, t.keystrokes)
	t.session.CurrentContent = newContent
	t.session.Changes = append(t.session.Changes, changes...)
	t.session.TotalChanges = len(t.session.Changes)
	total := t.session.TotalChanges
	t.mu.Unlock()

	if t.observer != nil {
		for _, ch := range changes {
			t.observer(ch)
		}
	}
	LogDebug("session %s: %d change(s) recorded (total %d)", t.session.ID, len(changes), total)
	return changes, nil
}

// Close finalizes the session: no further mutations are accepted, the end
// time is set and the frozen EditSession is returned. Closing twice
// returns the same finalized record.
func (t *Tracker) Close() (*EditSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == stateClosed {
		return t.session, nil
	}
	t.state = stateClosing
	end := t.now()
	t.session.EndTime = &end
	t.state = stateClosed
	LogInfo("session %s closed: %d changes over %s", t.session.ID, t.session.TotalChanges, end.Sub(t.session.StartTime))
	return t.session, nil
}

// Closed reports whether the session no longer accepts mutations.
func (t *Tracker) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state != stateOpen
}

// Session returns the tracker's session record. Callers must treat it as
// read-only while the tracker is open; goroutines other than the editing
// surface should use Snapshot.
func (t *Tracker) Session() *EditSession {
	return t.session
}

// Snapshot returns a copy of the session safe to read or marshal while
// the editing surface keeps mutating. The auto-saver persists snapshots
// so a save never races an in-flight mutation.
func (t *Tracker) Snapshot() *EditSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := *t.session
	cp.Changes = append([]DeltaChange(nil), t.session.Changes...)
	return &cp
}

// Analytics computes aggregate counts over the accumulated changes.
// Callable at any time, including mid-session.
func (t *Tracker) Analytics() SessionAnalytics {
	t.mu.Lock()
	defer t.mu.Unlock()
	end := t.now()
	if t.session.EndTime != nil {
		end = *t.session.EndTime
	}
	return ComputeAnalytics(t.session.Changes, t.keystrokes, end.Sub(t.session.StartTime))
}
