package internal

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Engine is the integration surface over the edit-tracking and
// personalization components: it owns open trackers, their debounced
// savers, and the experiment controller, all backed by one store.
type Engine struct {
	mu          sync.Mutex
	store       *Store
	open        map[string]*openSession // keyed by session id
	experiments *ExperimentController
	sections    *SectionTable
	saveDelay   time.Duration
}

type openSession struct {
	tracker *Tracker
	saver   *AutoSaver
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSaveDelay overrides the auto-save quiet period.
func WithSaveDelay(d time.Duration) EngineOption {
	return func(e *Engine) { e.saveDelay = d }
}

// WithSections sets the section vocabulary used for new sessions.
func WithSections(table *SectionTable) EngineOption {
	return func(e *Engine) { e.sections = table }
}

// NewEngine creates an engine over a store.
func NewEngine(store *Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store:       store,
		open:        make(map[string]*openSession),
		experiments: NewExperimentController(),
		saveDelay:   DefaultAutoSaveDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sections == nil {
		table, _ := NewSectionTable(DefaultSectionRules())
		e.sections = table
	}
	return e
}

// StartSession opens an edit session for a note and returns its handle.
func (e *Engine) StartSession(noteID, initialContent string, opts ...TrackerOption) string {
	opts = append([]TrackerOption{WithSectionTable(e.sections)}, opts...)
	tracker := StartSession(noteID, initialContent, opts...)
	saver := NewAutoSaver(tracker, e.store, e.saveDelay)

	e.mu.Lock()
	e.open[tracker.Session().ID] = &openSession{tracker: tracker, saver: saver}
	e.mu.Unlock()

	LogInfo("session %s opened for note %s", tracker.Session().ID, noteID)
	return tracker.Session().ID
}

// RecordMutation routes a content snapshot to the session's tracker and
// reschedules its auto-save.
func (e *Engine) RecordMutation(sessionID, newContent string) ([]DeltaChange, error) {
	e.mu.Lock()
	entry, ok := e.open[sessionID]
	e.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown session: %s", sessionID)
	}

	changes, err := entry.tracker.RecordMutation(newContent)
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		entry.saver.OnMutation()
	}
	return changes, nil
}

// Analytics returns mid-session aggregate analytics.
func (e *Engine) Analytics(sessionID string) (SessionAnalytics, error) {
	e.mu.Lock()
	entry, ok := e.open[sessionID]
	e.mu.Unlock()
	if !ok {
		return SessionAnalytics{}, fmt.Errorf("unknown session: %s", sessionID)
	}
	return entry.tracker.Analytics(), nil
}

// CloseSession finalizes a session: mutations stop being accepted, any
// pending auto-save is cancelled, and the session, a note version snapshot
// and the note's current content are persisted. A persistence failure here
// surfaces to the caller.
func (e *Engine) CloseSession(sessionID string) (*EditSession, error) {
	e.mu.Lock()
	entry, ok := e.open[sessionID]
	if ok {
		delete(e.open, sessionID)
	}
	e.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown session: %s", sessionID)
	}

	session, err := entry.tracker.Close()
	if err != nil {
		return nil, err
	}
	entry.saver.Stop()

	if err := e.store.SaveSession(session); err != nil {
		return session, err
	}
	if err := e.store.SaveNoteContent(session.NoteID, session.CurrentContent); err != nil {
		return session, err
	}
	version := NoteVersion{
		NoteID:    session.NoteID,
		Content:   session.CurrentContent,
		Timestamp: *session.EndTime,
		Changes:   session.TotalChanges,
		Analytics: entry.tracker.Analytics(),
	}
	if err := e.store.AppendNoteVersion(version); err != nil {
		return session, err
	}
	return session, nil
}

// AnalyzeFeedback runs the pattern analyzer over a user's stored feedback.
func (e *Engine) AnalyzeFeedback(userID string) (*FeedbackAnalysis, error) {
	records, err := e.store.Feedback(userID)
	if err != nil {
		return nil, err
	}
	return AnalyzeFeedback(records)
}

// GeneratePersonalizedPrompt analyzes a user's feedback and derives a
// personalized prompt, recording it in the user's prompt-evolution
// history. An InsufficientDataError from the analyzer propagates so the
// caller can fall back to the base prompt.
func (e *Engine) GeneratePersonalizedPrompt(userID string, profile StyleProfile, ctx GenerationContext) (*PersonalizedPrompt, error) {
	analysis, err := e.AnalyzeFeedback(userID)
	if err != nil {
		return nil, err
	}
	prompt := GeneratePersonalizedPrompt(analysis, profile, ctx)
	if err := e.store.AppendPromptEvolution(userID, prompt); err != nil {
		LogWarn("failed to record prompt evolution for user %s: %v", userID, err)
	}
	return prompt, nil
}

// CreateExperiment builds prompt variants for a user (using their feedback
// analysis when available) and persists the experiment.
func (e *Engine) CreateExperiment(basePrompt string, ctx GenerationContext) (*PromptExperiment, error) {
	analysis, err := e.AnalyzeFeedback(ctx.UserID)
	if err != nil {
		var insufficient *InsufficientDataError
		if !errors.As(err, &insufficient) {
			return nil, err
		}
		// Insufficient history still allows style-transform variants.
		analysis = nil
	}
	exp, err := e.experiments.CreateExperiment(basePrompt, ctx, analysis)
	if err != nil {
		return nil, err
	}
	if err := e.store.SaveExperiment(exp); err != nil {
		return nil, err
	}
	return exp, nil
}

// RecordExperimentOutcome records a rating and processing time against a
// variant and persists the updated experiment.
func (e *Engine) RecordExperimentOutcome(experimentID, variantID string, rating int, processingTimeMs float64) error {
	if err := e.experiments.RecordOutcome(experimentID, variantID, rating, processingTimeMs); err != nil {
		return err
	}
	exp, err := e.experiments.Get(experimentID)
	if err != nil {
		return err
	}
	return e.store.SaveExperiment(exp)
}

// Experiments exposes the controller for assignment and leader queries.
func (e *Engine) Experiments() *ExperimentController {
	return e.experiments
}

// Store exposes the underlying store to read-side callers (CLI listing,
// export).
func (e *Engine) Store() *Store {
	return e.store
}
