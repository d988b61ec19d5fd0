package escalation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"skillswap/backend/internal/models"
	"skillswap/backend/internal/repository"
	"skillswap/backend/pkg/helpers"
	"skillswap/backend/pkg/logger"
	"skillswap/backend/pkg/metrics"
)

// DetectionEvent is one suspicious-activity report from the in-call detector.
type DetectionEvent struct {
	SessionID  uint64
	UserID     uint64
	Confidence float64
	Severity   string
	Timestamp  time.Time
}

// Outcome reports the escalation step that a detection event produced.
type Outcome struct {
	Action            string
	WarningCount      int
	EvidenceReference string
}

// Notifier delivers escalation actions into the live call.
type Notifier interface {
	SendWarning(sessionID, userID uint64, action string, warningCount int)
	TerminateMeeting(sessionID uint64)
}

// Publisher fans escalation events out to interested consumers. Delivery is
// best effort: a publish failure never blocks the escalation itself.
type Publisher interface {
	PublishEscalation(ctx context.Context, event *EscalationEvent) error
}

// EscalationEvent is the published record of one escalation step.
type EscalationEvent struct {
	SessionID         uint64    `json:"session_id"`
	UserID            uint64    `json:"user_id"`
	Action            string    `json:"action"`
	WarningCount      int       `json:"warning_count"`
	Severity          string    `json:"severity"`
	Confidence        float64   `json:"confidence"`
	EvidenceReference string    `json:"evidence_reference"`
	Timestamp         time.Time `json:"timestamp"`
}

// key identifies one escalation counter. Counters are independent per
// participant per session: warnings in one session never carry into another,
// and two participants of the same session escalate separately.
type key struct {
	sessionID uint64
	userID    uint64
}

type entry struct {
	mu         sync.Mutex
	count      int
	terminated bool
}

// Engine drives the three-strike escalation ladder. Events for the same
// (session, participant) pair are serialized; events for different pairs
// proceed concurrently.
type Engine struct {
	mu      sync.Mutex
	entries map[key]*entry

	incidents repository.IncidentRepository
	notifier  Notifier
	publisher Publisher
	idGen     *helpers.IDGenerator
	metrics   *metrics.Metrics
	log       *logger.Logger
}

func NewEngine(
	incidents repository.IncidentRepository,
	notifier Notifier,
	publisher Publisher,
	idGen *helpers.IDGenerator,
	m *metrics.Metrics,
	log *logger.Logger,
) *Engine {
	return &Engine{
		entries:   make(map[key]*entry),
		incidents: incidents,
		notifier:  notifier,
		publisher: publisher,
		idGen:     idGen,
		metrics:   m,
		log:       log,
	}
}

// ProcessEvent applies one detection event to the participant's counter and
// takes the resulting step: first strike warns, second sends the final
// warning, third terminates the meeting. The audit row is written before any
// warning or termination goes out; if the write fails the counter does not
// advance and the event reports an error.
func (e *Engine) ProcessEvent(ctx context.Context, event *DetectionEvent) (*Outcome, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	k := key{sessionID: event.SessionID, userID: event.UserID}

	for {
		ent := e.acquire(k)
		ent.mu.Lock()
		if ent.terminated {
			// The pair terminated between lookup and lock. The stale entry
			// is on its way out of the map; restart so the fresh event
			// begins a new count at zero.
			ent.mu.Unlock()
			continue
		}

		outcome, err := e.record(ctx, ent, event)
		if err != nil {
			ent.mu.Unlock()
			return nil, err
		}
		terminated := outcome.Action == models.IncidentActionMeetingStopped
		if terminated {
			ent.terminated = true
		}
		// Release the entry lock before touching the engine map or any
		// collaborator: the map delete takes e.mu, and notify/publish may
		// block on I/O.
		ent.mu.Unlock()

		if terminated {
			e.mu.Lock()
			delete(e.entries, k)
			e.mu.Unlock()
			e.notifier.TerminateMeeting(event.SessionID)
		} else {
			e.notifier.SendWarning(event.SessionID, event.UserID, outcome.Action, outcome.WarningCount)
		}
		e.publish(ctx, event, outcome)

		return outcome, nil
	}
}

// record runs under the entry lock: it writes the audit row and, only once
// the write lands, advances the counter.
func (e *Engine) record(ctx context.Context, ent *entry, event *DetectionEvent) (*Outcome, error) {
	var action string
	switch {
	case ent.count == 0:
		action = models.IncidentActionWarningSent
	case ent.count == 1:
		action = models.IncidentActionFinalWarning
	default:
		action = models.IncidentActionMeetingStopped
	}
	nextCount := ent.count + 1

	evidenceRef := e.idGen.GenerateEvidenceReference(event.SessionID)
	incident := &models.SuspiciousActivityIncident{
		SessionID:         event.SessionID,
		UserID:            event.UserID,
		Confidence:        event.Confidence,
		Severity:          event.Severity,
		WarningCount:      nextCount,
		ActionTaken:       action,
		EvidenceReference: evidenceRef,
		Timestamp:         event.Timestamp,
	}
	if err := e.incidents.Create(ctx, incident); err != nil {
		return nil, fmt.Errorf("failed to record incident: %w", err)
	}

	ent.count = nextCount
	e.metrics.EscalationSteps.WithLabelValues(action).Inc()
	e.log.WithSessionID(event.SessionID).WithField("user_id", event.UserID).
		WithField("action", action).
		WithField("warning_count", nextCount).
		Info("escalation step taken")

	return &Outcome{
		Action:            action,
		WarningCount:      nextCount,
		EvidenceReference: evidenceRef,
	}, nil
}

// publish fans the step out to external consumers. Best effort, and never
// called with a lock held.
func (e *Engine) publish(ctx context.Context, event *DetectionEvent, outcome *Outcome) {
	if e.publisher == nil {
		return
	}

	published := &EscalationEvent{
		SessionID:         event.SessionID,
		UserID:            event.UserID,
		Action:            outcome.Action,
		WarningCount:      outcome.WarningCount,
		Severity:          event.Severity,
		Confidence:        event.Confidence,
		EvidenceReference: outcome.EvidenceReference,
		Timestamp:         event.Timestamp,
	}
	if err := e.publisher.PublishEscalation(ctx, published); err != nil {
		e.log.WithSessionID(event.SessionID).WithError(err).Warn("failed to publish escalation event")
	}
}

// acquire returns the live entry for the key, mapping a new one if needed.
func (e *Engine) acquire(k key) *entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	ent, ok := e.entries[k]
	if !ok {
		ent = &entry{}
		e.entries[k] = ent
	}
	return ent
}

// WarningCount reports the current strike count for a participant. Zero means
// no live counter.
func (e *Engine) WarningCount(sessionID, userID uint64) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	ent, ok := e.entries[key{sessionID: sessionID, userID: userID}]
	if !ok {
		return 0
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	return ent.count
}

// ClearSession drops every counter belonging to a session. Called when the
// meeting ends so stale counters do not outlive the call.
func (e *Engine) ClearSession(sessionID uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for k := range e.entries {
		if k.sessionID == sessionID {
			delete(e.entries, k)
		}
	}
}
