package realtime

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"skillswap/backend/internal/models"
	"skillswap/backend/pkg/logger"
	"skillswap/backend/pkg/metrics"
)

// Event is the envelope for every message pushed over a call socket.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Event types pushed to call participants.
const (
	EventWarning           = "suspicious_activity_warning"
	EventMeetingTerminated = "meeting_terminated"
	EventParticipantJoined = "participant_joined"
	EventParticipantLeft   = "participant_left"
)

// PresenceObserver is told when participants enter or leave a call room.
type PresenceObserver interface {
	HandleParticipantJoined(ctx context.Context, sessionID, userID uint64)
	HandleParticipantLeft(ctx context.Context, sessionID, userID uint64)
}

// Hub tracks the websocket clients of every live call room and fans events
// out to them. Slow clients are dropped rather than allowed to stall a room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint64]map[*Client]bool

	observer PresenceObserver
	metrics  *metrics.Metrics
	log      *logger.Logger
}

func NewHub(m *metrics.Metrics, log *logger.Logger) *Hub {
	return &Hub{
		rooms:   make(map[uint64]map[*Client]bool),
		metrics: m,
		log:     log,
	}
}

// SetObserver wires the presence callbacks. Must be called before clients
// connect.
func (h *Hub) SetObserver(observer PresenceObserver) {
	h.observer = observer
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	room, ok := h.rooms[c.sessionID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[c.sessionID] = room
	}
	room[c] = true
	size := len(room)
	h.mu.Unlock()

	h.metrics.RoomClients.WithLabelValues(roomLabel(c.sessionID)).Set(float64(size))
	h.log.WithSessionID(c.sessionID).WithField("user_id", c.userID).Info("participant joined call room")

	h.EmitToRoom(c.sessionID, &Event{
		Type:    EventParticipantJoined,
		Payload: map[string]uint64{"user_id": c.userID},
	})

	if h.observer != nil {
		h.observer.HandleParticipantJoined(context.Background(), c.sessionID, c.userID)
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	room, ok := h.rooms[c.sessionID]
	if ok {
		if _, present := room[c]; !present {
			ok = false
		}
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.sessionID)
		}
	}
	size := len(room)
	h.mu.Unlock()

	if !ok {
		return
	}
	c.closeSend()

	h.metrics.RoomClients.WithLabelValues(roomLabel(c.sessionID)).Set(float64(size))
	h.log.WithSessionID(c.sessionID).WithField("user_id", c.userID).Info("participant left call room")

	h.EmitToRoom(c.sessionID, &Event{
		Type:    EventParticipantLeft,
		Payload: map[string]uint64{"user_id": c.userID},
	})

	if h.observer != nil {
		h.observer.HandleParticipantLeft(context.Background(), c.sessionID, c.userID)
	}
}

// EmitToRoom sends an event to every client in a room.
func (h *Hub) EmitToRoom(sessionID uint64, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.WithSessionID(sessionID).WithError(err).Error("failed to encode room event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[sessionID] {
		c.enqueue(data)
	}
}

// EmitToUser sends an event to one participant's connections in a room.
func (h *Hub) EmitToUser(sessionID, userID uint64, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.WithSessionID(sessionID).WithError(err).Error("failed to encode user event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[sessionID] {
		if c.userID == userID {
			c.enqueue(data)
		}
	}
}

// CloseRoom force-disconnects every client of a room.
func (h *Hub) CloseRoom(sessionID uint64) {
	h.mu.Lock()
	room := h.rooms[sessionID]
	delete(h.rooms, sessionID)
	h.mu.Unlock()

	for c := range room {
		c.closeSend()
	}

	h.metrics.RoomClients.DeleteLabelValues(roomLabel(sessionID))
	h.log.WithSessionID(sessionID).Info("call room closed")
}

// SendWarning pushes an escalation warning to one participant.
func (h *Hub) SendWarning(sessionID, userID uint64, action string, warningCount int) {
	h.EmitToUser(sessionID, userID, warningEvent(action, warningCount))
}

// warningEvent builds the in-call warning payload. The final warning is
// flagged danger so the client can render it apart from the first strike.
func warningEvent(action string, warningCount int) *Event {
	severity := "warning"
	if action == models.IncidentActionFinalWarning {
		severity = "danger"
	}
	return &Event{
		Type: EventWarning,
		Payload: map[string]interface{}{
			"action":        action,
			"warning_count": warningCount,
			"severity":      severity,
		},
	}
}

// TerminateMeeting tells the whole room the call is over, then closes it.
func (h *Hub) TerminateMeeting(sessionID uint64) {
	h.EmitToRoom(sessionID, &Event{Type: EventMeetingTerminated})
	h.CloseRoom(sessionID)
}

// RoomSize reports the number of connected clients in a room.
func (h *Hub) RoomSize(sessionID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

func roomLabel(sessionID uint64) string {
	return strconv.FormatUint(sessionID, 10)
}
