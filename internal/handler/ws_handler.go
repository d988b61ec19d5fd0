package handler

import (
	"net/http"

	"skillswap/backend/internal/realtime"
	"skillswap/backend/internal/service"
)

// WSHandler upgrades call participants onto the realtime hub.
type WSHandler struct {
	hub      *realtime.Hub
	sessions service.SessionService
}

func NewWSHandler(hub *realtime.Hub, sessions service.SessionService) *WSHandler {
	return &WSHandler{hub: hub, sessions: sessions}
}

// Join connects the caller to the session's call room. Only the teacher and
// the booked learner may join.
func (h *WSHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	sessionID, err := urlID(r, "id")
	if err != nil {
		respondBadRequest(w, "invalid session id")
		return
	}

	session, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		respondError(w, err)
		return
	}

	isTeacher := session.TeacherID == user.ID
	isLearner := session.LearnerID != nil && *session.LearnerID == user.ID
	if !isTeacher && !isLearner {
		respondError(w, service.ErrUnauthorized)
		return
	}

	h.hub.ServeWS(w, r, sessionID, user.ID)
}
