package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"skillswap/backend/internal/service"
)

// SessionHandler serves offers, bookings, and session queries.
type SessionHandler struct {
	sessions service.SessionService
	bookings service.BookingService
}

func NewSessionHandler(sessions service.SessionService, bookings service.BookingService) *SessionHandler {
	return &SessionHandler{sessions: sessions, bookings: bookings}
}

func (h *SessionHandler) Routes(r chi.Router) {
	r.Get("/", h.ListOpen)
	r.Post("/", h.Offer)
	r.Get("/teaching", h.ListTeaching)
	r.Get("/teaching/booked", h.ListTeachingBooked)
	r.Get("/learning", h.ListLearning)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/book", h.Book)
	r.Post("/{id}/complete", h.Complete)
}

type offerRequest struct {
	Skill       string    `json:"skill" validate:"required,skill_tag"`
	CreditsUsed int64     `json:"credits_used" validate:"gte=0"`
	DateTime    time.Time `json:"date_time" validate:"required"`
}

func (h *SessionHandler) Offer(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req offerRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	session, err := h.sessions.Offer(r.Context(), user.ID, service.OfferInput{
		Skill:       req.Skill,
		CreditsUsed: req.CreditsUsed,
		DateTime:    req.DateTime,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusCreated, session)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	respondData(w, http.StatusOK, session)
}

func (h *SessionHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	sessions, err := h.sessions.ListOpen(r.Context(), page, perPage)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

func (h *SessionHandler) ListTeaching(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	sessions, err := h.sessions.ListByTeacher(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

func (h *SessionHandler) ListTeachingBooked(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	sessions, err := h.sessions.ListTeachingBooked(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

func (h *SessionHandler) ListLearning(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	sessions, err := h.sessions.ListByLearner(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

func (h *SessionHandler) Book(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	sessionID, err := urlID(r, "id")
	if err != nil {
		respondBadRequest(w, "invalid session id")
		return
	}

	session, err := h.bookings.BookSession(r.Context(), user.ID, sessionID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, session)
}

func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
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
	if session.TeacherID != user.ID {
		respondError(w, service.ErrUnauthorized)
		return
	}

	completed, err := h.bookings.CompleteAndEarn(r.Context(), sessionID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, completed)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	sessionID, err := urlID(r, "id")
	if err != nil {
		respondBadRequest(w, "invalid session id")
		return
	}

	if err := h.bookings.DeleteSession(r.Context(), user.ID, sessionID); err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]bool{"deleted": true})
}
