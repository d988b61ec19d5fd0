package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillswap/backend/internal/service"
)

// NotificationHandler serves the per-user message feed.
type NotificationHandler struct {
	notifications service.NotificationService
}

func NewNotificationHandler(notifications service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/unread-count", h.UnreadCount)
	r.Post("/read-all", h.MarkAllAsRead)
	r.Post("/{id}/read", h.MarkAsRead)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	page, perPage := pageParams(r)

	notifications, total, err := h.notifications.List(r.Context(), user.ID, page, perPage)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"total":         total,
	})
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	count, err := h.notifications.CountUnread(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]int64{"unread": count})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	notificationID, err := urlID(r, "id")
	if err != nil {
		respondBadRequest(w, "invalid notification id")
		return
	}

	if err := h.notifications.MarkAsRead(r.Context(), user.ID, notificationID); err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]bool{"read": true})
}

func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	if err := h.notifications.MarkAllAsRead(r.Context(), user.ID); err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]bool{"read": true})
}
