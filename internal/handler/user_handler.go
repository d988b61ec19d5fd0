package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillswap/backend/internal/service"
)

// UserHandler serves profiles and skill management.
type UserHandler struct {
	users service.UserService
}

func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Routes(r chi.Router) {
	r.Get("/me", h.Me)
	r.Put("/me", h.UpdateProfile)
	r.Put("/me/skills", h.UpdateSkills)
	r.Get("/{id}", h.GetProfile)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	profile, err := h.users.GetProfile(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, profile)
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "id")
	if err != nil {
		respondBadRequest(w, "invalid user id")
		return
	}

	profile, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, profile)
}

type updateProfileRequest struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req updateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	if err := h.users.UpdateProfile(r.Context(), user.ID, user.ID, req.Name, req.AvatarURL); err != nil {
		respondError(w, err)
		return
	}

	profile, err := h.users.GetProfile(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, profile)
}

type updateSkillsRequest struct {
	Skills []string `json:"skills"`
}

func (h *UserHandler) UpdateSkills(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req updateSkillsRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	skills, err := h.users.UpdateSkills(r.Context(), user.ID, user.ID, req.Skills)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{"skills": skills})
}
