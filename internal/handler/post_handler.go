package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillswap/backend/internal/service"
)

// PostHandler serves the community feed.
type PostHandler struct {
	posts service.PostService
}

func NewPostHandler(posts service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

func (h *PostHandler) Routes(r chi.Router) {
	r.Get("/", h.Feed)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/like", h.Like)
	r.Post("/{id}/upvote", h.Upvote)
	r.Get("/{id}/comments", h.ListComments)
	r.Post("/{id}/comments", h.AddComment)
}

type postRequest struct {
	Body     string `json:"body"`
	ImageURL string `json:"image_url"`
}

func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	posts, err := h.posts.ListFeed(r.Context(), page, perPage)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req postRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	post, err := h.posts.CreatePost(r.Context(), user.ID, req.Body, req.ImageURL)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusCreated, post)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	postID, err := urlID(r, "id")
	if err != nil {
		respondBadRequest(w, "invalid post id")
		return
	}

	post, err := h.posts.GetPost(r.Context(), postID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, post)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	postID, err := urlID(r, "id")
	if err != nil {
		respondBadRequest(w, "invalid post id")
		return
	}

	var req postRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	post, err := h.posts.UpdatePost(r.Context(), user.ID, postID, req.Body, req.ImageURL)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	postID, err := urlID(r, "id")
	if err != nil {
		respondBadRequest(w, "invalid post id")
		return
	}

	if err := h.posts.DeletePost(r.Context(), user.ID, postID); err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, h.posts.LikePost)
}

func (h *PostHandler) Upvote(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, h.posts.UpvotePost)
}

func (h *PostHandler) react(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, postID uint64) error) {
	postID, err := urlID(r, "id")
	if err != nil {
		respondBadRequest(w, "invalid post id")
		return
	}

	if err := apply(r.Context(), postID); err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]bool{"ok": true})
}

type commentRequest struct {
	Body string `json:"body"`
}

func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	postID, err := urlID(r, "id")
	if err != nil {
		respondBadRequest(w, "invalid post id")
		return
	}

	var req commentRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	comment, err := h.posts.AddComment(r.Context(), user.ID, postID, req.Body)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusCreated, comment)
}

func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := urlID(r, "id")
	if err != nil {
		respondBadRequest(w, "invalid post id")
		return
	}

	comments, err := h.posts.ListComments(r.Context(), postID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{"comments": comments})
}
