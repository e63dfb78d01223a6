package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/askaway/backend/internal/core/domain"
	"github.com/askaway/backend/internal/core/ports"
)

type VotableHandler struct {
	service ports.VotableService
}

func NewVotableHandler(service ports.VotableService) *VotableHandler {
	return &VotableHandler{service: service}
}

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type postResponse struct {
	*domain.Post
	VotableID string `json:"votable_id"`
}

func (h *VotableHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	post, err := h.service.CreatePost(r.Context(), ports.CreatePostInput{
		AuthorID: userID,
		Title:    req.Title,
		Content:  req.Content,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, postResponse{Post: post, VotableID: post.VotableKey().Encode()})
}

type createCommentRequest struct {
	Content string `json:"content"`
}

type commentResponse struct {
	*domain.Comment
	VotableID string `json:"votable_id"`
}

func (h *VotableHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}

	comment, err := h.service.CreateComment(r.Context(), ports.CreateCommentInput{
		PostID:   chi.URLParam(r, "id"),
		AuthorID: userID,
		Content:  req.Content,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, commentResponse{Comment: comment, VotableID: comment.VotableKey().Encode()})
}

// Score godoc
// @Summary      Returns the net vote total of a votable
// @Tags         votes
// @Param        id  path  string  true  "votable id"
// @Success      200  {object}  map[string]int64
// @Router       /votables/{id}/score [get]
func (h *VotableHandler) Score(w http.ResponseWriter, r *http.Request) {
	score, err := h.service.Score(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"score": score})
}
