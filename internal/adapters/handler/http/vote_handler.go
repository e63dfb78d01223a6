package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/askaway/backend/internal/core/domain"
	"github.com/askaway/backend/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

// Vote godoc
// @Summary      Casts, switches or retracts a vote on a votable
// @Description  dir=1 votes up, dir=-1 votes down, anything else retracts.
// @Tags         votes
// @Param        id   path   string  true  "votable id"
// @Param        dir  query  int     true  "vote direction"
// @Success      204
// @Failure      400
// @Failure      401
// @Failure      409
// @Router       /votables/{id}/vote [post]
func (h *VoteHandler) Vote(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	// direction parsing is total: anything unparseable retracts
	dir, _ := strconv.Atoi(r.URL.Query().Get("dir"))

	input := ports.VoteInput{
		VotableID: chi.URLParam(r, "id"),
		Dir:       dir,
		UserID:    userID,
	}
	if err := h.service.Vote(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListVoters godoc
// @Summary      Lists the voters of a post, cursor-paginated
// @Tags         votes
// @Param        postId  path   string  true   "post votable id"
// @Param        limit   query  int     false  "page size, max 100, default 20"
// @Param        cursor  query  string  false  "resume token from a previous page"
// @Success      200  {object}  ports.VoterPage
// @Router       /posts/{postId}/voters [get]
func (h *VoteHandler) ListVoters(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	page, err := h.service.ListVoters(r.Context(), ports.ListVotersInput{
		VotableID: chi.URLParam(r, "postId"),
		Limit:     limit,
		Cursor:    ports.Cursor(r.URL.Query().Get("cursor")),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if page.Items == nil {
		page.Items = []*domain.Account{}
	}
	writeJSON(w, http.StatusOK, page)
}
