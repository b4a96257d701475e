package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/UkralStul/feed-engine/internal/domain"
	"github.com/UkralStul/feed-engine/internal/storage"
)

type commentsResponse struct {
	Items []domain.Comment `json:"items"`
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	args := storage.PaginationArgs{Limit: limit}
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		args.Cursor = &cursor
	}

	comments, err := h.svc.Comments(r.Context(), viewer(r).Handle, chi.URLParam(r, "id"), args)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, commentsResponse{Items: comments})
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	comment, err := h.svc.CreateComment(r.Context(), viewer(r), chi.URLParam(r, "id"), req.toDraft())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *Handler) toggleCommentLike(w http.ResponseWriter, r *http.Request) {
	comment, err := h.svc.ToggleCommentLike(r.Context(), viewer(r).Handle, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (h *Handler) voteComment(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Option == nil {
		h.fail(w, r, fmt.Errorf("option is required: %w", domain.ErrInvalidInput))
		return
	}
	poll, err := h.svc.VoteCommentPoll(r.Context(), viewer(r).Handle, chi.URLParam(r, "id"), *req.Option)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPoll(poll))
}
