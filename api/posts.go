package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/UkralStul/feed-engine/internal/domain"
	"github.com/UkralStul/feed-engine/internal/storage"
)

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("query parameter %s must be a non-negative integer: %w", name, domain.ErrInvalidInput)
	}
	return v, nil
}

func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rows, err := h.svc.Feed(r.Context(), viewer(r).Handle, storage.ListArgs{
		Limit:  limit,
		Offset: offset,
		Author: r.URL.Query().Get("author"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := feedResponse{Items: make([]rowResponse, 0, len(rows))}
	for _, row := range rows {
		resp.Items = append(resp.Items, toRow(row))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	row, err := h.svc.Post(r.Context(), viewer(r).Handle, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRow(row))
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	post, err := h.svc.CreatePost(r.Context(), viewer(r), req.toDraft())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.ToRecord(post))
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePost(r.Context(), viewer(r).Handle, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toggleRepost(w http.ResponseWriter, r *http.Request) {
	actor := viewer(r)
	outcome, targetID, err := h.svc.ToggleRepost(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	row, err := h.svc.Post(r.Context(), actor.Handle, targetID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, repostResponse{Outcome: outcome.String(), Target: toRow(row)})
}

func (h *Handler) quotePost(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	quote, err := h.svc.QuoteRepost(r.Context(), viewer(r), chi.URLParam(r, "id"), req.toDraft())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.ToRecord(quote))
}

func (h *Handler) toggleLike(w http.ResponseWriter, r *http.Request) {
	handle := viewer(r).Handle
	target, err := h.svc.ToggleLike(r.Context(), handle, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	row, err := h.svc.Post(r.Context(), handle, target.Head().ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, likeResponse{Liked: target.Payload().Interactions.Liked, Post: toRow(row)})
}

func (h *Handler) votePost(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Option == nil {
		h.fail(w, r, fmt.Errorf("option is required: %w", domain.ErrInvalidInput))
		return
	}
	poll, err := h.svc.VotePoll(r.Context(), viewer(r).Handle, chi.URLParam(r, "id"), *req.Option)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPoll(poll))
}
