package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/UkralStul/feed-engine/internal/storage"
)

func (h *Handler) addBookmark(w http.ResponseWriter, r *http.Request) {
	target, err := h.svc.Bookmark(r.Context(), viewer(r).Handle, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookmarkResponse{Bookmarked: true, PostID: target})
}

func (h *Handler) removeBookmark(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Unbookmark(r.Context(), viewer(r).Handle, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listBookmarks(w http.ResponseWriter, r *http.Request) {
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

	rows, err := h.svc.Bookmarks(r.Context(), viewer(r).Handle, storage.ListArgs{Limit: limit, Offset: offset})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := bookmarksResponse{Items: make([]bookmarkedRowResponse, 0, len(rows))}
	for _, row := range rows {
		resp.Items = append(resp.Items, bookmarkedRowResponse{rowResponse: toRow(row.Row), BookmarkedAt: row.BookmarkedAt})
	}
	writeJSON(w, http.StatusOK, resp)
}
