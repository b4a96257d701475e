package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/UkralStul/feed-engine/internal/domain"
	"github.com/UkralStul/feed-engine/internal/service"
)

func (h *Handler) getModeration(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Moderation(r.Context(), viewer(r).Handle)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// relation оборачивает действие над парой зритель-цель.
func (h *Handler) relation(action func(ctx context.Context, viewer, target string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := action(r.Context(), viewer(r).Handle, chi.URLParam(r, "handle")); err != nil {
			h.fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) mute(w http.ResponseWriter, r *http.Request) { h.relation(h.svc.Mute)(w, r) }
func (h *Handler) unmute(w http.ResponseWriter, r *http.Request) { h.relation(h.svc.Unmute)(w, r) }
func (h *Handler) block(w http.ResponseWriter, r *http.Request) { h.relation(h.svc.Block)(w, r) }
func (h *Handler) unblock(w http.ResponseWriter, r *http.Request) { h.relation(h.svc.Unblock)(w, r) }

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	report, err := h.svc.Report(r.Context(), viewer(r).Handle, service.ReportInput{
		ContentType: domain.ContentType(req.ContentType),
		ContentID:   req.ContentID,
		Reason:      domain.ReportReason(req.Reason),
		Description: req.Description,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (h *Handler) setAutoHide(w http.ResponseWriter, r *http.Request) {
	var req autoHideRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Enabled == nil {
		h.fail(w, r, fmt.Errorf("enabled is required: %w", domain.ErrInvalidInput))
		return
	}
	if err := h.svc.SetAutoHideReported(r.Context(), viewer(r).Handle, *req.Enabled); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
