// Package api - HTTP-интерфейс ленты.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/UkralStul/feed-engine/internal/dataloader"
	"github.com/UkralStul/feed-engine/internal/service"
	"github.com/UkralStul/feed-engine/internal/storage"
)

// Заголовки с handle и именем текущего пользователя.
const (
	ViewerHeader     = "X-Viewer-Handle"
	ViewerNameHeader = "X-Viewer-Name"
)

// Handler обслуживает HTTP-запросы поверх Service.
type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

// NewRouter собирает chi-роутер со всеми маршрутами.
func NewRouter(svc *service.Service, store storage.Storage, logger *slog.Logger) http.Handler {
	h := &Handler{svc: svc, logger: logger.With("component", "api")}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(h.logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(dataloader.Middleware(store))
		r.Get("/feed", h.feed)
		r.Get("/posts/{id}", h.getPost)
		r.Get("/posts/{id}/comments", h.listComments)
	})

	router.Group(func(r chi.Router) {
		r.Use(requireViewer)
		r.Post("/posts", h.createPost)
		r.Delete("/posts/{id}", h.deletePost)
		r.Post("/posts/{id}/repost", h.toggleRepost)
		r.Post("/posts/{id}/quote", h.quotePost)
		r.Post("/posts/{id}/like", h.toggleLike)
		r.Post("/posts/{id}/poll/votes", h.votePost)
		r.Put("/posts/{id}/bookmarks", h.addBookmark)
		r.Delete("/posts/{id}/bookmarks", h.removeBookmark)
		r.Get("/bookmarks", h.listBookmarks)
		r.Post("/posts/{id}/comments", h.createComment)
		r.Post("/comments/{id}/like", h.toggleCommentLike)
		r.Post("/comments/{id}/poll/votes", h.voteComment)

		r.Get("/moderation", h.getModeration)
		r.Put("/moderation/mutes/{handle}", h.mute)
		r.Delete("/moderation/mutes/{handle}", h.unmute)
		r.Put("/moderation/blocks/{handle}", h.block)
		r.Delete("/moderation/blocks/{handle}", h.unblock)
		r.Post("/moderation/reports", h.report)
		r.Put("/moderation/auto-hide", h.setAutoHide)
	})

	return router
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
