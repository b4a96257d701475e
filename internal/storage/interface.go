package storage

import (
	"context"

	"github.com/UkralStul/feed-engine/internal/domain"
	"github.com/UkralStul/feed-engine/internal/moderation"
)

// PaginationArgs - аргументы для курсорной пагинации комментариев.
type PaginationArgs struct {
	Limit  int
	Cursor *string
}

// ListArgs - аргументы выборки ленты. Пустой Author означает всех авторов.
type ListArgs struct {
	Limit  int
	Offset int
	Author string
}

// Storage определяет контракт для хранилищ.
// Посты хранятся без состояния зрителя: лайки и репосты зрителя
// отдаются отдельными методами.
type Storage interface {
	ListPosts(ctx context.Context, args ListArgs) ([]domain.Post, error)
	GetPostsByIDs(ctx context.Context, ids []string) (map[string]domain.Post, error)
	// RelatedPosts возвращает пост rootID и все записи, которые ссылаются на него транзитивно.
	RelatedPosts(ctx context.Context, rootID string) ([]domain.Post, error)
	SavePosts(ctx context.Context, upserts []domain.Post, deletes []string) error

	PostLikes(ctx context.Context, handle string, postIDs []string) (map[string]bool, error)
	SetPostLike(ctx context.Context, handle, postID string, liked bool) error
	// RepostedTargets возвращает, на какие из postIDs у handle есть обычный репост.
	RepostedTargets(ctx context.Context, handle string, postIDs []string) (map[string]bool, error)

	SaveComment(ctx context.Context, comment domain.Comment) error
	GetCommentByID(ctx context.Context, id string) (domain.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID string, args PaginationArgs) ([]domain.Comment, error)
	CommentLikes(ctx context.Context, handle string, commentIDs []string) (map[string]bool, error)
	SetCommentLike(ctx context.Context, handle, commentID string, liked bool) error

	// AddBookmark возвращает domain.ErrDuplicateAction для повторной закладки
	// и domain.ErrNotFound, если поста нет.
	AddBookmark(ctx context.Context, b domain.Bookmark) error
	// RemoveBookmark возвращает domain.ErrNotFound, если закладки нет.
	RemoveBookmark(ctx context.Context, handle, postID string) error
	PostBookmarks(ctx context.Context, handle string, postIDs []string) (map[string]bool, error)
	// ListBookmarks отдаёт закладки handle, новые первыми. Author в args не учитывается.
	ListBookmarks(ctx context.Context, handle string, args ListArgs) ([]domain.Bookmark, error)

	ModerationStore
}

// ModerationStore - мьюты, блокировки, жалобы и настройки зрителя.
type ModerationStore interface {
	moderation.Source

	// AddMute возвращает domain.ErrDuplicateAction, если цель уже замьючена.
	AddMute(ctx context.Context, m domain.Mute) error
	// RemoveMute возвращает domain.ErrNotFound, если мьюта нет.
	RemoveMute(ctx context.Context, viewer, target string) error
	AddBlock(ctx context.Context, b domain.Block) error
	RemoveBlock(ctx context.Context, viewer, target string) error
	AddReport(ctx context.Context, r domain.Report) error
	SetAutoHideReported(ctx context.Context, viewer string, enabled bool) error
}
