package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UkralStul/feed-engine/internal/domain"
	"github.com/UkralStul/feed-engine/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Store реализует интерфейс Storage поверх GORM (PostgreSQL или SQLite).
type Store struct {
	db *gorm.DB
}

var _ storage.Storage = (*Store)(nil)

// OpenPostgres подключается к PostgreSQL по DSN.
func OpenPostgres(dsn string, level logger.LogLevel) (*Store, error) {
	return open(postgres.Open(dsn), level)
}

// OpenSQLite открывает файл SQLite. ":memory:" даёт базу в памяти.
func OpenSQLite(path string, level logger.LogLevel) (*Store, error) {
	return open(sqlite.Open(path), level)
}

func open(dialector gorm.Dialector, level logger.LogLevel) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Выполняем миграцию схемы
	if err := db.AutoMigrate(
		&postRow{}, &commentRow{}, &postLikeRow{}, &commentLikeRow{}, &bookmarkRow{},
		&relationRow{}, &reportRow{}, &settingsRow{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close закрывает пул соединений.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// === Post Methods ===

func (s *Store) ListPosts(ctx context.Context, args storage.ListArgs) ([]domain.Post, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if args.Author != "" {
		q = q.Where("author_handle = ?", args.Author)
	}
	if args.Limit > 0 {
		q = q.Limit(args.Limit)
	}
	if args.Offset > 0 {
		q = q.Offset(args.Offset)
	}
	var rows []postRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return decodePosts(rows)
}

func (s *Store) GetPostsByIDs(ctx context.Context, ids []string) (map[string]domain.Post, error) {
	out := make(map[string]domain.Post, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []postRow
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	posts, err := decodePosts(rows)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		out[p.Head().ID] = p
	}
	return out, nil
}

func (s *Store) RelatedPosts(ctx context.Context, rootID string) ([]domain.Post, error) {
	db := s.db.WithContext(ctx)

	var root postRow
	if err := db.First(&root, "id = ?", rootID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post with id %s: %w", rootID, domain.ErrNotFound)
		}
		return nil, err
	}

	rows := []postRow{root}
	seen := map[string]bool{rootID: true}
	frontier := []string{rootID}
	for len(frontier) > 0 {
		var next []postRow
		if err := db.Where("original_post_id IN ?", frontier).Find(&next).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, r := range next {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			rows = append(rows, r)
			frontier = append(frontier, r.ID)
		}
	}
	return decodePosts(rows)
}

func (s *Store) SavePosts(ctx context.Context, upserts []domain.Post, deletes []string) error {
	// Используем транзакцию, чтобы изменения одной операции применялись целиком
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range upserts {
			row := toPostRow(p)
			if err := tx.Save(&row).Error; err != nil {
				return fmt.Errorf("save post %s: %w", row.ID, err)
			}
		}
		if len(deletes) == 0 {
			return nil
		}
		var commentIDs []string
		if err := tx.Model(&commentRow{}).Where("post_id IN ?", deletes).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&commentLikeRow{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("post_id IN ?", deletes).Delete(&commentRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id IN ?", deletes).Delete(&postLikeRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id IN ?", deletes).Delete(&bookmarkRow{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", deletes).Delete(&postRow{}).Error
	})
}

func (s *Store) PostLikes(ctx context.Context, handle string, postIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(postIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := s.db.WithContext(ctx).Model(&postLikeRow{}).
		Where("handle = ? AND post_id IN ?", handle, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (s *Store) SetPostLike(ctx context.Context, handle, postID string, liked bool) error {
	db := s.db.WithContext(ctx)
	if err := exists(db, &postRow{}, postID); err != nil {
		return err
	}
	if !liked {
		return db.Delete(&postLikeRow{Handle: handle, PostID: postID}).Error
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&postLikeRow{Handle: handle, PostID: postID}).Error
}

func (s *Store) RepostedTargets(ctx context.Context, handle string, postIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(postIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := s.db.WithContext(ctx).Model(&postRow{}).
		Where("kind = ? AND author_handle = ? AND original_post_id IN ?", string(domain.KindNormalRepost), handle, postIDs).
		Pluck("original_post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// === Comment Methods ===

func (s *Store) SaveComment(ctx context.Context, comment domain.Comment) error {
	db := s.db.WithContext(ctx)
	if err := exists(db, &postRow{}, comment.PostID); err != nil {
		return err
	}
	row := toCommentRow(comment)
	return db.Save(&row).Error
}

func (s *Store) GetCommentByID(ctx context.Context, id string) (domain.Comment, error) {
	var row commentRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		// GORM возвращает gorm.ErrRecordNotFound, если запись не найдена
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Comment{}, fmt.Errorf("comment with id %s: %w", id, domain.ErrNotFound)
		}
		return domain.Comment{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) GetCommentsByPostID(ctx context.Context, postID string, args storage.PaginationArgs) ([]domain.Comment, error) {
	db := s.db.WithContext(ctx)
	q := db.Where("post_id = ?", postID)

	if args.Cursor != nil {
		var cursor commentRow
		if err := db.Select("created_at", "id").First(&cursor, "id = ?", *args.Cursor).Error; err == nil {
			q = q.Where("(created_at > ? OR (created_at = ? AND id > ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
		}
	}
	if args.Limit > 0 {
		q = q.Limit(args.Limit)
	}

	var rows []commentRow
	if err := q.Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Comment, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) CommentLikes(ctx context.Context, handle string, commentIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(commentIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := s.db.WithContext(ctx).Model(&commentLikeRow{}).
		Where("handle = ? AND comment_id IN ?", handle, commentIDs).
		Pluck("comment_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (s *Store) SetCommentLike(ctx context.Context, handle, commentID string, liked bool) error {
	db := s.db.WithContext(ctx)
	if err := exists(db, &commentRow{}, commentID); err != nil {
		return err
	}
	if !liked {
		return db.Delete(&commentLikeRow{Handle: handle, CommentID: commentID}).Error
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&commentLikeRow{Handle: handle, CommentID: commentID}).Error
}

// === Bookmark Methods ===

func (s *Store) AddBookmark(ctx context.Context, b domain.Bookmark) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &postRow{}, b.PostID); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&bookmarkRow{}).
			Where("handle = ? AND post_id = ?", b.Viewer, b.PostID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("bookmark %s -> %s: %w", b.Viewer, b.PostID, domain.ErrDuplicateAction)
		}
		return tx.Create(&bookmarkRow{Handle: b.Viewer, PostID: b.PostID, CreatedAt: b.CreatedAt}).Error
	})
}

func (s *Store) RemoveBookmark(ctx context.Context, handle, postID string) error {
	res := s.db.WithContext(ctx).
		Where("handle = ? AND post_id = ?", handle, postID).
		Delete(&bookmarkRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("bookmark %s -> %s: %w", handle, postID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) PostBookmarks(ctx context.Context, handle string, postIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(postIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := s.db.WithContext(ctx).Model(&bookmarkRow{}).
		Where("handle = ? AND post_id IN ?", handle, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (s *Store) ListBookmarks(ctx context.Context, handle string, args storage.ListArgs) ([]domain.Bookmark, error) {
	q := s.db.WithContext(ctx).Where("handle = ?", handle).
		Order("created_at DESC").Order("post_id DESC")
	if args.Limit > 0 {
		q = q.Limit(args.Limit)
	}
	if args.Offset > 0 {
		q = q.Offset(args.Offset)
	}
	var rows []bookmarkRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Bookmark, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Bookmark{Viewer: r.Handle, PostID: r.PostID, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

// === Helpers ===

func exists(db *gorm.DB, model any, id string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("record with id %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func decodePosts(rows []postRow) ([]domain.Post, error) {
	out := make([]domain.Post, 0, len(rows))
	for _, r := range rows {
		p, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
