package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/UkralStul/feed-engine/internal/domain"
	"github.com/UkralStul/feed-engine/internal/repost"
	"github.com/UkralStul/feed-engine/internal/storage"
)

// Store реализует интерфейс Storage в памяти.
type Store struct {
	mu             sync.RWMutex
	posts          map[string]domain.Post
	order          []string // новые посты первыми
	comments       map[string]domain.Comment
	commentsByPost map[string][]string        // map[postID][]commentID
	postLikes      map[string]map[string]bool // map[handle]set[postID]
	commentLikes   map[string]map[string]bool
	bookmarks      map[string]map[string]domain.Bookmark // map[handle]map[postID]
	mutes          map[string]map[string]domain.Mute // map[viewer]map[target]
	blocks         map[string]map[string]domain.Block
	reports        []domain.Report
	autoHide       map[string]bool
}

var _ storage.Storage = (*Store)(nil)

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{
		posts:          make(map[string]domain.Post),
		comments:       make(map[string]domain.Comment),
		commentsByPost: make(map[string][]string),
		postLikes:      make(map[string]map[string]bool),
		commentLikes:   make(map[string]map[string]bool),
		bookmarks:      make(map[string]map[string]domain.Bookmark),
		mutes:          make(map[string]map[string]domain.Mute),
		blocks:         make(map[string]map[string]domain.Block),
		autoHide:       make(map[string]bool),
	}
}

// === Post Methods ===

func (s *Store) ListPosts(ctx context.Context, args storage.ListArgs) ([]domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Post, 0, len(s.order))
	for _, id := range s.order {
		p := s.posts[id]
		if args.Author != "" && p.Head().Author.Handle != args.Author {
			continue
		}
		all = append(all, domain.Canonical(p))
	}
	return paginate(all, args.Offset, args.Limit), nil
}

func (s *Store) GetPostsByIDs(ctx context.Context, ids []string) (map[string]domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.Post, len(ids))
	for _, id := range ids {
		if p, ok := s.posts[id]; ok {
			out[id] = domain.Canonical(p)
		}
	}
	return out, nil
}

func (s *Store) RelatedPosts(ctx context.Context, rootID string) ([]domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.posts[rootID]; !ok {
		return nil, fmt.Errorf("post with id %s: %w", rootID, domain.ErrNotFound)
	}
	all := make([]domain.Post, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.posts[id])
	}
	related := repost.Cascade(all, rootID)

	out := make([]domain.Post, 0, len(related))
	for _, p := range all {
		if _, ok := related[p.Head().ID]; ok {
			out = append(out, domain.Canonical(p))
		}
	}
	return out, nil
}

func (s *Store) SavePosts(ctx context.Context, upserts []domain.Post, deletes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []string
	for _, p := range upserts {
		id := p.Head().ID
		if _, exists := s.posts[id]; !exists {
			fresh = append(fresh, id)
		}
		s.posts[id] = domain.Canonical(p)
	}
	if len(fresh) > 0 {
		s.order = append(fresh, s.order...)
	}

	if len(deletes) == 0 {
		return nil
	}
	gone := make(map[string]bool, len(deletes))
	for _, id := range deletes {
		gone[id] = true
		delete(s.posts, id)
		for _, cID := range s.commentsByPost[id] {
			delete(s.comments, cID)
			for _, liked := range s.commentLikes {
				delete(liked, cID)
			}
		}
		delete(s.commentsByPost, id)
	}
	for _, liked := range s.postLikes {
		for id := range liked {
			if gone[id] {
				delete(liked, id)
			}
		}
	}
	for _, saved := range s.bookmarks {
		for id := range saved {
			if gone[id] {
				delete(saved, id)
			}
		}
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if !gone[id] {
			kept = append(kept, id)
		}
	}
	s.order = kept
	return nil
}

func (s *Store) PostLikes(ctx context.Context, handle string, postIDs []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pick(s.postLikes[handle], postIDs), nil
}

func (s *Store) SetPostLike(ctx context.Context, handle, postID string, liked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return fmt.Errorf("post with id %s: %w", postID, domain.ErrNotFound)
	}
	setFlag(s.postLikes, handle, postID, liked)
	return nil
}

func (s *Store) RepostedTargets(ctx context.Context, handle string, postIDs []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		all = append(all, p)
	}
	return pick(repost.RepostedTargets(all, handle), postIDs), nil
}

// === Comment Methods ===

func (s *Store) SaveComment(ctx context.Context, comment domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[comment.PostID]; !ok {
		return fmt.Errorf("post with id %s: %w", comment.PostID, domain.ErrNotFound)
	}
	if _, exists := s.comments[comment.ID]; !exists {
		s.commentsByPost[comment.PostID] = append(s.commentsByPost[comment.PostID], comment.ID)
	}
	s.comments[comment.ID] = cloneComment(comment)
	return nil
}

func (s *Store) GetCommentByID(ctx context.Context, id string) (domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return domain.Comment{}, fmt.Errorf("comment with id %s: %w", id, domain.ErrNotFound)
	}
	return cloneComment(c), nil
}

func (s *Store) GetCommentsByPostID(ctx context.Context, postID string, args storage.PaginationArgs) ([]domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, ok := s.commentsByPost[postID]
	if !ok {
		return []domain.Comment{}, nil
	}

	all := make([]domain.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.comments[id]; ok {
			all = append(all, cloneComment(c))
		}
	}
	// Сортируем по времени создания, чтобы пагинация была консистентной
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	start := 0
	if args.Cursor != nil {
		for i, c := range all {
			if c.ID == *args.Cursor {
				start = i + 1
				break
			}
		}
	}
	return paginate(all, start, args.Limit), nil
}

func (s *Store) CommentLikes(ctx context.Context, handle string, commentIDs []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pick(s.commentLikes[handle], commentIDs), nil
}

func (s *Store) SetCommentLike(ctx context.Context, handle, commentID string, liked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[commentID]; !ok {
		return fmt.Errorf("comment with id %s: %w", commentID, domain.ErrNotFound)
	}
	setFlag(s.commentLikes, handle, commentID, liked)
	return nil
}

// === Bookmark Methods ===

func (s *Store) AddBookmark(ctx context.Context, b domain.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[b.PostID]; !ok {
		return fmt.Errorf("post with id %s: %w", b.PostID, domain.ErrNotFound)
	}
	return addEntry(s.bookmarks, b.Viewer, b.PostID, b)
}

func (s *Store) RemoveBookmark(ctx context.Context, handle, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeEntry(s.bookmarks, handle, postID)
}

func (s *Store) PostBookmarks(ctx context.Context, handle string, postIDs []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		if _, ok := s.bookmarks[handle][id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (s *Store) ListBookmarks(ctx context.Context, handle string, args storage.ListArgs) ([]domain.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Bookmark, 0, len(s.bookmarks[handle]))
	for _, b := range s.bookmarks[handle] {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].PostID > all[j].PostID
	})
	return paginate(all, args.Offset, args.Limit), nil
}

// === Helpers ===

// paginate возвращает срез [offset, offset+limit). limit <= 0 означает "до конца".
func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func pick(set map[string]bool, ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		if set[id] {
			out[id] = true
		}
	}
	return out
}

func setFlag(sets map[string]map[string]bool, handle, id string, on bool) {
	if !on {
		delete(sets[handle], id)
		return
	}
	if sets[handle] == nil {
		sets[handle] = make(map[string]bool)
	}
	sets[handle][id] = true
}

func cloneComment(c domain.Comment) domain.Comment {
	c.Media = append([]string(nil), c.Media...)
	if c.Poll != nil {
		poll := c.Poll.Clone()
		poll.UserVote = nil
		c.Poll = &poll
	}
	c.UserLiked = false
	return c
}
