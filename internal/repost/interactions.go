package repost

import (
	"fmt"

	"github.com/UkralStul/feed-engine/internal/domain"
)

// ToggleLike переключает лайк зрителя. Лайк обычного репоста ставится оригиналу.
func ToggleLike(posts []domain.Post, id string) ([]domain.Post, bool, error) {
	t, err := target(posts, id)
	if err != nil {
		return posts, false, err
	}
	liked := !t.Payload().Interactions.Liked
	out, _ := domain.Patch(posts, t.Head().ID, func(b domain.Body) domain.Body {
		b.Interactions.Liked = liked
		if liked {
			b.Stats.Likes++
		} else {
			b.Stats.Likes = max(b.Stats.Likes-1, 0)
		}
		return b
	})
	return out, liked, nil
}

// AdjustComments меняет счётчик комментариев поста, который показывается для id.
func AdjustComments(posts []domain.Post, id string, delta int) ([]domain.Post, error) {
	t, err := target(posts, id)
	if err != nil {
		return posts, err
	}
	out, _ := domain.Patch(posts, t.Head().ID, func(b domain.Body) domain.Body {
		b.Stats.Comments = max(b.Stats.Comments+delta, 0)
		return b
	})
	return out, nil
}

// ReplacePoll подменяет опрос поста id.
func ReplacePoll(posts []domain.Post, id string, poll domain.Poll) ([]domain.Post, error) {
	out, ok := domain.Patch(posts, id, func(b domain.Body) domain.Body {
		b.Poll = &poll
		return b
	})
	if !ok {
		return posts, fmt.Errorf("post %s with a poll: %w", id, domain.ErrNotFound)
	}
	return out, nil
}

// RepostedTargets собирает оригиналы, на которые у handle есть обычный репост.
func RepostedTargets(posts []domain.Post, handle string) map[string]bool {
	targets := map[string]bool{}
	for _, p := range posts {
		if r, ok := p.(domain.NormalRepost); ok && r.Author.Handle == handle {
			targets[r.OriginalPostID] = true
		}
	}
	return targets
}

// MarkReposted выставляет флаг reposted у каждого поста по набору targets.
func MarkReposted(posts []domain.Post, targets map[string]bool) []domain.Post {
	out := make([]domain.Post, len(posts))
	for i, p := range posts {
		out[i] = p
		d, ok := p.(domain.Displayable)
		if !ok {
			continue
		}
		b := d.Payload()
		if b.Interactions.Reposted == targets[d.Head().ID] {
			continue
		}
		b.Interactions.Reposted = targets[d.Head().ID]
		out[i] = domain.WithPayload(d, b)
	}
	return out
}
