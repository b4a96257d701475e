package repost

import (
	"fmt"

	"github.com/UkralStul/feed-engine/internal/domain"
)

// DeletePost удаляет пост id вместе со всеми записями, которые на него
// ссылаются, транзитивно. Если удаляется сам репост, у его цели
// уменьшается счётчик репостов.
func DeletePost(posts []domain.Post, id string) ([]domain.Post, error) {
	idx := domain.NewIndex(posts)
	victim, ok := idx.Get(id)
	if !ok {
		return posts, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}

	removed := Cascade(posts, id)
	out := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if _, gone := removed[p.Head().ID]; !gone {
			out = append(out, p)
		}
	}

	targetID, isRepost := domain.OriginalPostID(victim)
	if !isRepost {
		return out, nil
	}
	if _, gone := removed[targetID]; gone {
		return out, nil
	}
	_, normal := victim.(domain.NormalRepost)
	stillReposted := normal && HasNormalRepost(out, victim.Head().Author.Handle, targetID)
	out, _ = domain.Patch(out, targetID, func(b domain.Body) domain.Body {
		b.Stats.Reposts = max(b.Stats.Reposts-1, 0)
		if normal {
			b.Interactions.Reposted = stillReposted
		}
		return b
	})
	return out, nil
}

// Cascade возвращает идентификаторы id и всех постов, которые ссылаются на него
// прямо или через другие репосты.
func Cascade(posts []domain.Post, id string) map[string]struct{} {
	removed := map[string]struct{}{id: {}}
	for changed := true; changed; {
		changed = false
		for _, p := range posts {
			pid := p.Head().ID
			if _, done := removed[pid]; done {
				continue
			}
			if target, ok := domain.OriginalPostID(p); ok {
				if _, hit := removed[target]; hit {
					removed[pid] = struct{}{}
					changed = true
				}
			}
		}
	}
	return removed
}
