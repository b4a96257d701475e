// Package feed собирает ленту зрителя из коллекции постов.
package feed

import (
	"github.com/UkralStul/feed-engine/internal/domain"
)

// Row - строка ленты.
type Row struct {
	// Post - сама запись коллекции.
	Post domain.Post
	// Display - пост, чьё содержимое и счётчики показываются в строке.
	Display domain.Displayable
	// RepostedBy - первый не совпадающий со зрителем автор обычного репоста.
	// Заполняется только у постов, которые сами не являются репостами.
	RepostedBy *domain.Author
}

// Compose строит ленту viewer с сохранением порядка входа.
// Повторы по id отбрасываются, первый побеждает. Обычный репост остаётся,
// только если его оригинал найден, не принадлежит зрителю и сам репост
// сделан не зрителем. extra используется для поиска оригиналов вне posts.
func Compose(posts []domain.Post, viewer string, extra domain.Lookup) []Row {
	lookup := domain.Chain{domain.NewIndex(posts), extra}
	reposters := repostersByOriginal(posts)

	seen := make(map[string]struct{}, len(posts))
	rows := make([]Row, 0, len(posts))
	for _, p := range posts {
		id := p.Head().ID
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		switch v := p.(type) {
		case domain.NormalRepost:
			d, err := domain.ResolveDisplayPost(v, lookup)
			if err != nil {
				continue
			}
			if d.Head().Author.Handle == viewer || v.Author.Handle == viewer {
				continue
			}
			rows = append(rows, Row{Post: v, Display: d})
		case domain.QuoteRepost:
			rows = append(rows, Row{Post: v, Display: v})
		case domain.Original:
			rows = append(rows, Row{Post: v, Display: v, RepostedBy: firstReposter(reposters[id], viewer)})
		}
	}
	return rows
}

func repostersByOriginal(posts []domain.Post) map[string][]domain.Author {
	out := map[string][]domain.Author{}
	for _, p := range posts {
		if r, ok := p.(domain.NormalRepost); ok {
			out[r.OriginalPostID] = append(out[r.OriginalPostID], r.Author)
		}
	}
	return out
}

func firstReposter(authors []domain.Author, viewer string) *domain.Author {
	for _, a := range authors {
		if a.Handle != viewer {
			a := a
			return &a
		}
	}
	return nil
}
