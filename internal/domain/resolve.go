package domain

import (
	"fmt"
	"strings"
)

// maxRepostDepth ограничивает проход по цепочке обычных репостов в повреждённых данных.
const maxRepostDepth = 8

// Lookup - поиск поста по идентификатору.
type Lookup interface {
	Get(id string) (Post, bool)
}

// Index - индекс коллекции постов по идентификатору. При повторах побеждает первый.
type Index map[string]Post

func NewIndex(posts []Post) Index {
	idx := make(Index, len(posts))
	for _, p := range posts {
		id := p.Head().ID
		if _, ok := idx[id]; !ok {
			idx[id] = p
		}
	}
	return idx
}

func (i Index) Get(id string) (Post, bool) {
	p, ok := i[id]
	return p, ok
}

// Chain ищет пост по очереди в каждом из источников.
type Chain []Lookup

func (c Chain) Get(id string) (Post, bool) {
	for _, l := range c {
		if l == nil {
			continue
		}
		if p, ok := l.Get(id); ok {
			return p, true
		}
	}
	return nil, false
}

// ResolveDisplayPost возвращает пост, чьё содержимое и счётчики показываются для p.
// Оригинал и цитата показывают сами себя. Обычный репост показывает оригинал:
// сначала из lookup, затем из встроенного снимка.
func ResolveDisplayPost(p Post, lookup Lookup) (Displayable, error) {
	for depth := 0; depth < maxRepostDepth; depth++ {
		switch v := p.(type) {
		case Original:
			return v, nil
		case QuoteRepost:
			return v, nil
		case NormalRepost:
			if lookup != nil {
				if target, ok := lookup.Get(v.OriginalPostID); ok {
					p = target
					continue
				}
			}
			if v.Original != nil {
				return *v.Original, nil
			}
			return nil, fmt.Errorf("original %s of repost %s: %w", v.OriginalPostID, v.ID, ErrNotFound)
		default:
			return nil, fmt.Errorf("unsupported post type %T: %w", p, ErrInvalidInput)
		}
	}
	return nil, fmt.Errorf("repost chain of %s is too deep: %w", p.Head().ID, ErrNotFound)
}

// OriginalPostID возвращает цель репоста. Для оригинала ok == false.
func OriginalPostID(p Post) (string, bool) {
	switch v := p.(type) {
	case NormalRepost:
		return v.OriginalPostID, true
	case QuoteRepost:
		return v.OriginalPostID, true
	}
	return "", false
}

// WithPayload возвращает копию d с заменённым содержимым.
func WithPayload(d Displayable, b Body) Displayable {
	switch v := d.(type) {
	case Original:
		v.Body = b
		return v
	case QuoteRepost:
		v.Body = b
		return v
	}
	return d
}

// Patch возвращает новую коллекцию, где у поста id содержимое заменено на fn(body).
// Исходная коллекция не меняется. ok == false, если поста нет или у него нет содержимого.
func Patch(posts []Post, id string, fn func(Body) Body) ([]Post, bool) {
	out := make([]Post, len(posts))
	copy(out, posts)
	for i, p := range out {
		if p.Head().ID != id {
			continue
		}
		d, isDisplay := p.(Displayable)
		if !isDisplay {
			return posts, false
		}
		out[i] = WithPayload(d, fn(d.Payload()))
		return out, true
	}
	return posts, false
}

// Snapshot делает независимую копию поста для встраивания в цитату.
func Snapshot(d Displayable) *Original {
	b := d.Payload()
	b.Media = append([]string(nil), b.Media...)
	if b.Poll != nil {
		poll := b.Poll.Clone()
		poll.Ballots = nil
		poll.UserVote = nil
		b.Poll = &poll
	}
	b.Interactions = Interactions{}
	return &Original{Header: d.Head(), Body: b}
}

// Canonical убирает из поста состояние, относящееся к конкретному зрителю.
func Canonical(p Post) Post {
	d, ok := p.(Displayable)
	if !ok {
		return p
	}
	b := d.Payload()
	b.Interactions = Interactions{}
	b.Media = append([]string(nil), b.Media...)
	if b.Poll != nil {
		poll := b.Poll.Clone()
		poll.UserVote = nil
		b.Poll = &poll
	}
	return WithPayload(d, b)
}

const (
	MaxContentLength = 280
	MaxMedia         = 4
	MinPollOptions   = 2
	MaxPollOptions   = 4
)

// ValidateContent проверяет содержимое поста, цитаты или комментария.
func ValidateContent(text string, media []string, gifURL string, poll *Poll) error {
	if strings.TrimSpace(text) == "" && len(media) == 0 && gifURL == "" {
		return fmt.Errorf("text, media or gif is required: %w", ErrInvalidInput)
	}
	if len([]rune(text)) > MaxContentLength {
		return fmt.Errorf("text is longer than %d characters: %w", MaxContentLength, ErrInvalidInput)
	}
	if len(media) > MaxMedia {
		return fmt.Errorf("at most %d media attachments allowed: %w", MaxMedia, ErrInvalidInput)
	}
	if poll != nil {
		if n := len(poll.Options); n < MinPollOptions || n > MaxPollOptions {
			return fmt.Errorf("poll needs %d to %d options, got %d: %w", MinPollOptions, MaxPollOptions, n, ErrInvalidInput)
		}
		for i, opt := range poll.Options {
			if strings.TrimSpace(opt) == "" {
				return fmt.Errorf("poll option %d is empty: %w", i, ErrInvalidInput)
			}
		}
	}
	return nil
}
