package domain

import (
	"fmt"
	"time"
)

// Record - плоское представление поста для JSON и хранилищ.
type Record struct {
	ID               string        `json:"id"`
	Kind             Kind          `json:"kind"`
	Author           Author        `json:"author"`
	CreatedAt        time.Time     `json:"createdAt"`
	Content          string        `json:"content,omitempty"`
	Media            []string      `json:"media,omitempty"`
	GifURL           string        `json:"gifUrl,omitempty"`
	Poll             *Poll         `json:"poll,omitempty"`
	Stats            *Stats        `json:"stats,omitempty"`
	UserInteractions *Interactions `json:"userInteractions,omitempty"`
	RepostType       string        `json:"repostType,omitempty"`
	OriginalPostID   string        `json:"originalPostId,omitempty"`
	// QuotedPost - снимок цитаты или встроенный оригинал обычного репоста.
	QuotedPost *Record `json:"quotedPost,omitempty"`
}

func ToRecord(p Post) Record {
	h := p.Head()
	r := Record{ID: h.ID, Kind: p.Kind(), Author: h.Author, CreatedAt: h.CreatedAt}
	if d, ok := p.(Displayable); ok {
		b := d.Payload()
		stats, inter := b.Stats, b.Interactions
		r.Content, r.Media, r.GifURL, r.Poll = b.Content, b.Media, b.GifURL, b.Poll
		r.Stats, r.UserInteractions = &stats, &inter
	}
	switch v := p.(type) {
	case NormalRepost:
		r.RepostType, r.OriginalPostID = "normal", v.OriginalPostID
		if v.Original != nil {
			snap := ToRecord(*v.Original)
			r.QuotedPost = &snap
		}
	case QuoteRepost:
		r.RepostType, r.OriginalPostID = "quote", v.OriginalPostID
		if v.QuotedPost != nil {
			snap := ToRecord(*v.QuotedPost)
			r.QuotedPost = &snap
		}
	}
	return r
}

func FromRecord(r Record) (Post, error) {
	h := Header{ID: r.ID, Author: r.Author, CreatedAt: r.CreatedAt}
	body := Body{Content: r.Content, Media: r.Media, GifURL: r.GifURL, Poll: r.Poll}
	if r.Stats != nil {
		body.Stats = *r.Stats
	}
	if r.UserInteractions != nil {
		body.Interactions = *r.UserInteractions
	}

	var snapshot *Original
	if r.QuotedPost != nil {
		p, err := FromRecord(*r.QuotedPost)
		if err != nil {
			return nil, fmt.Errorf("snapshot of %s: %w", r.ID, err)
		}
		if o, ok := p.(Original); ok {
			snapshot = &o
		} else if d, ok := p.(Displayable); ok {
			snapshot = Snapshot(d)
		}
	}

	switch r.Kind {
	case KindPost, "":
		if r.OriginalPostID != "" {
			return nil, fmt.Errorf("post %s has a repost target: %w", r.ID, ErrInvalidInput)
		}
		return Original{Header: h, Body: body}, nil
	case KindNormalRepost:
		if r.OriginalPostID == "" {
			return nil, fmt.Errorf("repost %s has no target: %w", r.ID, ErrInvalidInput)
		}
		return NormalRepost{Header: h, OriginalPostID: r.OriginalPostID, Original: snapshot}, nil
	case KindQuoteRepost:
		if r.OriginalPostID == "" {
			return nil, fmt.Errorf("quote %s has no target: %w", r.ID, ErrInvalidInput)
		}
		return QuoteRepost{Header: h, Body: body, OriginalPostID: r.OriginalPostID, QuotedPost: snapshot}, nil
	}
	return nil, fmt.Errorf("unknown kind %q: %w", r.Kind, ErrInvalidInput)
}
