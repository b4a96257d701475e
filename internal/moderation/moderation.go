// Package moderation скрывает из выдачи контент по мьютам, блокировкам
// и жалобам зрителя.
package moderation

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/UkralStul/feed-engine/internal/domain"
)

// Snapshot - состояние модерации одного зрителя на момент запроса.
type Snapshot struct {
	Viewer           string          `json:"viewer"`
	Muted            []string        `json:"muted"`
	Blocked          []string        `json:"blocked"`
	Reports          []domain.Report `json:"reports"`
	AutoHideReported bool            `json:"autoHideReported"`
}

// Source - откуда берётся состояние модерации.
type Source interface {
	MutedHandles(ctx context.Context, viewer string) ([]string, error)
	BlockedHandles(ctx context.Context, viewer string) ([]string, error)
	ReportsBy(ctx context.Context, reporter string) ([]domain.Report, error)
	AutoHideReported(ctx context.Context, viewer string) (bool, error)
}

// Loader выдаёт снимок модерации зрителя.
type Loader interface {
	Snapshot(ctx context.Context, viewer string) (Snapshot, error)
}

// StoreLoader собирает снимок напрямую из Source.
type StoreLoader struct {
	Source Source
}

func (l StoreLoader) Snapshot(ctx context.Context, viewer string) (Snapshot, error) {
	snap := Snapshot{Viewer: viewer, AutoHideReported: true}
	if viewer == "" {
		return snap, nil
	}
	var err error
	if snap.Muted, err = l.Source.MutedHandles(ctx, viewer); err != nil {
		return Snapshot{}, fmt.Errorf("load mutes: %w", err)
	}
	if snap.Blocked, err = l.Source.BlockedHandles(ctx, viewer); err != nil {
		return Snapshot{}, fmt.Errorf("load blocks: %w", err)
	}
	if snap.Reports, err = l.Source.ReportsBy(ctx, viewer); err != nil {
		return Snapshot{}, fmt.Errorf("load reports: %w", err)
	}
	if snap.AutoHideReported, err = l.Source.AutoHideReported(ctx, viewer); err != nil {
		return Snapshot{}, fmt.Errorf("load settings: %w", err)
	}
	return snap, nil
}

func set(items []string) map[string]bool {
	return lo.Associate(items, func(item string) (string, bool) {
		return item, true
	})
}

// hidden возвращает авторов, чей контент зритель не должен видеть.
func (s Snapshot) hidden() map[string]bool {
	h := set(s.Muted)
	for _, b := range s.Blocked {
		h[b] = true
	}
	return h
}

// reported возвращает id контента типа kind, на который пожаловался сам зритель.
func (s Snapshot) reported(kind domain.ContentType) map[string]bool {
	if !s.AutoHideReported {
		return nil
	}
	own := lo.Filter(s.Reports, func(r domain.Report, _ int) bool {
		return r.Reporter == s.Viewer && r.ContentType == kind
	})
	return set(lo.Map(own, func(r domain.Report, _ int) string { return r.ContentID }))
}

// FilterByBlockAndMute убирает записи, чей собственный автор замьючен
// или заблокирован зрителем.
func FilterByBlockAndMute(posts []domain.Post, s Snapshot) []domain.Post {
	hidden := s.hidden()
	if len(hidden) == 0 {
		return posts
	}
	return lo.Reject(posts, func(p domain.Post, _ int) bool {
		return hidden[p.Head().Author.Handle]
	})
}

func FilterCommentsByBlockAndMute(comments []domain.Comment, s Snapshot) []domain.Comment {
	hidden := s.hidden()
	if len(hidden) == 0 {
		return comments
	}
	return lo.Reject(comments, func(c domain.Comment, _ int) bool {
		return hidden[c.Author.Handle]
	})
}

// FilterReportedPosts убирает посты, на которые пожаловался зритель,
// если у него включено автоскрытие.
func FilterReportedPosts(posts []domain.Post, s Snapshot) []domain.Post {
	reported := s.reported(domain.ContentPost)
	if len(reported) == 0 {
		return posts
	}
	return lo.Reject(posts, func(p domain.Post, _ int) bool {
		return reported[p.Head().ID]
	})
}

func FilterReportedComments(comments []domain.Comment, s Snapshot) []domain.Comment {
	reported := s.reported(domain.ContentComment)
	if len(reported) == 0 {
		return comments
	}
	return lo.Reject(comments, func(c domain.Comment, _ int) bool {
		return reported[c.ID]
	})
}

// Posts применяет оба фильтра.
func Posts(posts []domain.Post, s Snapshot) []domain.Post {
	return FilterReportedPosts(FilterByBlockAndMute(posts, s), s)
}

func Comments(comments []domain.Comment, s Snapshot) []domain.Comment {
	return FilterReportedComments(FilterCommentsByBlockAndMute(comments, s), s)
}
