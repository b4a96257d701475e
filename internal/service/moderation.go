package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/UkralStul/feed-engine/internal/domain"
	"github.com/UkralStul/feed-engine/internal/moderation"
)

// ReportInput - жалоба на пост или комментарий.
type ReportInput struct {
	ContentType domain.ContentType
	ContentID   string
	Reason      domain.ReportReason
	Description string
}

// Moderation возвращает текущий снимок модерации viewer.
func (s *Service) Moderation(ctx context.Context, viewer string) (moderation.Snapshot, error) {
	return moderation.StoreLoader{Source: s.store}.Snapshot(ctx, viewer)
}

func checkTarget(viewer, target, action string) error {
	if strings.TrimSpace(target) == "" {
		return fmt.Errorf("%s target is empty: %w", action, domain.ErrInvalidInput)
	}
	if viewer == target {
		return fmt.Errorf("cannot %s self: %w", action, domain.ErrInvalidInput)
	}
	return nil
}

func (s *Service) Mute(ctx context.Context, viewer, target string) error {
	if err := checkTarget(viewer, target, "mute"); err != nil {
		return err
	}
	if err := s.store.AddMute(ctx, domain.Mute{Viewer: viewer, Target: target, CreatedAt: s.now()}); err != nil {
		return err
	}
	s.invalidate(ctx, viewer)
	s.logger.Info("user muted", "viewer", viewer, "target", target)
	return nil
}

func (s *Service) Unmute(ctx context.Context, viewer, target string) error {
	if err := s.store.RemoveMute(ctx, viewer, target); err != nil {
		return err
	}
	s.invalidate(ctx, viewer)
	return nil
}

func (s *Service) Block(ctx context.Context, viewer, target string) error {
	if err := checkTarget(viewer, target, "block"); err != nil {
		return err
	}
	if err := s.store.AddBlock(ctx, domain.Block{Viewer: viewer, Target: target, CreatedAt: s.now()}); err != nil {
		return err
	}
	s.invalidate(ctx, viewer)
	s.logger.Info("user blocked", "viewer", viewer, "target", target)
	return nil
}

func (s *Service) Unblock(ctx context.Context, viewer, target string) error {
	if err := s.store.RemoveBlock(ctx, viewer, target); err != nil {
		return err
	}
	s.invalidate(ctx, viewer)
	return nil
}

// Report записывает жалобу reporter. Жалоба на несуществующий контент отклоняется.
func (s *Service) Report(ctx context.Context, reporter string, in ReportInput) (domain.Report, error) {
	ctx, span := tracer.Start(ctx, "Service.Report")
	defer span.End()

	if !in.Reason.Valid() {
		return domain.Report{}, fmt.Errorf("unknown reason %q: %w", in.Reason, domain.ErrInvalidInput)
	}

	var targetAuthor string
	switch in.ContentType {
	case domain.ContentPost:
		got, err := s.store.GetPostsByIDs(ctx, []string{in.ContentID})
		if err != nil {
			return domain.Report{}, err
		}
		p, ok := got[in.ContentID]
		if !ok {
			return domain.Report{}, fmt.Errorf("post with id %s: %w", in.ContentID, domain.ErrNotFound)
		}
		targetAuthor = p.Head().Author.Handle
	case domain.ContentComment:
		c, err := s.store.GetCommentByID(ctx, in.ContentID)
		if err != nil {
			return domain.Report{}, err
		}
		targetAuthor = c.Author.Handle
	default:
		return domain.Report{}, fmt.Errorf("unknown content type %q: %w", in.ContentType, domain.ErrInvalidInput)
	}

	report := domain.Report{
		ID:           s.engine.NewID(),
		Reporter:     reporter,
		ContentType:  in.ContentType,
		ContentID:    in.ContentID,
		TargetAuthor: targetAuthor,
		Reason:       in.Reason,
		Description:  in.Description,
		CreatedAt:    s.now(),
	}
	if err := s.store.AddReport(ctx, report); err != nil {
		return domain.Report{}, fmt.Errorf("save report: %w", err)
	}
	s.invalidate(ctx, reporter)
	s.logger.Info("content reported", "reporter", reporter, "type", in.ContentType, "id", in.ContentID, "reason", in.Reason)
	return report, nil
}

func (s *Service) SetAutoHideReported(ctx context.Context, viewer string, enabled bool) error {
	if err := s.store.SetAutoHideReported(ctx, viewer, enabled); err != nil {
		return err
	}
	s.invalidate(ctx, viewer)
	return nil
}
