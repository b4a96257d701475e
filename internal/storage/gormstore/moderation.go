package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UkralStul/feed-engine/internal/domain"

	"gorm.io/gorm"
)

// === Moderation Methods ===

func (s *Store) MutedHandles(ctx context.Context, viewer string) ([]string, error) {
	return s.targets(ctx, viewer, relationMute)
}

func (s *Store) BlockedHandles(ctx context.Context, viewer string) ([]string, error) {
	return s.targets(ctx, viewer, relationBlock)
}

func (s *Store) targets(ctx context.Context, viewer, kind string) ([]string, error) {
	targets := []string{}
	err := s.db.WithContext(ctx).Model(&relationRow{}).
		Where("viewer = ? AND type = ?", viewer, kind).
		Order("target").
		Pluck("target", &targets).Error
	return targets, err
}

func (s *Store) ReportsBy(ctx context.Context, reporter string) ([]domain.Report, error) {
	var rows []reportRow
	if err := s.db.WithContext(ctx).Where("reporter = ?", reporter).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Report, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Report{
			ID:           r.ID,
			Reporter:     r.Reporter,
			ContentType:  domain.ContentType(r.ContentType),
			ContentID:    r.ContentID,
			TargetAuthor: r.TargetAuthor,
			Reason:       domain.ReportReason(r.Reason),
			Description:  r.Description,
			CreatedAt:    r.CreatedAt,
		})
	}
	return out, nil
}

func (s *Store) AutoHideReported(ctx context.Context, viewer string) (bool, error) {
	var row settingsRow
	err := s.db.WithContext(ctx).First(&row, "viewer = ?", viewer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return row.AutoHideReported, nil
}

func (s *Store) AddMute(ctx context.Context, m domain.Mute) error {
	return s.addRelation(ctx, relationRow{Viewer: m.Viewer, Target: m.Target, Type: relationMute, CreatedAt: m.CreatedAt})
}

func (s *Store) RemoveMute(ctx context.Context, viewer, target string) error {
	return s.removeRelation(ctx, viewer, target, relationMute)
}

func (s *Store) AddBlock(ctx context.Context, b domain.Block) error {
	return s.addRelation(ctx, relationRow{Viewer: b.Viewer, Target: b.Target, Type: relationBlock, CreatedAt: b.CreatedAt})
}

func (s *Store) RemoveBlock(ctx context.Context, viewer, target string) error {
	return s.removeRelation(ctx, viewer, target, relationBlock)
}

func (s *Store) addRelation(ctx context.Context, row relationRow) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&relationRow{}).
			Where("viewer = ? AND target = ? AND type = ?", row.Viewer, row.Target, row.Type).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%s %s -> %s: %w", row.Type, row.Viewer, row.Target, domain.ErrDuplicateAction)
		}
		return tx.Create(&row).Error
	})
}

func (s *Store) removeRelation(ctx context.Context, viewer, target, kind string) error {
	res := s.db.WithContext(ctx).
		Where("viewer = ? AND target = ? AND type = ?", viewer, target, kind).
		Delete(&relationRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %s -> %s: %w", kind, viewer, target, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) AddReport(ctx context.Context, r domain.Report) error {
	row := reportRow{
		ID:           r.ID,
		Reporter:     r.Reporter,
		ContentType:  string(r.ContentType),
		ContentID:    r.ContentID,
		TargetAuthor: r.TargetAuthor,
		Reason:       string(r.Reason),
		Description:  r.Description,
		CreatedAt:    r.CreatedAt,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *Store) SetAutoHideReported(ctx context.Context, viewer string, enabled bool) error {
	row := settingsRow{Viewer: viewer, AutoHideReported: enabled}
	return s.db.WithContext(ctx).Save(&row).Error
}
