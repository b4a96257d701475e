package inmemory

import (
	"context"
	"fmt"
	"sort"

	"github.com/UkralStul/feed-engine/internal/domain"
)

// === Moderation Methods ===

func (s *Store) MutedHandles(ctx context.Context, viewer string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.mutes[viewer]), nil
}

func (s *Store) BlockedHandles(ctx context.Context, viewer string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.blocks[viewer]), nil
}

func (s *Store) ReportsBy(ctx context.Context, reporter string) ([]domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Report{}
	for _, r := range s.reports {
		if r.Reporter == reporter {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) AutoHideReported(ctx context.Context, viewer string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	enabled, ok := s.autoHide[viewer]
	if !ok {
		return true, nil
	}
	return enabled, nil
}

func (s *Store) AddMute(ctx context.Context, m domain.Mute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return addEntry(s.mutes, m.Viewer, m.Target, m)
}

func (s *Store) RemoveMute(ctx context.Context, viewer, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeEntry(s.mutes, viewer, target)
}

func (s *Store) AddBlock(ctx context.Context, b domain.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return addEntry(s.blocks, b.Viewer, b.Target, b)
}

func (s *Store) RemoveBlock(ctx context.Context, viewer, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeEntry(s.blocks, viewer, target)
}

func (s *Store) AddReport(ctx context.Context, r domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return nil
}

func (s *Store) SetAutoHideReported(ctx context.Context, viewer string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoHide[viewer] = enabled
	return nil
}

func addEntry[T any](entries map[string]map[string]T, viewer, target string, v T) error {
	if _, exists := entries[viewer][target]; exists {
		return fmt.Errorf("%s -> %s: %w", viewer, target, domain.ErrDuplicateAction)
	}
	if entries[viewer] == nil {
		entries[viewer] = make(map[string]T)
	}
	entries[viewer][target] = v
	return nil
}

func removeEntry[T any](entries map[string]map[string]T, viewer, target string) error {
	if _, exists := entries[viewer][target]; !exists {
		return fmt.Errorf("%s -> %s: %w", viewer, target, domain.ErrNotFound)
	}
	delete(entries[viewer], target)
	return nil
}

func sortedKeys[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
