package memory

import (
	"fmt"
	"sort"

	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
)

func (t *tables) getModeration(id domain.ModerationId) (*domain.Moderation, error) {
	m, ok := t.moderations[id]
	if !ok {
		return nil, fmt.Errorf("moderation %d: %w", id, apperrors.NotFound)
	}
	return m.Clone(), nil
}

func (t *tables) saveModeration(moderation *domain.Moderation) error {
	// Audit records never change after the fact.
	if moderation.Id != 0 {
		return fmt.Errorf("moderation %d is immutable: %w", moderation.Id, apperrors.InvalidOperation)
	}
	moderation.Id = t.next()
	t.moderations[moderation.Id] = moderation.Clone()
	return nil
}

func (t *tables) getLatestModerations(offset, limit int) ([]*domain.Moderation, error) {
	var out []*domain.Moderation
	for _, m := range t.moderations {
		out = append(out, m.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Id > out[j].Id
	})
	return page(out, offset, limit), nil
}

func (s *Storage) GetModeration(id domain.ModerationId) (*domain.Moderation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getModeration(id)
}

func (s *Storage) SaveModeration(moderation *domain.Moderation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.saveModeration(moderation)
}

func (s *Storage) GetLatestModerations(offset, limit int) ([]*domain.Moderation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getLatestModerations(offset, limit)
}

func (t *txView) GetModeration(id domain.ModerationId) (*domain.Moderation, error) {
	return t.data.getModeration(id)
}

func (t *txView) SaveModeration(moderation *domain.Moderation) error {
	return t.data.saveModeration(moderation)
}

func (t *txView) GetLatestModerations(offset, limit int) ([]*domain.Moderation, error) {
	return t.data.getLatestModerations(offset, limit)
}
