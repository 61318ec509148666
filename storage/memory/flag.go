package memory

import (
	"fmt"
	"sort"

	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
)

func (t *tables) getFlag(id domain.FlagId) (*domain.Flag, error) {
	f, ok := t.flags[id]
	if !ok {
		return nil, fmt.Errorf("flag %d: %w", id, apperrors.NotFound)
	}
	return f.Clone(), nil
}

func (t *tables) getFlagByRef(ref domain.EntityRef) (*domain.Flag, error) {
	var latest *domain.Flag
	for _, f := range t.flags {
		if f.Ref != ref {
			continue
		}
		if latest == nil || f.Id > latest.Id {
			latest = f
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("flag for %s: %w", ref, apperrors.NotFound)
	}
	return latest.Clone(), nil
}

func (t *tables) saveFlag(flag *domain.Flag) error {
	if flag.Id == 0 {
		flag.Id = t.next()
	}
	t.flags[flag.Id] = flag.Clone()
	return nil
}

func (t *tables) getLatestFlags(offset, limit int) ([]*domain.Flag, error) {
	var out []*domain.Flag
	for _, f := range t.flags {
		if f.IsDeleted {
			continue
		}
		out = append(out, f.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Id > out[j].Id
	})
	return page(out, offset, limit), nil
}

func (s *Storage) GetFlag(id domain.FlagId) (*domain.Flag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getFlag(id)
}

func (s *Storage) GetFlagByRef(ref domain.EntityRef) (*domain.Flag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getFlagByRef(ref)
}

func (s *Storage) SaveFlag(flag *domain.Flag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.saveFlag(flag)
}

func (s *Storage) GetLatestFlags(offset, limit int) ([]*domain.Flag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getLatestFlags(offset, limit)
}

func (t *txView) GetFlag(id domain.FlagId) (*domain.Flag, error) {
	return t.data.getFlag(id)
}

func (t *txView) GetFlagByRef(ref domain.EntityRef) (*domain.Flag, error) {
	return t.data.getFlagByRef(ref)
}

func (t *txView) SaveFlag(flag *domain.Flag) error {
	return t.data.saveFlag(flag)
}

func (t *txView) GetLatestFlags(offset, limit int) ([]*domain.Flag, error) {
	return t.data.getLatestFlags(offset, limit)
}
