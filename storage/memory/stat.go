package memory

import (
	"fmt"

	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
)

func (t *tables) getUserStat(userId domain.UserId) (*domain.UserStat, error) {
	s, ok := t.stats[userId]
	if !ok {
		return nil, fmt.Errorf("stat for user %d: %w", userId, apperrors.NotFound)
	}
	return s.Clone(), nil
}

func (t *tables) saveUserStat(stat *domain.UserStat) error {
	if stat.Id == 0 {
		stat.Id = t.next()
	}
	t.stats[stat.UserId] = stat.Clone()
	return nil
}

func (s *Storage) GetUserStat(userId domain.UserId) (*domain.UserStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getUserStat(userId)
}

func (s *Storage) SaveUserStat(stat *domain.UserStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.saveUserStat(stat)
}

func (t *txView) GetUserStat(userId domain.UserId) (*domain.UserStat, error) {
	return t.data.getUserStat(userId)
}

func (t *txView) SaveUserStat(stat *domain.UserStat) error {
	return t.data.saveUserStat(stat)
}
