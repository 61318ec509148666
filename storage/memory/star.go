package memory

import (
	"fmt"
	"sort"

	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
)

func (t *tables) getStar(messageId domain.MessageId, userId domain.UserId) (*domain.MessageStar, error) {
	for _, s := range t.stars {
		if s.MessageId == messageId && s.UserId == userId {
			return s.Clone(), nil
		}
	}
	return nil, fmt.Errorf("star for message %d by user %d: %w", messageId, userId, apperrors.NotFound)
}

func (t *tables) saveStar(star *domain.MessageStar) error {
	if star.Id == 0 {
		star.Id = t.next()
	}
	t.stars[star.Id] = star.Clone()
	return nil
}

func (t *tables) getStarsByUser(userId domain.UserId) ([]*domain.MessageStar, error) {
	var out []*domain.MessageStar
	for _, s := range t.stars {
		if s.IsDeleted || s.UserId != userId {
			continue
		}
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Id < out[j].Id
	})
	return out, nil
}

func (s *Storage) GetStar(messageId domain.MessageId, userId domain.UserId) (*domain.MessageStar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getStar(messageId, userId)
}

func (s *Storage) SaveStar(star *domain.MessageStar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.saveStar(star)
}

func (s *Storage) GetStarsByUser(userId domain.UserId) ([]*domain.MessageStar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getStarsByUser(userId)
}

func (t *txView) GetStar(messageId domain.MessageId, userId domain.UserId) (*domain.MessageStar, error) {
	return t.data.getStar(messageId, userId)
}

func (t *txView) SaveStar(star *domain.MessageStar) error {
	return t.data.saveStar(star)
}

func (t *txView) GetStarsByUser(userId domain.UserId) ([]*domain.MessageStar, error) {
	return t.data.getStarsByUser(userId)
}
