package memory

import (
	"fmt"
	"sort"

	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
)

func (t *tables) getMessage(id domain.MessageId) (*domain.Message, error) {
	m, ok := t.messages[id]
	if !ok {
		return nil, fmt.Errorf("message %d: %w", id, apperrors.NotFound)
	}
	return m.Clone(), nil
}

func (t *tables) saveMessage(message *domain.Message) error {
	if message.Id == 0 {
		message.Id = t.next()
	}
	t.messages[message.Id] = message.Clone()
	return nil
}

func (t *tables) getTopicBody(topicId domain.TopicId) (*domain.Message, error) {
	for _, m := range t.messages {
		if m.TopicId == topicId && m.IsTopicBody {
			return m.Clone(), nil
		}
	}
	return nil, fmt.Errorf("topic %d body: %w", topicId, apperrors.NotFound)
}

func (t *tables) getMessagesByTopic(topicId domain.TopicId, offset, limit int) ([]*domain.Message, error) {
	var out []*domain.Message
	for _, m := range t.messages {
		if m.IsDeleted || m.TopicId != topicId {
			continue
		}
		out = append(out, m.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return page(out, offset, limit), nil
}

// page slices out one listing window. A non-positive limit means no limit.
func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func (s *Storage) GetMessage(id domain.MessageId) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getMessage(id)
}

func (s *Storage) SaveMessage(message *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.saveMessage(message)
}

func (s *Storage) GetTopicBody(topicId domain.TopicId) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getTopicBody(topicId)
}

func (s *Storage) GetMessagesByTopic(topicId domain.TopicId, offset, limit int) ([]*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getMessagesByTopic(topicId, offset, limit)
}

func (t *txView) GetMessage(id domain.MessageId) (*domain.Message, error) {
	return t.data.getMessage(id)
}

func (t *txView) SaveMessage(message *domain.Message) error {
	return t.data.saveMessage(message)
}

func (t *txView) GetTopicBody(topicId domain.TopicId) (*domain.Message, error) {
	return t.data.getTopicBody(topicId)
}

func (t *txView) GetMessagesByTopic(topicId domain.TopicId, offset, limit int) ([]*domain.Message, error) {
	return t.data.getMessagesByTopic(topicId, offset, limit)
}
