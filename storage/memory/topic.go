package memory

import (
	"fmt"
	"sort"

	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
)

func (t *tables) getTopic(id domain.TopicId) (*domain.Topic, error) {
	tp, ok := t.topics[id]
	if !ok {
		return nil, fmt.Errorf("topic %d: %w", id, apperrors.NotFound)
	}
	return tp.Clone(), nil
}

func (t *tables) saveTopic(topic *domain.Topic) error {
	if topic.Id == 0 {
		topic.Id = t.next()
	}
	t.topics[topic.Id] = topic.Clone()
	return nil
}

func (t *tables) getTopicsByBoard(boardId domain.BoardId) ([]*domain.Topic, error) {
	var out []*domain.Topic
	for _, tp := range t.topics {
		if tp.IsDeleted || tp.BoardId != boardId {
			continue
		}
		out = append(out, tp.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Id > out[j].Id
	})
	return out, nil
}

func (t *tables) countLiveTopics(boardId domain.BoardId) (int, error) {
	n := 0
	for _, tp := range t.topics {
		if !tp.IsDeleted && tp.BoardId == boardId {
			n++
		}
	}
	return n, nil
}

func (t *tables) reassignTopics(from, to domain.BoardId) (int, error) {
	n := 0
	for _, tp := range t.topics {
		if tp.BoardId == from {
			tp.BoardId = to
			n++
		}
	}
	return n, nil
}

func (t *tables) findTopicsByTitleOrSlug(title, slug string) ([]*domain.Topic, error) {
	var out []*domain.Topic
	for _, tp := range t.topics {
		if tp.IsDeleted {
			continue
		}
		if tp.Title == title || tp.Slug == slug {
			out = append(out, tp.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Id < out[j].Id
	})
	return out, nil
}

func (s *Storage) GetTopic(id domain.TopicId) (*domain.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getTopic(id)
}

func (s *Storage) SaveTopic(topic *domain.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.saveTopic(topic)
}

func (s *Storage) GetTopicsByBoard(boardId domain.BoardId) ([]*domain.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getTopicsByBoard(boardId)
}

func (s *Storage) CountLiveTopics(boardId domain.BoardId) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.countLiveTopics(boardId)
}

func (s *Storage) ReassignTopics(from, to domain.BoardId) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.reassignTopics(from, to)
}

func (s *Storage) FindTopicsByTitleOrSlug(title, slug string) ([]*domain.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.findTopicsByTitleOrSlug(title, slug)
}

func (t *txView) GetTopic(id domain.TopicId) (*domain.Topic, error) {
	return t.data.getTopic(id)
}

func (t *txView) SaveTopic(topic *domain.Topic) error {
	return t.data.saveTopic(topic)
}

func (t *txView) GetTopicsByBoard(boardId domain.BoardId) ([]*domain.Topic, error) {
	return t.data.getTopicsByBoard(boardId)
}

func (t *txView) CountLiveTopics(boardId domain.BoardId) (int, error) {
	return t.data.countLiveTopics(boardId)
}

func (t *txView) ReassignTopics(from, to domain.BoardId) (int, error) {
	return t.data.reassignTopics(from, to)
}

func (t *txView) FindTopicsByTitleOrSlug(title, slug string) ([]*domain.Topic, error) {
	return t.data.findTopicsByTitleOrSlug(title, slug)
}
