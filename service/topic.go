package service

import (
	"fmt"

	"github.com/boardtree-dev/boardtree/config"
	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
	"github.com/boardtree-dev/boardtree/logger"
	"github.com/boardtree-dev/boardtree/storage"
)

// Topic creates and serves discussion topics. A new topic always carries
// its opening message as the body, created in the same transaction.
type Topic struct {
	storage  storage.Storage
	access   *Access
	path     *Path
	stats    *UserStat
	clock    Clock
	maxDepth int
}

func NewTopic(store storage.Storage, access *Access, path *Path, stats *UserStat, clock Clock, cfg *config.Public) *Topic {
	return &Topic{
		storage:  store,
		access:   access,
		path:     path,
		stats:    stats,
		clock:    clock,
		maxDepth: cfg.MaxTreeDepth,
	}
}

// Create opens a topic with its body message, bubbles the (1 post,
// 1 topic) delta up the board's ancestor chain and updates the author's
// totals, all in one transaction.
func (s *Topic) Create(creator *domain.User, data domain.TopicCreationData) (*domain.Topic, error) {
	if err := validateStruct(data); err != nil {
		return nil, err
	}

	var topic *domain.Topic
	err := s.storage.InTransaction(func(tx storage.Storage) error {
		loader := newBoardLoader(tx, s.maxDepth)
		board, err := loader.get(data.BoardId)
		if err != nil {
			return err
		}
		if board.IsDeleted {
			return fmt.Errorf("board %d: %w", board.Id, apperrors.NotFound)
		}
		if !s.access.CanCreateTopic(creator, board) {
			return fmt.Errorf("create topic on board %d: %w", board.Id, apperrors.PermissionDenied)
		}

		slug, err := s.path.AssignTopicSlug(tx, data.Title)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		topic = &domain.Topic{
			Title:           data.Title,
			Slug:            slug,
			BoardId:         board.Id,
			CreatorId:       userId(creator),
			LastUserId:      userId(creator),
			TotalPosts:      1,
			LastMessageDate: now,
			DateCreated:     now,
			DateModified:    now,
		}
		if err := tx.SaveTopic(topic); err != nil {
			return err
		}

		body := &domain.Message{
			Body:         data.Body.Body,
			Position:     1,
			IsTopicBody:  true,
			TopicId:      topic.Id,
			CreatorId:    userId(creator),
			DateCreated:  now,
			DateModified: now,
		}
		if err := tx.SaveMessage(body); err != nil {
			return err
		}

		if err := bubbleCounts(loader, board, 1, 1); err != nil {
			return err
		}
		return s.stats.recordTopic(tx, creator)
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("topic created", "id", topic.Id, "board", topic.BoardId)
	return topic, nil
}

// Get returns a live topic the user may view.
func (s *Topic) Get(user *domain.User, topicId domain.TopicId) (*domain.Topic, error) {
	topic, err := s.storage.GetTopic(topicId)
	if err != nil {
		return nil, err
	}
	if topic.IsDeleted {
		return nil, fmt.Errorf("topic %d: %w", topicId, apperrors.NotFound)
	}
	board, err := s.storage.GetBoard(topic.BoardId)
	if err != nil {
		return nil, err
	}
	if !s.access.Resolve(user, domain.ObjectTopic, domain.ActionView, board) {
		return nil, fmt.Errorf("view topic %d: %w", topicId, apperrors.PermissionDenied)
	}
	return topic, nil
}

// Messages pages through a topic's live messages in position order, after
// the same view check as Get.
func (s *Topic) Messages(user *domain.User, topicId domain.TopicId, offset, limit int) ([]*domain.Message, error) {
	if _, err := s.Get(user, topicId); err != nil {
		return nil, err
	}
	return s.storage.GetMessagesByTopic(topicId, offset, limit)
}

// RegisterView bumps the topic's view total. Callers fire it after serving
// the topic; failures are theirs to ignore.
func (s *Topic) RegisterView(topicId domain.TopicId) error {
	return s.storage.InTransaction(func(tx storage.Storage) error {
		topic, err := tx.GetTopic(topicId)
		if err != nil {
			return err
		}
		topic.IncreaseTotalViews(1)
		return tx.SaveTopic(topic)
	})
}

// ListByBoard returns a board's live topics for a user who may view it.
func (s *Topic) ListByBoard(user *domain.User, boardId domain.BoardId) ([]*domain.Topic, error) {
	board, err := s.storage.GetBoard(boardId)
	if err != nil {
		return nil, err
	}
	if board.IsDeleted {
		return nil, fmt.Errorf("board %d: %w", boardId, apperrors.NotFound)
	}
	if !s.access.Resolve(user, domain.ObjectTopic, domain.ActionView, board) {
		return nil, fmt.Errorf("view board %d: %w", boardId, apperrors.PermissionDenied)
	}
	return s.storage.GetTopicsByBoard(boardId)
}
