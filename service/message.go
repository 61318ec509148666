package service

import (
	"fmt"
	"strings"

	"github.com/boardtree-dev/boardtree/config"
	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
	"github.com/boardtree-dev/boardtree/storage"
)

// Message creates replies inside topics and lets authors edit their own.
type Message struct {
	storage  storage.Storage
	access   *Access
	stats    *UserStat
	clock    Clock
	maxDepth int
}

func NewMessage(store storage.Storage, access *Access, stats *UserStat, clock Clock, cfg *config.Public) *Message {
	return &Message{
		storage:  store,
		access:   access,
		stats:    stats,
		clock:    clock,
		maxDepth: cfg.MaxTreeDepth,
	}
}

// Create posts a reply. The position comes from the topic's post total
// after the increment, so the body is 1 and replies follow from 2. The
// (1, 0) delta bubbles up the board chain: a reply adds a post but no
// topic.
func (s *Message) Create(creator *domain.User, data domain.MessageCreationData) (*domain.Message, error) {
	if err := validateStruct(data); err != nil {
		return nil, err
	}

	var message *domain.Message
	err := s.storage.InTransaction(func(tx storage.Storage) error {
		topic, err := tx.GetTopic(data.TopicId)
		if err != nil {
			return err
		}
		if topic.IsDeleted {
			return fmt.Errorf("topic %d: %w", topic.Id, apperrors.NotFound)
		}
		if topic.IsLocked {
			return fmt.Errorf("topic %d is locked: %w", topic.Id, apperrors.InvalidOperation)
		}
		loader := newBoardLoader(tx, s.maxDepth)
		board, err := loader.get(topic.BoardId)
		if err != nil {
			return err
		}
		if !s.access.CanCreateMessage(creator, board) {
			return fmt.Errorf("post to topic %d: %w", topic.Id, apperrors.PermissionDenied)
		}

		now := s.clock.Now()
		topic.IncreaseTotalPosts(1)
		topic.LastUserId = userId(creator)
		topic.LastMessageDate = now
		topic.DateModified = now
		if err := tx.SaveTopic(topic); err != nil {
			return err
		}

		message = &domain.Message{
			Body:         data.Body,
			Position:     topic.TotalPosts,
			TopicId:      topic.Id,
			CreatorId:    userId(creator),
			DateCreated:  now,
			DateModified: now,
		}
		if err := tx.SaveMessage(message); err != nil {
			return err
		}

		if err := bubbleCounts(loader, board, 1, 0); err != nil {
			return err
		}
		return s.stats.recordMessage(tx, creator)
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

// Edit replaces a message body. Only the author may edit, and only where
// the board grants message edits; admins bypass both.
func (s *Message) Edit(user *domain.User, messageId domain.MessageId, body string) (*domain.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, &apperrors.ValidationError{Message: "message body is required"}
	}

	var message *domain.Message
	err := s.storage.InTransaction(func(tx storage.Storage) error {
		var err error
		message, err = tx.GetMessage(messageId)
		if err != nil {
			return err
		}
		if message.IsDeleted {
			return fmt.Errorf("message %d: %w", messageId, apperrors.NotFound)
		}
		topic, err := tx.GetTopic(message.TopicId)
		if err != nil {
			return err
		}
		board, err := tx.GetBoard(topic.BoardId)
		if err != nil {
			return err
		}
		if !s.access.CanEdit(user, message.CreatorId, domain.ObjectMessage, board) {
			return fmt.Errorf("edit message %d: %w", messageId, apperrors.PermissionDenied)
		}

		message.Body = body
		message.DateModified = s.clock.Now()
		return tx.SaveMessage(message)
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}
