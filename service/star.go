package service

import (
	stderrors "errors"

	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
	"github.com/boardtree-dev/boardtree/storage"
)

// Star tracks per-user stars on messages. Unstarring soft-deletes the row
// so the (message, user) pair stays unique across re-stars.
type Star struct {
	storage storage.Storage
	clock   Clock
}

func NewStar(store storage.Storage, clock Clock) *Star {
	return &Star{storage: store, clock: clock}
}

// Star adds the user's star to a message. Returns false when the message
// is deleted or already starred by this user.
func (s *Star) Star(user *domain.User, messageId domain.MessageId) (bool, error) {
	if user == nil {
		return false, &apperrors.MissingAssociationError{Association: "user"}
	}
	if messageId == 0 {
		return false, &apperrors.MissingAssociationError{Association: "message"}
	}

	starred := false
	err := s.storage.InTransaction(func(tx storage.Storage) error {
		message, err := tx.GetMessage(messageId)
		if err != nil {
			return err
		}
		if message.IsDeleted {
			return nil
		}

		star, err := tx.GetStar(messageId, user.Id)
		if err != nil && !stderrors.Is(err, apperrors.NotFound) {
			return err
		}
		switch {
		case star == nil:
			star = &domain.MessageStar{MessageId: messageId, UserId: user.Id, DateCreated: s.clock.Now()}
		case star.IsDeleted:
			star.IsDeleted = false
		default:
			return nil
		}
		if err := tx.SaveStar(star); err != nil {
			return err
		}
		message.IncreaseTotalStarred(1)
		if err := tx.SaveMessage(message); err != nil {
			return err
		}
		starred = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return starred, nil
}

// Unstar removes the user's star. Returns false when no live star exists.
func (s *Star) Unstar(user *domain.User, messageId domain.MessageId) (bool, error) {
	if user == nil {
		return false, &apperrors.MissingAssociationError{Association: "user"}
	}
	if messageId == 0 {
		return false, &apperrors.MissingAssociationError{Association: "message"}
	}

	removed := false
	err := s.storage.InTransaction(func(tx storage.Storage) error {
		star, err := tx.GetStar(messageId, user.Id)
		if err != nil {
			if stderrors.Is(err, apperrors.NotFound) {
				return nil
			}
			return err
		}
		if star.IsDeleted {
			return nil
		}
		star.IsDeleted = true
		if err := tx.SaveStar(star); err != nil {
			return err
		}
		message, err := tx.GetMessage(messageId)
		if err != nil {
			return err
		}
		message.DecreaseTotalStarred(1)
		if err := tx.SaveMessage(message); err != nil {
			return err
		}
		removed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// UserStarsByMessages returns the user's live stars keyed by message id.
// Callers that render a page of messages fetch this once per request and
// pass it along; nothing is memoized on the service.
func (s *Star) UserStarsByMessages(userId domain.UserId) (map[domain.MessageId]*domain.MessageStar, error) {
	stars, err := s.storage.GetStarsByUser(userId)
	if err != nil {
		return nil, err
	}
	byMessage := make(map[domain.MessageId]*domain.MessageStar, len(stars))
	for _, star := range stars {
		byMessage[star.MessageId] = star
	}
	return byMessage, nil
}
