package service

import (
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/boardtree-dev/boardtree/config"
	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
	"github.com/boardtree-dev/boardtree/logger"
	"github.com/boardtree-dev/boardtree/metrics"
	"github.com/boardtree-dev/boardtree/storage"
)

// Moderation records administrative actions against boards, topics and
// messages and applies their side effects: soft deletion with counter
// corrections, topic lock/pin state and the audit log itself.
type Moderation struct {
	storage  storage.Storage
	access   *Access
	clock    Clock
	perPage  int
	maxDepth int
}

func NewModeration(store storage.Storage, access *Access, clock Clock, cfg *config.Public) *Moderation {
	return &Moderation{
		storage:  store,
		access:   access,
		clock:    clock,
		perPage:  cfg.ModerationsPerPage,
		maxDepth: cfg.MaxTreeDepth,
	}
}

// recordModeration appends one immutable audit record.
func recordModeration(tx storage.Storage, clock Clock, action domain.ModerationAction, ref domain.EntityRef, moderator domain.UserId) (*domain.Moderation, error) {
	record := &domain.Moderation{
		AuditId:     uuid.New(),
		Action:      action,
		Ref:         ref,
		ModeratorId: moderator,
		DateCreated: clock.Now(),
	}
	if err := tx.SaveModeration(record); err != nil {
		return nil, err
	}
	return record, nil
}

// resolveFlag marks the target's live flag resolved and links the
// moderation record onto it, but only when the flag carries no link yet so
// a second action cannot overwrite the first.
func resolveFlag(tx storage.Storage, ref domain.EntityRef, moderationId domain.ModerationId) error {
	flag, err := tx.GetFlagByRef(ref)
	if err != nil {
		if stderrors.Is(err, apperrors.NotFound) {
			return nil
		}
		return err
	}
	if flag.IsDeleted {
		return nil
	}
	flag.IsDeleted = true
	if flag.ModerationId == nil {
		flag.ModerationId = &moderationId
	}
	if err := tx.SaveFlag(flag); err != nil {
		return err
	}
	metrics.FlagTransition("resolved")
	return nil
}

func (s *Moderation) Lock(actor *domain.User, topicId domain.TopicId) error {
	return s.setTopicState(actor, topicId, domain.ModerationLock)
}

func (s *Moderation) Unlock(actor *domain.User, topicId domain.TopicId) error {
	return s.setTopicState(actor, topicId, domain.ModerationUnlock)
}

func (s *Moderation) Pin(actor *domain.User, topicId domain.TopicId) error {
	return s.setTopicState(actor, topicId, domain.ModerationPin)
}

func (s *Moderation) Unpin(actor *domain.User, topicId domain.TopicId) error {
	return s.setTopicState(actor, topicId, domain.ModerationUnpin)
}

// setTopicState flips a topic's lock or pin state. Asking for the state
// the topic is already in is a silent no-op and writes no audit record.
func (s *Moderation) setTopicState(actor *domain.User, topicId domain.TopicId, action domain.ModerationAction) error {
	return s.storage.InTransaction(func(tx storage.Storage) error {
		topic, err := tx.GetTopic(topicId)
		if err != nil {
			return err
		}
		if topic.IsDeleted {
			return fmt.Errorf("topic %d: %w", topicId, apperrors.NotFound)
		}
		board, err := tx.GetBoard(topic.BoardId)
		if err != nil {
			return err
		}
		if !s.access.CanModerate(actor, board) {
			return fmt.Errorf("%s topic %d: %w", action, topicId, apperrors.PermissionDenied)
		}

		switch action {
		case domain.ModerationLock:
			if topic.IsLocked {
				return nil
			}
			topic.IsLocked = true
		case domain.ModerationUnlock:
			if !topic.IsLocked {
				return nil
			}
			topic.IsLocked = false
		case domain.ModerationPin:
			if topic.IsPinned {
				return nil
			}
			topic.IsPinned = true
		case domain.ModerationUnpin:
			if !topic.IsPinned {
				return nil
			}
			topic.IsPinned = false
		default:
			return fmt.Errorf("action %s is not a topic state change: %w", action, apperrors.InvalidOperation)
		}
		topic.DateModified = s.clock.Now()
		if err := tx.SaveTopic(topic); err != nil {
			return err
		}

		_, err = recordModeration(tx, s.clock, action, domain.TopicRef(topic.Id), userId(actor))
		return err
	})
}

// Delete soft-deletes the referenced entity. A denied permission is a
// no-op reported as false, not an error; structural violations (a board
// with live children or topics, deleting a topic body directly) are
// errors. For topics, bubbleDown also soft-deletes the body message.
func (s *Moderation) Delete(actor *domain.User, ref domain.EntityRef, bubbleDown bool) (bool, error) {
	deleted := false
	err := s.storage.InTransaction(func(tx storage.Storage) error {
		var err error
		deleted, err = s.deleteRef(tx, actor, ref, bubbleDown)
		return err
	})
	if err != nil {
		return false, err
	}
	if deleted {
		logger.Log.Info("entity deleted", "ref", ref.String(), "actor", userId(actor))
	}
	return deleted, nil
}

// deleteRef runs inside an existing transaction; the flag workflow joins
// it here instead of opening its own.
func (s *Moderation) deleteRef(tx storage.Storage, actor *domain.User, ref domain.EntityRef, bubbleDown bool) (bool, error) {
	switch ref.Kind {
	case domain.RefBoard:
		return s.deleteBoard(tx, actor, ref.Id)
	case domain.RefTopic:
		return s.deleteTopic(tx, actor, ref.Id, bubbleDown)
	case domain.RefMessage:
		return s.deleteMessage(tx, actor, ref.Id)
	}
	return false, fmt.Errorf("delete %s: %w", ref, apperrors.InvalidOperation)
}

func (s *Moderation) deleteBoard(tx storage.Storage, actor *domain.User, boardId domain.BoardId) (bool, error) {
	board, err := tx.GetBoard(boardId)
	if err != nil {
		return false, err
	}
	if board.IsDeleted {
		return false, nil
	}
	if !s.access.CanDelete(actor, board.CreatorId, domain.ObjectBoard, board) {
		return false, nil
	}

	children, err := tx.GetChildBoards(&board.Id)
	if err != nil {
		return false, err
	}
	if len(children) > 0 {
		return false, fmt.Errorf("board %d still has %d live child boards: %w",
			board.Id, len(children), apperrors.InvalidOperation)
	}
	liveTopics, err := tx.CountLiveTopics(board.Id)
	if err != nil {
		return false, err
	}
	if liveTopics > 0 {
		return false, fmt.Errorf("board %d still has %d live topics: %w",
			board.Id, liveTopics, apperrors.InvalidOperation)
	}

	board.IsDeleted = true
	board.DateModified = s.clock.Now()
	if err := tx.SaveBoard(board); err != nil {
		return false, err
	}
	if _, err := recordModeration(tx, s.clock, domain.ModerationDelete, domain.BoardRef(board.Id), userId(actor)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Moderation) deleteTopic(tx storage.Storage, actor *domain.User, topicId domain.TopicId, bubbleDown bool) (bool, error) {
	topic, err := tx.GetTopic(topicId)
	if err != nil {
		return false, err
	}
	if topic.IsDeleted {
		return false, nil
	}
	loader := newBoardLoader(tx, s.maxDepth)
	board, err := loader.get(topic.BoardId)
	if err != nil {
		return false, err
	}
	if !s.access.CanDelete(actor, topic.CreatorId, domain.ObjectTopic, board) {
		return false, nil
	}

	now := s.clock.Now()
	topic.IsDeleted = true
	topic.DateModified = now
	if err := tx.SaveTopic(topic); err != nil {
		return false, err
	}
	if err := bubbleCounts(loader, board, -topic.TotalPosts, -1); err != nil {
		return false, err
	}

	if bubbleDown {
		body, err := tx.GetTopicBody(topic.Id)
		if err != nil && !stderrors.Is(err, apperrors.NotFound) {
			return false, err
		}
		if body != nil && !body.IsDeleted {
			body.IsDeleted = true
			body.DateModified = now
			if err := tx.SaveMessage(body); err != nil {
				return false, err
			}
		}
	}

	record, err := recordModeration(tx, s.clock, domain.ModerationDelete, domain.TopicRef(topic.Id), userId(actor))
	if err != nil {
		return false, err
	}
	return true, resolveFlag(tx, domain.TopicRef(topic.Id), record.Id)
}

func (s *Moderation) deleteMessage(tx storage.Storage, actor *domain.User, messageId domain.MessageId) (bool, error) {
	message, err := tx.GetMessage(messageId)
	if err != nil {
		return false, err
	}
	if message.IsDeleted {
		return false, nil
	}
	if message.IsTopicBody {
		// The body falls only with its topic, otherwise the one-live-body
		// invariant breaks.
		return false, fmt.Errorf("message %d is the topic body, delete the topic: %w",
			message.Id, apperrors.InvalidOperation)
	}
	topic, err := tx.GetTopic(message.TopicId)
	if err != nil {
		return false, err
	}
	if topic.IsDeleted {
		// The topic's deletion already subtracted its full post total;
		// deleting a leftover reply would subtract it twice.
		return false, fmt.Errorf("topic %d is deleted: %w", topic.Id, apperrors.InvalidOperation)
	}
	loader := newBoardLoader(tx, s.maxDepth)
	board, err := loader.get(topic.BoardId)
	if err != nil {
		return false, err
	}
	if !s.access.CanDelete(actor, message.CreatorId, domain.ObjectMessage, board) {
		return false, nil
	}

	now := s.clock.Now()
	message.IsDeleted = true
	message.DateModified = now
	if err := tx.SaveMessage(message); err != nil {
		return false, err
	}
	topic.IncreaseTotalPosts(-1)
	topic.DateModified = now
	if err := tx.SaveTopic(topic); err != nil {
		return false, err
	}
	if err := bubbleCounts(loader, board, -1, 0); err != nil {
		return false, err
	}

	record, err := recordModeration(tx, s.clock, domain.ModerationDelete, domain.MessageRef(message.Id), userId(actor))
	if err != nil {
		return false, err
	}
	return true, resolveFlag(tx, domain.MessageRef(message.Id), record.Id)
}

// Undelete restores a soft-deleted entity and reverses the counter
// corrections its deletion applied. Moderator-only; a denied caller gets a
// false no-op.
func (s *Moderation) Undelete(actor *domain.User, ref domain.EntityRef) (bool, error) {
	if !s.access.CanUndelete(actor) {
		return false, nil
	}
	restored := false
	err := s.storage.InTransaction(func(tx storage.Storage) error {
		var err error
		switch ref.Kind {
		case domain.RefBoard:
			restored, err = s.undeleteBoard(tx, actor, ref.Id)
		case domain.RefTopic:
			restored, err = s.undeleteTopic(tx, actor, ref.Id)
		case domain.RefMessage:
			restored, err = s.undeleteMessage(tx, actor, ref.Id)
		default:
			err = fmt.Errorf("undelete %s: %w", ref, apperrors.InvalidOperation)
		}
		return err
	})
	if err != nil {
		return false, err
	}
	return restored, nil
}

func (s *Moderation) undeleteBoard(tx storage.Storage, actor *domain.User, boardId domain.BoardId) (bool, error) {
	board, err := tx.GetBoard(boardId)
	if err != nil {
		return false, err
	}
	if !board.IsDeleted {
		return false, nil
	}
	board.IsDeleted = false
	board.DateModified = s.clock.Now()
	if err := tx.SaveBoard(board); err != nil {
		return false, err
	}
	_, err = recordModeration(tx, s.clock, domain.ModerationUndelete, domain.BoardRef(board.Id), userId(actor))
	return err == nil, err
}

func (s *Moderation) undeleteTopic(tx storage.Storage, actor *domain.User, topicId domain.TopicId) (bool, error) {
	topic, err := tx.GetTopic(topicId)
	if err != nil {
		return false, err
	}
	if !topic.IsDeleted {
		return false, nil
	}
	loader := newBoardLoader(tx, s.maxDepth)
	board, err := loader.get(topic.BoardId)
	if err != nil {
		return false, err
	}
	if board.IsDeleted {
		return false, fmt.Errorf("board %d is deleted, restore it first: %w",
			board.Id, apperrors.InvalidOperation)
	}

	now := s.clock.Now()
	topic.IsDeleted = false
	topic.DateModified = now
	if err := tx.SaveTopic(topic); err != nil {
		return false, err
	}
	if err := bubbleCounts(loader, board, topic.TotalPosts, 1); err != nil {
		return false, err
	}

	body, err := tx.GetTopicBody(topic.Id)
	if err != nil && !stderrors.Is(err, apperrors.NotFound) {
		return false, err
	}
	if body != nil && body.IsDeleted {
		body.IsDeleted = false
		body.DateModified = now
		if err := tx.SaveMessage(body); err != nil {
			return false, err
		}
	}

	_, err = recordModeration(tx, s.clock, domain.ModerationUndelete, domain.TopicRef(topic.Id), userId(actor))
	return err == nil, err
}

func (s *Moderation) undeleteMessage(tx storage.Storage, actor *domain.User, messageId domain.MessageId) (bool, error) {
	message, err := tx.GetMessage(messageId)
	if err != nil {
		return false, err
	}
	if !message.IsDeleted {
		return false, nil
	}
	if message.IsTopicBody {
		return false, fmt.Errorf("message %d is the topic body, restore the topic: %w",
			message.Id, apperrors.InvalidOperation)
	}
	topic, err := tx.GetTopic(message.TopicId)
	if err != nil {
		return false, err
	}
	if topic.IsDeleted {
		return false, fmt.Errorf("topic %d is deleted, restore it first: %w",
			topic.Id, apperrors.InvalidOperation)
	}
	loader := newBoardLoader(tx, s.maxDepth)
	board, err := loader.get(topic.BoardId)
	if err != nil {
		return false, err
	}

	now := s.clock.Now()
	message.IsDeleted = false
	message.DateModified = now
	if err := tx.SaveMessage(message); err != nil {
		return false, err
	}
	topic.IncreaseTotalPosts(1)
	topic.DateModified = now
	if err := tx.SaveTopic(topic); err != nil {
		return false, err
	}
	if err := bubbleCounts(loader, board, 1, 0); err != nil {
		return false, err
	}

	_, err = recordModeration(tx, s.clock, domain.ModerationUndelete, domain.MessageRef(message.Id), userId(actor))
	return err == nil, err
}

// Latest pages through the audit log, newest first.
func (s *Moderation) Latest(page int) ([]*domain.Moderation, error) {
	page = max(1, page)
	return s.storage.GetLatestModerations(s.perPage*(page-1), s.perPage)
}
