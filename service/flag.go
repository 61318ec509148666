package service

import (
	stderrors "errors"
	"fmt"

	"github.com/boardtree-dev/boardtree/config"
	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
	"github.com/boardtree-dev/boardtree/logger"
	"github.com/boardtree-dev/boardtree/metrics"
	"github.com/boardtree-dev/boardtree/storage"
)

// Flag manages user-submitted reports against topics and messages and
// their transitions: open, join, ignore, escalate to deletion.
type Flag struct {
	storage    storage.Storage
	access     *Access
	moderation *Moderation
	clock      Clock
	perPage    int
}

func NewFlag(store storage.Storage, access *Access, moderation *Moderation, clock Clock, cfg *config.Public) *Flag {
	return &Flag{
		storage:    store,
		access:     access,
		moderation: moderation,
		clock:      clock,
		perPage:    cfg.FlagsPerPage,
	}
}

// Flag reports the referenced topic or message. The returned bool is the
// caller-facing outcome: true means the report was accepted (including the
// idempotent re-report cases), false means the target cannot be flagged.
// Re-flagging a resolved flag succeeds without reopening it.
func (s *Flag) Flag(user *domain.User, ref domain.EntityRef) (bool, error) {
	if user == nil {
		return false, nil
	}
	if ref.Kind != domain.RefTopic && ref.Kind != domain.RefMessage {
		return false, fmt.Errorf("flag %s: %w", ref, apperrors.InvalidOperation)
	}

	accepted := false
	err := s.storage.InTransaction(func(tx storage.Storage) error {
		deleted, err := refDeleted(tx, ref)
		if err != nil {
			return err
		}
		if deleted {
			return nil
		}

		flag, err := tx.GetFlagByRef(ref)
		if err != nil && !stderrors.Is(err, apperrors.NotFound) {
			return err
		}

		switch {
		case flag == nil:
			flag = &domain.Flag{Ref: ref, DateCreated: s.clock.Now()}
			flag.AddFlagger(user.Id)
			if err := tx.SaveFlag(flag); err != nil {
				return err
			}
			metrics.FlagTransition("opened")
		case flag.IsDeleted:
			// Already resolved; report success without reopening.
		default:
			if flag.AddFlagger(user.Id) {
				if err := tx.SaveFlag(flag); err != nil {
					return err
				}
				metrics.FlagTransition("joined")
			}
		}
		accepted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return accepted, nil
}

// refDeleted reports whether the flag target is missing or soft-deleted.
func refDeleted(tx storage.Storage, ref domain.EntityRef) (bool, error) {
	switch ref.Kind {
	case domain.RefTopic:
		topic, err := tx.GetTopic(ref.Id)
		if err != nil {
			if stderrors.Is(err, apperrors.NotFound) {
				return true, nil
			}
			return false, err
		}
		return topic.IsDeleted, nil
	case domain.RefMessage:
		message, err := tx.GetMessage(ref.Id)
		if err != nil {
			if stderrors.Is(err, apperrors.NotFound) {
				return true, nil
			}
			return false, err
		}
		if message.IsDeleted {
			return true, nil
		}
		// A live message under a deleted topic is unreachable too.
		topic, err := tx.GetTopic(message.TopicId)
		if err != nil {
			if stderrors.Is(err, apperrors.NotFound) {
				return true, nil
			}
			return false, err
		}
		return topic.IsDeleted, nil
	}
	return true, nil
}

// Ignore dismisses a flag without touching the target entity.
func (s *Flag) Ignore(moderator *domain.User, flagId domain.FlagId) error {
	if !s.access.CanUndelete(moderator) {
		return fmt.Errorf("ignore flag %d: %w", flagId, apperrors.PermissionDenied)
	}
	return s.storage.InTransaction(func(tx storage.Storage) error {
		flag, err := tx.GetFlag(flagId)
		if err != nil {
			return err
		}
		if flag.IsDeleted {
			return nil
		}
		flag.IsDeleted = true
		if err := tx.SaveFlag(flag); err != nil {
			return err
		}
		metrics.FlagTransition("ignored")
		logger.Log.Info("flag ignored", "flag", flag.Id, "ref", flag.Ref.String())
		return nil
	})
}

// DeleteFlagged resolves a flag by deleting its target and links the
// resulting moderation record back onto the flag, unless an earlier action
// already linked one.
func (s *Flag) DeleteFlagged(moderator *domain.User, flagId domain.FlagId) error {
	return s.storage.InTransaction(func(tx storage.Storage) error {
		flag, err := tx.GetFlag(flagId)
		if err != nil {
			return err
		}
		if flag.IsDeleted {
			return nil
		}

		// The moderation delete resolves and links the live flag itself.
		deleted, err := s.moderation.deleteRef(tx, moderator, flag.Ref, true)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("delete flagged %s: %w", flag.Ref, apperrors.PermissionDenied)
		}
		metrics.FlagTransition("escalated")
		return nil
	})
}

// Latest pages through open flags, newest first.
func (s *Flag) Latest(page int) ([]*domain.Flag, error) {
	page = max(1, page)
	return s.storage.GetLatestFlags(s.perPage*(page-1), s.perPage)
}
