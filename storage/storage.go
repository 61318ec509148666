// Package storage defines the entity-store boundary the services depend on.
// Two implementations exist: storage/memory for tests and embedders without
// a database, storage/pg backed by Postgres.
package storage

import (
	"github.com/boardtree-dev/boardtree/domain"
)

type BoardStorage interface {
	GetBoard(id domain.BoardId) (*domain.Board, error)
	// GetAllBoards returns every non-deleted board ordered by
	// (depth ascending, position ascending). The tree builder relies on
	// this order: a board's parent always precedes it.
	GetAllBoards() ([]*domain.Board, error)
	// GetChildBoards returns the live boards directly under parentId in
	// position order. A nil parentId selects the root boards.
	GetChildBoards(parentId *domain.BoardId) ([]*domain.Board, error)
	// SaveBoard inserts the board when its id is zero (assigning one) and
	// updates it otherwise.
	SaveBoard(board *domain.Board) error
}

type TopicStorage interface {
	GetTopic(id domain.TopicId) (*domain.Topic, error)
	SaveTopic(topic *domain.Topic) error
	// GetTopicsByBoard returns the live topics of one board, newest first.
	GetTopicsByBoard(boardId domain.BoardId) ([]*domain.Topic, error)
	CountLiveTopics(boardId domain.BoardId) (int, error)
	// ReassignTopics bulk-moves every topic of one board to another and
	// reports how many rows changed.
	ReassignTopics(from, to domain.BoardId) (int, error)
	// FindTopicsByTitleOrSlug returns every non-deleted topic whose title
	// or slug matches, across all boards.
	FindTopicsByTitleOrSlug(title, slug string) ([]*domain.Topic, error)
}

type MessageStorage interface {
	GetMessage(id domain.MessageId) (*domain.Message, error)
	SaveMessage(message *domain.Message) error
	// GetTopicBody returns the topic's opening message.
	GetTopicBody(topicId domain.TopicId) (*domain.Message, error)
	// GetMessagesByTopic pages through a topic's live messages in position
	// order.
	GetMessagesByTopic(topicId domain.TopicId, offset, limit int) ([]*domain.Message, error)
}

type FlagStorage interface {
	GetFlag(id domain.FlagId) (*domain.Flag, error)
	// GetFlagByRef returns the most recent flag for the target, live or
	// resolved.
	GetFlagByRef(ref domain.EntityRef) (*domain.Flag, error)
	SaveFlag(flag *domain.Flag) error
	// GetLatestFlags pages through live flags, newest first.
	GetLatestFlags(offset, limit int) ([]*domain.Flag, error)
}

type ModerationStorage interface {
	GetModeration(id domain.ModerationId) (*domain.Moderation, error)
	// SaveModeration appends an audit record. Records are insert-only.
	SaveModeration(moderation *domain.Moderation) error
	// GetLatestModerations pages through audit records, newest first.
	GetLatestModerations(offset, limit int) ([]*domain.Moderation, error)
}

type StarStorage interface {
	// GetStar returns the star row for (message, user) whether live or
	// soft-deleted.
	GetStar(messageId domain.MessageId, userId domain.UserId) (*domain.MessageStar, error)
	SaveStar(star *domain.MessageStar) error
	// GetStarsByUser returns the user's live stars.
	GetStarsByUser(userId domain.UserId) ([]*domain.MessageStar, error)
}

type UserStatStorage interface {
	GetUserStat(userId domain.UserId) (*domain.UserStat, error)
	SaveUserStat(stat *domain.UserStat) error
}

// Storage aggregates the per-kind stores with the transaction wrapper.
// InTransaction runs fn against a transactional view; every save inside fn
// commits atomically or not at all. Calling InTransaction on a transactional
// view joins the enclosing transaction instead of opening a new one.
type Storage interface {
	BoardStorage
	TopicStorage
	MessageStorage
	FlagStorage
	ModerationStorage
	StarStorage
	UserStatStorage

	InTransaction(fn func(tx Storage) error) error
}
