package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/boardtree-dev/boardtree/config"
	"github.com/boardtree-dev/boardtree/domain"
	"github.com/boardtree-dev/boardtree/storage/memory"
)

// env wires every service over one in-memory store with a frozen clock.
type env struct {
	store      *memory.Storage
	clock      Clock
	access     *Access
	path       *Path
	boards     *Board
	topics     *Topic
	messages   *Message
	moderation *Moderation
	flags      *Flag
	stars      *Star
	stats      *UserStat
	admin      *domain.User
}

func newEnv(t *testing.T, mode config.SlugMode) *env {
	t.Helper()
	cfg := &config.Public{SlugMode: mode, FlagsPerPage: 10, ModerationsPerPage: 10, MaxTreeDepth: 64}
	cfg.Normalize()
	cfg.SlugMode = mode

	e := &env{
		store: memory.New(),
		clock: clockFunc(func() time.Time {
			return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		}),
		admin: &domain.User{Id: 1, SuperAdmin: true},
	}
	e.access = NewAccess()
	e.path = NewPath(mode)
	e.stats = NewUserStat(e.store, e.clock)
	e.boards = NewBoard(e.store, e.access, e.path, e.clock, cfg)
	e.topics = NewTopic(e.store, e.access, e.path, e.stats, e.clock, cfg)
	e.messages = NewMessage(e.store, e.access, e.stats, e.clock, cfg)
	e.moderation = NewModeration(e.store, e.access, e.clock, cfg)
	e.flags = NewFlag(e.store, e.access, e.moderation, e.clock, cfg)
	e.stars = NewStar(e.store, e.clock)
	return e
}

func (e *env) mustBoard(t *testing.T, title string, parentId *domain.BoardId) *domain.Board {
	t.Helper()
	board, err := e.boards.Create(e.admin, domain.BoardCreationData{
		Title:      title,
		ShortTitle: title,
		ParentId:   parentId,
	})
	require.NoError(t, err)
	return board
}

func (e *env) mustTopic(t *testing.T, creator *domain.User, title string, boardId domain.BoardId) *domain.Topic {
	t.Helper()
	topic, err := e.topics.Create(creator, domain.TopicCreationData{
		Title:   title,
		BoardId: boardId,
		Body:    domain.MessageCreationData{Body: "opening post"},
	})
	require.NoError(t, err)
	return topic
}

func (e *env) mustReply(t *testing.T, creator *domain.User, topicId domain.TopicId) *domain.Message {
	t.Helper()
	message, err := e.messages.Create(creator, domain.MessageCreationData{
		Body:    "a reply",
		TopicId: topicId,
	})
	require.NoError(t, err)
	return message
}

// grant enables one permission for a group directly on the stored board.
func (e *env) grant(t *testing.T, boardId domain.BoardId, group domain.GroupId, object domain.AccessObject, action domain.AccessAction) {
	t.Helper()
	board, err := e.store.GetBoard(boardId)
	require.NoError(t, err)
	if board.Permissions == nil {
		board.Permissions = domain.Permissions{}
	}
	board.Permissions.Grant(group, object, action)
	require.NoError(t, e.store.SaveBoard(board))
}

func (e *env) counts(t *testing.T, boardId domain.BoardId) (posts, topics int) {
	t.Helper()
	board, err := e.store.GetBoard(boardId)
	require.NoError(t, err)
	return board.TotalPosts, board.TotalTopics
}
