package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
	"github.com/boardtree-dev/boardtree/storage"
)

func TestBoardRoundTrip(t *testing.T) {
	s := New()

	board := &domain.Board{Title: "General", ShortTitle: "gen", Slug: "general", Depth: 1, Position: 1}
	require.NoError(t, s.SaveBoard(board))
	require.NotZero(t, board.Id)

	got, err := s.GetBoard(board.Id)
	require.NoError(t, err)
	assert.Equal(t, "General", got.Title)

	// Mutating the returned copy must not leak into the store.
	got.Title = "changed"
	again, err := s.GetBoard(board.Id)
	require.NoError(t, err)
	assert.Equal(t, "General", again.Title)
}

func TestGetBoardNotFound(t *testing.T) {
	s := New()
	_, err := s.GetBoard(42)
	assert.ErrorIs(t, err, apperrors.NotFound)
}

func TestGetAllBoardsOrder(t *testing.T) {
	s := New()

	root := &domain.Board{Title: "root", Depth: 1, Position: 2}
	require.NoError(t, s.SaveBoard(root))
	first := &domain.Board{Title: "first", Depth: 1, Position: 1}
	require.NoError(t, s.SaveBoard(first))
	child := &domain.Board{Title: "child", Depth: 2, Position: 1, ParentId: &root.Id}
	require.NoError(t, s.SaveBoard(child))
	deleted := &domain.Board{Title: "gone", Depth: 1, Position: 3, IsDeleted: true}
	require.NoError(t, s.SaveBoard(deleted))

	boards, err := s.GetAllBoards()
	require.NoError(t, err)
	require.Len(t, boards, 3)
	assert.Equal(t, "first", boards[0].Title)
	assert.Equal(t, "root", boards[1].Title)
	assert.Equal(t, "child", boards[2].Title)
}

func TestGetChildBoards(t *testing.T) {
	s := New()

	root := &domain.Board{Title: "root", Depth: 1, Position: 1}
	require.NoError(t, s.SaveBoard(root))
	b := &domain.Board{Title: "b", Depth: 2, Position: 2, ParentId: &root.Id}
	require.NoError(t, s.SaveBoard(b))
	a := &domain.Board{Title: "a", Depth: 2, Position: 1, ParentId: &root.Id}
	require.NoError(t, s.SaveBoard(a))

	children, err := s.GetChildBoards(&root.Id)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "a", children[0].Title)
	assert.Equal(t, "b", children[1].Title)

	roots, err := s.GetChildBoards(nil)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "root", roots[0].Title)
}

func TestReassignTopics(t *testing.T) {
	s := New()

	require.NoError(t, s.SaveTopic(&domain.Topic{Title: "t1", BoardId: 1}))
	require.NoError(t, s.SaveTopic(&domain.Topic{Title: "t2", BoardId: 1}))
	require.NoError(t, s.SaveTopic(&domain.Topic{Title: "other", BoardId: 2}))

	n, err := s.ReassignTopics(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := s.CountLiveTopics(3)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	count, err = s.CountLiveTopics(1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestGetFlagByRefReturnsLatest(t *testing.T) {
	s := New()
	ref := domain.TopicRef(7)

	resolved := &domain.Flag{Ref: ref, IsDeleted: true}
	require.NoError(t, s.SaveFlag(resolved))
	live := &domain.Flag{Ref: ref, FlaggerIds: []domain.UserId{1}, TotalFlagged: 1}
	require.NoError(t, s.SaveFlag(live))

	got, err := s.GetFlagByRef(ref)
	require.NoError(t, err)
	assert.Equal(t, live.Id, got.Id)
	assert.False(t, got.IsDeleted)
}

func TestModerationInsertOnly(t *testing.T) {
	s := New()

	m := &domain.Moderation{Action: domain.ModerationLock, Ref: domain.TopicRef(1), ModeratorId: 9}
	require.NoError(t, s.SaveModeration(m))
	require.NotZero(t, m.Id)

	err := s.SaveModeration(m)
	assert.ErrorIs(t, err, apperrors.InvalidOperation)
}

func TestInTransactionRollback(t *testing.T) {
	s := New()

	board := &domain.Board{Title: "keep", Depth: 1, Position: 1, TotalPosts: 5}
	require.NoError(t, s.SaveBoard(board))

	boom := errors.New("boom")
	err := s.InTransaction(func(tx storage.Storage) error {
		b, err := tx.GetBoard(board.Id)
		require.NoError(t, err)
		b.TotalPosts = 100
		require.NoError(t, tx.SaveBoard(b))
		require.NoError(t, tx.SaveTopic(&domain.Topic{Title: "ghost", BoardId: board.Id}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetBoard(board.Id)
	require.NoError(t, err)
	assert.Equal(t, 5, got.TotalPosts)
	count, err := s.CountLiveTopics(board.Id)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestInTransactionCommit(t *testing.T) {
	s := New()

	err := s.InTransaction(func(tx storage.Storage) error {
		return tx.SaveBoard(&domain.Board{Title: "committed", Depth: 1, Position: 1})
	})
	require.NoError(t, err)

	boards, err := s.GetAllBoards()
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, "committed", boards[0].Title)
}

func TestNestedTransactionJoinsOuter(t *testing.T) {
	s := New()

	boom := errors.New("boom")
	err := s.InTransaction(func(tx storage.Storage) error {
		if err := tx.SaveBoard(&domain.Board{Title: "outer", Depth: 1, Position: 1}); err != nil {
			return err
		}
		return tx.InTransaction(func(inner storage.Storage) error {
			if err := inner.SaveBoard(&domain.Board{Title: "inner", Depth: 1, Position: 2}); err != nil {
				return err
			}
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	// The inner failure aborts the whole transaction.
	boards, err := s.GetAllBoards()
	require.NoError(t, err)
	assert.Empty(t, boards)
}

func TestGetMessagesByTopicPaging(t *testing.T) {
	s := New()

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.SaveMessage(&domain.Message{Body: "m", TopicId: 1, Position: i}))
	}

	msgs, err := s.GetMessagesByTopic(1, 1, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, 2, msgs[0].Position)
	assert.Equal(t, 3, msgs[1].Position)

	msgs, err = s.GetMessagesByTopic(1, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestUserStatRoundTrip(t *testing.T) {
	s := New()

	_, err := s.GetUserStat(5)
	assert.ErrorIs(t, err, apperrors.NotFound)

	stat := &domain.UserStat{UserId: 5, TotalTopics: 1, TotalMessages: 1}
	require.NoError(t, s.SaveUserStat(stat))

	got, err := s.GetUserStat(5)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalTopics)
}
