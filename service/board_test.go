package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardtree-dev/boardtree/config"
	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
)

func TestBuildTree(t *testing.T) {
	e := newEnv(t, config.SlugModeStrict)

	root := e.mustBoard(t, "Root", nil)
	child := e.mustBoard(t, "Child", &root.Id)
	grandchild := e.mustBoard(t, "Grandchild", &child.Id)
	second := e.mustBoard(t, "Second Root", nil)

	// Group 10 may view everything except the middle board.
	e.grant(t, root.Id, 10, domain.ObjectBoard, domain.ActionView)
	e.grant(t, grandchild.Id, 10, domain.ObjectBoard, domain.ActionView)
	e.grant(t, second.Id, 10, domain.ObjectBoard, domain.ActionView)

	t.Run("admin sees full tree", func(t *testing.T) {
		tree, err := e.boards.BuildTree(e.admin, nil)
		require.NoError(t, err)
		require.Len(t, tree.Roots, 2)
		assert.Equal(t, root.Id, tree.Roots[0].Id)
		assert.Equal(t, second.Id, tree.Roots[1].Id)
		require.Len(t, tree.Roots[0].Children, 1)
		assert.Equal(t, child.Id, tree.Roots[0].Children[0].Id)
		require.Len(t, tree.Roots[0].Children[0].Children, 1)
		assert.Empty(t, tree.Restricted)

		// Depth/position invariants hold on a freshly built tree.
		for _, b := range tree.Viewable {
			if b.Parent != nil {
				assert.Equal(t, b.Parent.Depth+1, b.Depth)
			} else {
				assert.Equal(t, 1, b.Depth)
			}
		}
	})

	t.Run("restricted parent promotes child to root", func(t *testing.T) {
		user := &domain.User{Id: 7, Groups: []domain.GroupId{10}}
		tree, err := e.boards.BuildTree(user, nil)
		require.NoError(t, err)

		_, restricted := tree.Restricted[child.Id]
		assert.True(t, restricted)
		_, visible := tree.Visible(grandchild.Id)
		assert.True(t, visible)

		rootIds := make([]domain.BoardId, 0, len(tree.Roots))
		for _, b := range tree.Roots {
			rootIds = append(rootIds, b.Id)
		}
		// The grandchild surfaces as a root because its parent is hidden.
		assert.Equal(t, []domain.BoardId{root.Id, second.Id, grandchild.Id}, rootIds)
		assert.Empty(t, tree.Viewable[root.Id].Children)
	})

	t.Run("anonymous sees nothing", func(t *testing.T) {
		tree, err := e.boards.BuildTree(nil, nil)
		require.NoError(t, err)
		assert.Empty(t, tree.Roots)
		assert.Len(t, tree.Restricted, 4)
	})

	t.Run("cache returns same tree", func(t *testing.T) {
		cache := NewTreeCache()
		first, err := e.boards.BuildTree(e.admin, cache)
		require.NoError(t, err)

		// A later mutation is invisible through the same cache.
		e.mustBoard(t, "Late Arrival", nil)
		again, err := e.boards.BuildTree(e.admin, cache)
		require.NoError(t, err)
		assert.Same(t, first, again)

		fresh, err := e.boards.BuildTree(e.admin, NewTreeCache())
		require.NoError(t, err)
		assert.Len(t, fresh.Roots, 3)
	})
}

func TestAdjustCounts(t *testing.T) {
	e := newEnv(t, config.SlugModeStrict)

	root := e.mustBoard(t, "Root", nil)
	child := e.mustBoard(t, "Child", &root.Id)
	grandchild := e.mustBoard(t, "Grandchild", &child.Id)

	require.NoError(t, e.boards.AdjustCounts(grandchild.Id, 3, 1))

	for _, id := range []domain.BoardId{grandchild.Id, child.Id, root.Id} {
		posts, topics := e.counts(t, id)
		assert.Equal(t, 3, posts)
		assert.Equal(t, 1, topics)
	}

	t.Run("zero delta is a safe no-op", func(t *testing.T) {
		require.NoError(t, e.boards.AdjustCounts(grandchild.Id, 0, 0))
		posts, topics := e.counts(t, root.Id)
		assert.Equal(t, 3, posts)
		assert.Equal(t, 1, topics)
	})

	t.Run("negative deltas subtract", func(t *testing.T) {
		require.NoError(t, e.boards.AdjustCounts(grandchild.Id, -3, -1))
		posts, topics := e.counts(t, root.Id)
		assert.Equal(t, 0, posts)
		assert.Equal(t, 0, topics)
	})

	t.Run("missing board", func(t *testing.T) {
		err := e.boards.AdjustCounts(9999, 1, 0)
		assert.ErrorIs(t, err, apperrors.NotFound)
	})
}

func TestBoardCreate(t *testing.T) {
	e := newEnv(t, config.SlugModeStrict)

	t.Run("root board", func(t *testing.T) {
		board := e.mustBoard(t, "General Talk", nil)
		assert.Equal(t, "general-talk", board.Slug)
		assert.Equal(t, 1, board.Depth)
		assert.Equal(t, 1, board.Position)
		assert.NotNil(t, board.Permissions)
	})

	t.Run("child board", func(t *testing.T) {
		parent := e.mustBoard(t, "Parent", nil)
		child := e.mustBoard(t, "Child", &parent.Id)
		assert.Equal(t, 2, child.Depth)
		assert.Equal(t, 1, child.Position)

		sibling := e.mustBoard(t, "Sibling", &parent.Id)
		assert.Equal(t, 2, sibling.Position)
	})

	t.Run("duplicate sibling slug rejected in strict mode", func(t *testing.T) {
		parent := e.mustBoard(t, "Strict Parent", nil)
		e.mustBoard(t, "Same Name", &parent.Id)
		_, err := e.boards.Create(e.admin, domain.BoardCreationData{
			Title: "Same Name", ShortTitle: "sn", ParentId: &parent.Id,
		})
		assert.True(t, apperrors.Is[*apperrors.DuplicatePathError](err))
	})

	t.Run("same slug under another parent is fine", func(t *testing.T) {
		a := e.mustBoard(t, "Parent A", nil)
		b := e.mustBoard(t, "Parent B", nil)
		e.mustBoard(t, "Shared Title", &a.Id)
		board := e.mustBoard(t, "Shared Title", &b.Id)
		assert.Equal(t, "shared-title", board.Slug)
	})

	t.Run("permission denied without grant", func(t *testing.T) {
		parent := e.mustBoard(t, "Locked Parent", nil)
		user := &domain.User{Id: 8, Groups: []domain.GroupId{10}}
		_, err := e.boards.Create(user, domain.BoardCreationData{
			Title: "Nope", ShortTitle: "n", ParentId: &parent.Id,
		})
		assert.ErrorIs(t, err, apperrors.PermissionDenied)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := e.boards.Create(e.admin, domain.BoardCreationData{ShortTitle: "x"})
		assert.True(t, apperrors.Is[*apperrors.ValidationError](err))
	})
}

func TestBoardCreateDedupeMode(t *testing.T) {
	e := newEnv(t, config.SlugModeDedupe)

	e.mustBoard(t, "Hello, World!", nil)
	second := e.mustBoard(t, "Hello, World!", nil)
	assert.Equal(t, "hello-world-1", second.Slug)
}

// buildMoveFixture returns the tree used by the move tests:
//
//	root
//	├── left
//	│   └── source   (2 topics, 5 posts)
//	└── right        (1 topic, 2 posts)
func buildMoveFixture(t *testing.T, e *env) (root, left, source, right *domain.Board) {
	root = e.mustBoard(t, "Root", nil)
	left = e.mustBoard(t, "Left", &root.Id)
	source = e.mustBoard(t, "Source", &left.Id)
	right = e.mustBoard(t, "Right", &root.Id)

	first := e.mustTopic(t, e.admin, "First Topic", source.Id)
	e.mustReply(t, e.admin, first.Id)
	e.mustReply(t, e.admin, first.Id)
	second := e.mustTopic(t, e.admin, "Second Topic", source.Id)
	e.mustReply(t, e.admin, second.Id)

	other := e.mustTopic(t, e.admin, "Right Topic", right.Id)
	e.mustReply(t, e.admin, other.Id)
	return root, left, source, right
}

func TestMoveContent(t *testing.T) {
	t.Run("move across subtrees", func(t *testing.T) {
		e := newEnv(t, config.SlugModeStrict)
		root, left, source, right := buildMoveFixture(t, e)

		require.NoError(t, e.boards.MoveContent(e.admin, source.Id, right.Id))

		// The vacated chain lost the delta, the adopting chain gained it,
		// and root (above the common ancestor) is untouched.
		posts, topics := e.counts(t, left.Id)
		assert.Equal(t, 0, posts)
		assert.Equal(t, 0, topics)
		posts, topics = e.counts(t, right.Id)
		assert.Equal(t, 7, posts)
		assert.Equal(t, 3, topics)
		posts, topics = e.counts(t, root.Id)
		assert.Equal(t, 7, posts)
		assert.Equal(t, 3, topics)

		// Topics now live on the destination board.
		n, err := e.store.CountLiveTopics(right.Id)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		n, err = e.store.CountLiveTopics(source.Id)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		// The board itself was reparented with its depth rewritten.
		moved, err := e.store.GetBoard(source.Id)
		require.NoError(t, err)
		require.NotNil(t, moved.ParentId)
		assert.Equal(t, right.Id, *moved.ParentId)
		assert.Equal(t, 3, moved.Depth)

		// The move left an audit record.
		latest, err := e.moderation.Latest(1)
		require.NoError(t, err)
		require.NotEmpty(t, latest)
		assert.Equal(t, domain.ModerationMove, latest[0].Action)
		assert.Equal(t, domain.BoardRef(source.Id), latest[0].Ref)
	})

	t.Run("move to ancestor stops negation at destination", func(t *testing.T) {
		e := newEnv(t, config.SlugModeStrict)
		root, left, source, _ := buildMoveFixture(t, e)

		require.NoError(t, e.boards.MoveContent(e.admin, source.Id, root.Id))

		// left is below the destination, so it was subtracted.
		posts, topics := e.counts(t, left.Id)
		assert.Equal(t, 0, posts)
		assert.Equal(t, 0, topics)
		// root is the destination: found in scope, no double correction.
		posts, topics = e.counts(t, root.Id)
		assert.Equal(t, 7, posts)
		assert.Equal(t, 3, topics)

		n, err := e.store.CountLiveTopics(root.Id)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("move back restores counts", func(t *testing.T) {
		e := newEnv(t, config.SlugModeStrict)
		root, left, source, right := buildMoveFixture(t, e)

		var before []*domain.Board
		for _, id := range []domain.BoardId{root.Id, left.Id, source.Id, right.Id} {
			b, err := e.store.GetBoard(id)
			require.NoError(t, err)
			before = append(before, b)
		}

		require.NoError(t, e.boards.MoveContent(e.admin, source.Id, right.Id))
		require.NoError(t, e.boards.MoveContent(e.admin, source.Id, left.Id))

		for _, b := range before {
			after, err := e.store.GetBoard(b.Id)
			require.NoError(t, err)
			assert.Equal(t, b.TotalPosts, after.TotalPosts, "board %d posts", b.Id)
			assert.Equal(t, b.TotalTopics, after.TotalTopics, "board %d topics", b.Id)
		}

		// The first move reassigned the topics to right; the second move
		// found nothing left on source, so they stay there.
		n, err := e.store.CountLiveTopics(right.Id)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		n, err = e.store.CountLiveTopics(left.Id)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("self move rejected", func(t *testing.T) {
		e := newEnv(t, config.SlugModeStrict)
		_, _, source, _ := buildMoveFixture(t, e)

		err := e.boards.MoveContent(e.admin, source.Id, source.Id)
		assert.ErrorIs(t, err, apperrors.InvalidOperation)
	})

	t.Run("move into own subtree rejected and mutates nothing", func(t *testing.T) {
		e := newEnv(t, config.SlugModeStrict)
		root, left, source, right := buildMoveFixture(t, e)

		snapshot := make(map[domain.BoardId]*domain.Board)
		for _, id := range []domain.BoardId{root.Id, left.Id, source.Id, right.Id} {
			b, err := e.store.GetBoard(id)
			require.NoError(t, err)
			snapshot[id] = b
		}

		err := e.boards.MoveContent(e.admin, left.Id, source.Id)
		require.ErrorIs(t, err, apperrors.InvalidOperation)

		for id, b := range snapshot {
			after, err := e.store.GetBoard(id)
			require.NoError(t, err)
			assert.Equal(t, b, after)
		}
	})

	t.Run("deleted boards neither move nor adopt", func(t *testing.T) {
		e := newEnv(t, config.SlugModeStrict)
		_, left, source, right := buildMoveFixture(t, e)

		spare := e.mustBoard(t, "Spare", nil)
		_, err := e.moderation.Delete(e.admin, domain.BoardRef(spare.Id), false)
		require.NoError(t, err)
		err = e.boards.MoveContent(e.admin, source.Id, spare.Id)
		assert.ErrorIs(t, err, apperrors.NotFound)

		gone, err := e.store.GetBoard(source.Id)
		require.NoError(t, err)
		gone.IsDeleted = true
		require.NoError(t, e.store.SaveBoard(gone))
		err = e.boards.MoveContent(e.admin, source.Id, right.Id)
		assert.ErrorIs(t, err, apperrors.NotFound)

		// Nothing moved either way.
		n, err := e.store.CountLiveTopics(left.Id)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		n, err = e.store.CountLiveTopics(source.Id)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("descendant depths rewritten", func(t *testing.T) {
		e := newEnv(t, config.SlugModeStrict)
		root, _, source, _ := buildMoveFixture(t, e)
		deep := e.mustBoard(t, "Deep", &source.Id)
		require.Equal(t, 4, deep.Depth)

		// Moving source directly under root lifts the whole subtree.
		require.NoError(t, e.boards.MoveContent(e.admin, source.Id, root.Id))
		movedDeep, err := e.store.GetBoard(deep.Id)
		require.NoError(t, err)
		assert.Equal(t, 3, movedDeep.Depth)
	})
}
