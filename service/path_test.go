package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardtree-dev/boardtree/config"
	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
)

// MockTopicStorage mocks the storage.TopicStorage interface.
type MockTopicStorage struct {
	findTopicsFunc func(title, slug string) ([]*domain.Topic, error)
}

func (m *MockTopicStorage) GetTopic(id domain.TopicId) (*domain.Topic, error) { return nil, nil }
func (m *MockTopicStorage) SaveTopic(topic *domain.Topic) error               { return nil }
func (m *MockTopicStorage) GetTopicsByBoard(boardId domain.BoardId) ([]*domain.Topic, error) {
	return nil, nil
}
func (m *MockTopicStorage) CountLiveTopics(boardId domain.BoardId) (int, error) { return 0, nil }
func (m *MockTopicStorage) ReassignTopics(from, to domain.BoardId) (int, error) { return 0, nil }
func (m *MockTopicStorage) FindTopicsByTitleOrSlug(title, slug string) ([]*domain.Topic, error) {
	if m.findTopicsFunc != nil {
		return m.findTopicsFunc(title, slug)
	}
	return nil, nil
}

func TestSlugify(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Hello, World!", "hello-world"},
		{"  spaced   out  ", "spaced-out"},
		{"Café Déjà Vu", "cafe-deja-vu"},
		{"already-fine", "already-fine"},
		{"UPPER CASE 42", "upper-case-42"},
		{"---", ""},
		{"", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, Slugify(tc.input))
		})
	}
}

func TestAssignBoardSlug(t *testing.T) {
	siblings := []*domain.Board{
		{Id: 1, Slug: "hello-world"},
		{Id: 2, Slug: "hello-world-1"},
	}

	t.Run("no collision", func(t *testing.T) {
		path := NewPath(config.SlugModeStrict)
		slug, err := path.AssignBoardSlug("Hello, World!", nil)
		require.NoError(t, err)
		assert.Equal(t, "hello-world", slug)
	})

	t.Run("strict mode rejects collision", func(t *testing.T) {
		path := NewPath(config.SlugModeStrict)
		_, err := path.AssignBoardSlug("Hello, World!", siblings)
		require.Error(t, err)
		assert.True(t, apperrors.Is[*apperrors.DuplicatePathError](err))
	})

	t.Run("dedupe mode suffixes past taken slugs", func(t *testing.T) {
		path := NewPath(config.SlugModeDedupe)
		slug, err := path.AssignBoardSlug("Hello, World!", siblings)
		require.NoError(t, err)
		assert.Equal(t, "hello-world-2", slug)
	})

	t.Run("empty title falls back", func(t *testing.T) {
		path := NewPath(config.SlugModeStrict)
		slug, err := path.AssignBoardSlug("!!!", nil)
		require.NoError(t, err)
		assert.Equal(t, "board", slug)
	})
}

func TestAssignTopicSlug(t *testing.T) {
	path := NewPath(config.SlugModeStrict)

	t.Run("unique title passes", func(t *testing.T) {
		store := &MockTopicStorage{}
		slug, err := path.AssignTopicSlug(store, "A Fresh Topic")
		require.NoError(t, err)
		assert.Equal(t, "a-fresh-topic", slug)
	})

	t.Run("conflicts listed", func(t *testing.T) {
		store := &MockTopicStorage{
			findTopicsFunc: func(title, slug string) ([]*domain.Topic, error) {
				return []*domain.Topic{{Id: 3}, {Id: 8}}, nil
			},
		}
		_, err := path.AssignTopicSlug(store, "Taken")
		require.Error(t, err)
		var dup *apperrors.DuplicateTopicError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, []int64{3, 8}, dup.ConflictIds)
	})
}

func TestBoardPaths(t *testing.T) {
	root := &domain.Board{Id: 1, Slug: "general"}
	child := &domain.Board{Id: 2, Slug: "golang"}
	grandchild := &domain.Board{Id: 3, Slug: "generics"}
	root.AddChild(child)
	child.AddChild(grandchild)
	tree := &domain.BoardTree{Roots: []*domain.Board{root}}

	path := NewPath(config.SlugModeStrict)

	t.Run("build", func(t *testing.T) {
		assert.Equal(t, "general", path.BuildBoardPath(root))
		assert.Equal(t, "general/golang/generics", path.BuildBoardPath(grandchild))
	})

	t.Run("lookup", func(t *testing.T) {
		found, err := path.LookupBoardByPath(tree, "general/golang")
		require.NoError(t, err)
		assert.Equal(t, child.Id, found.Id)

		found, err = path.LookupBoardByPath(tree, "/general/golang/generics/")
		require.NoError(t, err)
		assert.Equal(t, grandchild.Id, found.Id)
	})

	t.Run("lookup misses", func(t *testing.T) {
		_, err := path.LookupBoardByPath(tree, "general/rust")
		assert.ErrorIs(t, err, apperrors.NotFound)
		_, err = path.LookupBoardByPath(tree, "")
		assert.ErrorIs(t, err, apperrors.NotFound)
	})
}
