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

// Board owns the board tree: building the visible tree for a user,
// bubbling counter deltas up ancestor chains, relocating content between
// boards and board CRUD.
type Board struct {
	storage  storage.Storage
	access   *Access
	path     *Path
	clock    Clock
	maxDepth int
}

func NewBoard(store storage.Storage, access *Access, path *Path, clock Clock, cfg *config.Public) *Board {
	return &Board{
		storage:  store,
		access:   access,
		path:     path,
		clock:    clock,
		maxDepth: cfg.MaxTreeDepth,
	}
}

// TreeCache memoizes one built tree for the lifetime of a single logical
// request. Callers own the cache and must not share one across concurrent
// requests; passing nil disables caching.
type TreeCache struct {
	tree *domain.BoardTree
}

func NewTreeCache() *TreeCache {
	return &TreeCache{}
}

// BuildTree loads every live board in (depth, position) order and rebuilds
// the parent/child links the persisted model deliberately omits. The scan
// order guarantees a board's parent was already processed, so one pass
// suffices.
//
// A board whose parent is restricted for this user is promoted to a root:
// hidden parents must not make visible children disappear. The children of
// a restricted board are still evaluated against their own permission
// tables later in the scan.
func (s *Board) BuildTree(user *domain.User, cache *TreeCache) (*domain.BoardTree, error) {
	if cache != nil && cache.tree != nil {
		return cache.tree, nil
	}

	boards, err := s.storage.GetAllBoards()
	if err != nil {
		return nil, err
	}

	tree := &domain.BoardTree{
		Viewable:   make(map[domain.BoardId]*domain.Board),
		Restricted: make(map[domain.BoardId]*domain.Board),
	}
	for _, board := range boards {
		if !s.access.CanView(user, board) {
			tree.Restricted[board.Id] = board
			continue
		}
		tree.Viewable[board.Id] = board

		if board.ParentId == nil {
			tree.Roots = append(tree.Roots, board)
			continue
		}
		parent, ok := tree.Viewable[*board.ParentId]
		if !ok {
			tree.Roots = append(tree.Roots, board)
			continue
		}
		parent.AddChild(board)
	}

	if cache != nil {
		cache.tree = tree
	}
	return tree, nil
}

// boardLoader memoizes boards by id for the duration of one mutating
// operation, so an ancestor shared by two walk paths resolves to a single
// instance and both corrections land on it.
type boardLoader struct {
	tx       storage.Storage
	boards   map[domain.BoardId]*domain.Board
	maxDepth int
}

func newBoardLoader(tx storage.Storage, maxDepth int) *boardLoader {
	if maxDepth <= 0 {
		maxDepth = 64
	}
	return &boardLoader{
		tx:       tx,
		boards:   make(map[domain.BoardId]*domain.Board),
		maxDepth: maxDepth,
	}
}

func (l *boardLoader) get(id domain.BoardId) (*domain.Board, error) {
	if board, ok := l.boards[id]; ok {
		return board, nil
	}
	board, err := l.tx.GetBoard(id)
	if err != nil {
		return nil, err
	}
	l.boards[board.Id] = board
	return board, nil
}

func (l *boardLoader) save(board *domain.Board) error {
	return l.tx.SaveBoard(board)
}

// bubbleCounts applies a counter delta to a board and every ancestor,
// saving each level before loading the next. Zero deltas are safe no-ops.
// The walk is an explicit loop bounded by maxDepth; a longer chain means a
// corrupted tree.
func bubbleCounts(loader *boardLoader, board *domain.Board, postsDelta, topicsDelta int) error {
	if postsDelta != 0 {
		metrics.CounterAdjusted("posts")
	}
	if topicsDelta != 0 {
		metrics.CounterAdjusted("topics")
	}

	current := board
	for level := 0; ; level++ {
		if level > loader.maxDepth {
			return fmt.Errorf("ancestor chain of board %d longer than %d levels", board.Id, loader.maxDepth)
		}
		current.IncreaseTotalPosts(postsDelta)
		current.IncreaseTotalTopics(topicsDelta)
		if err := loader.save(current); err != nil {
			return err
		}
		if current.ParentId == nil {
			return nil
		}
		next, err := loader.get(*current.ParentId)
		if err != nil {
			return err
		}
		current = next
	}
}

// AdjustCounts applies the deltas to the board and all its ancestors in
// one transaction.
func (s *Board) AdjustCounts(boardId domain.BoardId, postsDelta, topicsDelta int) error {
	return s.storage.InTransaction(func(tx storage.Storage) error {
		loader := newBoardLoader(tx, s.maxDepth)
		board, err := loader.get(boardId)
		if err != nil {
			return err
		}
		return bubbleCounts(loader, board, postsDelta, topicsDelta)
	})
}

// Create makes a new board under an optional parent. Its slug must be
// unique among siblings per the configured collision mode, its position is
// last among them and its permission table starts empty for the admin
// tooling to fill in.
func (s *Board) Create(creator *domain.User, data domain.BoardCreationData) (*domain.Board, error) {
	if err := validateStruct(data); err != nil {
		return nil, err
	}

	var board *domain.Board
	err := s.storage.InTransaction(func(tx storage.Storage) error {
		var parent *domain.Board
		if data.ParentId != nil {
			var err error
			parent, err = tx.GetBoard(*data.ParentId)
			if err != nil {
				return err
			}
			if parent.IsDeleted {
				return fmt.Errorf("parent board %d: %w", parent.Id, apperrors.NotFound)
			}
			if parent.Depth >= s.maxDepth {
				return fmt.Errorf("board nesting deeper than %d levels: %w", s.maxDepth, apperrors.InvalidOperation)
			}
		}
		if !s.access.CanCreateBoard(creator, parent) {
			return fmt.Errorf("create board: %w", apperrors.PermissionDenied)
		}

		siblings, err := tx.GetChildBoards(data.ParentId)
		if err != nil {
			return err
		}
		slug, err := s.path.AssignBoardSlug(data.Title, siblings)
		if err != nil {
			return err
		}

		depth := 1
		if parent != nil {
			depth = parent.Depth + 1
		}
		position := 0
		for _, sibling := range siblings {
			if sibling.Position > position {
				position = sibling.Position
			}
		}

		now := s.clock.Now()
		board = &domain.Board{
			Title:        data.Title,
			ShortTitle:   data.ShortTitle,
			Slug:         slug,
			Body:         data.Body,
			Depth:        depth,
			Position:     position + 1,
			Permissions:  domain.Permissions{},
			CreatorId:    userId(creator),
			ParentId:     data.ParentId,
			DateCreated:  now,
			DateModified: now,
		}
		return tx.SaveBoard(board)
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("board created", "id", board.Id, "slug", board.Slug)
	return board, nil
}

// MoveContent relocates one board's topics and the board itself under a
// new parent, transactionally correcting the bubbled counters on both
// ancestor chains.
//
// The negation walk up from source stops as soon as it reaches destination:
// everything at or above that point is an ancestor of both chains and its
// counts are already correct. Only when destination is not an ancestor of
// source does the captured delta get added to destination's own chain.
// Subtracting the full source chain and re-adding the full destination
// chain would double-correct every board above the common ancestor.
func (s *Board) MoveContent(actor *domain.User, sourceId, destinationId domain.BoardId) error {
	if sourceId == destinationId {
		metrics.ContentMoved("rejected")
		return fmt.Errorf("board %d cannot be moved into itself: %w", sourceId, apperrors.InvalidOperation)
	}

	err := s.storage.InTransaction(func(tx storage.Storage) error {
		loader := newBoardLoader(tx, s.maxDepth)
		source, err := loader.get(sourceId)
		if err != nil {
			return err
		}
		destination, err := loader.get(destinationId)
		if err != nil {
			return err
		}
		if source.IsDeleted {
			return fmt.Errorf("board %d: %w", source.Id, apperrors.NotFound)
		}
		if destination.IsDeleted {
			return fmt.Errorf("board %d: %w", destination.Id, apperrors.NotFound)
		}

		// Destination inside source's subtree would turn the parent chain
		// into a cycle.
		for cursor, level := destination.ParentId, 0; cursor != nil; level++ {
			if level > s.maxDepth {
				return fmt.Errorf("ancestor chain of board %d longer than %d levels", destination.Id, s.maxDepth)
			}
			if *cursor == source.Id {
				return fmt.Errorf("board %d is a descendant of board %d: %w",
					destination.Id, source.Id, apperrors.InvalidOperation)
			}
			ancestor, err := loader.get(*cursor)
			if err != nil {
				return err
			}
			cursor = ancestor.ParentId
		}

		postsDelta, topicsDelta := source.TotalPosts, source.TotalTopics

		foundInScope := false
		for cursor, level := source.ParentId, 0; cursor != nil; level++ {
			if level > s.maxDepth {
				return fmt.Errorf("ancestor chain of board %d longer than %d levels", source.Id, s.maxDepth)
			}
			ancestor, err := loader.get(*cursor)
			if err != nil {
				return err
			}
			if ancestor.Id == destination.Id {
				foundInScope = true
				break
			}
			ancestor.DecreaseTotalPosts(postsDelta)
			ancestor.DecreaseTotalTopics(topicsDelta)
			if err := loader.save(ancestor); err != nil {
				return err
			}
			cursor = ancestor.ParentId
		}
		if !foundInScope {
			if err := bubbleCounts(loader, destination, postsDelta, topicsDelta); err != nil {
				return err
			}
		}

		moved, err := tx.ReassignTopics(source.Id, destination.Id)
		if err != nil {
			return err
		}

		siblings, err := tx.GetChildBoards(&destination.Id)
		if err != nil {
			return err
		}
		position := 0
		for _, sibling := range siblings {
			if sibling.Id != source.Id && sibling.Position > position {
				position = sibling.Position
			}
		}

		source.ParentId = &destination.Id
		source.Depth = destination.Depth + 1
		source.Position = position + 1
		source.DateModified = s.clock.Now()
		if err := loader.save(source); err != nil {
			return err
		}
		if err := s.fixDescendantDepths(tx, source); err != nil {
			return err
		}

		if _, err := recordModeration(tx, s.clock, domain.ModerationMove, domain.BoardRef(source.Id), userId(actor)); err != nil {
			return err
		}

		logger.Log.Info("content moved",
			"source", source.Id, "destination", destination.Id, "topics", moved)
		return nil
	})
	if err != nil {
		if isRejection(err) {
			metrics.ContentMoved("rejected")
		} else {
			metrics.ContentMoved("failed")
		}
		return err
	}
	metrics.ContentMoved("moved")
	return nil
}

// fixDescendantDepths rewrites the depth of every board below the moved
// one, breadth first, after its own depth changed.
func (s *Board) fixDescendantDepths(tx storage.Storage, moved *domain.Board) error {
	queue := []*domain.Board{moved}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		if parent.Depth > s.maxDepth {
			return fmt.Errorf("board %d deeper than %d levels after move", parent.Id, s.maxDepth)
		}
		children, err := tx.GetChildBoards(&parent.Id)
		if err != nil {
			return err
		}
		for _, child := range children {
			if child.Depth == parent.Depth+1 {
				queue = append(queue, child)
				continue
			}
			child.Depth = parent.Depth + 1
			if err := tx.SaveBoard(child); err != nil {
				return err
			}
			queue = append(queue, child)
		}
	}
	return nil
}

func userId(user *domain.User) domain.UserId {
	if user == nil {
		return 0
	}
	return user.Id
}

// isRejection tells a rejected request apart from a storage failure.
func isRejection(err error) bool {
	return stderrors.Is(err, apperrors.InvalidOperation) ||
		stderrors.Is(err, apperrors.NotFound) ||
		stderrors.Is(err, apperrors.PermissionDenied)
}
