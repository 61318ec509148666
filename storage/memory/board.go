package memory

import (
	"fmt"
	"sort"

	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
)

func (t *tables) getBoard(id domain.BoardId) (*domain.Board, error) {
	b, ok := t.boards[id]
	if !ok {
		return nil, fmt.Errorf("board %d: %w", id, apperrors.NotFound)
	}
	return b.Clone(), nil
}

func (t *tables) getAllBoards() ([]*domain.Board, error) {
	var out []*domain.Board
	for _, b := range t.boards {
		if b.IsDeleted {
			continue
		}
		out = append(out, b.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Id < out[j].Id
	})
	return out, nil
}

func (t *tables) getChildBoards(parentId *domain.BoardId) ([]*domain.Board, error) {
	var out []*domain.Board
	for _, b := range t.boards {
		if b.IsDeleted {
			continue
		}
		if sameParent(b.ParentId, parentId) {
			out = append(out, b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Id < out[j].Id
	})
	return out, nil
}

func sameParent(a, b *domain.BoardId) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (t *tables) saveBoard(board *domain.Board) error {
	if board.Id == 0 {
		board.Id = t.next()
	}
	t.boards[board.Id] = board.Clone()
	return nil
}

func (s *Storage) GetBoard(id domain.BoardId) (*domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getBoard(id)
}

func (s *Storage) GetAllBoards() ([]*domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getAllBoards()
}

func (s *Storage) GetChildBoards(parentId *domain.BoardId) ([]*domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getChildBoards(parentId)
}

func (s *Storage) SaveBoard(board *domain.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.saveBoard(board)
}

func (t *txView) GetBoard(id domain.BoardId) (*domain.Board, error) {
	return t.data.getBoard(id)
}

func (t *txView) GetAllBoards() ([]*domain.Board, error) {
	return t.data.getAllBoards()
}

func (t *txView) GetChildBoards(parentId *domain.BoardId) ([]*domain.Board, error) {
	return t.data.getChildBoards(parentId)
}

func (t *txView) SaveBoard(board *domain.Board) error {
	return t.data.saveBoard(board)
}
