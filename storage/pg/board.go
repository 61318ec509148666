package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
)

const boardColumns = `id, title, short_title, slug, body, depth, position,
	total_posts, total_topics, permissions, creator_id, parent_id,
	is_deleted, date_created, date_modified`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBoard(row rowScanner) (*domain.Board, error) {
	var b domain.Board
	var permissions []byte
	var parentId sql.NullInt64

	err := row.Scan(&b.Id, &b.Title, &b.ShortTitle, &b.Slug, &b.Body,
		&b.Depth, &b.Position, &b.TotalPosts, &b.TotalTopics, &permissions,
		&b.CreatorId, &parentId, &b.IsDeleted, &b.DateCreated, &b.DateModified)
	if err != nil {
		return nil, err
	}
	if parentId.Valid {
		id := parentId.Int64
		b.ParentId = &id
	}
	b.Permissions, err = unmarshalPermissions(permissions)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *queries) GetBoard(id domain.BoardId) (*domain.Board, error) {
	row := s.q.QueryRow("SELECT "+boardColumns+" FROM boards WHERE id = $1", id)
	board, err := scanBoard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("board %d: %w", id, apperrors.NotFound)
		}
		return nil, err
	}
	return board, nil
}

func (s *queries) GetAllBoards() ([]*domain.Board, error) {
	rows, err := s.q.Query("SELECT " + boardColumns + ` FROM boards
		WHERE NOT is_deleted
		ORDER BY depth, position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []*domain.Board
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, board)
	}
	return boards, rows.Err()
}

func (s *queries) GetChildBoards(parentId *domain.BoardId) ([]*domain.Board, error) {
	var rows *sql.Rows
	var err error
	if parentId == nil {
		rows, err = s.q.Query("SELECT " + boardColumns + ` FROM boards
			WHERE parent_id IS NULL AND NOT is_deleted
			ORDER BY position, id`)
	} else {
		rows, err = s.q.Query("SELECT "+boardColumns+` FROM boards
			WHERE parent_id = $1 AND NOT is_deleted
			ORDER BY position, id`, *parentId)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []*domain.Board
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, board)
	}
	return boards, rows.Err()
}

func (s *queries) SaveBoard(board *domain.Board) error {
	permissions, err := marshalPermissions(board.Permissions)
	if err != nil {
		return err
	}
	var parentId sql.NullInt64
	if board.ParentId != nil {
		parentId = sql.NullInt64{Int64: *board.ParentId, Valid: true}
	}

	if board.Id == 0 {
		return s.q.QueryRow(`
			INSERT INTO boards(title, short_title, slug, body, depth, position,
				total_posts, total_topics, permissions, creator_id, parent_id,
				is_deleted, date_created, date_modified)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id`,
			board.Title, board.ShortTitle, board.Slug, board.Body, board.Depth,
			board.Position, board.TotalPosts, board.TotalTopics, permissions,
			board.CreatorId, parentId, board.IsDeleted, board.DateCreated,
			board.DateModified).Scan(&board.Id)
	}

	result, err := s.q.Exec(`
		UPDATE boards SET title = $2, short_title = $3, slug = $4, body = $5,
			depth = $6, position = $7, total_posts = $8, total_topics = $9,
			permissions = $10, creator_id = $11, parent_id = $12,
			is_deleted = $13, date_created = $14, date_modified = $15
		WHERE id = $1`,
		board.Id, board.Title, board.ShortTitle, board.Slug, board.Body,
		board.Depth, board.Position, board.TotalPosts, board.TotalTopics,
		permissions, board.CreatorId, parentId, board.IsDeleted,
		board.DateCreated, board.DateModified)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("board %d: %w", board.Id, apperrors.NotFound)
	}
	return nil
}
