package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
)

const starColumns = `id, message_id, user_id, is_deleted, date_created`

func scanStar(row rowScanner) (*domain.MessageStar, error) {
	var s domain.MessageStar
	err := row.Scan(&s.Id, &s.MessageId, &s.UserId, &s.IsDeleted, &s.DateCreated)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *queries) GetStar(messageId domain.MessageId, userId domain.UserId) (*domain.MessageStar, error) {
	row := s.q.QueryRow("SELECT "+starColumns+` FROM message_stars
		WHERE message_id = $1 AND user_id = $2`, messageId, userId)
	star, err := scanStar(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("star for message %d by user %d: %w", messageId, userId, apperrors.NotFound)
		}
		return nil, err
	}
	return star, nil
}

func (s *queries) SaveStar(star *domain.MessageStar) error {
	if star.Id == 0 {
		return s.q.QueryRow(`
			INSERT INTO message_stars(message_id, user_id, is_deleted, date_created)
			VALUES($1, $2, $3, $4)
			RETURNING id`,
			star.MessageId, star.UserId, star.IsDeleted, star.DateCreated).Scan(&star.Id)
	}

	result, err := s.q.Exec(`
		UPDATE message_stars SET message_id = $2, user_id = $3,
			is_deleted = $4, date_created = $5
		WHERE id = $1`,
		star.Id, star.MessageId, star.UserId, star.IsDeleted, star.DateCreated)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("star %d: %w", star.Id, apperrors.NotFound)
	}
	return nil
}

func (s *queries) GetStarsByUser(userId domain.UserId) ([]*domain.MessageStar, error) {
	rows, err := s.q.Query("SELECT "+starColumns+` FROM message_stars
		WHERE user_id = $1 AND NOT is_deleted
		ORDER BY id`, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stars []*domain.MessageStar
	for rows.Next() {
		star, err := scanStar(rows)
		if err != nil {
			return nil, err
		}
		stars = append(stars, star)
	}
	return stars, rows.Err()
}
