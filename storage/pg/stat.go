package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
)

func (s *queries) GetUserStat(userId domain.UserId) (*domain.UserStat, error) {
	var stat domain.UserStat
	err := s.q.QueryRow(`
		SELECT id, user_id, total_messages, total_topics, date_created
		FROM user_stats WHERE user_id = $1`, userId).
		Scan(&stat.Id, &stat.UserId, &stat.TotalMessages, &stat.TotalTopics, &stat.DateCreated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("stat for user %d: %w", userId, apperrors.NotFound)
		}
		return nil, err
	}
	return &stat, nil
}

func (s *queries) SaveUserStat(stat *domain.UserStat) error {
	if stat.Id == 0 {
		return s.q.QueryRow(`
			INSERT INTO user_stats(user_id, total_messages, total_topics, date_created)
			VALUES($1, $2, $3, $4)
			RETURNING id`,
			stat.UserId, stat.TotalMessages, stat.TotalTopics, stat.DateCreated).Scan(&stat.Id)
	}

	result, err := s.q.Exec(`
		UPDATE user_stats SET total_messages = $2, total_topics = $3
		WHERE id = $1`,
		stat.Id, stat.TotalMessages, stat.TotalTopics)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("stat %d: %w", stat.Id, apperrors.NotFound)
	}
	return nil
}
