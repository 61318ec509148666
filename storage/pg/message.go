package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
)

const messageColumns = `id, body, position, total_starred, is_topic_body,
	is_deleted, topic_id, creator_id, date_created, date_modified`

func scanMessage(row rowScanner) (*domain.Message, error) {
	var m domain.Message
	err := row.Scan(&m.Id, &m.Body, &m.Position, &m.TotalStarred,
		&m.IsTopicBody, &m.IsDeleted, &m.TopicId, &m.CreatorId,
		&m.DateCreated, &m.DateModified)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *queries) GetMessage(id domain.MessageId) (*domain.Message, error) {
	row := s.q.QueryRow("SELECT "+messageColumns+" FROM messages WHERE id = $1", id)
	message, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("message %d: %w", id, apperrors.NotFound)
		}
		return nil, err
	}
	return message, nil
}

func (s *queries) SaveMessage(message *domain.Message) error {
	if message.Id == 0 {
		return s.q.QueryRow(`
			INSERT INTO messages(body, position, total_starred, is_topic_body,
				is_deleted, topic_id, creator_id, date_created, date_modified)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			message.Body, message.Position, message.TotalStarred,
			message.IsTopicBody, message.IsDeleted, message.TopicId,
			message.CreatorId, message.DateCreated, message.DateModified).Scan(&message.Id)
	}

	result, err := s.q.Exec(`
		UPDATE messages SET body = $2, position = $3, total_starred = $4,
			is_topic_body = $5, is_deleted = $6, topic_id = $7, creator_id = $8,
			date_created = $9, date_modified = $10
		WHERE id = $1`,
		message.Id, message.Body, message.Position, message.TotalStarred,
		message.IsTopicBody, message.IsDeleted, message.TopicId,
		message.CreatorId, message.DateCreated, message.DateModified)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("message %d: %w", message.Id, apperrors.NotFound)
	}
	return nil
}

func (s *queries) GetTopicBody(topicId domain.TopicId) (*domain.Message, error) {
	row := s.q.QueryRow("SELECT "+messageColumns+` FROM messages
		WHERE topic_id = $1 AND is_topic_body`, topicId)
	message, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("topic %d body: %w", topicId, apperrors.NotFound)
		}
		return nil, err
	}
	return message, nil
}

func (s *queries) GetMessagesByTopic(topicId domain.TopicId, offset, limit int) ([]*domain.Message, error) {
	if offset < 0 {
		offset = 0
	}
	query := "SELECT " + messageColumns + ` FROM messages
		WHERE topic_id = $1 AND NOT is_deleted
		ORDER BY position
		OFFSET $2`
	args := []any{topicId, offset}
	if limit > 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}
