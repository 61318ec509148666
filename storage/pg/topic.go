package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
)

const topicColumns = `id, title, slug, board_id, creator_id, last_user_id,
	total_views, total_posts, is_locked, is_pinned, is_deleted,
	last_message_date, date_created, date_modified`

func scanTopic(row rowScanner) (*domain.Topic, error) {
	var t domain.Topic
	err := row.Scan(&t.Id, &t.Title, &t.Slug, &t.BoardId, &t.CreatorId,
		&t.LastUserId, &t.TotalViews, &t.TotalPosts, &t.IsLocked, &t.IsPinned,
		&t.IsDeleted, &t.LastMessageDate, &t.DateCreated, &t.DateModified)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *queries) GetTopic(id domain.TopicId) (*domain.Topic, error) {
	row := s.q.QueryRow("SELECT "+topicColumns+" FROM topics WHERE id = $1", id)
	topic, err := scanTopic(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("topic %d: %w", id, apperrors.NotFound)
		}
		return nil, err
	}
	return topic, nil
}

func (s *queries) SaveTopic(topic *domain.Topic) error {
	if topic.Id == 0 {
		return s.q.QueryRow(`
			INSERT INTO topics(title, slug, board_id, creator_id, last_user_id,
				total_views, total_posts, is_locked, is_pinned, is_deleted,
				last_message_date, date_created, date_modified)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id`,
			topic.Title, topic.Slug, topic.BoardId, topic.CreatorId,
			topic.LastUserId, topic.TotalViews, topic.TotalPosts, topic.IsLocked,
			topic.IsPinned, topic.IsDeleted, topic.LastMessageDate,
			topic.DateCreated, topic.DateModified).Scan(&topic.Id)
	}

	result, err := s.q.Exec(`
		UPDATE topics SET title = $2, slug = $3, board_id = $4, creator_id = $5,
			last_user_id = $6, total_views = $7, total_posts = $8,
			is_locked = $9, is_pinned = $10, is_deleted = $11,
			last_message_date = $12, date_created = $13, date_modified = $14
		WHERE id = $1`,
		topic.Id, topic.Title, topic.Slug, topic.BoardId, topic.CreatorId,
		topic.LastUserId, topic.TotalViews, topic.TotalPosts, topic.IsLocked,
		topic.IsPinned, topic.IsDeleted, topic.LastMessageDate,
		topic.DateCreated, topic.DateModified)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("topic %d: %w", topic.Id, apperrors.NotFound)
	}
	return nil
}

func (s *queries) GetTopicsByBoard(boardId domain.BoardId) ([]*domain.Topic, error) {
	rows, err := s.q.Query("SELECT "+topicColumns+` FROM topics
		WHERE board_id = $1 AND NOT is_deleted
		ORDER BY id DESC`, boardId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []*domain.Topic
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

func (s *queries) CountLiveTopics(boardId domain.BoardId) (int, error) {
	var n int
	err := s.q.QueryRow(
		"SELECT count(*) FROM topics WHERE board_id = $1 AND NOT is_deleted",
		boardId).Scan(&n)
	return n, err
}

func (s *queries) ReassignTopics(from, to domain.BoardId) (int, error) {
	result, err := s.q.Exec("UPDATE topics SET board_id = $2 WHERE board_id = $1", from, to)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	return int(affected), err
}

func (s *queries) FindTopicsByTitleOrSlug(title, slug string) ([]*domain.Topic, error) {
	rows, err := s.q.Query("SELECT "+topicColumns+` FROM topics
		WHERE NOT is_deleted AND (title = $1 OR slug = $2)
		ORDER BY id`, title, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []*domain.Topic
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}
