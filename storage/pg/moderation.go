package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
)

const moderationColumns = `id, audit_id, action, ref_kind, ref_id,
	moderator_id, date_created`

func scanModeration(row rowScanner) (*domain.Moderation, error) {
	var m domain.Moderation
	var action, refKind int

	err := row.Scan(&m.Id, &m.AuditId, &action, &refKind, &m.Ref.Id,
		&m.ModeratorId, &m.DateCreated)
	if err != nil {
		return nil, err
	}
	m.Action = domain.ModerationAction(action)
	m.Ref.Kind = domain.RefKind(refKind)
	return &m, nil
}

func (s *queries) GetModeration(id domain.ModerationId) (*domain.Moderation, error) {
	row := s.q.QueryRow("SELECT "+moderationColumns+" FROM moderations WHERE id = $1", id)
	moderation, err := scanModeration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("moderation %d: %w", id, apperrors.NotFound)
		}
		return nil, err
	}
	return moderation, nil
}

func (s *queries) SaveModeration(moderation *domain.Moderation) error {
	// Audit records never change after the fact.
	if moderation.Id != 0 {
		return fmt.Errorf("moderation %d is immutable: %w", moderation.Id, apperrors.InvalidOperation)
	}
	return s.q.QueryRow(`
		INSERT INTO moderations(audit_id, action, ref_kind, ref_id,
			moderator_id, date_created)
		VALUES($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		moderation.AuditId, int(moderation.Action), int(moderation.Ref.Kind),
		moderation.Ref.Id, moderation.ModeratorId, moderation.DateCreated).Scan(&moderation.Id)
}

func (s *queries) GetLatestModerations(offset, limit int) ([]*domain.Moderation, error) {
	if offset < 0 {
		offset = 0
	}
	query := "SELECT " + moderationColumns + ` FROM moderations
		ORDER BY id DESC
		OFFSET $1`
	args := []any{offset}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var moderations []*domain.Moderation
	for rows.Next() {
		moderation, err := scanModeration(rows)
		if err != nil {
			return nil, err
		}
		moderations = append(moderations, moderation)
	}
	return moderations, rows.Err()
}
