package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
)

const flagColumns = `id, ref_kind, ref_id, flagger_ids, total_flagged,
	moderation_id, is_deleted, date_created`

func scanFlag(row rowScanner) (*domain.Flag, error) {
	var f domain.Flag
	var refKind int
	var flaggers pq.Int64Array
	var moderationId sql.NullInt64

	err := row.Scan(&f.Id, &refKind, &f.Ref.Id, &flaggers, &f.TotalFlagged,
		&moderationId, &f.IsDeleted, &f.DateCreated)
	if err != nil {
		return nil, err
	}
	f.Ref.Kind = domain.RefKind(refKind)
	f.FlaggerIds = []domain.UserId(flaggers)
	if moderationId.Valid {
		id := moderationId.Int64
		f.ModerationId = &id
	}
	return &f, nil
}

func (s *queries) GetFlag(id domain.FlagId) (*domain.Flag, error) {
	row := s.q.QueryRow("SELECT "+flagColumns+" FROM flags WHERE id = $1", id)
	flag, err := scanFlag(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("flag %d: %w", id, apperrors.NotFound)
		}
		return nil, err
	}
	return flag, nil
}

func (s *queries) GetFlagByRef(ref domain.EntityRef) (*domain.Flag, error) {
	row := s.q.QueryRow("SELECT "+flagColumns+` FROM flags
		WHERE ref_kind = $1 AND ref_id = $2
		ORDER BY id DESC LIMIT 1`, int(ref.Kind), ref.Id)
	flag, err := scanFlag(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("flag for %s: %w", ref, apperrors.NotFound)
		}
		return nil, err
	}
	return flag, nil
}

func (s *queries) SaveFlag(flag *domain.Flag) error {
	var moderationId sql.NullInt64
	if flag.ModerationId != nil {
		moderationId = sql.NullInt64{Int64: *flag.ModerationId, Valid: true}
	}
	flaggers := pq.Int64Array(flag.FlaggerIds)

	if flag.Id == 0 {
		return s.q.QueryRow(`
			INSERT INTO flags(ref_kind, ref_id, flagger_ids, total_flagged,
				moderation_id, is_deleted, date_created)
			VALUES($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			int(flag.Ref.Kind), flag.Ref.Id, flaggers, flag.TotalFlagged,
			moderationId, flag.IsDeleted, flag.DateCreated).Scan(&flag.Id)
	}

	result, err := s.q.Exec(`
		UPDATE flags SET ref_kind = $2, ref_id = $3, flagger_ids = $4,
			total_flagged = $5, moderation_id = $6, is_deleted = $7,
			date_created = $8
		WHERE id = $1`,
		flag.Id, int(flag.Ref.Kind), flag.Ref.Id, flaggers, flag.TotalFlagged,
		moderationId, flag.IsDeleted, flag.DateCreated)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("flag %d: %w", flag.Id, apperrors.NotFound)
	}
	return nil
}

func (s *queries) GetLatestFlags(offset, limit int) ([]*domain.Flag, error) {
	if offset < 0 {
		offset = 0
	}
	query := "SELECT " + flagColumns + ` FROM flags
		WHERE NOT is_deleted
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

	var flags []*domain.Flag
	for rows.Next() {
		flag, err := scanFlag(rows)
		if err != nil {
			return nil, err
		}
		flags = append(flags, flag)
	}
	return flags, rows.Err()
}
