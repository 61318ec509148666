// Package pg implements the storage boundary on Postgres via lib/pq.
package pg

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/boardtree-dev/boardtree/config"
	"github.com/boardtree-dev/boardtree/domain"
	"github.com/boardtree-dev/boardtree/logger"
	"github.com/boardtree-dev/boardtree/storage"
)

// querier is satisfied by both *sql.DB and *sql.Tx, so every query method
// works unchanged inside and outside a transaction.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type queries struct {
	q querier
}

type Storage struct {
	queries
	db *sql.DB
}

func New(cfg config.Pg) (*Storage, error) {
	logger.Log.Info("connecting to db", "host", cfg.Host, "dbname", cfg.Dbname)
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("successfully connected to db")
	return &Storage{queries{db}, db}, nil
}

func Connect(cfg config.Pg) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// InTransaction runs fn against a view bound to one *sql.Tx and commits
// only when fn succeeds.
func (s *Storage) InTransaction(fn func(tx storage.Storage) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() // The rollback will be ignored if the tx has been committed later in the function.

	if err := fn(&txStorage{queries{tx}}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type txStorage struct {
	queries
}

// InTransaction on a transactional view joins the enclosing transaction.
func (t *txStorage) InTransaction(fn func(tx storage.Storage) error) error {
	return fn(t)
}

func marshalPermissions(p domain.Permissions) ([]byte, error) {
	if p == nil {
		p = domain.Permissions{}
	}
	return json.Marshal(p)
}

func unmarshalPermissions(raw []byte) (domain.Permissions, error) {
	p := domain.Permissions{}
	if len(raw) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode permissions: %w", err)
	}
	return p, nil
}
