// Package memory implements the storage boundary with in-process maps.
// Every Get hands out a detached copy and every Save stores a copy, so
// callers can never mutate stored state behind the store's back.
// Transactions roll back by restoring a snapshot of all tables.
package memory

import (
	"sync"

	"github.com/boardtree-dev/boardtree/domain"
	"github.com/boardtree-dev/boardtree/storage"
)

type Storage struct {
	mu   sync.Mutex
	data *tables
}

func New() *Storage {
	return &Storage{data: newTables()}
}

type tables struct {
	seq int64

	boards      map[domain.BoardId]*domain.Board
	topics      map[domain.TopicId]*domain.Topic
	messages    map[domain.MessageId]*domain.Message
	flags       map[domain.FlagId]*domain.Flag
	moderations map[domain.ModerationId]*domain.Moderation
	stars       map[domain.StarId]*domain.MessageStar
	stats       map[domain.UserId]*domain.UserStat
}

func newTables() *tables {
	return &tables{
		boards:      make(map[domain.BoardId]*domain.Board),
		topics:      make(map[domain.TopicId]*domain.Topic),
		messages:    make(map[domain.MessageId]*domain.Message),
		flags:       make(map[domain.FlagId]*domain.Flag),
		moderations: make(map[domain.ModerationId]*domain.Moderation),
		stars:       make(map[domain.StarId]*domain.MessageStar),
		stats:       make(map[domain.UserId]*domain.UserStat),
	}
}

func (t *tables) next() int64 {
	t.seq++
	return t.seq
}

func (t *tables) clone() *tables {
	out := newTables()
	out.seq = t.seq
	for id, b := range t.boards {
		out.boards[id] = b.Clone()
	}
	for id, tp := range t.topics {
		out.topics[id] = tp.Clone()
	}
	for id, m := range t.messages {
		out.messages[id] = m.Clone()
	}
	for id, f := range t.flags {
		out.flags[id] = f.Clone()
	}
	for id, m := range t.moderations {
		out.moderations[id] = m.Clone()
	}
	for id, s := range t.stars {
		out.stars[id] = s.Clone()
	}
	for id, s := range t.stats {
		out.stats[id] = s.Clone()
	}
	return out
}

// InTransaction snapshots all tables, runs fn against an unlocked view of
// the live data and restores the snapshot when fn fails. The mutex is held
// for the whole transaction, which also serializes writers the way the
// concurrency model asks callers to.
func (s *Storage) InTransaction(fn func(tx storage.Storage) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(&txView{s.data}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// txView exposes the live tables without locking. Only reachable from
// inside InTransaction while the storage mutex is held.
type txView struct {
	data *tables
}

// InTransaction on a view joins the enclosing transaction.
func (t *txView) InTransaction(fn func(tx storage.Storage) error) error {
	return fn(t)
}
