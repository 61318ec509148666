package service

import (
	stderrors "errors"

	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
	"github.com/boardtree-dev/boardtree/storage"
)

// UserStat keeps the per-user authored totals. Rows are created lazily on
// the first contribution; anonymous contributions are not counted.
type UserStat struct {
	storage storage.Storage
	clock   Clock
}

func NewUserStat(store storage.Storage, clock Clock) *UserStat {
	return &UserStat{storage: store, clock: clock}
}

func (s *UserStat) Get(userId domain.UserId) (*domain.UserStat, error) {
	return s.storage.GetUserStat(userId)
}

// recordTopic counts a new topic: one topic and one message, since the
// topic body is an authored message too.
func (s *UserStat) recordTopic(tx storage.Storage, user *domain.User) error {
	return s.bump(tx, user, 1, 1)
}

func (s *UserStat) recordMessage(tx storage.Storage, user *domain.User) error {
	return s.bump(tx, user, 0, 1)
}

func (s *UserStat) bump(tx storage.Storage, user *domain.User, topics, messages int) error {
	if user == nil {
		return nil
	}
	stat, err := tx.GetUserStat(user.Id)
	if err != nil {
		if !stderrors.Is(err, apperrors.NotFound) {
			return err
		}
		stat = &domain.UserStat{UserId: user.Id, DateCreated: s.clock.Now()}
	}
	stat.IncreaseTotalTopics(topics)
	stat.IncreaseTotalMessages(messages)
	return tx.SaveUserStat(stat)
}
