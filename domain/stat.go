package domain

import (
	"time"
)

// UserStat aggregates how much a user has authored. Created lazily on the
// user's first contribution.
type UserStat struct {
	Id            int64
	UserId        UserId
	TotalMessages int
	TotalTopics   int
	DateCreated   time.Time
}

func (s *UserStat) IncreaseTotalMessages(n int) { s.TotalMessages += n }
func (s *UserStat) IncreaseTotalTopics(n int)   { s.TotalTopics += n }

func (s *UserStat) Clone() *UserStat {
	out := *s
	return &out
}

// MessageStar is one user's star on one message. Unstarring soft-deletes
// the row so a later re-star flips it back instead of inserting again.
type MessageStar struct {
	Id          StarId
	MessageId   MessageId
	UserId      UserId
	IsDeleted   bool
	DateCreated time.Time
}

func (s *MessageStar) Clone() *MessageStar {
	out := *s
	return &out
}
