package domain

import (
	"time"
)

// Flag is a user-submitted report that a topic or message needs moderator
// attention. At most one live flag exists per target; additional reports
// join the flagger list of the existing one.
type Flag struct {
	Id FlagId

	// Ref points at the flagged topic or message, never a board.
	Ref EntityRef

	FlaggerIds   []UserId
	TotalFlagged int

	// ModerationId links the moderation record that resolved this flag,
	// once there is one.
	ModerationId *ModerationId

	// IsDeleted marks the flag resolved: either dismissed or acted upon.
	IsDeleted bool

	DateCreated time.Time
}

func (f *Flag) HasFlagger(user UserId) bool {
	for _, id := range f.FlaggerIds {
		if id == user {
			return true
		}
	}
	return false
}

// AddFlagger records a reporting user once and keeps TotalFlagged equal to
// the flagger count. Reports false if the user already flagged this target.
func (f *Flag) AddFlagger(user UserId) bool {
	if f.HasFlagger(user) {
		return false
	}
	f.FlaggerIds = append(f.FlaggerIds, user)
	f.TotalFlagged = len(f.FlaggerIds)
	return true
}

func (f *Flag) Clone() *Flag {
	out := *f
	out.FlaggerIds = append([]UserId(nil), f.FlaggerIds...)
	if f.ModerationId != nil {
		id := *f.ModerationId
		out.ModerationId = &id
	}
	return &out
}
