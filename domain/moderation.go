package domain

import (
	"time"

	"github.com/google/uuid"
)

// ModerationAction enumerates the administrative actions the moderation
// log records.
type ModerationAction int

const (
	ModerationLock ModerationAction = iota + 1
	ModerationUnlock
	ModerationPin
	ModerationUnpin
	ModerationDelete
	ModerationUndelete
	ModerationMove
)

func (a ModerationAction) String() string {
	switch a {
	case ModerationLock:
		return "lock"
	case ModerationUnlock:
		return "unlock"
	case ModerationPin:
		return "pin"
	case ModerationUnpin:
		return "unpin"
	case ModerationDelete:
		return "delete"
	case ModerationUndelete:
		return "undelete"
	case ModerationMove:
		return "move"
	}
	return "unknown"
}

// Moderation is an append-only audit record of one administrative action
// against one board, topic or message. Records are never updated after
// creation.
type Moderation struct {
	Id ModerationId

	// AuditId is a stable external identifier for the record, safe to hand
	// to audit exports without leaking row ids.
	AuditId uuid.UUID

	Action      ModerationAction
	Ref         EntityRef
	ModeratorId UserId
	DateCreated time.Time
}

func (m *Moderation) Clone() *Moderation {
	out := *m
	return &out
}
