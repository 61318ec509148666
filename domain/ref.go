package domain

import "fmt"

// RefKind tags which entity kind an EntityRef points at.
type RefKind int

const (
	RefBoard RefKind = iota + 1
	RefTopic
	RefMessage
)

func (k RefKind) String() string {
	switch k {
	case RefBoard:
		return "board"
	case RefTopic:
		return "topic"
	case RefMessage:
		return "message"
	}
	return "unknown"
}

// EntityRef is a typed reference to exactly one board, topic or message.
// Flags and moderation records use it instead of three nullable columns
// in the object model.
type EntityRef struct {
	Kind RefKind
	Id   int64
}

func BoardRef(id BoardId) EntityRef { return EntityRef{Kind: RefBoard, Id: id} }

func TopicRef(id TopicId) EntityRef { return EntityRef{Kind: RefTopic, Id: id} }

func MessageRef(id MessageId) EntityRef { return EntityRef{Kind: RefMessage, Id: id} }

func (r EntityRef) IsZero() bool { return r.Kind == 0 }

func (r EntityRef) String() string {
	return fmt.Sprintf("%s/%d", r.Kind, r.Id)
}
