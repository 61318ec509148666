package domain

import (
	"time"
)

// MessageCreationData travels from the caller into MessageService.Create.
type MessageCreationData struct {
	Body    string `validate:"required"`
	TopicId TopicId
}

type Message struct {
	Id   MessageId
	Body string

	// Position is the 1-based sequence number within the topic, assigned
	// from the topic's post total at creation time. The topic body is
	// always position 1.
	Position int

	TotalStarred int

	IsTopicBody bool
	IsDeleted   bool

	TopicId   TopicId
	CreatorId UserId

	DateCreated  time.Time
	DateModified time.Time
}

func (m *Message) IncreaseTotalStarred(n int) { m.TotalStarred += n }
func (m *Message) DecreaseTotalStarred(n int) { m.TotalStarred -= n }

func (m *Message) Clone() *Message {
	out := *m
	return &out
}
