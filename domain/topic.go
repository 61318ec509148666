package domain

import (
	"time"
)

// TopicCreationData travels from the caller into TopicService.Create.
// The opening message becomes the topic body.
type TopicCreationData struct {
	Title   string `validate:"required,max=32"`
	BoardId BoardId
	Body    MessageCreationData
}

type Topic struct {
	Id    TopicId
	Title string
	Slug  string

	BoardId   BoardId
	CreatorId UserId

	// LastUserId tracks the most recent poster.
	LastUserId UserId

	TotalViews int
	// TotalPosts counts the body message plus all replies.
	TotalPosts int

	IsLocked  bool
	IsPinned  bool
	IsDeleted bool

	LastMessageDate time.Time
	DateCreated     time.Time
	DateModified    time.Time
}

func (t *Topic) IncreaseTotalViews(n int) { t.TotalViews += n }
func (t *Topic) IncreaseTotalPosts(n int) { t.TotalPosts += n }

func (t *Topic) Clone() *Topic {
	out := *t
	return &out
}
