package domain

type (
	BoardId      = int64
	TopicId      = int64
	MessageId    = int64
	FlagId       = int64
	ModerationId = int64
	StarId       = int64
	UserId       = int64
	GroupId      = int64
)
