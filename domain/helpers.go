package domain

import "fmt"

// for debug
func (b *Board) String() string {
	parent := int64(0)
	if b.ParentId != nil {
		parent = *b.ParentId
	}
	return fmt.Sprintf("[board id:%d slug:%s depth:%d pos:%d parent:%d posts:%d topics:%d deleted:%v]",
		b.Id, b.Slug, b.Depth, b.Position, parent, b.TotalPosts, b.TotalTopics, b.IsDeleted)
}

func (t *Topic) String() string {
	return fmt.Sprintf("[topic id:%d slug:%s board:%d posts:%d locked:%v pinned:%v deleted:%v]",
		t.Id, t.Slug, t.BoardId, t.TotalPosts, t.IsLocked, t.IsPinned, t.IsDeleted)
}
