package domain

import (
	"time"
)

// BoardCreationData travels from the caller into BoardService.Create.
type BoardCreationData struct {
	Title      string `validate:"required,max=64"`
	ShortTitle string `validate:"required,max=16"`
	Body       string `validate:"max=255"`
	ParentId   *BoardId
}

type Board struct {
	Id         BoardId
	Title      string
	ShortTitle string
	Slug       string
	Body       string

	// Depth is 1 for root boards and parent.Depth+1 below; Position orders
	// siblings and is unique among them.
	Depth    int
	Position int

	// Aggregate counters: direct content of this board plus every
	// descendant board's direct content.
	TotalPosts  int
	TotalTopics int

	Permissions Permissions

	CreatorId UserId
	ParentId  *BoardId
	IsDeleted bool

	DateCreated  time.Time
	DateModified time.Time

	// Parent and Children are transient tree links rebuilt on every tree
	// load. They are never persisted; the stored relationship is ParentId
	// only, so the persisted model can never form a cycle of owned objects.
	Parent   *Board
	Children []*Board
}

func (b *Board) IncreaseTotalPosts(n int)  { b.TotalPosts += n }
func (b *Board) DecreaseTotalPosts(n int)  { b.TotalPosts -= n }
func (b *Board) IncreaseTotalTopics(n int) { b.TotalTopics += n }
func (b *Board) DecreaseTotalTopics(n int) { b.TotalTopics -= n }

// AddChild appends a child and sets its transient back-reference.
func (b *Board) AddChild(child *Board) {
	child.Parent = b
	b.Children = append(b.Children, child)
}

// Parents returns the transient ancestor chain ordered root-first.
// Only meaningful on boards attached to a built tree.
func (b *Board) Parents() []*Board {
	var chain []*Board
	for p := b.Parent; p != nil; p = p.Parent {
		chain = append([]*Board{p}, chain...)
	}
	return chain
}

// Clone deep-copies the persisted fields. Transient tree links are not
// carried over; the copy comes back detached.
func (b *Board) Clone() *Board {
	out := *b
	out.Parent = nil
	out.Children = nil
	out.Permissions = b.Permissions.Clone()
	if b.ParentId != nil {
		id := *b.ParentId
		out.ParentId = &id
	}
	return &out
}

// BoardTree is the result of one tree build: root boards in position order
// with transient child links populated, plus the per-board visibility split
// for the acting user.
type BoardTree struct {
	Roots      []*Board
	Viewable   map[BoardId]*Board
	Restricted map[BoardId]*Board
}

func (t *BoardTree) Visible(id BoardId) (*Board, bool) {
	b, ok := t.Viewable[id]
	return b, ok
}

// ViewableIds returns the ids of every board the user may see, in scan order.
func (t *BoardTree) ViewableIds() []BoardId {
	ids := make([]BoardId, 0, len(t.Viewable))
	var walk func(boards []*Board)
	walk = func(boards []*Board) {
		for _, b := range boards {
			ids = append(ids, b.Id)
			walk(b.Children)
		}
	}
	walk(t.Roots)
	return ids
}
