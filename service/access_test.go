package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/boardtree-dev/boardtree/domain"
)

func boardWithGrants(grants map[domain.GroupId][][2]int) *domain.Board {
	board := &domain.Board{Id: 1, Permissions: domain.Permissions{}}
	for group, pairs := range grants {
		for _, pair := range pairs {
			board.Permissions.Grant(group, domain.AccessObject(pair[0]), domain.AccessAction(pair[1]))
		}
	}
	return board
}

func TestResolve(t *testing.T) {
	access := NewAccess()
	board := boardWithGrants(map[domain.GroupId][][2]int{
		10: {{int(domain.ObjectTopic), int(domain.ActionView)}},
	})

	testCases := []struct {
		name     string
		user     *domain.User
		object   domain.AccessObject
		action   domain.AccessAction
		board    *domain.Board
		expected bool
	}{
		{name: "anonymous denied", user: nil, object: domain.ObjectTopic, action: domain.ActionView, board: board, expected: false},
		{name: "anonymous root topic creation", user: nil, object: domain.ObjectTopic, action: domain.ActionCreate, board: nil, expected: true},
		{name: "anonymous root board creation", user: nil, object: domain.ObjectBoard, action: domain.ActionCreate, board: nil, expected: true},
		{name: "anonymous root view denied", user: nil, object: domain.ObjectBoard, action: domain.ActionView, board: nil, expected: false},
		{name: "admin allowed everything", user: &domain.User{Id: 2, Admin: true}, object: domain.ObjectMessage, action: domain.ActionDelete, board: board, expected: true},
		{name: "super admin allowed everything", user: &domain.User{Id: 2, SuperAdmin: true}, object: domain.ObjectBoard, action: domain.ActionDelete, board: board, expected: true},
		{name: "group grant allows", user: &domain.User{Id: 3, Groups: []domain.GroupId{10}}, object: domain.ObjectTopic, action: domain.ActionView, board: board, expected: true},
		{name: "one granting group suffices", user: &domain.User{Id: 3, Groups: []domain.GroupId{99, 10}}, object: domain.ObjectTopic, action: domain.ActionView, board: board, expected: true},
		{name: "unlisted group denied", user: &domain.User{Id: 3, Groups: []domain.GroupId{99}}, object: domain.ObjectTopic, action: domain.ActionView, board: board, expected: false},
		{name: "granted object wrong action denied", user: &domain.User{Id: 3, Groups: []domain.GroupId{10}}, object: domain.ObjectTopic, action: domain.ActionDelete, board: board, expected: false},
		{name: "no groups denied", user: &domain.User{Id: 3}, object: domain.ObjectTopic, action: domain.ActionView, board: board, expected: false},
		{name: "nil permissions table denied", user: &domain.User{Id: 3, Groups: []domain.GroupId{10}}, object: domain.ObjectTopic, action: domain.ActionView, board: &domain.Board{Id: 2}, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, access.Resolve(tc.user, tc.object, tc.action, tc.board))
		})
	}
}

func TestCanEditAndDelete(t *testing.T) {
	access := NewAccess()
	board := boardWithGrants(map[domain.GroupId][][2]int{
		10: {
			{int(domain.ObjectMessage), int(domain.ActionEdit)},
			{int(domain.ObjectMessage), int(domain.ActionDelete)},
		},
	})
	owner := &domain.User{Id: 5, Groups: []domain.GroupId{10}}
	stranger := &domain.User{Id: 6, Groups: []domain.GroupId{10}}

	t.Run("owner with grant may edit", func(t *testing.T) {
		assert.True(t, access.CanEdit(owner, 5, domain.ObjectMessage, board))
	})
	t.Run("ownership mismatch denies before permissions", func(t *testing.T) {
		assert.False(t, access.CanEdit(stranger, 5, domain.ObjectMessage, board))
		assert.False(t, access.CanDelete(stranger, 5, domain.ObjectMessage, board))
	})
	t.Run("owner without grant denied", func(t *testing.T) {
		bare := &domain.Board{Id: 2}
		assert.False(t, access.CanEdit(owner, 5, domain.ObjectMessage, bare))
	})
	t.Run("admin bypasses ownership", func(t *testing.T) {
		admin := &domain.User{Id: 9, Admin: true}
		assert.True(t, access.CanEdit(admin, 5, domain.ObjectMessage, board))
		assert.True(t, access.CanDelete(admin, 5, domain.ObjectMessage, board))
	})
	t.Run("anonymous denied", func(t *testing.T) {
		assert.False(t, access.CanEdit(nil, 5, domain.ObjectMessage, board))
	})
}

func TestCanUndelete(t *testing.T) {
	access := NewAccess()
	assert.False(t, access.CanUndelete(nil))
	assert.False(t, access.CanUndelete(&domain.User{Id: 5, Groups: []domain.GroupId{10}}))
	assert.True(t, access.CanUndelete(&domain.User{Id: 9, Admin: true}))
}
