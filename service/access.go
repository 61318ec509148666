package service

import (
	"github.com/boardtree-dev/boardtree/domain"
)

// Access answers whether an acting user may perform an action on an object
// kind in the context of one board. Evaluation uses that board's own
// permission table exclusively; nothing is inherited from ancestors.
type Access struct{}

func NewAccess() *Access {
	return &Access{}
}

// Resolve is the core permission check. Deny is the default: an anonymous
// caller or a group absent from the board's table resolves to false.
// The one exception is creating a topic or board with no board context,
// which is open to any caller including anonymous (root-level posting
// policy; stricter deployments gate this upstream).
func (a *Access) Resolve(user *domain.User, object domain.AccessObject, action domain.AccessAction, board *domain.Board) bool {
	if user.IsAdmin() {
		return true
	}
	if board == nil {
		return action == domain.ActionCreate &&
			(object == domain.ObjectTopic || object == domain.ObjectBoard)
	}
	if user == nil {
		return false
	}
	for _, group := range user.Groups {
		if board.Permissions.Can(group, object, action) {
			return true
		}
	}
	return false
}

func (a *Access) CanView(user *domain.User, board *domain.Board) bool {
	return a.Resolve(user, domain.ObjectBoard, domain.ActionView, board)
}

func (a *Access) CanCreateBoard(user *domain.User, parent *domain.Board) bool {
	return a.Resolve(user, domain.ObjectBoard, domain.ActionCreate, parent)
}

func (a *Access) CanCreateTopic(user *domain.User, board *domain.Board) bool {
	return a.Resolve(user, domain.ObjectTopic, domain.ActionCreate, board)
}

func (a *Access) CanCreateMessage(user *domain.User, board *domain.Board) bool {
	return a.Resolve(user, domain.ObjectMessage, domain.ActionCreate, board)
}

// CanEdit allows admins to edit anything and owners to edit their own
// entities when the board's table grants it. The ownership check runs
// first and denies on mismatch.
func (a *Access) CanEdit(user *domain.User, owner domain.UserId, object domain.AccessObject, board *domain.Board) bool {
	if user.IsAdmin() {
		return true
	}
	if user == nil || user.Id != owner {
		return false
	}
	return a.Resolve(user, object, domain.ActionEdit, board)
}

// CanDelete mirrors CanEdit for the delete action.
func (a *Access) CanDelete(user *domain.User, owner domain.UserId, object domain.AccessObject, board *domain.Board) bool {
	if user.IsAdmin() {
		return true
	}
	if user == nil || user.Id != owner {
		return false
	}
	return a.Resolve(user, object, domain.ActionDelete, board)
}

// CanUndelete is moderator-only: restoring soft-deleted content is never
// open to regular users.
func (a *Access) CanUndelete(user *domain.User) bool {
	return user.IsAdmin()
}

// CanModerate gates the lock/pin style actions on a topic's board.
func (a *Access) CanModerate(user *domain.User, board *domain.Board) bool {
	if user.IsAdmin() {
		return true
	}
	return user != nil && board != nil && a.Resolve(user, domain.ObjectTopic, domain.ActionEdit, board)
}
