package domain

// AccessObject is the kind of forum object a permission applies to.
type AccessObject int

const (
	ObjectBoard AccessObject = iota
	ObjectTopic
	ObjectMessage

	numAccessObjects
)

func (o AccessObject) String() string {
	switch o {
	case ObjectBoard:
		return "board"
	case ObjectTopic:
		return "topic"
	case ObjectMessage:
		return "message"
	}
	return "unknown"
}

// AccessAction is the operation a permission grants on an object kind.
type AccessAction int

const (
	ActionView AccessAction = iota
	ActionCreate
	ActionEdit
	ActionDelete

	numAccessActions
)

func (a AccessAction) String() string {
	switch a {
	case ActionView:
		return "view"
	case ActionCreate:
		return "create"
	case ActionEdit:
		return "edit"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// AccessTable holds one group's grants on a single board.
// Object kinds and actions are closed enumerations, so the table is a
// fixed-shape array instead of nested maps: the zero value denies everything
// and no "key exists" checks are needed.
type AccessTable [numAccessObjects][numAccessActions]bool

func (t AccessTable) Allows(object AccessObject, action AccessAction) bool {
	if object < 0 || object >= numAccessObjects || action < 0 || action >= numAccessActions {
		return false
	}
	return t[object][action]
}

// Permissions maps a group to its access table for one board.
// Each board's table is self-contained; nothing is inherited from ancestors
// at evaluation time.
type Permissions map[GroupId]AccessTable

func (p Permissions) Can(group GroupId, object AccessObject, action AccessAction) bool {
	table, ok := p[group]
	if !ok {
		return false
	}
	return table.Allows(object, action)
}

// Grant enables one action for a group. Used by the admin tooling that edits
// permission tables (and by tests).
func (p Permissions) Grant(group GroupId, object AccessObject, action AccessAction) {
	if object < 0 || object >= numAccessObjects || action < 0 || action >= numAccessActions {
		return
	}
	table := p[group]
	table[object][action] = true
	p[group] = table
}

// Revoke disables one action for a group.
func (p Permissions) Revoke(group GroupId, object AccessObject, action AccessAction) {
	if object < 0 || object >= numAccessObjects || action < 0 || action >= numAccessActions {
		return
	}
	table, ok := p[group]
	if !ok {
		return
	}
	table[object][action] = false
	p[group] = table
}

func (p Permissions) Clone() Permissions {
	if p == nil {
		return nil
	}
	out := make(Permissions, len(p))
	for group, table := range p {
		out[group] = table
	}
	return out
}
