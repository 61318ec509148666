package domain

// User is the acting-user snapshot handed in by the external identity
// provider. Group membership and admin flags are resolved before any call
// reaches this package; a nil *User means an anonymous caller.
type User struct {
	Id         UserId
	Groups     []GroupId
	Admin      bool
	SuperAdmin bool
}

func (u *User) IsAdmin() bool {
	return u != nil && (u.Admin || u.SuperAdmin)
}
