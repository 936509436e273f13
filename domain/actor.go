package domain

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uint
	Role   Role
}

func (a Actor) Can(c Capability) bool {
	return a.Role.Can(c)
}

// Owns reports whether the actor is the given user.
func (a Actor) Owns(userID uint) bool {
	return a.UserID != 0 && a.UserID == userID
}
