package user

// Actor is the resolved identity making a reservation request. It is passed
// explicitly into every engine call; there is no ambient current user.
type Actor struct {
	ID   ID
	Role Role
}

// SystemActor identifies internal batch callers such as the completion sweep.
func SystemActor() Actor {
	return Actor{ID: "system", Role: RoleSystem}
}
