package auth

// Actor is the authenticated identity every service operation receives explicitly.
type Actor struct {
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
	Role     string `json:"role"`
}

func (a Actor) Can(permission string) bool {
	return HasPermission(a.Role, permission)
}

// SystemActor is used by background jobs. It carries no user id, so rows it
// creates have a null created_by.
func SystemActor(tenantID string) Actor {
	return Actor{TenantID: tenantID, Role: RoleAdmin}
}
