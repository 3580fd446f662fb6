package constants

// PermissionRoles maps each permission to the single role allowed to perform it.
// Roles are not hierarchical: an admin does not inherit ngo or buyer permissions.
var PermissionRoles = map[string]string{
	CreateProject:        Ngo,
	ViewOwnProjects:      Ngo,
	ViewAllProjects:      Admin,
	UpdateProject:        Admin,
	ViewVerifiedProjects: Buyer,
	PurchaseCredits:      Buyer,
	ViewOwnTransactions:  Buyer,
}

// AllowedRole returns true if role is the role required by permission.
func AllowedRole(permission, role string) bool {
	required, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	return required == role
}
