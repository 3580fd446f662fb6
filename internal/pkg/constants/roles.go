package constants

const (
	Ngo   = "ngo"
	Admin = "admin"
	Buyer = "buyer"
)

// ValidRoles is the set of roles a claim may carry.
var ValidRoles = []string{Ngo, Admin, Buyer}

// RegistrableRoles are the roles open to self-registration. Admins are seeded.
var RegistrableRoles = []string{Ngo, Buyer}

// IsValidRole returns true if role is one of ValidRoles.
func IsValidRole(role string) bool {
	return contains(ValidRoles, role)
}

// IsRegistrableRole returns true if role may be chosen at registration.
func IsRegistrableRole(role string) bool {
	return contains(RegistrableRoles, role)
}

func contains(list []string, v string) bool {
	for _, r := range list {
		if r == v {
			return true
		}
	}
	return false
}
