package entities

const (
	RoleAdmin   = "admin"
	RoleFounder = "founder"
)

func IsPrivilegedRole(role string) bool {
	return role == RoleAdmin || role == RoleFounder
}
