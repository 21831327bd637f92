package models

// User roles form a closed set; anything else is denied by the permission
// resolver (fail closed).
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Identity is the resolved {user, role, department} triple attached to every
// query. Credential verification happens upstream; the core trusts this value.
type Identity struct {
	UserID     string `json:"user_id"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// DepartmentOrDefault returns the identity's department, defaulting to
// "general" when unset.
func (i Identity) DepartmentOrDefault() string {
	if i.Department == "" {
		return "general"
	}
	return i.Department
}

// RoleOrDefault returns the identity's role, defaulting to employee
func (i Identity) RoleOrDefault() string {
	if i.Role == "" {
		return RoleEmployee
	}
	return i.Role
}
