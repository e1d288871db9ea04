package auth

import "fmt"

// Role is the closed set of user roles. Every decision on a Role is a switch listing all three.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleCTO             Role = "cto"
	RoleDepartmentOwner Role = "department_owner"
)

func Roles() []Role {
	return []Role{RoleAdmin, RoleCTO, RoleDepartmentOwner}
}

func RoleNames() []string {
	return []string{string(RoleAdmin), string(RoleCTO), string(RoleDepartmentOwner)}
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCTO, RoleDepartmentOwner:
		return true
	}
	return false
}

// CanViewAllDepartments reports whether the role is exempt from department scoping.
func (r Role) CanViewAllDepartments() bool {
	switch r {
	case RoleAdmin, RoleCTO:
		return true
	case RoleDepartmentOwner:
		return false
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
