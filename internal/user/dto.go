package user

type CreateUserDTO struct {
	Name         string `json:"name" validate:"required,max=255"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Password     string `json:"password" validate:"required,min=8"`
	Phone        string `json:"phone" validate:"max=32"`
	Role         string `json:"role" validate:"required,oneof=admin cto department_owner"`
	DepartmentID *int64 `json:"department_id"`
	IsActive     *bool  `json:"is_active"`
}

// UpdateUserDTO carries optional changes. Role, DepartmentID and IsActive are admin-only.
type UpdateUserDTO struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email        *string `json:"email" validate:"omitempty,email,max=255"`
	Password     *string `json:"password" validate:"omitempty,min=8"`
	Phone        *string `json:"phone" validate:"omitempty,max=32"`
	Role         *string `json:"role" validate:"omitempty,oneof=admin cto department_owner"`
	DepartmentID *int64  `json:"department_id"`
	IsActive     *bool   `json:"is_active"`
}

func (d UpdateUserDTO) touchesAdminFields() bool {
	return d.Role != nil || d.DepartmentID != nil || d.IsActive != nil
}

type UpdateProfileDTO struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email           *string `json:"email" validate:"omitempty,email,max=255"`
	Phone           *string `json:"phone" validate:"omitempty,max=32"`
	CurrentPassword string  `json:"current_password"`
	Password        string  `json:"password" validate:"omitempty,min=8"`
}

type ListFilter struct {
	Search       string
	Role         string
	DepartmentID *int64
	IsActive     *bool
	Page         int
	PerPage      int
}
