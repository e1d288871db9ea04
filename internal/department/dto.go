package department

type CreateDepartmentDTO struct {
	Name        string `json:"name" validate:"required,max=255"`
	Code        string `json:"code" validate:"required,max=10"`
	Description string `json:"description" validate:"max=1000"`
	Color       string `json:"color" validate:"omitempty,hexcolor,max=7"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateDepartmentDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Code        *string `json:"code" validate:"omitempty,min=1,max=10"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Color       *string `json:"color" validate:"omitempty,hexcolor,max=7"`
	IsActive    *bool   `json:"is_active"`
}

type ListFilter struct {
	IsActive *bool
}

type DepartmentsResponse struct {
	Departments []*Department `json:"data"`
}
