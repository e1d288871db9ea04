package worktype

type CreateWorkTypeDTO struct {
	Name     string `json:"name" validate:"required,max=255"`
	Icon     string `json:"icon" validate:"max=64"`
	Color    string `json:"color" validate:"omitempty,hexcolor,max=7"`
	Order    int    `json:"order" validate:"min=0"`
	IsActive *bool  `json:"is_active"`
}

type UpdateWorkTypeDTO struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	Icon     *string `json:"icon" validate:"omitempty,max=64"`
	Color    *string `json:"color" validate:"omitempty,hexcolor,max=7"`
	Order    *int    `json:"order" validate:"omitempty,min=0"`
	IsActive *bool   `json:"is_active"`
}

type WorkTypesResponse struct {
	WorkTypes []*WorkType `json:"data"`
}
