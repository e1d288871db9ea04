package status

type CreateStatusDTO struct {
	Name    string `json:"name" validate:"required,max=255"`
	Color   string `json:"color" validate:"omitempty,hexcolor,max=7"`
	Order   int    `json:"order" validate:"min=0"`
	IsFinal bool   `json:"is_final"`
}

type UpdateStatusDTO struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=255"`
	Color   *string `json:"color" validate:"omitempty,hexcolor,max=7"`
	Order   *int    `json:"order" validate:"omitempty,min=0"`
	IsFinal *bool   `json:"is_final"`
}

type StatusesResponse struct {
	Statuses []*Status `json:"data"`
}
