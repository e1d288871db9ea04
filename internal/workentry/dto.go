package workentry

type CreateWorkEntryDTO struct {
	Title        string             `json:"title" validate:"required,max=255"`
	Description  string             `json:"description" validate:"required"`
	WorkDate     string             `json:"work_date" validate:"required,datetime=2006-01-02"`
	HoursSpent   *int               `json:"hours_spent" validate:"required"`
	WorkTypeID   int64              `json:"work_type_id" validate:"required"`
	StatusID     int64              `json:"status_id" validate:"required"`
	DepartmentID *int64             `json:"department_id"`
	KPIMetrics   map[string]float64 `json:"kpi_metrics"`
	Location     string             `json:"location" validate:"max=255"`
	Tags         []string           `json:"tags"`
}

// UpdateWorkEntryDTO applies only the fields that are present.
type UpdateWorkEntryDTO struct {
	Title        *string             `json:"title" validate:"omitempty,min=1,max=255"`
	Description  *string             `json:"description" validate:"omitempty,min=1"`
	WorkDate     *string             `json:"work_date" validate:"omitempty,datetime=2006-01-02"`
	HoursSpent   *int                `json:"hours_spent"`
	WorkTypeID   *int64              `json:"work_type_id"`
	StatusID     *int64              `json:"status_id"`
	DepartmentID *int64              `json:"department_id"`
	KPIMetrics   *map[string]float64 `json:"kpi_metrics"`
	Location     *string             `json:"location" validate:"omitempty,max=255"`
	Tags         *[]string           `json:"tags"`
}
