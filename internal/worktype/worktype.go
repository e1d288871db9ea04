package worktype

import (
	"time"

	worktypeDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/worktype"
)

const DefaultColor = "#10B981"

type WorkType struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	Color     string    `json:"color"`
	Order     int       `json:"order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToDataModel(w *WorkType) *worktypeDatamodel.WorkType {
	return &worktypeDatamodel.WorkType{
		ID:        w.ID,
		Name:      w.Name,
		Icon:      w.Icon,
		Color:     w.Color,
		SortOrder: w.Order,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func FromDataModel(w *worktypeDatamodel.WorkType) *WorkType {
	return &WorkType{
		ID:        w.ID,
		Name:      w.Name,
		Icon:      w.Icon,
		Color:     w.Color,
		Order:     w.SortOrder,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
