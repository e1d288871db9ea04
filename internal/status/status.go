package status

import (
	"time"

	statusDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/status"
)

const DefaultColor = "#6B7280"

// Status is a workflow state of a work entry. Final statuses count as completed work.
type Status struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Order     int       `json:"order"`
	IsFinal   bool      `json:"is_final"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToDataModel(s *Status) *statusDatamodel.Status {
	return &statusDatamodel.Status{
		ID:        s.ID,
		Name:      s.Name,
		Color:     s.Color,
		SortOrder: s.Order,
		IsFinal:   s.IsFinal,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func FromDataModel(s *statusDatamodel.Status) *Status {
	return &Status{
		ID:        s.ID,
		Name:      s.Name,
		Color:     s.Color,
		Order:     s.SortOrder,
		IsFinal:   s.IsFinal,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
