package status

import "time"

type Status struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;size:255;not null"`
	Color     string    `gorm:"column:color;size:7;not null"`
	SortOrder int       `gorm:"column:sort_order;not null"`
	IsFinal   bool      `gorm:"column:is_final;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Status) TableName() string {
	return "statuses"
}
