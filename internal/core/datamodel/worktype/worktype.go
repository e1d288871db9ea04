package worktype

import "time"

type WorkType struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;size:255;not null"`
	Icon      string    `gorm:"column:icon;size:64"`
	Color     string    `gorm:"column:color;size:7;not null"`
	SortOrder int       `gorm:"column:sort_order;not null"`
	IsActive  bool      `gorm:"column:is_active;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (WorkType) TableName() string {
	return "work_types"
}
