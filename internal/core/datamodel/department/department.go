package department

import "time"

type Department struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;size:255;not null"`
	Code        string    `gorm:"column:code;size:10;uniqueIndex;not null"`
	Description string    `gorm:"column:description;type:text"`
	Color       string    `gorm:"column:color;size:7;not null"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Department) TableName() string {
	return "departments"
}
