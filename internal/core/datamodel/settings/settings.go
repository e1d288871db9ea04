package settings

import "time"

type Setting struct {
	ID        int64     `gorm:"primaryKey"`
	Key       string    `gorm:"column:key;size:191;uniqueIndex;not null"`
	Value     string    `gorm:"column:value;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Setting) TableName() string {
	return "settings"
}
