package user

import (
	"time"

	"github.com/frahmantamala/worklog/internal/core/datamodel/department"
)

type User struct {
	ID           int64                  `gorm:"primaryKey"`
	Name         string                 `gorm:"column:name;size:255;not null"`
	Email        string                 `gorm:"column:email;size:255;uniqueIndex;not null"`
	PasswordHash string                 `gorm:"column:password_hash;not null"`
	Phone        string                 `gorm:"column:phone;size:32"`
	Avatar       string                 `gorm:"column:avatar;size:255"`
	Role         string                 `gorm:"column:role;size:32;not null;index"`
	DepartmentID *int64                 `gorm:"column:department_id;index"`
	Department   *department.Department `gorm:"foreignKey:DepartmentID"`
	IsActive     bool                   `gorm:"column:is_active;not null"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
