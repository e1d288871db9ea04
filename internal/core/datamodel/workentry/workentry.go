package workentry

import (
	"time"

	"github.com/frahmantamala/worklog/internal/core/datamodel/department"
	"github.com/frahmantamala/worklog/internal/core/datamodel/status"
	"github.com/frahmantamala/worklog/internal/core/datamodel/user"
	"github.com/frahmantamala/worklog/internal/core/datamodel/worktype"
)

type WorkEntry struct {
	ID           int64                  `gorm:"primaryKey"`
	UserID       int64                  `gorm:"column:user_id;not null;index:idx_work_entries_user_date,priority:1"`
	DepartmentID int64                  `gorm:"column:department_id;not null;index:idx_work_entries_department_date,priority:1"`
	WorkTypeID   int64                  `gorm:"column:work_type_id;not null;index"`
	StatusID     int64                  `gorm:"column:status_id;not null;index"`
	WorkDate     time.Time              `gorm:"column:work_date;type:date;not null;index:idx_work_entries_user_date,priority:2;index:idx_work_entries_department_date,priority:2"`
	Title        string                 `gorm:"column:title;size:255;not null"`
	Description  string                 `gorm:"column:description;type:text;not null"`
	HoursSpent   int                    `gorm:"column:hours_spent;not null"`
	KPIMetrics   map[string]float64     `gorm:"column:kpi_metrics;type:text;serializer:json"`
	Location     string                 `gorm:"column:location;size:255"`
	Tags         []string               `gorm:"column:tags;type:text;serializer:json"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time              `gorm:"column:updated_at;autoUpdateTime"`
	User         *user.User             `gorm:"foreignKey:UserID"`
	Department   *department.Department `gorm:"foreignKey:DepartmentID"`
	WorkType     *worktype.WorkType     `gorm:"foreignKey:WorkTypeID"`
	Status       *status.Status         `gorm:"foreignKey:StatusID"`
	Attachments  []Attachment           `gorm:"foreignKey:WorkEntryID"`
}

func (WorkEntry) TableName() string {
	return "work_entries"
}

type Attachment struct {
	ID          int64     `gorm:"primaryKey"`
	WorkEntryID int64     `gorm:"column:work_entry_id;not null;index"`
	FileName    string    `gorm:"column:file_name;size:255;not null"`
	FilePath    string    `gorm:"column:file_path;size:512;not null"`
	FileSize    int64     `gorm:"column:file_size;not null"`
	MimeType    string    `gorm:"column:mime_type;size:127"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Attachment) TableName() string {
	return "work_entry_attachments"
}
