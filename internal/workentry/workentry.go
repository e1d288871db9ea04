package workentry

import (
	"time"

	"github.com/frahmantamala/worklog/internal/core/common/dates"
	workentryDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/workentry"
)

// WorkEntry is one day's logged work by a user, billed to a department.
type WorkEntry struct {
	ID           int64              `json:"id"`
	UserID       int64              `json:"user_id"`
	DepartmentID int64              `json:"department_id"`
	WorkTypeID   int64              `json:"work_type_id"`
	StatusID     int64              `json:"status_id"`
	WorkDate     dates.Date         `json:"work_date"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	HoursSpent   int                `json:"hours_spent"`
	KPIMetrics   map[string]float64 `json:"kpi_metrics,omitempty"`
	Location     string             `json:"location,omitempty"`
	Tags         []string           `json:"tags"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`

	User        *UserRef       `json:"user,omitempty"`
	Department  *DepartmentRef `json:"department,omitempty"`
	WorkType    *WorkTypeRef   `json:"work_type,omitempty"`
	Status      *StatusRef     `json:"status,omitempty"`
	Attachments []*Attachment  `json:"attachments"`
}

type UserRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type DepartmentRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Code  string `json:"code"`
	Color string `json:"color"`
}

type WorkTypeRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color"`
}

type StatusRef struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	IsFinal bool   `json:"is_final"`
}

type Attachment struct {
	ID          int64     `json:"id"`
	WorkEntryID int64     `json:"work_entry_id"`
	FileName    string    `json:"file_name"`
	FilePath    string    `json:"file_path"`
	FileSize    int64     `json:"file_size"`
	MimeType    string    `json:"mime_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasKPI reports whether the entry carries at least one metric.
func (e *WorkEntry) HasKPI() bool {
	return len(e.KPIMetrics) > 0
}

func ToDataModel(e *WorkEntry) *workentryDatamodel.WorkEntry {
	return &workentryDatamodel.WorkEntry{
		ID:           e.ID,
		UserID:       e.UserID,
		DepartmentID: e.DepartmentID,
		WorkTypeID:   e.WorkTypeID,
		StatusID:     e.StatusID,
		WorkDate:     dates.Day(e.WorkDate.Time),
		Title:        e.Title,
		Description:  e.Description,
		HoursSpent:   e.HoursSpent,
		KPIMetrics:   e.KPIMetrics,
		Location:     e.Location,
		Tags:         e.Tags,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func FromDataModel(e *workentryDatamodel.WorkEntry) *WorkEntry {
	out := &WorkEntry{
		ID:           e.ID,
		UserID:       e.UserID,
		DepartmentID: e.DepartmentID,
		WorkTypeID:   e.WorkTypeID,
		StatusID:     e.StatusID,
		WorkDate:     dates.NewDate(e.WorkDate),
		Title:        e.Title,
		Description:  e.Description,
		HoursSpent:   e.HoursSpent,
		KPIMetrics:   e.KPIMetrics,
		Location:     e.Location,
		Tags:         e.Tags,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
		Attachments:  make([]*Attachment, 0, len(e.Attachments)),
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if e.User != nil {
		out.User = &UserRef{ID: e.User.ID, Name: e.User.Name, Email: e.User.Email}
	}
	if e.Department != nil {
		out.Department = &DepartmentRef{ID: e.Department.ID, Name: e.Department.Name, Code: e.Department.Code, Color: e.Department.Color}
	}
	if e.WorkType != nil {
		out.WorkType = &WorkTypeRef{ID: e.WorkType.ID, Name: e.WorkType.Name, Icon: e.WorkType.Icon, Color: e.WorkType.Color}
	}
	if e.Status != nil {
		out.Status = &StatusRef{ID: e.Status.ID, Name: e.Status.Name, Color: e.Status.Color, IsFinal: e.Status.IsFinal}
	}
	for i := range e.Attachments {
		out.Attachments = append(out.Attachments, AttachmentFromDataModel(&e.Attachments[i]))
	}
	return out
}

func AttachmentFromDataModel(a *workentryDatamodel.Attachment) *Attachment {
	return &Attachment{
		ID:          a.ID,
		WorkEntryID: a.WorkEntryID,
		FileName:    a.FileName,
		FilePath:    a.FilePath,
		FileSize:    a.FileSize,
		MimeType:    a.MimeType,
		CreatedAt:   a.CreatedAt,
	}
}

func FromDataModels(rows []*workentryDatamodel.WorkEntry) []*WorkEntry {
	out := make([]*WorkEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out
}
