package postgres

import (
	"strings"

	statusDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/status"
	"github.com/frahmantamala/worklog/internal/workentry"
	"gorm.io/gorm"
)

// applyCriteria adds the filter predicates of c. Ordering and paging are left to the caller.
func applyCriteria(db *gorm.DB, c workentry.Criteria) *gorm.DB {
	if c.DepartmentID != nil {
		db = db.Where("work_entries.department_id = ?", *c.DepartmentID)
	}
	if c.UserID != nil {
		db = db.Where("work_entries.user_id = ?", *c.UserID)
	}
	if c.WorkTypeID != nil {
		db = db.Where("work_entries.work_type_id = ?", *c.WorkTypeID)
	}
	if c.StatusID != nil {
		db = db.Where("work_entries.status_id = ?", *c.StatusID)
	}
	if c.DateFrom != nil {
		db = db.Where("work_entries.work_date >= ?", *c.DateFrom)
	}
	if c.DateTo != nil {
		db = db.Where("work_entries.work_date <= ?", *c.DateTo)
	}
	if search := strings.TrimSpace(c.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		db = db.Where("(LOWER(work_entries.title) LIKE ? OR LOWER(work_entries.description) LIKE ?)", like, like)
	}
	if c.StatusFinal != nil {
		final := db.Session(&gorm.Session{NewDB: true}).
			Model(&statusDatamodel.Status{}).
			Select("id").
			Where("is_final = ?", *c.StatusFinal)
		db = db.Where("work_entries.status_id IN (?)", final)
	}
	return db
}

func applyOrder(db *gorm.DB, order workentry.Order) *gorm.DB {
	switch order {
	case workentry.OrderChronological:
		return db.Order("work_entries.work_date ASC").Order("work_entries.created_at ASC").Order("work_entries.id ASC")
	default:
		return db.Order("work_entries.work_date DESC").Order("work_entries.created_at DESC").Order("work_entries.id DESC")
	}
}

func withRefs(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Department").Preload("WorkType").Preload("Status").Preload("Attachments")
}
