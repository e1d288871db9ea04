package postgres

import (
	"context"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/core/common/pagination"
	workentryDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/workentry"
	"github.com/frahmantamala/worklog/internal/core/dberr"
	"github.com/frahmantamala/worklog/internal/workentry"
	"gorm.io/gorm"
)

type WorkEntryRepository struct {
	db *gorm.DB
}

func NewWorkEntryRepository(db *gorm.DB) workentry.RepositoryAPI {
	return &WorkEntryRepository{db: db}
}

func (r *WorkEntryRepository) scoped(ctx context.Context, c workentry.Criteria) *gorm.DB {
	return applyCriteria(r.db.WithContext(ctx).Model(&workentryDatamodel.WorkEntry{}), c)
}

func (r *WorkEntryRepository) Page(ctx context.Context, c workentry.Criteria) ([]*workentryDatamodel.WorkEntry, int64, error) {
	var total int64
	if err := r.scoped(ctx, c).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*workentryDatamodel.WorkEntry
	err := applyOrder(withRefs(r.scoped(ctx, c)), c.Order).
		Offset(pagination.Offset(c.Page, c.PerPage)).
		Limit(c.PerPage).
		Find(&rows).Error
	return rows, total, err
}

func (r *WorkEntryRepository) Find(ctx context.Context, c workentry.Criteria) ([]*workentryDatamodel.WorkEntry, error) {
	q := applyOrder(withRefs(r.scoped(ctx, c)), c.Order)
	if c.Limit > 0 {
		q = q.Limit(c.Limit)
	}
	var rows []*workentryDatamodel.WorkEntry
	err := q.Find(&rows).Error
	return rows, err
}

func (r *WorkEntryRepository) Totals(ctx context.Context, c workentry.Criteria) (workentry.Totals, error) {
	var t workentry.Totals
	err := r.scoped(ctx, c).
		Select("COUNT(*) AS entries, COALESCE(SUM(work_entries.hours_spent), 0) AS hours").
		Scan(&t).Error
	return t, err
}

func (r *WorkEntryRepository) GetByID(ctx context.Context, id int64) (*workentryDatamodel.WorkEntry, error) {
	var row workentryDatamodel.WorkEntry
	if err := withRefs(r.db.WithContext(ctx)).Where("id = ?", id).First(&row).Error; err != nil {
		if dberr.IsNotFound(err) {
			return nil, internal.ErrWorkEntryNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *WorkEntryRepository) Create(ctx context.Context, e *workentryDatamodel.WorkEntry) error {
	return dberr.Map(r.db.WithContext(ctx).Omit(associations...).Create(e).Error)
}

func (r *WorkEntryRepository) Update(ctx context.Context, e *workentryDatamodel.WorkEntry) error {
	return dberr.Map(r.db.WithContext(ctx).Omit(associations...).Save(e).Error)
}

// Delete removes the entry and its attachment rows in one transaction. beforeCommit runs last
// inside the transaction with the removed attachments; an error from it rolls everything back.
func (r *WorkEntryRepository) Delete(ctx context.Context, id int64, beforeCommit func([]workentryDatamodel.Attachment) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var atts []workentryDatamodel.Attachment
		if err := tx.Where("work_entry_id = ?", id).Find(&atts).Error; err != nil {
			return err
		}
		if err := tx.Where("work_entry_id = ?", id).Delete(&workentryDatamodel.Attachment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&workentryDatamodel.WorkEntry{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrWorkEntryNotFound
		}
		if beforeCommit != nil {
			return beforeCommit(atts)
		}
		return nil
	})
}

func (r *WorkEntryRepository) CreateAttachment(ctx context.Context, a *workentryDatamodel.Attachment) error {
	return dberr.Map(r.db.WithContext(ctx).Create(a).Error)
}

func (r *WorkEntryRepository) GetAttachment(ctx context.Context, entryID, attachmentID int64) (*workentryDatamodel.Attachment, error) {
	var row workentryDatamodel.Attachment
	err := r.db.WithContext(ctx).
		Where("id = ? AND work_entry_id = ?", attachmentID, entryID).
		First(&row).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, internal.ErrAttachmentNotFound
		}
		return nil, err
	}
	return &row, nil
}

// DeleteAttachment removes the row and runs beforeCommit inside the same transaction.
func (r *WorkEntryRepository) DeleteAttachment(ctx context.Context, id int64, beforeCommit func() error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&workentryDatamodel.Attachment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrAttachmentNotFound
		}
		if beforeCommit != nil {
			return beforeCommit()
		}
		return nil
	})
}

var associations = []string{"User", "Department", "WorkType", "Status", "Attachments"}
