package postgres

import (
	"context"

	"github.com/frahmantamala/worklog/internal"
	workentryDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/workentry"
	worktypeDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/worktype"
	"github.com/frahmantamala/worklog/internal/core/dberr"
	"github.com/frahmantamala/worklog/internal/worktype"
	"gorm.io/gorm"
)

type WorkTypeRepository struct {
	db *gorm.DB
}

func NewWorkTypeRepository(db *gorm.DB) worktype.RepositoryAPI {
	return &WorkTypeRepository{db: db}
}

func (r *WorkTypeRepository) List(ctx context.Context, activeOnly bool) ([]*worktypeDatamodel.WorkType, error) {
	var rows []*worktypeDatamodel.WorkType
	q := r.db.WithContext(ctx).Order("sort_order ASC").Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *WorkTypeRepository) GetByID(ctx context.Context, id int64) (*worktypeDatamodel.WorkType, error) {
	var row worktypeDatamodel.WorkType
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if dberr.IsNotFound(err) {
			return nil, internal.ErrWorkTypeNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *WorkTypeRepository) Create(ctx context.Context, w *worktypeDatamodel.WorkType) error {
	return dberr.Map(r.db.WithContext(ctx).Create(w).Error)
}

func (r *WorkTypeRepository) Update(ctx context.Context, w *worktypeDatamodel.WorkType) error {
	return dberr.Map(r.db.WithContext(ctx).Save(w).Error)
}

func (r *WorkTypeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&worktypeDatamodel.WorkType{}, id).Error
}

func (r *WorkTypeRepository) CountEntries(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&workentryDatamodel.WorkEntry{}).Where("work_type_id = ?", id).Count(&n).Error
	return n, err
}
