package postgres

import (
	"context"

	"github.com/frahmantamala/worklog/internal"
	statusDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/status"
	workentryDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/workentry"
	"github.com/frahmantamala/worklog/internal/core/dberr"
	"github.com/frahmantamala/worklog/internal/status"
	"gorm.io/gorm"
)

type StatusRepository struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) status.RepositoryAPI {
	return &StatusRepository{db: db}
}

func (r *StatusRepository) List(ctx context.Context) ([]*statusDatamodel.Status, error) {
	var rows []*statusDatamodel.Status
	err := r.db.WithContext(ctx).Order("sort_order ASC").Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *StatusRepository) GetByID(ctx context.Context, id int64) (*statusDatamodel.Status, error) {
	var row statusDatamodel.Status
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if dberr.IsNotFound(err) {
			return nil, internal.ErrStatusNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *StatusRepository) Create(ctx context.Context, s *statusDatamodel.Status) error {
	return dberr.Map(r.db.WithContext(ctx).Create(s).Error)
}

func (r *StatusRepository) Update(ctx context.Context, s *statusDatamodel.Status) error {
	return dberr.Map(r.db.WithContext(ctx).Save(s).Error)
}

func (r *StatusRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&statusDatamodel.Status{}, id).Error
}

func (r *StatusRepository) CountEntries(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&workentryDatamodel.WorkEntry{}).Where("status_id = ?", id).Count(&n).Error
	return n, err
}
