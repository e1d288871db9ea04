package postgres

import (
	"context"

	"github.com/frahmantamala/worklog/internal"
	departmentDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/department"
	userDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/user"
	workentryDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/workentry"
	"github.com/frahmantamala/worklog/internal/core/dberr"
	"github.com/frahmantamala/worklog/internal/department"
	"gorm.io/gorm"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.RepositoryAPI {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) List(ctx context.Context, filter department.ListFilter) ([]*departmentDatamodel.Department, error) {
	var rows []*departmentDatamodel.Department
	q := r.db.WithContext(ctx).Order("name ASC")
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*departmentDatamodel.Department, error) {
	var row departmentDatamodel.Department
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if dberr.IsNotFound(err) {
			return nil, internal.ErrDepartmentNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *DepartmentRepository) GetByCode(ctx context.Context, code string) (*departmentDatamodel.Department, error) {
	var row departmentDatamodel.Department
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&row).Error; err != nil {
		if dberr.IsNotFound(err) {
			return nil, internal.ErrDepartmentNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *DepartmentRepository) Create(ctx context.Context, d *departmentDatamodel.Department) error {
	return dberr.Map(r.db.WithContext(ctx).Create(d).Error)
}

func (r *DepartmentRepository) Update(ctx context.Context, d *departmentDatamodel.Department) error {
	return dberr.Map(r.db.WithContext(ctx).Save(d).Error)
}

func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&departmentDatamodel.Department{}, id).Error
}

func (r *DepartmentRepository) References(ctx context.Context, id int64) (int64, int64, error) {
	var users, entries int64
	if err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("department_id = ?", id).Count(&users).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&workentryDatamodel.WorkEntry{}).Where("department_id = ?", id).Count(&entries).Error; err != nil {
		return 0, 0, err
	}
	return users, entries, nil
}
