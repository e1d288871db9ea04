package postgres

import (
	"context"
	"strings"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/core/common/pagination"
	userDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/user"
	workentryDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/workentry"
	"github.com/frahmantamala/worklog/internal/core/dberr"
	"github.com/frahmantamala/worklog/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context, filter user.ListFilter) ([]*userDatamodel.User, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*userDatamodel.User
	err := r.filtered(ctx, filter).
		Preload("Department").
		Order("name ASC").Order("id ASC").
		Offset(pagination.Offset(filter.Page, filter.PerPage)).
		Limit(filter.PerPage).
		Find(&rows).Error
	return rows, total, err
}

func (r *UserRepository) filtered(ctx context.Context, filter user.ListFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&userDatamodel.User{})
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", like, like)
	}
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.DepartmentID != nil {
		q = q.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	return q
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Preload("Department").Where("id = ?", id).First(&row).Error; err != nil {
		if dberr.IsNotFound(err) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&row).Error; err != nil {
		if dberr.IsNotFound(err) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	return dberr.Map(r.db.WithContext(ctx).Omit("Department").Create(u).Error)
}

func (r *UserRepository) Update(ctx context.Context, u *userDatamodel.User) error {
	return dberr.Map(r.db.WithContext(ctx).Omit("Department").Save(u).Error)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&userDatamodel.User{}, id).Error
}

func (r *UserRepository) CountEntries(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&workentryDatamodel.WorkEntry{}).Where("user_id = ?", id).Count(&n).Error
	return n, err
}
