package postgres

import (
	"context"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/core/datamodel/user"
	"github.com/frahmantamala/worklog/internal/core/dberr"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentialsByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	var row user.User
	err := r.db.WithContext(ctx).
		Select("id", "password_hash", "is_active").
		Where("LOWER(email) = LOWER(?)", email).
		First(&row).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &auth.Credentials{UserID: row.ID, PasswordHash: row.PasswordHash, IsActive: row.IsActive}, nil
}

func (r *Repository) GetActor(ctx context.Context, userID int64) (*auth.Actor, bool, error) {
	var row user.User
	err := r.db.WithContext(ctx).
		Select("id", "name", "email", "role", "department_id", "is_active").
		Where("id = ?", userID).
		First(&row).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, false, internal.ErrUserNotFound
		}
		return nil, false, err
	}
	return &auth.Actor{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		Role:         auth.Role(row.Role),
		DepartmentID: row.DepartmentID,
	}, row.IsActive, nil
}
