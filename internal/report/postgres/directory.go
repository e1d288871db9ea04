package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// DirectoryRepository answers the dashboard head counts with plain SQL over the shared pool.
type DirectoryRepository struct {
	db *sqlx.DB
}

func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

func (r *DirectoryRepository) CountUsers(ctx context.Context, activeOnly bool) (int64, error) {
	return r.count(ctx, "users", activeOnly)
}

func (r *DirectoryRepository) CountDepartments(ctx context.Context, activeOnly bool) (int64, error) {
	return r.count(ctx, "departments", activeOnly)
}

func (r *DirectoryRepository) count(ctx context.Context, table string, activeOnly bool) (int64, error) {
	var n int64
	if !activeOnly {
		err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table)
		return n, err
	}
	err := r.db.GetContext(ctx, &n, r.db.Rebind("SELECT COUNT(*) FROM "+table+" WHERE is_active = ?"), true)
	return n, err
}
