package postgres

import (
	"context"

	settingsDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/settings"
	"github.com/frahmantamala/worklog/internal/core/dberr"
	"github.com/frahmantamala/worklog/internal/settings"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) settings.RepositoryAPI {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) List(ctx context.Context) ([]*settingsDatamodel.Setting, error) {
	var rows []*settingsDatamodel.Setting
	err := r.db.WithContext(ctx).Order("key ASC").Find(&rows).Error
	return rows, err
}

func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var row settingsDatamodel.Setting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return row.Value, true, nil
}

// UpsertMany writes every pair in one transaction.
func (r *SettingsRepository) UpsertMany(ctx context.Context, values map[string]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for k, v := range values {
			row := settingsDatamodel.Setting{Key: k, Value: v}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return dberr.Map(err)
			}
		}
		return nil
	})
}

func (r *SettingsRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("key = ?", key).Delete(&settingsDatamodel.Setting{}).Error
}
