// Package datamodel lists the persisted row types. Postgres schemas come from the goose
// migrations; Models feeds gorm AutoMigrate for the sqlite driver and for tests.
package datamodel

import (
	"github.com/frahmantamala/worklog/internal/core/datamodel/department"
	"github.com/frahmantamala/worklog/internal/core/datamodel/settings"
	"github.com/frahmantamala/worklog/internal/core/datamodel/status"
	"github.com/frahmantamala/worklog/internal/core/datamodel/user"
	"github.com/frahmantamala/worklog/internal/core/datamodel/workentry"
	"github.com/frahmantamala/worklog/internal/core/datamodel/worktype"
)

func Models() []interface{} {
	return []interface{}{
		&department.Department{},
		&worktype.WorkType{},
		&status.Status{},
		&user.User{},
		&workentry.WorkEntry{},
		&workentry.Attachment{},
		&settings.Setting{},
	}
}
