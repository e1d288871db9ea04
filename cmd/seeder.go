package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"maps"
	"slices"
	"time"

	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/core/database"
	"github.com/frahmantamala/worklog/internal/settings"
	"github.com/frahmantamala/worklog/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

const seedPassword = "password"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with reference and sample data",
	Long:  `Seed departments, work types, statuses, settings and one user per role. Safe to run repeatedly.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		h, err := database.Open(cfg.Database, logger.LoggerWrapper())
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer h.Close()

		ctx := context.Background()
		if clearData {
			if err := clearSeedTables(ctx, h.SQL); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		hasher := auth.NewPasswordHasher(cfg.Security.BCryptCost)
		hash, err := hasher.Hash(seedPassword)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		s := &seeder{db: h.SQL, now: time.Now().UTC()}
		steps := []struct {
			name string
			run  func(context.Context) error
		}{
			{"departments", s.departments},
			{"work types", s.workTypes},
			{"statuses", s.statuses},
			{"users", func(ctx context.Context) error { return s.users(ctx, hash) }},
			{"settings", func(ctx context.Context) error { return s.settings(ctx, cfg.App.Timezone) }},
		}
		for _, step := range steps {
			if err := step.run(ctx); err != nil {
				log.Fatalf("failed to seed %s: %v", step.name, err)
			}
			fmt.Printf("Seeded %s\n", step.name)
		}

		fmt.Printf("Seed users share the password %q\n", seedPassword)
	},
}

type seeder struct {
	db  *sqlx.DB
	now time.Time
}

// exists runs a SELECT 1 lookup; a missing row means the record still has to be inserted.
func (s *seeder) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var found int
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(query), args...).Scan(&found)
	if err == nil {
		return true, nil
	}
	if isNoRows(err) {
		return false, nil
	}
	return false, err
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func (s *seeder) exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	return err
}

func (s *seeder) departments(ctx context.Context) error {
	rows := []struct{ Name, Code, Description, Color string }{
		{"IT Department", "IT", "Information Technology Department", "#3B82F6"},
		{"HR Department", "HR", "Human Resources Department", "#10B981"},
		{"Finance Department", "FIN", "Finance and Accounting Department", "#F59E0B"},
		{"Marketing Department", "MKT", "Marketing and Communications Department", "#EF4444"},
		{"Operations Department", "OPS", "Operations and Logistics Department", "#8B5CF6"},
	}
	for _, d := range rows {
		ok, err := s.exists(ctx, "SELECT 1 FROM departments WHERE code = ?", d.Code)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := s.exec(ctx,
			"INSERT INTO departments (name, code, description, color, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			d.Name, d.Code, d.Description, d.Color, true, s.now, s.now); err != nil {
			return fmt.Errorf("department %s: %w", d.Code, err)
		}
	}
	return nil
}

func (s *seeder) workTypes(ctx context.Context) error {
	rows := []struct {
		Name, Icon, Color string
		Order             int
	}{
		{"Development", "💻", "#3B82F6", 1},
		{"Meeting", "🤝", "#10B981", 2},
		{"Documentation", "📄", "#F59E0B", 3},
		{"Research", "🔍", "#8B5CF6", 4},
		{"Training", "📚", "#EC4899", 5},
		{"Support", "🛠️", "#14B8A6", 6},
		{"Planning", "📋", "#F97316", 7},
		{"Review", "✅", "#84CC16", 8},
	}
	for _, wt := range rows {
		ok, err := s.exists(ctx, "SELECT 1 FROM work_types WHERE name = ?", wt.Name)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := s.exec(ctx,
			"INSERT INTO work_types (name, icon, color, sort_order, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			wt.Name, wt.Icon, wt.Color, wt.Order, true, s.now, s.now); err != nil {
			return fmt.Errorf("work type %s: %w", wt.Name, err)
		}
	}
	return nil
}

func (s *seeder) statuses(ctx context.Context) error {
	rows := []struct {
		Name, Color string
		Order       int
		IsFinal     bool
	}{
		{"Pending", "#6B7280", 1, false},
		{"In Progress", "#3B82F6", 2, false},
		{"Review", "#F59E0B", 3, false},
		{"Completed", "#10B981", 4, true},
		{"Cancelled", "#EF4444", 5, true},
		{"On Hold", "#8B5CF6", 6, false},
	}
	for _, st := range rows {
		ok, err := s.exists(ctx, "SELECT 1 FROM statuses WHERE name = ?", st.Name)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := s.exec(ctx,
			"INSERT INTO statuses (name, color, sort_order, is_final, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			st.Name, st.Color, st.Order, st.IsFinal, s.now, s.now); err != nil {
			return fmt.Errorf("status %s: %w", st.Name, err)
		}
	}
	return nil
}

func (s *seeder) users(ctx context.Context, passwordHash string) error {
	rows := []struct {
		Name, Email, DepartmentCode string
		Role                        auth.Role
	}{
		{"Admin User", "admin@example.com", "IT", auth.RoleAdmin},
		{"CTO User", "cto@example.com", "IT", auth.RoleCTO},
		{"IT Manager", "it.manager@example.com", "IT", auth.RoleDepartmentOwner},
		{"HR Manager", "hr.manager@example.com", "HR", auth.RoleDepartmentOwner},
		{"Finance Manager", "finance.manager@example.com", "FIN", auth.RoleDepartmentOwner},
	}
	for _, u := range rows {
		ok, err := s.exists(ctx, "SELECT 1 FROM users WHERE email = ?", u.Email)
		if err != nil {
			return err
		}
		if ok {
			continue
		}

		var departmentID int64
		if err := s.db.GetContext(ctx, &departmentID, s.db.Rebind("SELECT id FROM departments WHERE code = ?"), u.DepartmentCode); err != nil {
			return fmt.Errorf("lookup department %s: %w", u.DepartmentCode, err)
		}

		if err := s.exec(ctx,
			"INSERT INTO users (name, email, password_hash, phone, role, department_id, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			u.Name, u.Email, passwordHash, "", string(u.Role), departmentID, true, s.now, s.now); err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
		fmt.Printf("Seeded %s user: %s\n", u.Role, u.Email)
	}
	return nil
}

// settings writes the defaults for keys that are not set yet; existing values are kept.
func (s *seeder) settings(ctx context.Context, timezone string) error {
	values := maps.Clone(settings.Defaults)
	if timezone != "" {
		values[settings.KeyTimezone] = timezone
	}
	for _, key := range slices.Sorted(maps.Keys(values)) {
		ok, err := s.exists(ctx, "SELECT 1 FROM settings WHERE key = ?", key)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := s.exec(ctx,
			"INSERT INTO settings (key, value, created_at, updated_at) VALUES (?, ?, ?, ?)",
			key, values[key], s.now, s.now); err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	}
	return nil
}

func clearSeedTables(ctx context.Context, db *sqlx.DB) error {
	// children first so foreign keys never block the delete
	tables := []string{"work_entry_attachments", "work_entries", "users", "statuses", "work_types", "departments", "settings"}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}
	return tx.Commit()
}
