package workentry_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	. "github.com/onsi/gomega"
	"github.com/spf13/afero"
	"gorm.io/gorm"

	"github.com/frahmantamala/worklog/internal/auth"
	departmentDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/department"
	statusDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/status"
	userDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/user"
	worktypeDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/worktype"
	"github.com/frahmantamala/worklog/internal/core/events"
	"github.com/frahmantamala/worklog/internal/department"
	departmentPostgres "github.com/frahmantamala/worklog/internal/department/postgres"
	"github.com/frahmantamala/worklog/internal/status"
	statusPostgres "github.com/frahmantamala/worklog/internal/status/postgres"
	"github.com/frahmantamala/worklog/internal/storage"
	"github.com/frahmantamala/worklog/internal/workentry"
	workentryPostgres "github.com/frahmantamala/worklog/internal/workentry/postgres"
	"github.com/frahmantamala/worklog/internal/worktype"
	worktypePostgres "github.com/frahmantamala/worklog/internal/worktype/postgres"
)

const maxUpload = 1024

var today = time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

type fixedClock struct{ day time.Time }

func (c fixedClock) Today(context.Context) time.Time { return c.day }

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, e.EventType())
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}

// world is a seeded database with two departments, one user per role and the lookups.
type world struct {
	db        *gorm.DB
	fs        afero.Fs
	store     *storage.Store
	publisher *recordingPublisher
	service   *workentry.Service

	it, hr      int64
	workType    int64
	pending     int64
	completed   int64
	admin       *auth.Actor
	cto         *auth.Actor
	itOwner     *auth.Actor
	itColleague *auth.Actor
	hrOwner     *auth.Actor
	unassigned  *auth.Actor

	refs   workentry.References
	policy *auth.Policy
	logger *slog.Logger
}

func newWorld(db *gorm.DB) *world {
	w := &world{db: db, fs: afero.NewMemMapFs(), publisher: &recordingPublisher{}}
	w.store = storage.New(w.fs)

	it := &departmentDatamodel.Department{Name: "IT Department", Code: "IT", Color: "#3B82F6", IsActive: true}
	hr := &departmentDatamodel.Department{Name: "HR Department", Code: "HR", Color: "#10B981", IsActive: true}
	Expect(db.Create(it).Error).To(Succeed())
	Expect(db.Create(hr).Error).To(Succeed())
	w.it, w.hr = it.ID, hr.ID

	wt := &worktypeDatamodel.WorkType{Name: "Development", Icon: "💻", Color: "#3B82F6", SortOrder: 1, IsActive: true}
	Expect(db.Create(wt).Error).To(Succeed())
	w.workType = wt.ID

	pending := &statusDatamodel.Status{Name: "Pending", Color: "#6B7280", SortOrder: 1}
	completed := &statusDatamodel.Status{Name: "Completed", Color: "#10B981", SortOrder: 4, IsFinal: true}
	Expect(db.Create(pending).Error).To(Succeed())
	Expect(db.Create(completed).Error).To(Succeed())
	w.pending, w.completed = pending.ID, completed.ID

	w.admin = w.user("Admin", "admin@example.com", auth.RoleAdmin, &w.it)
	w.cto = w.user("CTO", "cto@example.com", auth.RoleCTO, &w.it)
	w.itOwner = w.user("IT Manager", "it@example.com", auth.RoleDepartmentOwner, &w.it)
	w.itColleague = w.user("IT Lead", "lead@example.com", auth.RoleDepartmentOwner, &w.it)
	w.hrOwner = w.user("HR Manager", "hr@example.com", auth.RoleDepartmentOwner, &w.hr)
	w.unassigned = w.user("Floater", "floater@example.com", auth.RoleDepartmentOwner, nil)

	w.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	w.policy = auth.NewPolicy()
	w.refs = workentry.References{
		Departments: department.NewService(departmentPostgres.NewDepartmentRepository(db), w.policy, w.logger),
		WorkTypes:   worktype.NewService(worktypePostgres.NewWorkTypeRepository(db), w.policy, w.logger),
		Statuses:    status.NewService(statusPostgres.NewStatusRepository(db), w.policy, w.logger),
	}
	w.service = w.serviceOver(w.store)
	return w
}

// serviceOver builds a service on the seeded database that keeps its files in files.
func (w *world) serviceOver(files storage.FileStore) *workentry.Service {
	return workentry.NewService(
		workentryPostgres.NewWorkEntryRepository(w.db),
		w.refs,
		fixedClock{day: today},
		files,
		w.publisher,
		w.policy,
		w.logger,
		maxUpload,
	)
}

func (w *world) user(name, email string, role auth.Role, departmentID *int64) *auth.Actor {
	var dept *int64
	if departmentID != nil {
		d := *departmentID
		dept = &d
	}
	row := &userDatamodel.User{Name: name, Email: email, PasswordHash: "x", Role: string(role), DepartmentID: dept, IsActive: true}
	Expect(w.db.Create(row).Error).To(Succeed())
	return &auth.Actor{ID: row.ID, Name: name, Email: email, Role: role, DepartmentID: dept}
}

func hours(n int) *int { return &n }

func (w *world) dto(title, day string, h int) workentry.CreateWorkEntryDTO {
	return workentry.CreateWorkEntryDTO{
		Title:       title,
		Description: title + " details",
		WorkDate:    day,
		HoursSpent:  hours(h),
		WorkTypeID:  w.workType,
		StatusID:    w.pending,
	}
}

func (w *world) create(actor *auth.Actor, dto workentry.CreateWorkEntryDTO) *workentry.WorkEntry {
	e, err := w.service.Create(context.Background(), actor, dto)
	Expect(err).NotTo(HaveOccurred())
	return e
}
