package worktype_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/core/database"
	departmentDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/department"
	statusDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/status"
	userDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/user"
	workentryDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/workentry"
	"github.com/frahmantamala/worklog/internal/worktype"
	worktypePostgres "github.com/frahmantamala/worklog/internal/worktype/postgres"
)

var _ = Describe("WorkType Service", func() {
	var (
		db      *gorm.DB
		service *worktype.Service
		ctx     context.Context
		admin   *auth.Actor
	)

	BeforeEach(func() {
		handles, err := database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(handles.Close)
		db = handles.Gorm

		service = worktype.NewService(worktypePostgres.NewWorkTypeRepository(db), auth.NewPolicy(), slog.New(slog.NewTextHandler(io.Discard, nil)))
		ctx = context.Background()
		admin = &auth.Actor{ID: 1, Role: auth.RoleAdmin}
	})

	create := func(dto worktype.CreateWorkTypeDTO) *worktype.WorkType {
		wt, err := service.Create(ctx, admin, dto)
		Expect(err).NotTo(HaveOccurred())
		return wt
	}

	It("applies the default color", func() {
		wt := create(worktype.CreateWorkTypeDTO{Name: "Development", Icon: "💻"})
		Expect(wt.Color).To(Equal(worktype.DefaultColor))
		Expect(wt.IsActive).To(BeTrue())
	})

	It("rejects a malformed color", func() {
		_, err := service.Create(ctx, admin, worktype.CreateWorkTypeDTO{Name: "Meeting", Color: "blue"})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
	})

	It("lists by order and can hide inactive types", func() {
		inactive := false
		create(worktype.CreateWorkTypeDTO{Name: "Review", Order: 2})
		create(worktype.CreateWorkTypeDTO{Name: "Planning", Order: 1})
		create(worktype.CreateWorkTypeDTO{Name: "Legacy", Order: 0, IsActive: &inactive})

		all, err := service.List(ctx, admin, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(3))
		Expect(all[0].Name).To(Equal("Legacy"))

		active, err := service.List(ctx, admin, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(active).To(HaveLen(2))
		Expect(active[0].Name).To(Equal("Planning"))
		Expect(active[1].Name).To(Equal("Review"))
	})

	It("updates only the supplied fields", func() {
		wt := create(worktype.CreateWorkTypeDTO{Name: "Research", Icon: "🔍", Order: 4})
		order := 9

		updated, err := service.Update(ctx, admin, wt.ID, worktype.UpdateWorkTypeDTO{Order: &order})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Order).To(Equal(9))
		Expect(updated.Name).To(Equal("Research"))
		Expect(updated.Icon).To(Equal("🔍"))
	})

	It("forbids writes by non-admins", func() {
		owner := &auth.Actor{ID: 2, Role: auth.RoleDepartmentOwner}
		_, err := service.Create(ctx, owner, worktype.CreateWorkTypeDTO{Name: "Support"})
		Expect(errors.Is(err, internal.ErrForbidden)).To(BeTrue())
	})

	Describe("Delete", func() {
		It("refuses while work entries reference the type", func() {
			wt := create(worktype.CreateWorkTypeDTO{Name: "Training"})

			dept := &departmentDatamodel.Department{Name: "IT", Code: "IT", Color: "#3B82F6", IsActive: true}
			Expect(db.Create(dept).Error).To(Succeed())
			u := &userDatamodel.User{Name: "U", Email: "u@example.com", PasswordHash: "x", Role: string(auth.RoleAdmin), DepartmentID: &dept.ID, IsActive: true}
			Expect(db.Create(u).Error).To(Succeed())
			st := &statusDatamodel.Status{Name: "Pending", Color: "#6B7280", SortOrder: 1}
			Expect(db.Create(st).Error).To(Succeed())
			Expect(db.Create(&workentryDatamodel.WorkEntry{
				UserID: u.ID, DepartmentID: dept.ID, WorkTypeID: wt.ID, StatusID: st.ID,
				WorkDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Title: "Course", Description: "Go training", HoursSpent: 3,
			}).Error).To(Succeed())

			err := service.Delete(ctx, admin, wt.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInUse))
		})

		It("removes an unused type", func() {
			wt := create(worktype.CreateWorkTypeDTO{Name: "Support"})
			Expect(service.Delete(ctx, admin, wt.ID)).To(Succeed())

			_, err := service.Get(ctx, admin, wt.ID)
			Expect(errors.Is(err, internal.ErrWorkTypeNotFound)).To(BeTrue())

			exists, err := service.Exists(ctx, wt.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})
})
