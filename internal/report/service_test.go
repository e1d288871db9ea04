package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/core/database"
	departmentDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/department"
	statusDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/status"
	userDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/user"
	workentryDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/workentry"
	worktypeDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/worktype"
	"github.com/frahmantamala/worklog/internal/department"
	departmentPostgres "github.com/frahmantamala/worklog/internal/department/postgres"
	"github.com/frahmantamala/worklog/internal/report"
	reportPostgres "github.com/frahmantamala/worklog/internal/report/postgres"
	"github.com/frahmantamala/worklog/internal/transport"
	"github.com/frahmantamala/worklog/internal/workentry"
	workentryPostgres "github.com/frahmantamala/worklog/internal/workentry/postgres"
)

// fixedCalendar pins today to Friday 2024-06-14 with Monday-first weeks.
type fixedCalendar struct{}

func (fixedCalendar) Today(context.Context) time.Time {
	return time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
}

func (fixedCalendar) WeekStart(context.Context) time.Weekday { return time.Monday }

func mustCreate(db *gorm.DB, v interface{}) {
	Expect(db.Create(v).Error).To(Succeed())
}

var _ = Describe("Report Service", func() {
	var (
		service *report.Service
		ctx     context.Context

		it, hr                       int64
		admin, cto, itOwner, hrOwner *auth.Actor
	)

	BeforeEach(func() {
		handles, err := database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(handles.Close)
		db := handles.Gorm
		ctx = context.Background()

		itDept := &departmentDatamodel.Department{Name: "IT Department", Code: "IT", Color: "#3B82F6", IsActive: true}
		hrDept := &departmentDatamodel.Department{Name: "HR Department", Code: "HR", Color: "#10B981", IsActive: true}
		mustCreate(db, itDept)
		mustCreate(db, hrDept)
		mustCreate(db, &departmentDatamodel.Department{Name: "Legacy", Code: "OLD", Color: "#000000"})
		it, hr = itDept.ID, hrDept.ID

		newUser := func(name string, role auth.Role, dept int64, active bool) *auth.Actor {
			d := dept
			row := &userDatamodel.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Role: string(role), DepartmentID: &d, IsActive: active}
			mustCreate(db, row)
			return &auth.Actor{ID: row.ID, Name: name, Role: role, DepartmentID: &d}
		}
		admin = newUser("admin", auth.RoleAdmin, it, true)
		cto = newUser("cto", auth.RoleCTO, it, true)
		itOwner = newUser("itowner", auth.RoleDepartmentOwner, it, true)
		hrOwner = newUser("hrowner", auth.RoleDepartmentOwner, hr, true)
		newUser("former", auth.RoleDepartmentOwner, hr, false)

		dev := &worktypeDatamodel.WorkType{Name: "Development", Color: "#3B82F6", IsActive: true}
		meeting := &worktypeDatamodel.WorkType{Name: "Meeting", Color: "#10B981", IsActive: true}
		mustCreate(db, dev)
		mustCreate(db, meeting)
		pending := &statusDatamodel.Status{Name: "Pending", Color: "#6B7280"}
		done := &statusDatamodel.Status{Name: "Completed", Color: "#10B981", IsFinal: true}
		mustCreate(db, pending)
		mustCreate(db, done)

		entry := func(a *auth.Actor, dept, workType, status int64, date string, h int, kpi map[string]float64) {
			d, err := time.Parse("2006-01-02", date)
			Expect(err).NotTo(HaveOccurred())
			mustCreate(db, &workentryDatamodel.WorkEntry{
				UserID: a.ID, DepartmentID: dept, WorkTypeID: workType, StatusID: status,
				WorkDate: d, Title: a.Name + " " + date, Description: "work", HoursSpent: h, KPIMetrics: kpi,
			})
		}
		entry(itOwner, it, dev.ID, pending.ID, "2024-06-14", 2, map[string]float64{"a": 10, "b": 5})
		entry(itOwner, it, meeting.ID, done.ID, "2024-06-11", 3, map[string]float64{"a": 20})
		entry(itOwner, it, dev.ID, pending.ID, "2024-06-03", 4, nil)
		entry(itOwner, it, dev.ID, pending.ID, "2024-05-20", 1, nil)
		entry(hrOwner, hr, dev.ID, done.ID, "2024-06-12", 5, map[string]float64{"b": 15})
		entry(cto, it, meeting.ID, pending.ID, "2024-06-14", 1, nil)

		slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
		departments := department.NewService(departmentPostgres.NewDepartmentRepository(db), auth.NewPolicy(), slogger)
		service = report.NewService(
			workentryPostgres.NewWorkEntryRepository(db),
			reportPostgres.NewDirectoryRepository(handles.SQL),
			fixedCalendar{},
			departments,
			slogger,
		)
	})

	Describe("Stats", func() {
		It("gives admins head counts and this month's entries", func() {
			stats, err := service.Stats(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(Equal(report.AdminStats{TotalUsers: 5, TotalDepartments: 2, ActiveUsers: 4, TotalEntries: 5}))
		})

		It("gives the CTO month totals and completed work", func() {
			stats, err := service.Stats(ctx, cto)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(Equal(report.CTOStats{TotalHours: 15, TotalEntries: 5, ActiveDepartments: 2, CompletedTasks: 2}))
		})

		It("gives department owners their own day, week, month and pending work", func() {
			stats, err := service.Stats(ctx, itOwner)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(Equal(report.OwnerStats{TodayHours: 2, WeekHours: 5, MonthEntries: 3, PendingTasks: 3}))
			Expect(stats.StatsRole()).To(Equal(auth.RoleDepartmentOwner))
		})

		It("requires an actor", func() {
			_, err := service.Stats(ctx, nil)
			Expect(errors.Is(err, internal.ErrUnauthenticated)).To(BeTrue())
		})
	})

	Describe("Charts", func() {
		It("returns a gap-free window ending today", func() {
			charts, err := service.Charts(ctx, cto, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(charts.Period).To(Equal(report.Period{Start: "2024-06-12", End: "2024-06-14"}))
			Expect(charts.Trend).To(Equal([]report.TrendPoint{
				{Date: "2024-06-12", Entries: 1, Hours: 5},
				{Date: "2024-06-13", Entries: 0, Hours: 0},
				{Date: "2024-06-14", Entries: 2, Hours: 3},
			}))
		})

		It("scopes the trend to the owner's department", func() {
			charts, err := service.Charts(ctx, hrOwner, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(charts.Trend[0].Entries).To(Equal(1))
			Expect(charts.Trend[2].Entries).To(BeZero())
		})

		It("clamps the window", func() {
			for _, days := range []int{0, -4} {
				charts, err := service.Charts(ctx, cto, days)
				Expect(err).NotTo(HaveOccurred())
				Expect(charts.Trend).To(HaveLen(report.DefaultChartDays))
				Expect(charts.Period.End).To(Equal("2024-06-14"))
			}

			charts, err := service.Charts(ctx, cto, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(charts.Trend).To(HaveLen(1))

			charts, err = service.Charts(ctx, cto, 5000)
			Expect(err).NotTo(HaveOccurred())
			Expect(charts.Trend).To(HaveLen(report.MaxChartDays))
		})
	})

	Describe("Charts handler", func() {
		chartDays := func(query string) int {
			router := chi.NewRouter()
			router.Get("/dashboard/charts", report.NewHandler(transport.NewBaseHandler(nil), service).Charts)
			req := httptest.NewRequest(http.MethodGet, "/dashboard/charts"+query, nil)
			req = req.WithContext(auth.ContextWithActor(req.Context(), cto))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var body report.Charts
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			return len(body.Trend)
		}

		It("falls back to the default window for missing, malformed and non-positive days", func() {
			for _, q := range []string{"", "?days=abc", "?days=0", "?days=-7"} {
				Expect(chartDays(q)).To(Equal(report.DefaultChartDays), q)
			}
			Expect(chartDays("?days=7")).To(Equal(7))
			Expect(chartDays("?days=9999")).To(Equal(report.MaxChartDays))
		})
	})

	Describe("RecentActivities", func() {
		It("lists the newest visible entries first", func() {
			recent, err := service.RecentActivities(ctx, hrOwner)
			Expect(err).NotTo(HaveOccurred())
			Expect(recent).To(HaveLen(1))
			Expect(recent[0].DepartmentID).To(Equal(hr))

			recent, err = service.RecentActivities(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(recent).To(HaveLen(6))
			Expect(recent[0].WorkDate.String()).To(Equal("2024-06-14"))
			Expect(recent[5].WorkDate.String()).To(Equal("2024-05-20"))
		})
	})

	Describe("MonthlyReport", func() {
		It("summarises the month within the actor's scope", func() {
			m, err := service.MonthlyReport(ctx, itOwner, "2024-06", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Period).To(Equal("June 2024"))
			Expect(m.Entries).To(HaveLen(4))
			Expect(m.Entries[0].WorkDate.String()).To(Equal("2024-06-03"))
			Expect(m.Summary.TotalHours).To(Equal(10))
			Expect(m.Summary.ByUser).To(HaveLen(2))
			Expect(m.Summary.ByUser[0].User.ID).To(Equal(itOwner.ID))
			Expect(m.Summary.ByUser[0].Entries).To(Equal(3))
			Expect(m.Summary.ByUser[0].Hours).To(Equal(9))
		})

		It("narrows by department for the CTO", func() {
			m, err := service.MonthlyReport(ctx, cto, "2024-06", &hr)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Summary.TotalEntries).To(Equal(1))
		})

		It("validates the month and department", func() {
			_, err := service.MonthlyReport(ctx, cto, "", nil)
			Expect(fieldCode(err, "month")).To(Equal(string(internal.ErrCodeRequired)))

			_, err = service.MonthlyReport(ctx, cto, "2024-13", nil)
			Expect(fieldCode(err, "month")).To(Equal(string(internal.ErrCodeInvalidDate)))

			missing := int64(999)
			_, err = service.MonthlyReport(ctx, cto, "2024-06", &missing)
			Expect(fieldCode(err, "department_id")).To(Equal(string(internal.ErrCodeInvalidReference)))
		})
	})

	Describe("KPIReport", func() {
		It("aggregates metrics across every visible department", func() {
			k, err := service.KPIReport(ctx, cto, "2024-06-01", "2024-06-30", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(k.Period).To(Equal(report.Range{From: "2024-06-01", To: "2024-06-30"}))
			Expect(k.EntriesWithKPI).To(Equal(3))
			Expect(k.KPISummary["a"]).To(Equal(report.KPIStat{Count: 2, Total: 30, Average: 15, Min: 10, Max: 20}))
			Expect(k.KPISummary["b"]).To(Equal(report.KPIStat{Count: 2, Total: 20, Average: 10, Min: 5, Max: 15}))
		})

		It("only sees the owner's department", func() {
			k, err := service.KPIReport(ctx, itOwner, "2024-06-01", "2024-06-30", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(k.EntriesWithKPI).To(Equal(2))
			Expect(k.KPISummary["b"].Count).To(Equal(1))
		})

		It("requires an ordered range", func() {
			_, err := service.KPIReport(ctx, cto, "", "2024-06-30", nil)
			Expect(fieldCode(err, "date_from")).To(Equal(string(internal.ErrCodeRequired)))

			_, err = service.KPIReport(ctx, cto, "2024-06-30", "2024-06-01", nil)
			Expect(fieldCode(err, "date_to")).To(Equal(string(internal.ErrCodeInvalidDate)))
		})
	})

	Describe("Summary", func() {
		It("groups a date range by department", func() {
			s, err := service.Summary(ctx, cto, "2024-06-10", "2024-06-14", workentry.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.TotalEntries).To(Equal(4))
			Expect(s.TotalHours).To(Equal(11))
			Expect(s.ByDepartment).To(HaveLen(2))
			Expect(s.ByDepartment[0].Department.Code).To(Equal("IT"))
			Expect(s.ByDepartment[0].Count).To(Equal(3))
			Expect(s.ByDepartment[0].Hours).To(Equal(6))
			Expect(s.ByDepartment[1].Hours).To(Equal(5))
		})
	})

	Describe("Export", func() {
		It("renders the scoped rows as a spreadsheet", func() {
			out, err := service.Export(ctx, cto, "xlsx", "2024-06-01", "2024-06-30", workentry.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.FileName).To(Equal("work-entries.xlsx"))

			f, err := excelize.OpenReader(bytes.NewReader(out.Body))
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()
			rows, err := f.GetRows("Work Entries")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(6))
		})

		It("rejects unknown formats", func() {
			_, err := service.Export(ctx, cto, "csv", "2024-06-01", "2024-06-30", workentry.Filter{})
			Expect(fieldCode(err, "format")).To(Equal(string(internal.ErrCodeInvalidFormat)))
		})
	})
})

func fieldCode(err error, field string) string {
	appErr, ok := internal.IsAppError(err)
	Expect(ok).To(BeTrue(), "expected an AppError, got %v", err)
	details, ok := appErr.Details.(internal.ValidationErrors)
	Expect(ok).To(BeTrue())
	for _, e := range details.Errors {
		if e.Field == field {
			return e.Code
		}
	}
	return ""
}
