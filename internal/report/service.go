package report

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/core/common/dates"
	workentryDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/workentry"
	"github.com/frahmantamala/worklog/internal/workentry"
)

const (
	DefaultChartDays = 30
	MaxChartDays     = 365
	RecentLimit      = 10
)

// EntryReader is the read side of the work entry store.
type EntryReader interface {
	Find(ctx context.Context, c workentry.Criteria) ([]*workentryDatamodel.WorkEntry, error)
	Totals(ctx context.Context, c workentry.Criteria) (workentry.Totals, error)
}

// Directory counts users and departments for the admin dashboard.
type Directory interface {
	CountUsers(ctx context.Context, activeOnly bool) (int64, error)
	CountDepartments(ctx context.Context, activeOnly bool) (int64, error)
}

// Calendar supplies the business day and week start; settings.Service implements it.
type Calendar interface {
	Today(ctx context.Context) time.Time
	WeekStart(ctx context.Context) time.Weekday
}

type Service struct {
	entries     EntryReader
	directory   Directory
	calendar    Calendar
	departments workentry.ReferenceChecker
	logger      *slog.Logger
}

func NewService(entries EntryReader, directory Directory, calendar Calendar, departments workentry.ReferenceChecker, logger *slog.Logger) *Service {
	return &Service{
		entries:     entries,
		directory:   directory,
		calendar:    calendar,
		departments: departments,
		logger:      logger,
	}
}

// Stats is one of AdminStats, CTOStats or OwnerStats depending on the actor's role.
type Stats interface {
	StatsRole() auth.Role
}

type AdminStats struct {
	TotalUsers       int64 `json:"total_users"`
	TotalDepartments int64 `json:"total_departments"`
	ActiveUsers      int64 `json:"active_users"`
	TotalEntries     int64 `json:"total_entries"`
}

func (AdminStats) StatsRole() auth.Role { return auth.RoleAdmin }

type CTOStats struct {
	TotalHours        int64 `json:"total_hours"`
	TotalEntries      int64 `json:"total_entries"`
	ActiveDepartments int64 `json:"active_departments"`
	CompletedTasks    int64 `json:"completed_tasks"`
}

func (CTOStats) StatsRole() auth.Role { return auth.RoleCTO }

type OwnerStats struct {
	TodayHours   int64 `json:"today_hours"`
	WeekHours    int64 `json:"week_hours"`
	MonthEntries int64 `json:"month_entries"`
	PendingTasks int64 `json:"pending_tasks"`
}

func (OwnerStats) StatsRole() auth.Role { return auth.RoleDepartmentOwner }

type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Charts struct {
	Trend  []TrendPoint `json:"trend"`
	Period Period       `json:"period"`
}

type MonthlyReport struct {
	Period  string                 `json:"period"`
	Entries []*workentry.WorkEntry `json:"entries"`
	Summary Monthly                `json:"summary"`
}

type Range struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type KPIReport struct {
	Period         Range              `json:"period"`
	KPISummary     map[string]KPIStat `json:"kpi_summary"`
	EntriesWithKPI int                `json:"entries_with_kpi"`
}

// Export is a rendered document ready to be sent as a download.
type Export struct {
	FileName    string
	ContentType string
	Body        []byte
}

func (s *Service) Stats(ctx context.Context, actor *auth.Actor) (Stats, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}

	today := s.calendar.Today(ctx)
	monthStart, monthEnd := dates.MonthBounds(today)
	scoped := workentry.Scope(actor, workentry.Filter{})

	switch actor.Role {
	case auth.RoleAdmin:
		return s.adminStats(ctx, monthStart, monthEnd)
	case auth.RoleCTO:
		return s.ctoStats(ctx, scoped, monthStart, monthEnd)
	case auth.RoleDepartmentOwner:
		return s.ownerStats(ctx, actor, scoped, today, monthStart, monthEnd)
	}
	return nil, internal.ErrForbidden
}

func (s *Service) adminStats(ctx context.Context, monthStart, monthEnd time.Time) (Stats, error) {
	var (
		out AdminStats
		err error
	)
	if out.TotalUsers, err = s.directory.CountUsers(ctx, false); err != nil {
		return nil, err
	}
	if out.TotalDepartments, err = s.directory.CountDepartments(ctx, true); err != nil {
		return nil, err
	}
	if out.ActiveUsers, err = s.directory.CountUsers(ctx, true); err != nil {
		return nil, err
	}
	month, err := s.entries.Totals(ctx, workentry.Criteria{}.Between(monthStart, monthEnd))
	if err != nil {
		return nil, err
	}
	out.TotalEntries = month.Entries
	return out, nil
}

func (s *Service) ctoStats(ctx context.Context, scoped workentry.Criteria, monthStart, monthEnd time.Time) (Stats, error) {
	var out CTOStats

	month, err := s.entries.Totals(ctx, scoped.Between(monthStart, monthEnd))
	if err != nil {
		return nil, err
	}
	out.TotalHours = month.Hours
	out.TotalEntries = month.Entries

	if out.ActiveDepartments, err = s.directory.CountDepartments(ctx, true); err != nil {
		return nil, err
	}

	completed, err := s.entries.Totals(ctx, scoped.Between(monthStart, monthEnd).WithFinal(true))
	if err != nil {
		return nil, err
	}
	out.CompletedTasks = completed.Entries
	return out, nil
}

func (s *Service) ownerStats(ctx context.Context, actor *auth.Actor, scoped workentry.Criteria, today, monthStart, monthEnd time.Time) (Stats, error) {
	var out OwnerStats
	own := scoped.OwnedBy(actor.ID)

	day, err := s.entries.Totals(ctx, own.Between(today, today))
	if err != nil {
		return nil, err
	}
	out.TodayHours = day.Hours

	week, err := s.entries.Totals(ctx, own.Between(dates.WeekStart(today, s.calendar.WeekStart(ctx)), today))
	if err != nil {
		return nil, err
	}
	out.WeekHours = week.Hours

	month, err := s.entries.Totals(ctx, own.Between(monthStart, monthEnd))
	if err != nil {
		return nil, err
	}
	out.MonthEntries = month.Entries

	pending, err := s.entries.Totals(ctx, own.WithFinal(false))
	if err != nil {
		return nil, err
	}
	out.PendingTasks = pending.Entries
	return out, nil
}

// RecentActivities returns the newest entries the actor can see.
func (s *Service) RecentActivities(ctx context.Context, actor *auth.Actor) ([]*workentry.WorkEntry, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}
	rows, err := s.entries.Find(ctx, workentry.Scope(actor, workentry.Filter{}).WithLimit(RecentLimit))
	if err != nil {
		s.logger.Error("failed to load recent activities", "error", err)
		return nil, err
	}
	return workentry.FromDataModels(rows), nil
}

// Charts returns the daily trend over the last days days, today included.
func (s *Service) Charts(ctx context.Context, actor *auth.Actor, days int) (*Charts, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}
	days = clampDays(days)

	end := s.calendar.Today(ctx)
	start := end.AddDate(0, 0, -(days - 1))

	rows, err := s.entries.Find(ctx, workentry.Scope(actor, workentry.Filter{}).Between(start, end).Chronological())
	if err != nil {
		s.logger.Error("failed to load chart data", "error", err)
		return nil, err
	}

	return &Charts{
		Trend:  DailyTrend(workentry.FromDataModels(rows), end, days),
		Period: Period{Start: dates.Format(start), End: dates.Format(end)},
	}, nil
}

func (s *Service) MonthlyReport(ctx context.Context, actor *auth.Actor, month string, departmentID *int64) (*MonthlyReport, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}
	if month == "" {
		return nil, internal.NewValidationFieldError("month", "Month is required", internal.ErrCodeRequired)
	}
	start, end, err := dates.ParseMonth(month)
	if err != nil {
		return nil, internal.NewValidationFieldError("month", "Month must be in YYYY-MM format", internal.ErrCodeInvalidDate)
	}
	if err := s.checkDepartment(ctx, departmentID); err != nil {
		return nil, err
	}

	c := workentry.Scope(actor, workentry.Filter{DepartmentID: departmentID}).Between(start, end).Chronological()
	rows, err := s.entries.Find(ctx, c)
	if err != nil {
		s.logger.Error("failed to load monthly report", "error", err, "month", month)
		return nil, err
	}

	entries := workentry.FromDataModels(rows)
	return &MonthlyReport{
		Period:  start.Format("January 2006"),
		Entries: entries,
		Summary: MonthlySummary(entries),
	}, nil
}

func (s *Service) KPIReport(ctx context.Context, actor *auth.Actor, from, to string, departmentID *int64) (*KPIReport, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}
	start, end, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}
	if err := s.checkDepartment(ctx, departmentID); err != nil {
		return nil, err
	}

	c := workentry.Scope(actor, workentry.Filter{DepartmentID: departmentID}).Between(start, end).Chronological()
	rows, err := s.entries.Find(ctx, c)
	if err != nil {
		s.logger.Error("failed to load kpi report", "error", err)
		return nil, err
	}

	withKPI := make([]*workentry.WorkEntry, 0, len(rows))
	for _, e := range workentry.FromDataModels(rows) {
		if e.HasKPI() {
			withKPI = append(withKPI, e)
		}
	}

	return &KPIReport{
		Period:         Range{From: dates.Format(start), To: dates.Format(end)},
		KPISummary:     AggregateKPI(withKPI),
		EntriesWithKPI: len(withKPI),
	}, nil
}

// Summary aggregates the visible entries between from and to, narrowed by filter.
func (s *Service) Summary(ctx context.Context, actor *auth.Actor, from, to string, filter workentry.Filter) (*Summary, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}
	start, end, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}

	rows, err := s.entries.Find(ctx, workentry.Scope(actor, filter).Between(start, end).Chronological())
	if err != nil {
		s.logger.Error("failed to load summary", "error", err)
		return nil, err
	}

	sum := Summarize(workentry.FromDataModels(rows))
	return &sum, nil
}

func (s *Service) Export(ctx context.Context, actor *auth.Actor, format, from, to string, filter workentry.Filter) (*Export, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}
	exporter, ok := ExporterFor(format)
	if !ok {
		return nil, internal.NewValidationFieldError("format", "Format must be one of: xlsx, pdf", internal.ErrCodeInvalidFormat)
	}
	start, end, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}

	rows, err := s.entries.Find(ctx, workentry.Scope(actor, filter).Between(start, end).Chronological())
	if err != nil {
		s.logger.Error("failed to load export rows", "error", err)
		return nil, err
	}

	var buf bytes.Buffer
	if err := exporter.Write(&buf, workentry.FromDataModels(rows)); err != nil {
		s.logger.Error("failed to render export", "error", err, "format", format)
		return nil, internal.NewInternalError("Failed to render export", err)
	}

	s.logger.Info("export rendered", "format", format, "rows", len(rows), "actor_id", actor.ID)
	return &Export{
		FileName:    "work-entries." + exporter.Extension(),
		ContentType: exporter.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}

func (s *Service) checkDepartment(ctx context.Context, id *int64) error {
	if id == nil || s.departments == nil {
		return nil
	}
	ok, err := s.departments.Exists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return internal.NewValidationFieldError("department_id", "The selected department id is invalid", internal.ErrCodeInvalidReference)
	}
	return nil
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	var errs internal.ValidationErrors
	start, startErr := requiredDate("date_from", from, &errs)
	end, endErr := requiredDate("date_to", to, &errs)
	if startErr == nil && endErr == nil && end.Before(start) {
		errs.Add("date_to", "Date to must be a date after or equal to date from", internal.ErrCodeInvalidDate)
	}
	if errs.HasErrors() {
		return time.Time{}, time.Time{}, internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).WithDetails(errs)
	}
	return start, end, nil
}

func requiredDate(field, raw string, errs *internal.ValidationErrors) (time.Time, error) {
	if raw == "" {
		errs.Add(field, field+" is required", internal.ErrCodeRequired)
		return time.Time{}, internal.ErrInvalidInput
	}
	t, err := dates.Parse(raw)
	if err != nil {
		errs.Add(field, field+" must be a date in YYYY-MM-DD format", internal.ErrCodeInvalidDate)
		return time.Time{}, err
	}
	return t, nil
}

// clampDays treats a missing or non-positive window as the default and caps it at MaxChartDays.
func clampDays(days int) int {
	switch {
	case days < 1:
		return DefaultChartDays
	case days > MaxChartDays:
		return MaxChartDays
	}
	return days
}
