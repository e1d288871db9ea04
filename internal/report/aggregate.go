package report

import (
	"math"
	"time"

	"github.com/frahmantamala/worklog/internal/core/common/dates"
	"github.com/frahmantamala/worklog/internal/workentry"
)

type DepartmentGroup struct {
	Department *workentry.DepartmentRef `json:"department"`
	Count      int                      `json:"count"`
	Hours      int                      `json:"hours"`
}

type WorkTypeGroup struct {
	WorkType *workentry.WorkTypeRef `json:"work_type"`
	Count    int                    `json:"count"`
	Hours    int                    `json:"hours"`
}

type StatusGroup struct {
	Status *workentry.StatusRef `json:"status"`
	Count  int                  `json:"count"`
}

type UserGroup struct {
	User    *workentry.UserRef `json:"user"`
	Entries int                `json:"entries"`
	Hours   int                `json:"hours"`
}

type WorkTypeTally struct {
	WorkType *workentry.WorkTypeRef `json:"work_type"`
	Entries  int                    `json:"entries"`
	Hours    int                    `json:"hours"`
}

type Summary struct {
	TotalEntries int               `json:"total_entries"`
	TotalHours   int               `json:"total_hours"`
	ByDepartment []DepartmentGroup `json:"by_department"`
	ByWorkType   []WorkTypeGroup   `json:"by_work_type"`
	ByStatus     []StatusGroup     `json:"by_status"`
}

type Monthly struct {
	TotalEntries int             `json:"total_entries"`
	TotalHours   int             `json:"total_hours"`
	ByUser       []UserGroup     `json:"by_user"`
	ByWorkType   []WorkTypeTally `json:"by_work_type"`
	ByStatus     []StatusGroup   `json:"by_status"`
}

type KPIStat struct {
	Average float64 `json:"average"`
	Total   float64 `json:"total"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Count   int     `json:"count"`
}

type TrendPoint struct {
	Date    string `json:"date"`
	Entries int    `json:"entries"`
	Hours   int    `json:"hours"`
}

// groups keeps values keyed by id in first-seen order.
type groups[V any] struct {
	index map[int64]int
	items []V
}

func newGroups[V any]() *groups[V] {
	return &groups[V]{index: make(map[int64]int), items: []V{}}
}

// at returns the group for id, creating it with init on first sight.
func (g *groups[V]) at(id int64, init func() V) *V {
	i, ok := g.index[id]
	if !ok {
		i = len(g.items)
		g.index[id] = i
		g.items = append(g.items, init())
	}
	return &g.items[i]
}

// Summarize totals entries and breaks them down by department, work type and status.
func Summarize(entries []*workentry.WorkEntry) Summary {
	var (
		out        Summary
		byDept     = newGroups[DepartmentGroup]()
		byWorkType = newGroups[WorkTypeGroup]()
		byStatus   = newGroups[StatusGroup]()
	)

	for _, e := range entries {
		out.TotalEntries++
		out.TotalHours += e.HoursSpent

		d := byDept.at(e.DepartmentID, func() DepartmentGroup {
			return DepartmentGroup{Department: departmentRef(e)}
		})
		d.Count++
		d.Hours += e.HoursSpent

		w := byWorkType.at(e.WorkTypeID, func() WorkTypeGroup {
			return WorkTypeGroup{WorkType: workTypeRef(e)}
		})
		w.Count++
		w.Hours += e.HoursSpent

		s := byStatus.at(e.StatusID, func() StatusGroup {
			return StatusGroup{Status: statusRef(e)}
		})
		s.Count++
	}

	out.ByDepartment = byDept.items
	out.ByWorkType = byWorkType.items
	out.ByStatus = byStatus.items
	return out
}

// MonthlySummary is Summarize with the department breakdown replaced by a per-user one.
func MonthlySummary(entries []*workentry.WorkEntry) Monthly {
	var (
		out        Monthly
		byUser     = newGroups[UserGroup]()
		byWorkType = newGroups[WorkTypeTally]()
		byStatus   = newGroups[StatusGroup]()
	)

	for _, e := range entries {
		out.TotalEntries++
		out.TotalHours += e.HoursSpent

		u := byUser.at(e.UserID, func() UserGroup {
			return UserGroup{User: userRef(e)}
		})
		u.Entries++
		u.Hours += e.HoursSpent

		w := byWorkType.at(e.WorkTypeID, func() WorkTypeTally {
			return WorkTypeTally{WorkType: workTypeRef(e)}
		})
		w.Entries++
		w.Hours += e.HoursSpent

		s := byStatus.at(e.StatusID, func() StatusGroup {
			return StatusGroup{Status: statusRef(e)}
		})
		s.Count++
	}

	out.ByUser = byUser.items
	out.ByWorkType = byWorkType.items
	out.ByStatus = byStatus.items
	return out
}

// AggregateKPI computes per-metric statistics over the union of observed metric names.
// A metric only counts the entries that carry it.
func AggregateKPI(entries []*workentry.WorkEntry) map[string]KPIStat {
	out := make(map[string]KPIStat)
	for _, e := range entries {
		for name, v := range e.KPIMetrics {
			st, seen := out[name]
			if !seen {
				st = KPIStat{Min: v, Max: v}
			}
			st.Total += v
			st.Count++
			st.Min = math.Min(st.Min, v)
			st.Max = math.Max(st.Max, v)
			out[name] = st
		}
	}
	for name, st := range out {
		st.Average = round2(st.Total / float64(st.Count))
		out[name] = st
	}
	return out
}

// DailyTrend returns one row per calendar day in [end-(days-1), end], zero-filled.
func DailyTrend(entries []*workentry.WorkEntry, end time.Time, days int) []TrendPoint {
	if days < 1 {
		return []TrendPoint{}
	}
	end = dates.Day(end)
	start := end.AddDate(0, 0, -(days - 1))

	points := make([]TrendPoint, days)
	index := make(map[string]int, days)
	for i := range points {
		key := dates.Format(start.AddDate(0, 0, i))
		points[i].Date = key
		index[key] = i
	}

	for _, e := range entries {
		i, ok := index[e.WorkDate.String()]
		if !ok {
			continue
		}
		points[i].Entries++
		points[i].Hours += e.HoursSpent
	}
	return points
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func departmentRef(e *workentry.WorkEntry) *workentry.DepartmentRef {
	if e.Department != nil {
		return e.Department
	}
	return &workentry.DepartmentRef{ID: e.DepartmentID}
}

func workTypeRef(e *workentry.WorkEntry) *workentry.WorkTypeRef {
	if e.WorkType != nil {
		return e.WorkType
	}
	return &workentry.WorkTypeRef{ID: e.WorkTypeID}
}

func statusRef(e *workentry.WorkEntry) *workentry.StatusRef {
	if e.Status != nil {
		return e.Status
	}
	return &workentry.StatusRef{ID: e.StatusID}
}

func userRef(e *workentry.WorkEntry) *workentry.UserRef {
	if e.User != nil {
		return e.User
	}
	return &workentry.UserRef{ID: e.UserID}
}
