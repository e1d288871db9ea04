package workentry

import (
	"time"

	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/core/common/dates"
	"github.com/frahmantamala/worklog/internal/core/common/pagination"
)

// Filter is what a caller asks for. Every field is optional.
type Filter struct {
	DateFrom     *time.Time
	DateTo       *time.Time
	DepartmentID *int64
	WorkTypeID   *int64
	StatusID     *int64
	UserID       *int64
	Search       string
	Page         int
	PerPage      int
}

type Order int

const (
	// OrderNewest is work_date DESC, created_at DESC, id DESC.
	OrderNewest Order = iota
	// OrderChronological is work_date ASC, created_at ASC, id ASC.
	OrderChronological
)

// Criteria is a Filter after the actor's visibility has been applied. Repositories translate it
// into predicates without further authorization.
type Criteria struct {
	DateFrom     *time.Time
	DateTo       *time.Time
	DepartmentID *int64
	WorkTypeID   *int64
	StatusID     *int64
	UserID       *int64
	Search       string
	StatusFinal  *bool
	Order        Order
	Limit        int
	Page         int
	PerPage      int
}

// Scope narrows filter to what actor may see. Actors limited to their own department have the
// department forced, whatever they asked for; one without a department matches nothing.
func Scope(actor *auth.Actor, filter Filter) Criteria {
	c := Criteria{
		DateFrom:     dayPtr(filter.DateFrom),
		DateTo:       dayPtr(filter.DateTo),
		DepartmentID: filter.DepartmentID,
		WorkTypeID:   filter.WorkTypeID,
		StatusID:     filter.StatusID,
		UserID:       filter.UserID,
		Search:       filter.Search,
		Order:        OrderNewest,
	}
	c.Page, c.PerPage = pagination.Normalize(filter.Page, filter.PerPage)

	if !actor.CanViewAllDepartments() {
		dept := actor.Department()
		c.DepartmentID = &dept
	}
	return c
}

// OwnedBy restricts c to entries logged by userID.
func (c Criteria) OwnedBy(userID int64) Criteria {
	c.UserID = &userID
	return c
}

func (c Criteria) Between(from, to time.Time) Criteria {
	c.DateFrom = dayPtr(&from)
	c.DateTo = dayPtr(&to)
	return c
}

func (c Criteria) WithFinal(final bool) Criteria {
	c.StatusFinal = &final
	return c
}

func (c Criteria) Chronological() Criteria {
	c.Order = OrderChronological
	return c
}

func (c Criteria) WithLimit(n int) Criteria {
	c.Limit = n
	return c
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := dates.Day(*t)
	return &d
}
