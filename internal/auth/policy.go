package auth

import "github.com/frahmantamala/worklog/internal"

type Action string

const (
	ActionView    Action = "view"
	ActionViewAny Action = "view_any"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
)

type Kind string

const (
	KindDepartment Kind = "department"
	KindWorkType   Kind = "work_type"
	KindStatus     Kind = "status"
	KindUser       Kind = "user"
	KindWorkEntry  Kind = "work_entry"
)

// Target describes the record an action applies to. For users ID is the user id; for work
// entries UserID is the owner. DepartmentID is 0 when the record has none.
type Target struct {
	Kind         Kind
	ID           int64
	UserID       int64
	DepartmentID int64
}

func ForKind(kind Kind) Target {
	return Target{Kind: kind}
}

func ForUser(id int64, departmentID *int64) Target {
	t := Target{Kind: KindUser, ID: id}
	if departmentID != nil {
		t.DepartmentID = *departmentID
	}
	return t
}

func ForWorkEntry(id, ownerID, departmentID int64) Target {
	return Target{Kind: KindWorkEntry, ID: id, UserID: ownerID, DepartmentID: departmentID}
}

// Policy decides who may do what. It holds no state and never touches the store.
type Policy struct{}

func NewPolicy() *Policy {
	return &Policy{}
}

func (p *Policy) Authorize(actor *Actor, action Action, target Target) bool {
	if actor == nil || !actor.Role.Valid() {
		return false
	}

	switch target.Kind {
	case KindDepartment, KindWorkType, KindStatus:
		return p.lookup(actor, action)
	case KindUser:
		return p.user(actor, action, target)
	case KindWorkEntry:
		return p.workEntry(actor, action, target)
	}
	return false
}

// Check is Authorize turned into the FORBIDDEN error callers return.
func (p *Policy) Check(actor *Actor, action Action, target Target) error {
	if p.Authorize(actor, action, target) {
		return nil
	}
	return internal.ErrForbidden
}

func (p *Policy) lookup(actor *Actor, action Action) bool {
	switch action {
	case ActionView, ActionViewAny:
		return true
	case ActionCreate, ActionUpdate, ActionDelete:
		return adminOnly(actor.Role)
	}
	return false
}

func (p *Policy) user(actor *Actor, action Action, target Target) bool {
	self := target.ID != 0 && target.ID == actor.ID

	switch action {
	case ActionView:
		if self {
			return true
		}
		switch actor.Role {
		case RoleAdmin, RoleCTO:
			return true
		case RoleDepartmentOwner:
			return actor.InDepartment(target.DepartmentID)
		}
	case ActionViewAny:
		return actor.Role.CanViewAllDepartments()
	case ActionCreate:
		return adminOnly(actor.Role)
	case ActionUpdate:
		return self || adminOnly(actor.Role)
	case ActionDelete:
		if self {
			return false
		}
		return adminOnly(actor.Role)
	}
	return false
}

func (p *Policy) workEntry(actor *Actor, action Action, target Target) bool {
	switch action {
	case ActionView:
		return actor.CanViewAllDepartments() || actor.InDepartment(target.DepartmentID)
	case ActionViewAny, ActionCreate:
		return true
	case ActionUpdate, ActionDelete:
		switch actor.Role {
		case RoleAdmin:
			return true
		case RoleCTO, RoleDepartmentOwner:
			return target.UserID != 0 && target.UserID == actor.ID
		}
	}
	return false
}

func adminOnly(role Role) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleCTO, RoleDepartmentOwner:
		return false
	}
	return false
}
