package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/transport"
)

type ctxKey string

const ContextActorKey ctxKey = "actor"

// Actor is the authenticated identity a request acts as.
type Actor struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	DepartmentID *int64 `json:"department_id,omitempty"`
}

func (a *Actor) CanViewAllDepartments() bool {
	return a != nil && a.Role.CanViewAllDepartments()
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// Department returns the actor's department id, or 0 when unassigned.
func (a *Actor) Department() int64 {
	if a == nil || a.DepartmentID == nil {
		return 0
	}
	return *a.DepartmentID
}

// InDepartment is false for actors without a department.
func (a *Actor) InDepartment(departmentID int64) bool {
	return a.Department() != 0 && a.Department() == departmentID
}

func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, ContextActorKey, actor)
}

func ActorFromContext(ctx context.Context) (*Actor, bool) {
	a, ok := ctx.Value(ContextActorKey).(*Actor)
	return a, ok && a != nil
}

// CurrentActor returns the request actor, answering 401 itself when there is none.
func CurrentActor(h *transport.BaseHandler, w http.ResponseWriter, r *http.Request) (*Actor, bool) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		h.Logger.Error("actor not found in context", "path", r.URL.Path)
		h.WriteAppError(w, internal.ErrUnauthenticated)
		return nil, false
	}
	return actor, true
}

// UserID is nil-safe, for logging.
func (a *Actor) UserID() int64 {
	if a == nil {
		return 0
	}
	return a.ID
}
