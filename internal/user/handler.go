package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/core/common/pagination"
	"github.com/frahmantamala/worklog/internal/storage"
	"github.com/frahmantamala/worklog/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, actor *auth.Actor, filter ListFilter) (*pagination.Page[*User], error)
	Get(ctx context.Context, actor *auth.Actor, id int64) (*User, error)
	Me(ctx context.Context, actor *auth.Actor) (*User, error)
	Create(ctx context.Context, actor *auth.Actor, dto CreateUserDTO) (*User, error)
	Update(ctx context.Context, actor *auth.Actor, id int64, dto UpdateUserDTO) (*User, error)
	UpdateProfile(ctx context.Context, actor *auth.Actor, dto UpdateProfileDTO) (*User, error)
	UploadAvatar(ctx context.Context, actor *auth.Actor, upload storage.Upload) (*User, error)
	Delete(ctx context.Context, actor *auth.Actor, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// List handles GET /users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}

	departmentID, err := h.QueryInt64(r, "department_id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := ListFilter{
		Search:       q.Get("search"),
		Role:         q.Get("role"),
		DepartmentID: departmentID,
		IsActive:     h.QueryBool(r, "is_active"),
		Page:         h.QueryInt(r, "page", 1),
		PerPage:      h.QueryInt(r, "per_page", pagination.DefaultPerPage),
	}

	page, err := h.Service.List(r.Context(), actor, filter)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}

	u, err := h.Service.Me(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}

	var dto CreateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto UpdateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// UpdateProfile handles PUT /profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}

	var dto UpdateProfileDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.UpdateProfile(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// UploadAvatar handles POST /profile/avatar with multipart field "avatar".
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}

	upload, done, err := h.FormFile(w, r, "avatar")
	defer done()
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.UploadAvatar(r.Context(), actor, upload)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
