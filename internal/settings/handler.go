package settings

import (
	"context"
	"net/http"

	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/storage"
	"github.com/frahmantamala/worklog/internal/transport"
)

type ServiceAPI interface {
	Public(ctx context.Context) map[string]string
	All(ctx context.Context, actor *auth.Actor) (map[string]string, error)
	Update(ctx context.Context, actor *auth.Actor, dto UpdateSettingsDTO) (map[string]string, error)
	UploadLogo(ctx context.Context, actor *auth.Actor, upload storage.Upload) (map[string]string, error)
	RemoveLogo(ctx context.Context, actor *auth.Actor) error
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

// Public handles GET /settings/public
func (h *Handler) Public(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.Public(r.Context()))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}

	values, err := h.Service.All(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, values)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}

	var dto UpdateSettingsDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	values, err := h.Service.Update(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, values)
}

// UploadLogo handles POST /settings/logo with multipart field "site_logo".
func (h *Handler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}

	upload, done, err := h.FormFile(w, r, KeySiteLogo)
	defer done()
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	values, err := h.Service.UploadLogo(r.Context(), actor, upload)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, values)
}

func (h *Handler) RemoveLogo(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}

	if err := h.Service.RemoveLogo(r.Context(), actor); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
