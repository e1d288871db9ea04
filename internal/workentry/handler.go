package workentry

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/core/common/dates"
	"github.com/frahmantamala/worklog/internal/core/common/pagination"
	"github.com/frahmantamala/worklog/internal/transport"
)

const multipartMemory = 32 << 20

type ServiceAPI interface {
	List(ctx context.Context, actor *auth.Actor, filter Filter) (*pagination.Page[*WorkEntry], error)
	Get(ctx context.Context, actor *auth.Actor, id int64) (*WorkEntry, error)
	Create(ctx context.Context, actor *auth.Actor, dto CreateWorkEntryDTO) (*WorkEntry, error)
	Update(ctx context.Context, actor *auth.Actor, id int64, dto UpdateWorkEntryDTO) (*WorkEntry, error)
	Delete(ctx context.Context, actor *auth.Actor, id int64) error
	UploadAttachments(ctx context.Context, actor *auth.Actor, id int64, uploads []Upload) ([]*Attachment, error)
	DeleteAttachment(ctx context.Context, actor *auth.Actor, entryID, attachmentID int64) error
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

type AttachmentsResponse struct {
	Attachments []*Attachment `json:"data"`
}

// List handles GET /work-entries
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}

	filter, err := FilterFromRequest(h.BaseHandler, r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
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

	entry, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}

	var dto CreateWorkEntryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	entry, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, entry)
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

	var dto UpdateWorkEntryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	entry, err := h.Service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entry)
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

// UploadAttachments handles POST /work-entries/{id}/attachments with multipart field "files".
func (h *Handler) UploadAttachments(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.HandleServiceError(w, r, internal.ErrInvalidInput.WithCause(err))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := append(r.MultipartForm.File["files"], r.MultipartForm.File["files[]"]...)
	uploads := make([]Upload, 0, len(headers))
	closers := make([]io.Closer, 0, len(headers))
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.HandleServiceError(w, r, internal.ErrInvalidInput.WithCause(err))
			return
		}
		closers = append(closers, f)
		uploads = append(uploads, uploadFrom(fh, f))
	}

	atts, err := h.Service.UploadAttachments(r.Context(), actor, id, uploads)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, AttachmentsResponse{Attachments: atts})
}

func (h *Handler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	attachmentID, err := h.IDParam(r, "attachmentId")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.DeleteAttachment(r.Context(), actor, id, attachmentID); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func uploadFrom(fh *multipart.FileHeader, f multipart.File) Upload {
	return Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Reader:      f,
	}
}

// FilterFromRequest reads the shared work entry query parameters.
func FilterFromRequest(h *transport.BaseHandler, r *http.Request) (Filter, error) {
	var (
		f    Filter
		err  error
		errs internal.ValidationErrors
	)
	q := r.URL.Query()

	f.DateFrom = queryDate(q.Get("date_from"), "date_from", &errs)
	f.DateTo = queryDate(q.Get("date_to"), "date_to", &errs)

	ids := []struct {
		name string
		dst  **int64
	}{
		{"department_id", &f.DepartmentID},
		{"work_type_id", &f.WorkTypeID},
		{"status_id", &f.StatusID},
		{"user_id", &f.UserID},
	}
	for _, id := range ids {
		if *id.dst, err = h.QueryInt64(r, id.name); err != nil {
			errs.Add(id.name, id.name+" must be a positive integer", internal.ErrCodeInvalidFormat)
		}
	}

	if errs.HasErrors() {
		return Filter{}, internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).WithDetails(errs)
	}

	f.Search = strings.TrimSpace(q.Get("search"))
	f.Page = h.QueryInt(r, "page", 1)
	f.PerPage = h.QueryInt(r, "per_page", pagination.DefaultPerPage)
	return f, nil
}

func queryDate(raw, field string, errs *internal.ValidationErrors) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := dates.Parse(raw)
	if err != nil {
		errs.Add(field, field+" must be a date in YYYY-MM-DD format", internal.ErrCodeInvalidDate)
		return nil
	}
	return &t
}
