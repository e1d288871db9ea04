package report

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/workentry"
	"github.com/frahmantamala/worklog/internal/transport"
)

type ServiceAPI interface {
	Stats(ctx context.Context, actor *auth.Actor) (Stats, error)
	RecentActivities(ctx context.Context, actor *auth.Actor) ([]*workentry.WorkEntry, error)
	Charts(ctx context.Context, actor *auth.Actor, days int) (*Charts, error)
	MonthlyReport(ctx context.Context, actor *auth.Actor, month string, departmentID *int64) (*MonthlyReport, error)
	KPIReport(ctx context.Context, actor *auth.Actor, from, to string, departmentID *int64) (*KPIReport, error)
	Summary(ctx context.Context, actor *auth.Actor, from, to string, filter workentry.Filter) (*Summary, error)
	Export(ctx context.Context, actor *auth.Actor, format, from, to string, filter workentry.Filter) (*Export, error)
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

// Stats handles GET /dashboard/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}

	stats, err := h.Service.Stats(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, stats)
}

// Activities handles GET /dashboard/activities
func (h *Handler) Activities(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}

	entries, err := h.Service.RecentActivities(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entries)
}

// Charts handles GET /dashboard/charts?days=
func (h *Handler) Charts(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}

	charts, err := h.Service.Charts(r.Context(), actor, h.QueryInt(r, "days", DefaultChartDays))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, charts)
}

// Monthly handles GET /reports/monthly?month=&department_id=
func (h *Handler) Monthly(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}
	departmentID, err := h.QueryInt64(r, "department_id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	report, err := h.Service.MonthlyReport(r.Context(), actor, r.URL.Query().Get("month"), departmentID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

// KPI handles GET /reports/kpi?date_from=&date_to=&department_id=
func (h *Handler) KPI(w http.ResponseWriter, r *http.Request) {
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
	report, err := h.Service.KPIReport(r.Context(), actor, q.Get("date_from"), q.Get("date_to"), departmentID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

// Summary handles GET /work-entries/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}
	filter, err := rangeFilter(h.BaseHandler, r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	q := r.URL.Query()
	sum, err := h.Service.Summary(r.Context(), actor, q.Get("date_from"), q.Get("date_to"), filter)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, sum)
}

// Export handles GET /reports/export?format=xlsx|pdf
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(h.BaseHandler, w, r)
	if !ok {
		return
	}
	filter, err := rangeFilter(h.BaseHandler, r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	q := r.URL.Query()
	export, err := h.Service.Export(r.Context(), actor, q.Get("format"), q.Get("date_from"), q.Get("date_to"), filter)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Body); err != nil {
		h.Logger.Error("failed to write export", "error", err)
	}
}

// rangeFilter reads the shared filters; the date range itself is validated by the service.
func rangeFilter(h *transport.BaseHandler, r *http.Request) (workentry.Filter, error) {
	filter, err := workentry.FilterFromRequest(h, r)
	if err != nil {
		return workentry.Filter{}, err
	}
	filter.DateFrom, filter.DateTo = nil, nil
	return filter, nil
}
