package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/storage"
	"github.com/frahmantamala/worklog/pkg/logger"
	"github.com/go-chi/chi"
)

const (
	maxJSONBody      = 1 << 20
	maxFormFileBytes = 8 << 20
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes a bare status/message error response
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errorResp := map[string]interface{}{
		"code":    status,
		"message": message,
	}

	if err := json.NewEncoder(w).Encode(errorResp); err != nil {
		h.Logger.Error("failed to encode error response", "error", err)
	}
}

// WriteAppError renders an AppError using its own status code.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	h.WriteJSON(w, status, body)
}

// HandleServiceError maps service errors onto responses. Anything that is not an AppError
// is logged with its cause and reported as a generic 500.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	lg := logger.From(r.Context())

	appErr, ok := internal.IsAppError(err)
	if !ok {
		lg.Error("unhandled service error", "error", err, "method", r.Method, "path", r.URL.Path)
		h.WriteAppError(w, internal.NewInternalError("Internal server error", err))
		return
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		lg.Error("service failure", "error", err, "code", appErr.Code, "method", r.Method, "path", r.URL.Path)
		// never leak internals for 5xx
		h.WriteAppError(w, &internal.AppError{
			Type:       appErr.Type,
			Code:       appErr.Code,
			Message:    "Internal server error",
			StatusCode: appErr.StatusCode,
		})
		return
	}

	lg.Debug("request rejected", "code", appErr.Code, "status", appErr.StatusCode, "path", r.URL.Path)
	h.WriteAppError(w, appErr)
}

// DecodeJSON decodes a bounded JSON body, rejecting unknown trailing data.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return internal.ErrInvalidInput
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return internal.ErrInvalidInput
		}
		return internal.ErrInvalidInput.WithCause(err)
	}
	return nil
}

// FormFile reads the single multipart file in field. done closes the file and drops any
// temporary copies, and is safe to call when err is set.
func (h *BaseHandler) FormFile(w http.ResponseWriter, r *http.Request, field string) (upload storage.Upload, done func(), err error) {
	done = func() {}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormFileBytes)

	f, fh, err := r.FormFile(field)
	if r.MultipartForm != nil {
		form := r.MultipartForm
		done = func() { _ = form.RemoveAll() }
	}
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return storage.Upload{}, done, internal.NewValidationFieldError(field, "The "+field+" field is required", internal.ErrCodeRequired)
		}
		return storage.Upload{}, done, internal.ErrInvalidInput.WithCause(err)
	}

	cleanup := done
	done = func() {
		_ = f.Close()
		cleanup()
	}
	return storage.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Reader:      f,
	}, done, nil
}

// IDParam parses a positive int64 chi URL parameter.
func (h *BaseHandler) IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationFieldError(name, "invalid "+name, internal.ErrCodeInvalidFormat)
	}
	return id, nil
}

// QueryInt64 reads an optional positive int64 query parameter.
func (h *BaseHandler) QueryInt64(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil, internal.NewValidationFieldError(name, name+" must be a positive integer", internal.ErrCodeInvalidFormat)
	}
	return &v, nil
}

// QueryInt reads an optional int query parameter, returning def when absent or malformed.
func (h *BaseHandler) QueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// QueryBool reads an optional boolean query parameter.
func (h *BaseHandler) QueryBool(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
