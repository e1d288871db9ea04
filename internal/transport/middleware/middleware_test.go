package middleware_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/transport/middleware"
	"github.com/frahmantamala/worklog/pkg/logger"
)

var noContent = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func errorCode(rec *httptest.ResponseRecorder) string {
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	return body.Error.Code
}

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = addr
	return req
}

var _ = Describe("IPRateLimiter", func() {
	It("answers 429 once the burst is spent", func() {
		limiter := middleware.NewIPRateLimiter(0.001, 2)
		handler := limiter.Middleware(noContent)

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, requestFrom("10.0.0.1:5000"))
			Expect(rec.Code).To(Equal(http.StatusNoContent))
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestFrom("10.0.0.1:5001"))
		Expect(rec.Code).To(Equal(http.StatusTooManyRequests))
		Expect(rec.Header().Get("Retry-After")).To(Equal("1"))
		Expect(errorCode(rec)).To(Equal("RATE_LIMITED"))
	})

	It("keeps a bucket per client IP", func() {
		limiter := middleware.NewIPRateLimiter(0.001, 1)
		Expect(limiter.Allow("10.0.0.1")).To(BeTrue())
		Expect(limiter.Allow("10.0.0.1")).To(BeFalse())
		Expect(limiter.Allow("10.0.0.2")).To(BeTrue())
	})
})

var _ = Describe("RequireRole", func() {
	deptID := int64(1)
	gate := middleware.RequireRole(auth.RoleAdmin, auth.RoleCTO)(noContent)

	serveAs := func(actor *auth.Actor) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
		if actor != nil {
			req = req.WithContext(auth.ContextWithActor(req.Context(), actor))
		}
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)
		return rec
	}

	It("lets listed roles through", func() {
		Expect(serveAs(&auth.Actor{ID: 1, Role: auth.RoleAdmin}).Code).To(Equal(http.StatusNoContent))
		Expect(serveAs(&auth.Actor{ID: 2, Role: auth.RoleCTO}).Code).To(Equal(http.StatusNoContent))
	})

	It("forbids other roles", func() {
		rec := serveAs(&auth.Actor{ID: 3, Role: auth.RoleDepartmentOwner, DepartmentID: &deptID})
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(errorCode(rec)).To(Equal("FORBIDDEN"))
	})

	It("requires an authenticated actor", func() {
		rec := serveAs(nil)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(errorCode(rec)).To(Equal("UNAUTHENTICATED"))
	})
})

var _ = Describe("RequestID", func() {
	var seen string
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.TraceID(r.Context())
	}))

	BeforeEach(func() { seen = "" })

	It("reuses the caller's trace id", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.TraceHeader, "trace-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		Expect(seen).To(Equal("trace-123"))
		Expect(rec.Header().Get(middleware.TraceHeader)).To(Equal("trace-123"))
	})

	It("falls back to X-Request-ID", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-9")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		Expect(seen).To(Equal("req-9"))
	})

	It("generates one when absent", func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(seen).To(HaveLen(36))
		Expect(rec.Header().Get(middleware.TraceHeader)).To(Equal(seen))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	lg := slog.New(slog.NewTextHandler(io.Discard, nil))

	It("turns a panic into a 500 error body", func() {
		handler := middleware.RecoveryMiddleware(lg)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))
		Expect(rec.Body.String()).NotTo(ContainSubstring("boom"))
	})

	It("lets an aborted handler keep unwinding", func() {
		handler := middleware.RecoveryMiddleware(lg)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic(http.ErrAbortHandler)
		}))
		Expect(func() {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		}).To(PanicWith(http.ErrAbortHandler))
	})
})

var _ = Describe("CORS", func() {
	It("answers a preflight for a configured origin", func() {
		handler := middleware.CORS([]string{"http://localhost:3000"})(noContent)
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/work-entries", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:3000"))
		Expect(rec.Header().Get("Access-Control-Allow-Methods")).To(ContainSubstring(http.MethodPost))
	})

	It("does not echo an unknown origin", func() {
		handler := middleware.CORS([]string{"http://localhost:3000"})(noContent)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/work-entries", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("filters credentials out of logged bodies and headers", func() {
		var out bytes.Buffer
		lg := slog.New(slog.NewJSONHandler(&out, nil))
		handler := middleware.LoggingMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			Expect(string(body)).To(ContainSubstring("hunter2"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"abc.def.ghi","user":{"name":"Ann"}}`))
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(`{"email":"ann@example.com","password":"hunter2"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer secret-token")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		logged := out.String()
		Expect(logged).To(ContainSubstring("ann@example.com"))
		Expect(logged).To(ContainSubstring("Ann"))
		Expect(logged).NotTo(ContainSubstring("hunter2"))
		Expect(logged).NotTo(ContainSubstring("abc.def.ghi"))
		Expect(logged).NotTo(ContainSubstring("secret-token"))
		Expect(logged).To(ContainSubstring(`"status_code":200`))
	})
})
