package rest_test

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worklog/internal/transport/rest"
)

var _ = Describe("HealthHandler", func() {
	var (
		db   *sql.DB
		mock sqlmock.Sqlmock
	)

	BeforeEach(func() {
		var err error
		db, mock, err = sqlmock.New(sqlmock.MonitorPingsOption(true))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)
	})

	AfterEach(func() {
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	health := func() (*httptest.ResponseRecorder, rest.HealthResponse) {
		rec := httptest.NewRecorder()
		rest.NewHealthHandler(db, "postgres").Health(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
		var resp rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		return rec, resp
	}

	It("is healthy when the database answers", func() {
		mock.ExpectPing()

		rec, resp := health()
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(resp.Status).To(Equal(rest.HealthHealthy))
		Expect(resp.Components).To(HaveKey("postgres"))
	})

	It("answers 503 when the ping fails", func() {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		rec, resp := health()
		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(resp.Status).To(Equal(rest.HealthUnhealthy))
		Expect(resp.Components["postgres"].Message).To(Equal("connection refused"))
	})

	It("answers the liveness check without touching the database", func() {
		rec := httptest.NewRecorder()
		rest.NewHealthHandler(db, "").Ping(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"status":"OK"`))
	})
})
