package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/attendance-engine/internal"
	"github.com/frahmantamala/attendance-engine/internal/attendance"
	"github.com/frahmantamala/attendance-engine/internal/auth"
	"github.com/frahmantamala/attendance-engine/internal/performance"
	"github.com/frahmantamala/attendance-engine/internal/transport/rest"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const (
	openAPIDocument = "../../../api/openapi.yml"
	testSecret      = "0123456789abcdef0123456789abcdef"
)

type stubLeaderboard struct {
	performance.ServiceAPI
	calls int
}

func (s *stubLeaderboard) Leaderboard(_ context.Context, _ performance.LeaderboardQuery) (*performance.Leaderboard, error) {
	s.calls++
	return &performance.Leaderboard{
		TopPerformers:    []*performance.EmployeePerformance{},
		BottomPerformers: []*performance.EmployeePerformance{},
	}, nil
}

var _ = Describe("Router", func() {
	var (
		router   *chi.Mux
		verifier *auth.TokenVerifier
		board    *stubLeaderboard
	)

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		verifier = auth.NewTokenVerifier(testSecret)
		board = &stubLeaderboard{}

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{
			Health:      rest.NewHealthHandler(nil),
			Attendance:  attendance.NewHandler(nil),
			Performance: performance.NewHandler(board),
		}, verifier, internal.SecurityConfig{AdminRole: "ADMIN"}, "*", lg)
	})

	It("should document every mounted API route", func() {
		// Given
		doc, err := rest.LoadOpenAPI(context.Background(), openAPIDocument)
		Expect(err).NotTo(HaveOccurred())

		// When
		missing, err := rest.UndocumentedRoutes(doc, router)

		// Then
		Expect(err).NotTo(HaveOccurred())
		Expect(missing).To(BeEmpty())
	})

	It("should answer ping without a token", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("OK"))
	})

	It("should keep dashboard routes behind an admin token", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/today", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should reject tokens without the admin role", func() {
		// Given
		token, err := verifier.Issue("u-7", "VIEWER", time.Hour)
		Expect(err).NotTo(HaveOccurred())

		// When
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		// Then
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(board.calls).To(Equal(0))
	})

	It("should serve the leaderboard to admins", func() {
		// Given
		token, err := verifier.Issue("u-1", "ADMIN", time.Hour)
		Expect(err).NotTo(HaveOccurred())

		// When
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard?period=WEEKLY", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		// Then
		Expect(rec.Code).To(Equal(http.StatusOK))
		var body map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body).To(HaveKey("top_performers"))
		Expect(board.calls).To(Equal(1))
	})
})
