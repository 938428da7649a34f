package attendance_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/attendance-engine/internal"
	"github.com/frahmantamala/attendance-engine/internal/attendance"
	"github.com/frahmantamala/attendance-engine/internal/identity"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type MockService struct {
	clockInErr  error
	lastClockIn attendance.ClockInDTO
	lastReport  attendance.ReportQuery
}

func (m *MockService) Verify(_ context.Context, req identity.CredentialRequest) (*identity.VerifiedEmployee, error) {
	if _, err := req.Credential(); err != nil {
		return nil, err
	}
	return &identity.VerifiedEmployee{ID: "e1", EmployeeID: "EMP001", FullName: "Ayu Lestari"}, nil
}

func (m *MockService) ClockIn(_ context.Context, dto attendance.ClockInDTO) (*attendance.Record, error) {
	m.lastClockIn = dto
	if m.clockInErr != nil {
		return nil, m.clockInErr
	}
	return &attendance.Record{ID: "a1", EmployeeID: "e1", ClockInMethod: identity.MethodRFID, Status: attendance.StatusOnTime}, nil
}

func (m *MockService) ClockOut(_ context.Context, _ attendance.ClockOutDTO) (*attendance.Record, error) {
	return nil, internal.NewBusinessRuleError("No active clock-in record found for today. Please clock in first before clocking out.", internal.ErrCodeNoOpenClockIn)
}

func (m *MockService) GetTodayAttendance(_ context.Context) ([]*attendance.Record, error) {
	return []*attendance.Record{{ID: "a1"}}, nil
}

func (m *MockService) GetCurrentlyPresent(_ context.Context) ([]*attendance.Record, error) {
	return []*attendance.Record{}, nil
}

func (m *MockService) GetAttendanceByID(_ context.Context, id string) (*attendance.Record, error) {
	if id == "a1" {
		return &attendance.Record{ID: "a1"}, nil
	}
	return nil, internal.NewNotFoundError("Attendance record not found", internal.ErrCodeAttendanceNotFound)
}

func (m *MockService) GetEmployeeAttendance(_ context.Context, _ string, _ attendance.RangeQuery) ([]*attendance.Record, error) {
	return []*attendance.Record{}, nil
}

func (m *MockService) GetAttendanceReport(_ context.Context, q attendance.ReportQuery) (*attendance.Report, error) {
	m.lastReport = q
	return &attendance.Report{Attendances: []*attendance.Record{}}, nil
}

var _ = Describe("Attendance Handler", func() {
	var (
		svc    *MockService
		router chi.Router
	)

	BeforeEach(func() {
		svc = &MockService{}
		handler := attendance.NewHandler(svc)
		router = chi.NewRouter()
		router.Route("/attendance", func(r chi.Router) {
			handler.KioskRoutes(r)
			handler.AdminRoutes(r)
		})
	})

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("should clock in and return 201", func() {
		// Given
		body := map[string]interface{}{"method": "RFID", "rfid_card_id": "CARD-1", "location": "Gate 2"}

		// When
		rec := do(http.MethodPost, "/attendance/clock-in", body)

		// Then
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(svc.lastClockIn.RFIDCardID).To(Equal("CARD-1"))
		Expect(*svc.lastClockIn.Location).To(Equal("Gate 2"))

		var record attendance.Record
		Expect(json.Unmarshal(rec.Body.Bytes(), &record)).To(Succeed())
		Expect(record.Status).To(Equal(attendance.StatusOnTime))
	})

	It("should map business rule violations to 409 with the code", func() {
		svc.clockInErr = internal.NewBusinessRuleError("already", internal.ErrCodeAlreadyClockedInToday)

		rec := do(http.MethodPost, "/attendance/clock-in", map[string]string{"method": "RFID", "rfid_card_id": "CARD-1"})

		Expect(rec.Code).To(Equal(http.StatusConflict))
		var resp struct {
			Error struct {
				Type string `json:"type"`
				Code string `json:"code"`
			} `json:"error"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Error.Code).To(Equal(string(internal.ErrCodeAlreadyClockedInToday)))
		Expect(resp.Error.Type).To(Equal(string(internal.ErrorTypeBusinessRule)))
	})

	It("should reject malformed bodies", func() {
		req := httptest.NewRequest(http.MethodPost, "/attendance/clock-out", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should verify without recording", func() {
		rec := do(http.MethodPost, "/attendance/verify", map[string]string{"method": "PIN", "employee_id": "EMP001", "pin_code": "1234"})

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"verified":true`))
		Expect(rec.Body.String()).NotTo(ContainSubstring("pin"))
	})

	It("should return 400 for missing credential fields", func() {
		rec := do(http.MethodPost, "/attendance/verify", map[string]string{"method": "PIN"})

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should return 404 for unknown records", func() {
		rec := do(http.MethodGet, "/attendance/missing", nil)

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should route the present list ahead of the id route", func() {
		rec := do(http.MethodGet, "/attendance/present", nil)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"attendances":[]`))
	})

	It("should pass report filters through", func() {
		rec := do(http.MethodGet, "/attendance/report?startDate=2024-03-01&endDate=2024-03-31&department=Warehouse", nil)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(svc.lastReport.Department).To(Equal("Warehouse"))
		Expect(svc.lastReport.StartDate).To(Equal("2024-03-01"))
	})
})
