package leave_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"time"

	"github.com/frahmantamala/attendance-engine/internal"
	"github.com/frahmantamala/attendance-engine/internal/leave"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HTTPClient", func() {
	var (
		server *httptest.Server
		client *leave.HTTPClient
		hits   atomic.Int32
		status atomic.Int32
		ctx    context.Context
		lastQ  atomic.Value
	)

	date := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

	BeforeEach(func() {
		ctx = context.Background()
		hits.Store(0)
		status.Store(http.StatusOK)

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			lastQ.Store(r.URL.Path + "?" + r.URL.RawQuery)
			if code := int(status.Load()); code != http.StatusOK {
				w.WriteHeader(code)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if r.URL.Path == "/employees/e1/on-leave" {
				_, _ = w.Write([]byte(`{"on_leave":true}`))
				return
			}
			_, _ = w.Write([]byte(`{"on_leave":false}`))
		}))

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		client = leave.NewHTTPClient(server.URL, time.Second, logger)
	})

	AfterEach(func() {
		server.Close()
	})

	It("should report approved leave from the leave service", func() {
		onLeave, err := client.IsEmployeeOnLeave(ctx, "e1", date)

		Expect(err).NotTo(HaveOccurred())
		Expect(onLeave).To(BeTrue())
		Expect(lastQ.Load()).To(Equal("/employees/e1/on-leave?date=2024-03-04"))
	})

	It("should report no leave", func() {
		onLeave, err := client.IsEmployeeOnLeave(ctx, "e2", date)

		Expect(err).NotTo(HaveOccurred())
		Expect(onLeave).To(BeFalse())
	})

	It("should map failures to an external error", func() {
		status.Store(http.StatusInternalServerError)

		_, err := client.IsEmployeeOnLeave(ctx, "e1", date)

		Expect(internal.HasCode(err, internal.ErrCodeLeaveServiceUnavailable)).To(BeTrue())
		appErr, _ := internal.IsAppError(err)
		Expect(appErr.StatusCode).To(Equal(http.StatusBadGateway))
	})

	It("should stop calling the leave service once the breaker trips", func() {
		status.Store(http.StatusServiceUnavailable)

		for i := 0; i < 10; i++ {
			_, err := client.IsEmployeeOnLeave(ctx, "e1", date)
			Expect(err).To(HaveOccurred())
		}
		Expect(hits.Load()).To(Equal(int32(10)))

		_, err := client.IsEmployeeOnLeave(ctx, "e1", date)

		Expect(internal.HasCode(err, internal.ErrCodeLeaveServiceUnavailable)).To(BeTrue())
		Expect(hits.Load()).To(Equal(int32(10)))
	})
})
