package leave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/frahmantamala/attendance-engine/internal"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const breakerName = "leave-service"

type onLeaveResponse struct {
	OnLeave bool `json:"on_leave"`
}

// HTTPClient asks an external leave service whether an employee is on
// approved leave. Calls go through a circuit breaker so a failing leave
// service cannot stall every kiosk.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	cb      *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	st := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
		cb:      gobreaker.NewCircuitBreaker(st),
		logger:  logger,
	}
}

func (c *HTTPClient) IsEmployeeOnLeave(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.fetch(ctx, employeeID, date)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warn("leave service circuit open, rejecting request", "employee_id", employeeID)
		} else {
			c.logger.Error("leave service call failed", "error", err, "employee_id", employeeID)
		}
		return false, internal.NewExternalError("Leave service is unavailable. Please try again later.", internal.ErrCodeLeaveServiceUnavailable, err)
	}
	return result.(bool), nil
}

func (c *HTTPClient) fetch(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	endpoint := fmt.Sprintf("%s/employees/%s/on-leave?date=%s",
		c.baseURL, url.PathEscape(employeeID), date.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create leave service request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to call leave service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return false, fmt.Errorf("leave service returned non-successful status code: %d", resp.StatusCode)
	}

	var body onLeaveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("failed to decode leave service response: %w", err)
	}
	return body.OnLeave, nil
}
