package performance

import (
	"strings"
	"time"

	"github.com/frahmantamala/attendance-engine/internal"
	"github.com/frahmantamala/attendance-engine/internal/attendance"
	"github.com/frahmantamala/attendance-engine/internal/core/common/validation"
)

type PeriodTag string

const (
	PeriodWeekly  PeriodTag = "WEEKLY"
	PeriodMonthly PeriodTag = "MONTHLY"
	PeriodYearly  PeriodTag = "YEARLY"
	PeriodCustom  PeriodTag = "CUSTOM"
)

var lookbackDays = map[PeriodTag]int{
	PeriodWeekly:  7,
	PeriodMonthly: 30,
	PeriodYearly:  365,
}

// LeaderboardQuery selects the scoring window and an optional department.
type LeaderboardQuery struct {
	Period     PeriodTag `json:"period"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Department string    `json:"department"`
}

func (q LeaderboardQuery) Validate() error {
	v := validation.NewValidator()
	v.Field("period", strings.ToUpper(string(q.Period))).
		OneOf(string(PeriodWeekly), string(PeriodMonthly), string(PeriodYearly), string(PeriodCustom)).
		WithMessage("period must be one of WEEKLY, MONTHLY, YEARLY, CUSTOM", internal.ErrCodeInvalidPeriod)
	if strings.EqualFold(string(q.Period), string(PeriodCustom)) {
		v.Field("startDate", q.StartDate).Required().
			WithMessage("startDate and endDate are required for a CUSTOM period", internal.ErrCodeInvalidPeriod)
		v.Field("endDate", q.EndDate).Required().
			WithMessage("startDate and endDate are required for a CUSTOM period", internal.ErrCodeInvalidPeriod)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ResolvePeriod turns a query into an inclusive [start, end] window in now's
// location. Rolling periods start at midnight N days back and end at the
// last millisecond of today. An empty period means MONTHLY.
func ResolvePeriod(q LeaderboardQuery, now time.Time) (Period, error) {
	if err := q.Validate(); err != nil {
		return Period{}, err
	}

	tag := PeriodTag(strings.ToUpper(string(q.Period)))
	if tag == "" {
		tag = PeriodMonthly
	}

	if tag != PeriodCustom {
		return Period{
			StartDate: startOfDay(now.AddDate(0, 0, -lookbackDays[tag])),
			EndDate:   endOfDay(now),
		}, nil
	}

	loc := now.Location()
	start, err := time.ParseInLocation(attendance.DateLayout, q.StartDate, loc)
	if err != nil {
		return Period{}, internal.NewValidationFieldError("startDate", "startDate must be formatted YYYY-MM-DD", internal.ErrCodeInvalidDate)
	}
	end, err := time.ParseInLocation(attendance.DateLayout, q.EndDate, loc)
	if err != nil {
		return Period{}, internal.NewValidationFieldError("endDate", "endDate must be formatted YYYY-MM-DD", internal.ErrCodeInvalidDate)
	}
	if start.After(end) {
		return Period{}, internal.NewValidationError("startDate cannot be after endDate", internal.ErrCodeInvalidPeriod)
	}

	return Period{StartDate: start, EndDate: endOfDay(end)}, nil
}
