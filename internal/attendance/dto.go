package attendance

import (
	"time"

	"github.com/frahmantamala/attendance-engine/internal"
	"github.com/frahmantamala/attendance-engine/internal/core/common/validation"
	"github.com/frahmantamala/attendance-engine/internal/identity"
)

// DateLayout is the query-string format for report and history ranges.
const DateLayout = "2006-01-02"

// ClockInDTO is the kiosk clock-in payload.
type ClockInDTO struct {
	identity.CredentialRequest
	PhotoURL *string `json:"photo_url,omitempty"`
	Location *string `json:"location,omitempty"`
}

type ClockOutDTO struct {
	identity.CredentialRequest
	PhotoURL *string `json:"photo_url,omitempty"`
	Location *string `json:"location,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

func (dto ClockOutDTO) Validate() error {
	if dto.Notes == nil {
		return nil
	}
	v := validation.NewValidator()
	v.Field("notes", *dto.Notes).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// RangeQuery is an optional inclusive date range. Both ends or neither.
type RangeQuery struct {
	StartDate string
	EndDate   string
}

// Resolve parses the range in loc. The end date is inclusive, so the
// returned end is the following midnight. An empty range returns zero times.
func (q RangeQuery) Resolve(loc *time.Location, required bool) (time.Time, time.Time, error) {
	if q.StartDate == "" && q.EndDate == "" && !required {
		return time.Time{}, time.Time{}, nil
	}

	v := validation.NewValidator()
	v.Field("startDate", q.StartDate).Required().
		WithMessage("startDate and endDate are required", internal.ErrCodeInvalidDate)
	v.Field("endDate", q.EndDate).Required().
		WithMessage("startDate and endDate are required", internal.ErrCodeInvalidDate)
	if err := v.Validate(); err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, err := time.ParseInLocation(DateLayout, q.StartDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, internal.NewValidationFieldError("startDate", "startDate must be formatted YYYY-MM-DD", internal.ErrCodeInvalidDate)
	}
	end, err := time.ParseInLocation(DateLayout, q.EndDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, internal.NewValidationFieldError("endDate", "endDate must be formatted YYYY-MM-DD", internal.ErrCodeInvalidDate)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, internal.NewValidationFieldError("endDate", "endDate cannot be before startDate", internal.ErrCodeInvalidDate)
	}
	return start, end.AddDate(0, 0, 1), nil
}

type ReportQuery struct {
	RangeQuery
	Department string
}
