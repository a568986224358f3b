package validation

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var errInvalidDate = errors.New("invalid calendar date")

// RegisterValidators registers custom validators to the validator instance.
// now and loc define "today" for not_past_date.
func RegisterValidators(v *validator.Validate, now func() time.Time, loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	_ = v.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
		_, err := ParseEventDate(fl.Field().String(), loc)
		return err == nil
	})
	_ = v.RegisterValidation("not_past_date", NotPastDate(now, loc))
}

// ParseEventDate accepts a YYYY-MM-DD date or an RFC 3339 timestamp and returns
// midnight of that calendar day in loc.
func ParseEventDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errInvalidDate
	}
	if d, err := time.ParseInLocation(dateLayout, value, loc); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	ts = ts.In(loc)
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc), nil
}

// NotPastDate rejects dates before today in loc. Unparseable values are left
// to calendar_date.
func NotPastDate(now func() time.Time, loc *time.Location) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := ParseEventDate(fl.Field().String(), loc)
		if err != nil {
			return true
		}
		n := now().In(loc)
		today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
		return !d.Before(today)
	}
}
