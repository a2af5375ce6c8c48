package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the canonical DD-MM-YYYY date form.
	DateLayout = "02-01-2006"
	// ShortDateLayout is the DD-MM-YY form used by the CSV artifact.
	ShortDateLayout = "02-01-06"
	// StoreDateLayout is the ISO date form used by the leave store.
	StoreDateLayout = "2006-01-02"
)

var acceptedDateLayouts = []string{"02-01-2006", "02/01/2006", "02-01-06", "02/01/06"}

// ParseDate accepts DD-MM-YYYY, DD/MM/YYYY, DD-MM-YY and DD/MM/YY. Day and
// month may omit the leading zero.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range acceptedDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
		if t, err := time.ParseInLocation(strings.NewReplacer("02", "2", "01", "1").Replace(layout), s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse date %q", ErrConfiguration, s)
}

// DateRange lists every day from start to end inclusive.
func DateRange(start, end time.Time) ([]time.Time, error) {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date must be on or after start date", ErrConfiguration)
	}
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
