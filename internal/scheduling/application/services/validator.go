package services

import (
	"sort"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
)

// Validator checks a dataset for overlapping procedure windows of group A staff.
type Validator struct {
	sc *domain.SchedulingContext
}

// NewValidator creates a validator for the context's roster and disabled set.
func NewValidator(sc *domain.SchedulingContext) *Validator {
	return &Validator{sc: sc}
}

// Validate returns every pair of overlapping bookings held by the same group A
// staff member. Membership is decided by staff key and procedure role, so
// group B staff are never checked whatever their name. Disabled staff are
// skipped and windows that only touch do not conflict. An empty result means
// the dataset is valid.
func (v *Validator) Validate(records []domain.AppointmentRecord) []domain.Conflict {
	bookings := make(map[string][]domain.Booking)
	names := make(map[string]string)
	for _, rec := range records {
		for _, p := range rec.Procedures {
			key, ok := v.sc.CheckedStaff(p)
			if !ok {
				continue
			}
			names[key] = p.Staff
			bookings[key] = append(bookings[key], domain.Booking{
				Label:     rec.Label(),
				Procedure: p.Procedure,
				Window:    domain.TimeRange{Start: p.Start, End: p.End},
			})
		}
	}

	keys := make([]string, 0, len(bookings))
	for k := range bookings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var conflicts []domain.Conflict
	for _, key := range keys {
		list := bookings[key]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Window.Start.Before(list[j].Window.Start)
		})
		for i := range list {
			for j := i + 1; j < len(list) && list[j].Window.Start.Before(list[i].Window.End); j++ {
				conflicts = append(conflicts, domain.Conflict{
					StaffKey:  key,
					StaffName: names[key],
					First:     list[i],
					Second:    list[j],
				})
			}
		}
	}
	return conflicts
}
