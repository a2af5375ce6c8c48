package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	staffing "github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

var testDoctors = domain.WeekdayDoctors{
	"Trần Thị Thu Hiền", "Trần Thị Thu Hiền", "Trần Thị Thu Hiền",
	"Trần Thị Thu Hiền", "Trần Thị Thu Hiền", "Trần Thị Thu Hiền",
	"Bùi Tá Việt Trị",
}

var testProcedures = []string{"điện", "thủy", "xoa", "giác"}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	catalog, err := domain.NewCatalog([]domain.ProcedureSpec{
		{Name: "điện", Duration: 30 * time.Minute, Role: domain.RoleJunior},
		{Name: "thủy", Duration: 30 * time.Minute, Role: domain.RoleSenior},
		{Name: "xoa", Duration: 30 * time.Minute, Role: domain.RoleJunior},
		{Name: "kéo", Duration: 20 * time.Minute, Role: domain.RoleSenior},
		{Name: "giác", Duration: 20 * time.Minute, Role: domain.RoleJunior},
		{Name: "cứu", Duration: 20 * time.Minute, Role: domain.RoleJunior},
	})
	require.NoError(t, err)
	return catalog
}

func testContext(t *testing.T, groupA map[string]string, disabled ...string) *domain.SchedulingContext {
	t.Helper()
	if groupA == nil {
		groupA = map[string]string{
			"duy":  "Nguyễn Văn Duy",
			"lya":  "H' Lya Niê",
			"quân": "Lê Văn Quân",
			"hưng": "Phạm Văn Hưng",
		}
	}
	roster, err := staffing.NewRoster(groupA, map[string]string{
		"hiền": "Trần Thị Thu Hiền",
		"trị":  "Bùi Tá Việt Trị",
	})
	require.NoError(t, err)
	sc, err := domain.NewSchedulingContext(testCatalog(t), roster, testDoctors, staffing.NewDisabledSet(disabled))
	require.NoError(t, err)
	return sc
}

func testEngine(t *testing.T, sc *domain.SchedulingContext, lookup LeaveLookup) *AssignmentEngine {
	t.Helper()
	return NewAssignmentEngine(sc, lookup, nil, DefaultEngineConfig(), quietLogger(), nil)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clocks(t *testing.T, values ...string) []domain.Clock {
	t.Helper()
	out, err := domain.ParseSlotList(values)
	require.NoError(t, err)
	return out
}

func flatSlots(t *testing.T, values ...string) domain.SlotSource {
	t.Helper()
	src, err := domain.NewFlatSlotSource(clocks(t, values...))
	require.NoError(t, err)
	return src
}

// requireNoGroupAOverlap checks every pair of group A bookings in records.
func requireNoGroupAOverlap(t *testing.T, sc *domain.SchedulingContext, records []domain.AppointmentRecord) {
	t.Helper()
	windows := make(map[string][]domain.TimeRange)
	for _, rec := range records {
		for _, p := range rec.Procedures {
			key, ok := sc.CheckedStaff(p)
			if !ok {
				continue
			}
			w := domain.TimeRange{Start: p.Start, End: p.End}
			for _, other := range windows[key] {
				require.False(t, w.Overlaps(other), "%s double-booked: %s and %s", key, w, other)
			}
			windows[key] = append(windows[key], w)
		}
	}
}

type countingLookup struct {
	calls  int
	answer func(staffKey string, date time.Time, at domain.Clock) (bool, string, error)
}

func (c *countingLookup) CheckStaffAvailable(_ context.Context, staffKey string, date time.Time, at domain.Clock) (bool, string, error) {
	c.calls++
	if c.answer == nil {
		return true, "", nil
	}
	return c.answer(staffKey, date, at)
}
