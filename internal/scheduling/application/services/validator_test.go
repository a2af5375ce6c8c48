package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
)

func TestValidator_Validate(t *testing.T) {
	sc := testContext(t, nil)
	d := day(2025, time.March, 10)
	build := func(id string, start domain.Clock, lineup domain.Lineup) domain.AppointmentRecord {
		rec, err := sc.BuildAppointment(id, d, start, testProcedures, lineup)
		require.NoError(t, err)
		return rec
	}
	v := NewValidator(sc)

	t.Run("clean dataset", func(t *testing.T) {
		records := []domain.AppointmentRecord{
			build("BN001", domain.NewClock(8, 5), domain.Lineup{"duy", "hiền", "lya"}),
			build("BN002", domain.NewClock(8, 5), domain.Lineup{"quân", "hiền", "hưng"}),
		}
		assert.Empty(t, v.Validate(records), "shared group B staff is never a conflict")
	})

	t.Run("touching windows", func(t *testing.T) {
		first := build("BN001", domain.NewClock(8, 5), domain.Lineup{"duy", "hiền", "lya"})
		// giác ends the first appointment; start the next one exactly there.
		second := build("BN002", domain.ClockOf(first.Procedures[3].End), domain.Lineup{"duy", "trị", "quân"})
		assert.Empty(t, v.Validate([]domain.AppointmentRecord{first, second}))
	})

	t.Run("double booking", func(t *testing.T) {
		records := []domain.AppointmentRecord{
			build("BN001", domain.NewClock(8, 5), domain.Lineup{"duy", "hiền", "lya"}),
			build("BN002", domain.NewClock(8, 20), domain.Lineup{"duy", "trị", "quân"}),
		}
		conflicts := v.Validate(records)
		require.NotEmpty(t, conflicts)
		assert.Equal(t, "duy", conflicts[0].StaffKey)
		assert.Equal(t, "Nguyễn Văn Duy", conflicts[0].StaffName)
		assert.Contains(t, conflicts[0].Message(), "BN001 10-03-2025")
		assert.Contains(t, conflicts[0].Message(), "BN002 10-03-2025")
	})
}

func TestValidator_GroupBExemptByRole(t *testing.T) {
	// duy shares the display name of group B member hiền.
	sc := testContext(t, map[string]string{
		"duy":  "Trần Thị Thu Hiền",
		"lya":  "H' Lya Niê",
		"quân": "Lê Văn Quân",
		"hưng": "Phạm Văn Hưng",
	})
	d := day(2025, time.March, 10)
	build := func(id string, lineup domain.Lineup) domain.AppointmentRecord {
		rec, err := sc.BuildAppointment(id, d, domain.NewClock(8, 5), testProcedures, lineup)
		require.NoError(t, err)
		return rec
	}
	v := NewValidator(sc)

	records := []domain.AppointmentRecord{
		build("BN001", domain.Lineup{"lya", "hiền", "quân"}),
		build("BN002", domain.Lineup{"hưng", "hiền", "duy"}),
	}
	assert.Empty(t, v.Validate(records), "hiền on both thủy windows is group B")

	records = append(records, build("BN003", domain.Lineup{"hưng", "trị", "lya"}))
	conflicts := v.Validate(records)
	require.NotEmpty(t, conflicts)
	for _, c := range conflicts {
		assert.Equal(t, "hưng", c.StaffKey)
	}
}

func TestValidator_SkipsDisabledStaff(t *testing.T) {
	sc := testContext(t, nil, "duy")
	d := day(2025, time.March, 10)
	build := func(id string, start domain.Clock, lineup domain.Lineup) domain.AppointmentRecord {
		rec, err := sc.BuildAppointment(id, d, start, testProcedures, lineup)
		require.NoError(t, err)
		return rec
	}
	records := []domain.AppointmentRecord{
		build("BN001", domain.NewClock(8, 5), domain.Lineup{"duy", "hiền", "lya"}),
		build("BN002", domain.NewClock(8, 20), domain.Lineup{"duy", "trị", "quân"}),
	}

	assert.Empty(t, NewValidator(sc).Validate(records))
}
