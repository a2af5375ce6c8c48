package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

func fallbackRoster(t *testing.T) *domain.Roster {
	t.Helper()
	r, err := domain.NewRoster(
		map[string]string{"duy": "Nguyễn Văn Duy", "lya": "H' Lya Niê"},
		map[string]string{"hiền": "Trần Thị Thu Hiền"},
	)
	require.NoError(t, err)
	return r
}

func TestRosterProvider_Roster(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store uses fallback", func(t *testing.T) {
		staff := new(mockStaffRepo)
		staff.On("List", ctx).Return([]domain.StaffMember(nil), nil)
		fb := fallbackRoster(t)

		got, err := NewRosterProvider(staff, nil, fb, nil).Roster(ctx)

		require.NoError(t, err)
		assert.Same(t, fb, got)
	})

	t.Run("stored roster wins", func(t *testing.T) {
		staff := new(mockStaffRepo)
		staff.On("List", ctx).Return([]domain.StaffMember{
			{Key: "quân", FullName: "Lê Văn Quân", Group: domain.GroupA},
			{Key: "trị", FullName: "Bùi Tá Việt Trị", Group: domain.GroupB},
		}, nil)

		got, err := NewRosterProvider(staff, nil, fallbackRoster(t), nil).Roster(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"quân"}, got.GroupAKeys())
		assert.Equal(t, []string{"trị"}, got.GroupBKeys())
	})

	t.Run("store error", func(t *testing.T) {
		staff := new(mockStaffRepo)
		staff.On("List", ctx).Return([]domain.StaffMember(nil), errors.New("no such table"))

		_, err := NewRosterProvider(staff, nil, fallbackRoster(t), nil).Roster(ctx)
		assert.ErrorContains(t, err, "no such table")
	})
}

func TestRosterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	settings := new(mockSettingsRepo)
	settings.On("GetDisabledStaff", ctx).Return([]string{"Duy"}, nil)

	set, err := NewRosterProvider(nil, settings, fallbackRoster(t), nil).Disabled(ctx)

	require.NoError(t, err)
	assert.True(t, set.Contains("duy"))
	assert.False(t, set.Contains("lya"))
}

func TestRosterProvider_Seed(t *testing.T) {
	ctx := context.Background()

	t.Run("writes fallback into empty store", func(t *testing.T) {
		staff := new(mockStaffRepo)
		staff.On("List", ctx).Return([]domain.StaffMember(nil), nil)
		staff.On("Save", ctx, mock.AnythingOfType("domain.StaffMember")).Return(nil)

		n, err := NewRosterProvider(staff, nil, fallbackRoster(t), nil).Seed(ctx)

		require.NoError(t, err)
		assert.Equal(t, 3, n)
		staff.AssertNumberOfCalls(t, "Save", 3)
	})

	t.Run("leaves populated store alone", func(t *testing.T) {
		staff := new(mockStaffRepo)
		staff.On("List", ctx).Return([]domain.StaffMember{{Key: "duy", FullName: "x", Group: domain.GroupA}}, nil)

		n, err := NewRosterProvider(staff, nil, fallbackRoster(t), nil).Seed(ctx)

		require.NoError(t, err)
		assert.Zero(t, n)
		staff.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
