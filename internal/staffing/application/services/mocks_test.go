package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

type mockLeaveRepo struct {
	mock.Mock
}

func (m *mockLeaveRepo) Add(ctx context.Context, l domain.LeaveRecord) (int64, error) {
	args := m.Called(ctx, l)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLeaveRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockLeaveRepo) List(ctx context.Context) ([]domain.LeaveRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.LeaveRecord), args.Error(1)
}

func (m *mockLeaveRepo) FindForDate(ctx context.Context, key string, date time.Time) ([]domain.LeaveRecord, error) {
	args := m.Called(ctx, key, date)
	return args.Get(0).([]domain.LeaveRecord), args.Error(1)
}

func (m *mockLeaveRepo) AddWeekly(ctx context.Context, l domain.WeeklyLeave) (int64, error) {
	args := m.Called(ctx, l)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLeaveRepo) DeleteWeekly(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockLeaveRepo) ListWeekly(ctx context.Context) ([]domain.WeeklyLeave, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.WeeklyLeave), args.Error(1)
}

func (m *mockLeaveRepo) FindWeekly(ctx context.Context, key string, weekday int) ([]domain.WeeklyLeave, error) {
	args := m.Called(ctx, key, weekday)
	return args.Get(0).([]domain.WeeklyLeave), args.Error(1)
}

type mockStaffRepo struct {
	mock.Mock
}

func (m *mockStaffRepo) Save(ctx context.Context, member domain.StaffMember) error {
	return m.Called(ctx, member).Error(0)
}

func (m *mockStaffRepo) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStaffRepo) List(ctx context.Context) ([]domain.StaffMember, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.StaffMember), args.Error(1)
}

type mockSettingsRepo struct {
	mock.Mock
}

func (m *mockSettingsRepo) GetDisabledStaff(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockSettingsRepo) SetDisabledStaff(ctx context.Context, keys []string) error {
	return m.Called(ctx, keys).Error(0)
}
