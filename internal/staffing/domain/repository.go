package domain

import (
	"context"
	"time"
)

// StaffRepository persists the clinic roster.
type StaffRepository interface {
	Save(ctx context.Context, member StaffMember) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]StaffMember, error)
}

// LeaveRepository persists dated and weekly leaves.
type LeaveRepository interface {
	Add(ctx context.Context, leave LeaveRecord) (int64, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]LeaveRecord, error)
	FindForDate(ctx context.Context, staffKey string, date time.Time) ([]LeaveRecord, error)

	AddWeekly(ctx context.Context, leave WeeklyLeave) (int64, error)
	DeleteWeekly(ctx context.Context, id int64) error
	ListWeekly(ctx context.Context) ([]WeeklyLeave, error)
	FindWeekly(ctx context.Context, staffKey string, weekday int) ([]WeeklyLeave, error)
}

// SettingsRepository persists the disabled staff list.
type SettingsRepository interface {
	GetDisabledStaff(ctx context.Context) ([]string, error)
	SetDisabledStaff(ctx context.Context, keys []string) error
}
