package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/mcp-go"

	schedulingDomain "github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	"github.com/felixgeelhaar/clinicflow/internal/staffing/application/commands"
	"github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

type staffListInput struct {
	Group string `json:"group,omitempty"`
}

type staffOutput struct {
	Key      string `json:"key"`
	FullName string `json:"full_name"`
	Group    string `json:"group"`
	Disabled bool   `json:"disabled"`
}

type leaveCheckInput struct {
	Staff []string `json:"staff" jsonschema:"required"`
	Date  string   `json:"date,omitempty"`
	Time  string   `json:"time,omitempty"`
}

type availabilityOutput struct {
	Staff     string `json:"staff"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type leaveAddInput struct {
	Staff   string `json:"staff" jsonschema:"required"`
	Date    string `json:"date" jsonschema:"required"`
	Session string `json:"session,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type leaveAddOutput struct {
	ID int64 `json:"id"`
}

type entryListInput struct {
	PatientID string `json:"patient_id,omitempty"`
}

type entryOutput struct {
	ID         int64  `json:"id"`
	PatientID  string `json:"patient_id"`
	Procedures string `json:"procedures"`
	Staff      string `json:"staff"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Notes      string `json:"notes,omitempty"`
}

func registerStaffTools(srv *mcp.Server, t *tools) {
	srv.Tool("staff.list").
		Description("List the roster with group and disabled flag, optionally one group (A or B)").
		Handler(t.listStaff)

	srv.Tool("leave.check").
		Description("Check whether staff are available for an appointment starting at a time (default 08:00 today)").
		Handler(t.checkLeave)

	srv.Tool("leave.add").
		Description("Record a leave for a staff member on a date (session morning, afternoon or full_day)").
		Handler(t.addLeave)

	srv.Tool("entry.list").
		Description("List manual entries, newest first, optionally for one patient").
		Handler(t.listEntries)
}

func (t *tools) listStaff(ctx context.Context, input staffListInput) ([]staffOutput, error) {
	if t.app.ListStaffHandler == nil {
		return nil, errNoStore
	}
	members, err := t.app.ListStaffHandler.Handle(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]staffOutput, 0, len(members))
	for _, m := range members {
		if input.Group != "" && !matchesGroup(m.Group, input.Group) {
			continue
		}
		out = append(out, staffOutput{Key: m.Key, FullName: m.FullName, Group: m.Group.String(), Disabled: m.Disabled})
	}
	return out, nil
}

func (t *tools) checkLeave(ctx context.Context, input leaveCheckInput) ([]availabilityOutput, error) {
	if t.app.CheckAvailabilityHandler == nil {
		return nil, errNoStore
	}
	if len(input.Staff) == 0 {
		return nil, errors.New("at least one staff key is required")
	}
	date, err := parseDateOr(input.Date, time.Now())
	if err != nil {
		return nil, err
	}
	at := schedulingDomain.NewClock(8, 0)
	if input.Time != "" {
		if at, err = schedulingDomain.ParseClock(input.Time); err != nil {
			return nil, err
		}
	}
	results, err := t.app.CheckAvailabilityHandler.Handle(ctx, input.Staff, date, at.Hour())
	if err != nil {
		return nil, err
	}
	out := make([]availabilityOutput, 0, len(results))
	for _, r := range results {
		out = append(out, availabilityOutput{Staff: r.StaffKey, Available: r.Available, Reason: r.Reason})
	}
	return out, nil
}

func (t *tools) addLeave(ctx context.Context, input leaveAddInput) (*leaveAddOutput, error) {
	if t.app.LeaveHandler == nil {
		return nil, errNoStore
	}
	date, err := schedulingDomain.ParseDate(input.Date)
	if err != nil {
		return nil, err
	}
	id, err := t.app.LeaveHandler.AddLeave(ctx, commands.AddLeaveCommand{
		StaffKey: input.Staff,
		Date:     date,
		Session:  input.Session,
		Reason:   input.Reason,
	})
	if err != nil {
		return nil, err
	}
	return &leaveAddOutput{ID: id}, nil
}

func (t *tools) listEntries(ctx context.Context, input entryListInput) ([]entryOutput, error) {
	if t.app.ListManualEntriesHandler == nil {
		return nil, errNoStore
	}
	entries, err := t.app.ListManualEntriesHandler.Handle(ctx, input.PatientID)
	if err != nil {
		return nil, err
	}
	out := make([]entryOutput, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryOutput{
			ID:         e.ID,
			PatientID:  e.PatientID,
			Procedures: e.Procedures,
			Staff:      e.Staff,
			Date:       e.Date,
			Time:       e.Time,
			Notes:      e.Notes,
		})
	}
	return out, nil
}

func matchesGroup(g domain.Group, want string) bool {
	switch want {
	case "a", "A", "1":
		return g == domain.GroupA
	case "b", "B", "2":
		return g == domain.GroupB
	}
	return false
}
