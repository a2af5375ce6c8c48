package domain

// Routing keys of the staffing events.
const (
	RoutingKeyLeaveAdded               = "leave.added"
	RoutingKeyLeaveRemoved             = "leave.removed"
	RoutingKeyStaffAvailabilityChanged = "staff.availability_changed"
)

// LeaveAdded carries a stored leave. Date is set for a dated leave and
// Weekday for a weekly one.
type LeaveAdded struct {
	ID       int64   `json:"id"`
	StaffKey string  `json:"staff_key"`
	Date     string  `json:"date,omitempty"`
	Weekday  *int    `json:"weekday,omitempty"`
	Session  Session `json:"session"`
	Reason   string  `json:"reason,omitempty"`
}

// LeaveRemoved carries the id of a deleted leave.
type LeaveRemoved struct {
	ID     int64 `json:"id"`
	Weekly bool  `json:"weekly"`
}

// StaffAvailabilityChanged is raised when staff are enabled or disabled.
type StaffAvailabilityChanged struct {
	Keys     []string `json:"keys"`
	Enabled  bool     `json:"enabled"`
	Disabled []string `json:"disabled"`
}
