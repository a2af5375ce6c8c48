package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	ErrUnknownStaff   = errors.New("unknown staff member")
	ErrInvalidGroup   = errors.New("invalid staff group")
	ErrRosterOverlap  = errors.New("staff key present in both groups")
	ErrEmptyStaffKey  = errors.New("staff key is required")
	ErrEmptyStaffName = errors.New("staff full name is required")
)

// Group identifies which assignment pool a staff member belongs to.
type Group int

const (
	// GroupA staffs the junior positions (1 and 3) and is conflict-checked.
	GroupA Group = 1
	// GroupB staffs the senior position (2) and is never conflict-checked.
	GroupB Group = 2
)

// ParseGroup converts the stored group number into a Group.
func ParseGroup(n int) (Group, error) {
	switch Group(n) {
	case GroupA, GroupB:
		return Group(n), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidGroup, n)
	}
}

func (g Group) String() string {
	switch g {
	case GroupA:
		return "A"
	case GroupB:
		return "B"
	default:
		return "unknown"
	}
}

// NormalizeKey returns the canonical short key for a staff name:
// NFC-composed, trimmed and lower-cased.
func NormalizeKey(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}

// StaffMember is a single roster entry.
type StaffMember struct {
	Key      string
	FullName string
	Group    Group
}

// NewStaffMember validates and normalizes a roster entry.
func NewStaffMember(key, fullName string, group Group) (StaffMember, error) {
	key = NormalizeKey(key)
	if key == "" {
		return StaffMember{}, ErrEmptyStaffKey
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return StaffMember{}, ErrEmptyStaffName
	}
	if _, err := ParseGroup(int(group)); err != nil {
		return StaffMember{}, err
	}
	return StaffMember{Key: key, FullName: fullName, Group: group}, nil
}

// Roster is the immutable set of assignable staff split into two disjoint groups.
type Roster struct {
	groupA map[string]string
	groupB map[string]string
	byName map[string]string // full name -> group A key
}

// NewRoster builds a roster from short key -> full name maps.
func NewRoster(groupA, groupB map[string]string) (*Roster, error) {
	r := &Roster{
		groupA: make(map[string]string, len(groupA)),
		groupB: make(map[string]string, len(groupB)),
		byName: make(map[string]string, len(groupA)),
	}
	for k, v := range groupA {
		m, err := NewStaffMember(k, v, GroupA)
		if err != nil {
			return nil, err
		}
		r.groupA[m.Key] = m.FullName
		r.byName[m.FullName] = m.Key
	}
	for k, v := range groupB {
		m, err := NewStaffMember(k, v, GroupB)
		if err != nil {
			return nil, err
		}
		if _, dup := r.groupA[m.Key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrRosterOverlap, m.Key)
		}
		r.groupB[m.Key] = m.FullName
	}
	return r, nil
}

// RosterFromMembers builds a roster from a flat list of members.
func RosterFromMembers(members []StaffMember) (*Roster, error) {
	groupA := map[string]string{}
	groupB := map[string]string{}
	for _, m := range members {
		switch m.Group {
		case GroupA:
			groupA[m.Key] = m.FullName
		case GroupB:
			groupB[m.Key] = m.FullName
		default:
			return nil, fmt.Errorf("%w: %d for %s", ErrInvalidGroup, m.Group, m.Key)
		}
	}
	return NewRoster(groupA, groupB)
}

// GroupAKeys returns the group A keys in sorted order.
func (r *Roster) GroupAKeys() []string { return sortedKeys(r.groupA) }

// GroupBKeys returns the group B keys in sorted order.
func (r *Roster) GroupBKeys() []string { return sortedKeys(r.groupB) }

// InGroup reports whether key belongs to the given group.
func (r *Roster) InGroup(key string, g Group) bool {
	key = NormalizeKey(key)
	switch g {
	case GroupA:
		_, ok := r.groupA[key]
		return ok
	case GroupB:
		_, ok := r.groupB[key]
		return ok
	}
	return false
}

// GroupOf returns the group of a key.
func (r *Roster) GroupOf(key string) (Group, bool) {
	key = NormalizeKey(key)
	if _, ok := r.groupA[key]; ok {
		return GroupA, true
	}
	if _, ok := r.groupB[key]; ok {
		return GroupB, true
	}
	return 0, false
}

// FullName resolves a short key from either group.
func (r *Roster) FullName(key string) (string, error) {
	key = NormalizeKey(key)
	if name, ok := r.groupA[key]; ok {
		return name, nil
	}
	if name, ok := r.groupB[key]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownStaff, key)
}

// KeyForName reverse-maps a full name to its short key in either group.
func (r *Roster) KeyForName(fullName string) (string, bool) {
	fullName = strings.TrimSpace(fullName)
	if key, ok := r.byName[fullName]; ok {
		return key, true
	}
	for k, v := range r.groupB {
		if v == fullName {
			return k, true
		}
	}
	return "", false
}

// Members lists the roster, group A first, each group in key order.
func (r *Roster) Members() []StaffMember {
	out := make([]StaffMember, 0, len(r.groupA)+len(r.groupB))
	for _, k := range r.GroupAKeys() {
		out = append(out, StaffMember{Key: k, FullName: r.groupA[k], Group: GroupA})
	}
	for _, k := range r.GroupBKeys() {
		out = append(out, StaffMember{Key: k, FullName: r.groupB[k], Group: GroupB})
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DisabledSet holds staff keys excluded from assignment.
type DisabledSet map[string]struct{}

// NewDisabledSet normalizes the given keys into a set.
func NewDisabledSet(keys []string) DisabledSet {
	s := make(DisabledSet, len(keys))
	for _, k := range keys {
		if k = NormalizeKey(k); k != "" {
			s[k] = struct{}{}
		}
	}
	return s
}

// Contains reports whether key is disabled.
func (s DisabledSet) Contains(key string) bool {
	_, ok := s[NormalizeKey(key)]
	return ok
}

// Keys returns the disabled keys in sorted order.
func (s DisabledSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
