package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SlotKind says what a configured slot time denotes.
type SlotKind string

const (
	// SlotKindDiagnosis slots are diagnosis times; the first procedure starts 5 minutes later.
	SlotKindDiagnosis SlotKind = "CD"
	// SlotKindStart slots are first-procedure start times.
	SlotKindStart SlotKind = "BD_TH"
)

// ParseSlotKind accepts "CD" and "BD_TH" in any case. Empty means CD.
func ParseSlotKind(s string) (SlotKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(SlotKindDiagnosis):
		return SlotKindDiagnosis, nil
	case string(SlotKindStart):
		return SlotKindStart, nil
	default:
		return "", fmt.Errorf("%w: slot kind must be CD or BD_TH, got %q", ErrConfiguration, s)
	}
}

// StartFor converts a configured slot into the first procedure start time.
func (k SlotKind) StartFor(slot Clock) Clock {
	if k == SlotKindStart {
		return slot
	}
	return slot.Add(DiagnosisLead)
}

// SlotSourceKind tags which variant a SlotSource holds.
type SlotSourceKind string

const (
	SlotSourceByDate      SlotSourceKind = "by_date"
	SlotSourceByProcedure SlotSourceKind = "by_procedure"
	SlotSourceFlat        SlotSourceKind = "flat"
)

// ProcedureSlots is the slot configuration of one procedure: either a flat
// list or slot lists keyed by group.
type ProcedureSlots struct {
	Flat   []Clock
	Groups map[string][]Clock
}

// SlotSource is the candidate-time configuration for a run. Exactly one of
// the variant fields is set, matching Kind.
type SlotSource struct {
	Kind        SlotSourceKind
	ByDate      map[string][]Clock // keyed by DateLayout
	ByProcedure map[string]ProcedureSlots
	Flat        []Clock
}

// NewFlatSlotSource uses the same slots for every date.
func NewFlatSlotSource(slots []Clock) (SlotSource, error) {
	if len(slots) == 0 {
		return SlotSource{}, fmt.Errorf("%w: no time slots provided", ErrConfiguration)
	}
	return SlotSource{Kind: SlotSourceFlat, Flat: slots}, nil
}

// NewByDateSlotSource uses per-date slot lists.
func NewByDateSlotSource(byDate map[time.Time][]Clock) (SlotSource, error) {
	if len(byDate) == 0 {
		return SlotSource{}, fmt.Errorf("%w: slots-by-date is empty", ErrConfiguration)
	}
	m := make(map[string][]Clock, len(byDate))
	for d, slots := range byDate {
		if len(slots) == 0 {
			return SlotSource{}, fmt.Errorf("%w: no slots for date %s", ErrConfiguration, d.Format(DateLayout))
		}
		m[d.Format(DateLayout)] = slots
	}
	return SlotSource{Kind: SlotSourceByDate, ByDate: m}, nil
}

// NewByProcedureSlotSource uses slots keyed by the patient's first procedure.
func NewByProcedureSlotSource(byProc map[string]ProcedureSlots) (SlotSource, error) {
	if len(byProc) == 0 {
		return SlotSource{}, fmt.Errorf("%w: procedure slots config is empty", ErrConfiguration)
	}
	m := make(map[string]ProcedureSlots, len(byProc))
	for p, s := range byProc {
		if len(s.Flat) == 0 && len(s.Groups) == 0 {
			return SlotSource{}, fmt.Errorf("%w: no slots defined for procedure %q", ErrConfiguration, p)
		}
		m[NormalizeProcedureKey(p)] = s
	}
	return SlotSource{Kind: SlotSourceByProcedure, ByProcedure: m}, nil
}

// DateBounds returns the first and last configured date of a by-date source.
func (s SlotSource) DateBounds() (time.Time, time.Time, error) {
	if s.Kind != SlotSourceByDate || len(s.ByDate) == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: date bounds need a non-empty by-date slot source", ErrConfiguration)
	}
	var first, last time.Time
	for key := range s.ByDate {
		d, err := time.ParseInLocation(DateLayout, key, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: bad date key %q", ErrConfiguration, key)
		}
		if first.IsZero() || d.Before(first) {
			first = d
		}
		if last.IsZero() || d.After(last) {
			last = d
		}
	}
	return first, last, nil
}

// PickGroupKey chooses the slot group for a date. When every key is a day of
// month (1-31) the key must equal date's day. Otherwise keys are sorted,
// numerically if all are integers, and the key at dateIndex modulo the key
// count is used.
func PickGroupKey(groups map[string][]Clock, dateIndex int, date time.Time) (string, error) {
	if len(groups) == 0 {
		return "", fmt.Errorf("%w: no group keys found in slots config", ErrConfiguration)
	}
	keys := make([]string, 0, len(groups))
	nums := make(map[string]int, len(groups))
	allNumeric := true
	for k := range groups {
		keys = append(keys, k)
		n, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			allNumeric = false
			continue
		}
		nums[k] = n
	}

	if allNumeric {
		dayKeys := true
		for _, n := range nums {
			if n < 1 || n > 31 {
				dayKeys = false
				break
			}
		}
		if dayKeys {
			for _, k := range keys {
				if nums[k] == date.Day() {
					return k, nil
				}
			}
			return "", fmt.Errorf("%w: missing slots for day %d in slots config", ErrConfiguration, date.Day())
		}
		sort.Slice(keys, func(i, j int) bool {
			if nums[keys[i]] != nums[keys[j]] {
				return nums[keys[i]] < nums[keys[j]]
			}
			return keys[i] < keys[j]
		})
	} else {
		sort.Strings(keys)
	}
	return keys[dateIndex%len(keys)], nil
}

// ParseSlotList normalizes a list of HH:MM strings, skipping blanks. An empty
// result is an error.
func ParseSlotList(values []string) ([]Clock, error) {
	slots := make([]Clock, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		c, err := ParseClock(v)
		if err != nil {
			return nil, err
		}
		slots = append(slots, c)
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: no time slots provided", ErrConfiguration)
	}
	return slots, nil
}

// ParseSlotArg parses a comma or semicolon separated slot list.
func ParseSlotArg(arg string) ([]Clock, error) {
	return ParseSlotList(strings.Split(strings.ReplaceAll(arg, ";", ","), ","))
}
