package mcp

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/clinicflow/adapter/cli"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/application/services"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
)

// runInput is the run window shared by the generate tools. Dates are
// DD-MM-YYYY, slots a comma separated HH:MM list.
type runInput struct {
	Start       string
	End         string
	Slots       string
	SlotKind    string
	Seed        uint64
	UseAllSlots bool
}

func (in runInput) options(a *cli.App) (services.RunOptions, error) {
	var opts services.RunOptions
	var err error

	if opts.StartDate, err = domain.ParseDate(in.Start); err != nil {
		return opts, err
	}
	opts.EndDate = opts.StartDate
	if in.End != "" {
		if opts.EndDate, err = domain.ParseDate(in.End); err != nil {
			return opts, err
		}
	}

	kind := in.SlotKind
	if kind == "" && a.Config != nil {
		kind = a.Config.ScheduleSlotsKind
	}
	if kind == "" {
		kind = string(a.Clinic.SlotKind)
	}
	if opts.SlotKind, err = domain.ParseSlotKind(kind); err != nil {
		return opts, err
	}

	slots := a.Clinic.Slots
	if strings.TrimSpace(in.Slots) != "" {
		if slots, err = domain.ParseSlotArg(in.Slots); err != nil {
			return opts, err
		}
	}
	if len(slots) == 0 {
		return opts, fmt.Errorf("%w: no time slots provided", domain.ErrConfiguration)
	}
	if opts.Slots, err = domain.NewFlatSlotSource(slots); err != nil {
		return opts, err
	}

	opts.Seed = in.Seed
	opts.UseAllSlots = in.UseAllSlots
	if cfg := a.Config; cfg != nil {
		if opts.Seed == 0 {
			opts.Seed = cfg.ScheduleSeed
		}
		opts.ShuffleSlots = cfg.ScheduleShuffleSlots
		opts.UseAllSlots = opts.UseAllSlots || cfg.ScheduleUseAllSlots
	}
	return opts, nil
}

func parseDateOr(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	return domain.ParseDate(value)
}
