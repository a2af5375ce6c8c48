package schedule

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/felixgeelhaar/clinicflow/adapter/cli"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/application/services"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/infrastructure/slotfile"
)

// runFlags are the date, slot and output flags shared by generate and batch.
type runFlags struct {
	startDate   string
	endDate     string
	slots       string
	slotsFile   string
	slotsSource string
	slotKind    string
	seed        uint64
	useAllSlots bool
	shuffle     bool
	output      string
	format      string
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.startDate, "start", "", "first date (DD-MM-YYYY); optional with a by-date slots file")
	fs.StringVar(&f.endDate, "end", "", "last date (DD-MM-YYYY, default: start)")
	fs.StringVar(&f.slots, "slots", "", "time slots, comma separated (e.g. 08:00,13:30)")
	fs.StringVar(&f.slotsFile, "slots-file", "", "JSON or YAML slots file (flat, by date or by procedure)")
	fs.StringVar(&f.slotsSource, "slots-kind-source", string(slotfile.ModeAuto), "slots file shape: auto, by_date, by_procedure")
	fs.StringVar(&f.slotKind, "slot-kind", "", "slot meaning: CD (diagnosis time) or BD_TH (first procedure start)")
	fs.Uint64Var(&f.seed, "seed", 0, "random seed (default from SCHEDULE_SEED)")
	fs.BoolVar(&f.useAllSlots, "use-all-slots", false, "place one appointment per slot per day")
	fs.BoolVar(&f.shuffle, "shuffle", true, "shuffle slot order per day")
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	fs.StringVarP(&f.format, "format", "f", "", "output format: csv, json, xlsx (default: from file extension)")
}

// options turns the flags into run options. Flags left unset fall back to the
// configuration, then to the clinic catalog.
func (f *runFlags) options(cmd *cobra.Command, a *cli.App) (services.RunOptions, error) {
	var opts services.RunOptions
	changed := cmd.Flags().Changed

	kind := f.slotKind
	if kind == "" && a.Config != nil {
		kind = a.Config.ScheduleSlotsKind
	}
	if kind == "" {
		kind = string(a.Clinic.SlotKind)
	}
	slotKind, err := domain.ParseSlotKind(kind)
	if err != nil {
		return opts, err
	}
	opts.SlotKind = slotKind

	if opts.Slots, err = f.slotSource(a); err != nil {
		return opts, err
	}

	if f.startDate != "" {
		if opts.StartDate, err = domain.ParseDate(f.startDate); err != nil {
			return opts, err
		}
		opts.EndDate = opts.StartDate
	}
	if f.endDate != "" {
		if opts.EndDate, err = domain.ParseDate(f.endDate); err != nil {
			return opts, err
		}
		if f.startDate == "" {
			return opts, fmt.Errorf("%w: --end requires --start", domain.ErrConfiguration)
		}
	}

	opts.Seed = f.seed
	opts.ShuffleSlots = f.shuffle
	opts.UseAllSlots = f.useAllSlots
	if cfg := a.Config; cfg != nil {
		if !changed("seed") {
			opts.Seed = cfg.ScheduleSeed
		}
		if !changed("shuffle") {
			opts.ShuffleSlots = cfg.ScheduleShuffleSlots
		}
		if !changed("use-all-slots") {
			opts.UseAllSlots = cfg.ScheduleUseAllSlots
		}
	}
	return opts, nil
}

func (f *runFlags) slotSource(a *cli.App) (domain.SlotSource, error) {
	if f.slotsFile != "" {
		if f.slots != "" {
			return nil, fmt.Errorf("%w: use either --slots or --slots-file", domain.ErrConfiguration)
		}
		mode, err := slotfile.ParseMode(f.slotsSource)
		if err != nil {
			return nil, err
		}
		return slotfile.Load(f.slotsFile, a.Clinic.Catalog, mode)
	}
	if strings.TrimSpace(f.slots) != "" {
		slots, err := domain.ParseSlotArg(f.slots)
		if err != nil {
			return nil, err
		}
		return domain.NewFlatSlotSource(slots)
	}
	if len(a.Clinic.Slots) > 0 {
		return domain.NewFlatSlotSource(a.Clinic.Slots)
	}
	return nil, fmt.Errorf("%w: no time slots provided, use --slots or --slots-file", domain.ErrConfiguration)
}
