package services

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
)

// SlotResolver turns the configured slot source into the ordered candidate
// slots of one date.
type SlotResolver struct {
	source  domain.SlotSource
	shuffle bool
}

// NewSlotResolver creates a resolver. When shuffle is set, slot lists are
// shuffled with the run RNG.
func NewSlotResolver(source domain.SlotSource, shuffle bool) *SlotResolver {
	return &SlotResolver{source: source, shuffle: shuffle}
}

// Resolve returns a fresh slot list for the date. dateIndex is the position
// of date in the run's date range; firstProcedure selects the list of a
// by-procedure source.
func (r *SlotResolver) Resolve(date time.Time, dateIndex int, firstProcedure string, rng *rand.Rand) ([]domain.Clock, error) {
	var slots []domain.Clock

	switch r.source.Kind {
	case domain.SlotSourceByDate:
		key := date.Format(domain.DateLayout)
		list, ok := r.source.ByDate[key]
		if !ok {
			return nil, fmt.Errorf("%w: missing slots for date %s", domain.ErrConfiguration, key)
		}
		slots = list
	case domain.SlotSourceByProcedure:
		proc := domain.NormalizeProcedureKey(firstProcedure)
		spec, ok := r.source.ByProcedure[proc]
		if !ok {
			return nil, fmt.Errorf("%w: no slots configured for procedure %q", domain.ErrConfiguration, proc)
		}
		if len(spec.Groups) > 0 {
			group, err := domain.PickGroupKey(spec.Groups, dateIndex, date)
			if err != nil {
				return nil, err
			}
			slots = spec.Groups[group]
		} else {
			slots = spec.Flat
		}
	case domain.SlotSourceFlat:
		slots = r.source.Flat
	default:
		return nil, fmt.Errorf("%w: unknown slot source %q", domain.ErrConfiguration, r.source.Kind)
	}

	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: no slots available for date %s", domain.ErrConfiguration, date.Format(domain.DateLayout))
	}

	out := append([]domain.Clock(nil), slots...)
	if r.shuffle && rng != nil {
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out, nil
}
