// Package catalog loads the clinic catalog: procedures, the default roster,
// the weekday doctor map and default time slots.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	staffing "github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

//go:embed default.yaml
var defaultCatalog []byte

// Clinic is a loaded catalog.
type Clinic struct {
	Catalog  *domain.Catalog
	Roster   *staffing.Roster
	Doctors  domain.WeekdayDoctors
	Slots    []domain.Clock
	SlotKind domain.SlotKind
}

type fileProcedure struct {
	Name    string `yaml:"name"`
	Minutes int    `yaml:"minutes"`
	Role    string `yaml:"role"`
}

type fileSlots struct {
	Kind  string   `yaml:"kind"`
	Times []string `yaml:"times"`
}

type file struct {
	Procedures []fileProcedure `yaml:"procedures"`
	Staff      struct {
		GroupA map[string]string `yaml:"group_a"`
		GroupB map[string]string `yaml:"group_b"`
	} `yaml:"staff"`
	Doctors []string  `yaml:"doctors"`
	Slots   fileSlots `yaml:"slots"`
}

// Default returns the built-in catalog.
func Default() (*Clinic, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file. An empty path returns the built-in catalog.
func Load(path string) (*Clinic, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read catalog %s: %v", domain.ErrConfiguration, path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Clinic, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: decode catalog: %v", domain.ErrConfiguration, err)
	}

	specs := make([]domain.ProcedureSpec, 0, len(f.Procedures))
	for _, p := range f.Procedures {
		role, err := domain.ParseRoleClass(p.Role)
		if err != nil {
			return nil, fmt.Errorf("procedure %q: %w", p.Name, err)
		}
		specs = append(specs, domain.ProcedureSpec{
			Name:     p.Name,
			Duration: time.Duration(p.Minutes) * time.Minute,
			Role:     role,
		})
	}
	cat, err := domain.NewCatalog(specs)
	if err != nil {
		return nil, err
	}

	roster, err := staffing.NewRoster(f.Staff.GroupA, f.Staff.GroupB)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}

	if len(f.Doctors) != 7 {
		return nil, fmt.Errorf("%w: doctors must list 7 weekdays, got %d", domain.ErrConfiguration, len(f.Doctors))
	}
	var doctors domain.WeekdayDoctors
	copy(doctors[:], f.Doctors)

	kind, err := domain.ParseSlotKind(f.Slots.Kind)
	if err != nil {
		return nil, err
	}
	var slots []domain.Clock
	if len(f.Slots.Times) > 0 {
		if slots, err = domain.ParseSlotList(f.Slots.Times); err != nil {
			return nil, err
		}
	}

	return &Clinic{
		Catalog:  cat,
		Roster:   roster,
		Doctors:  doctors,
		Slots:    slots,
		SlotKind: kind,
	}, nil
}
