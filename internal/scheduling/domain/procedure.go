package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// ProceduresPerAppointment is the fixed number of procedures in one appointment.
const ProceduresPerAppointment = 4

// RoleClass says which staff position performs a procedure.
type RoleClass string

const (
	// RoleSenior procedures are done by the group B staff in position 2.
	RoleSenior RoleClass = "senior"
	// RoleJunior procedures alternate between the group A staff in positions 1 and 3.
	RoleJunior RoleClass = "junior"
)

// ParseRoleClass accepts "senior"/"junior" and the clinic spellings "bs"/"ys".
func ParseRoleClass(s string) (RoleClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "senior", "bs":
		return RoleSenior, nil
	case "junior", "ys":
		return RoleJunior, nil
	default:
		return "", fmt.Errorf("%w: unknown role class %q", ErrConfiguration, s)
	}
}

// ProcedureSpec describes one catalog procedure.
type ProcedureSpec struct {
	Name     string
	Duration time.Duration
	Role     RoleClass
}

// NormalizeProcedureKey folds a user-supplied procedure name onto the catalog spelling.
func NormalizeProcedureKey(s string) string {
	s = strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
	return strings.ReplaceAll(s, "thuỷ", "thủy")
}

// Catalog is the immutable set of known procedures.
type Catalog struct {
	specs map[string]ProcedureSpec
}

// NewCatalog validates and indexes the given procedures.
func NewCatalog(specs []ProcedureSpec) (*Catalog, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: procedure catalog is empty", ErrConfiguration)
	}
	c := &Catalog{specs: make(map[string]ProcedureSpec, len(specs))}
	for _, s := range specs {
		s.Name = NormalizeProcedureKey(s.Name)
		if s.Name == "" {
			return nil, fmt.Errorf("%w: procedure name is required", ErrConfiguration)
		}
		if s.Duration <= 0 {
			return nil, fmt.Errorf("%w: procedure %q needs a positive duration", ErrConfiguration, s.Name)
		}
		if s.Role != RoleSenior && s.Role != RoleJunior {
			return nil, fmt.Errorf("%w: procedure %q has role %q", ErrConfiguration, s.Name, s.Role)
		}
		if _, dup := c.specs[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate procedure %q", ErrConfiguration, s.Name)
		}
		c.specs[s.Name] = s
	}
	return c, nil
}

// Lookup returns the spec for a procedure name in any accepted spelling.
func (c *Catalog) Lookup(name string) (ProcedureSpec, error) {
	spec, ok := c.specs[NormalizeProcedureKey(name)]
	if !ok {
		return ProcedureSpec{}, fmt.Errorf("%w: unknown procedure %q", ErrConfiguration, name)
	}
	return spec, nil
}

// Has reports whether name is a catalog procedure.
func (c *Catalog) Has(name string) bool {
	_, ok := c.specs[NormalizeProcedureKey(name)]
	return ok
}

// Names lists catalog procedures in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.specs))
	for n := range c.specs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Specs lists catalog entries in name order.
func (c *Catalog) Specs() []ProcedureSpec {
	out := make([]ProcedureSpec, 0, len(c.specs))
	for _, n := range c.Names() {
		out = append(out, c.specs[n])
	}
	return out
}

// NormalizeProcedures normalizes a procedure list and checks it holds exactly
// four known procedures.
func (c *Catalog) NormalizeProcedures(procs []string) ([]string, error) {
	out := make([]string, 0, len(procs))
	for _, p := range procs {
		if p = NormalizeProcedureKey(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) != ProceduresPerAppointment {
		return nil, fmt.Errorf("%w: procedures must contain exactly %d items, got %d",
			ErrConfiguration, ProceduresPerAppointment, len(out))
	}
	var missing []string
	for _, p := range out {
		if !c.Has(p) {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: unknown procedures: %s", ErrConfiguration, strings.Join(missing, ", "))
	}
	return out, nil
}

// ParseProcedures splits a procedure list written as "a-b-c-d", "a,b,c,d" or
// "a;b;c;d" and validates it against the catalog.
func (c *Catalog) ParseProcedures(s string) ([]string, error) {
	var parts []string
	switch {
	case strings.Contains(s, ";"):
		parts = strings.Split(s, ";")
	case strings.Contains(s, ","):
		parts = strings.Split(s, ",")
	default:
		parts = strings.Split(s, "-")
	}
	return c.NormalizeProcedures(parts)
}
