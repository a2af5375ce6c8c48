// Package slotfile reads per-date and per-procedure slot configurations.
// Files may be JSON or YAML; the shape of the document decides the variant
// unless a mode is forced.
package slotfile

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
)

// Mode selects how a document is interpreted.
type Mode string

const (
	ModeAuto        Mode = "auto"
	ModeByDate      Mode = "by_date"
	ModeByProcedure Mode = "by_procedure"
)

// ParseMode validates a mode name. Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeByDate, ModeByProcedure:
		return m, nil
	default:
		return "", fmt.Errorf("%w: slot file mode must be auto, by_date or by_procedure, got %q", domain.ErrConfiguration, s)
	}
}

// Load reads and parses a slot file.
func Load(path string, catalog *domain.Catalog, mode Mode) (domain.SlotSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SlotSource{}, fmt.Errorf("%w: read slot file %s: %v", domain.ErrConfiguration, path, err)
	}
	return Parse(data, catalog, mode)
}

// Parse decodes a slot document. In auto mode a mapping with any key naming
// a catalog procedure is read per procedure, anything else per date.
func Parse(data []byte, catalog *domain.Catalog, mode Mode) (domain.SlotSource, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.SlotSource{}, fmt.Errorf("%w: decode slot file: %v", domain.ErrConfiguration, err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return domain.SlotSource{}, fmt.Errorf("%w: slot file must be a mapping", domain.ErrConfiguration)
	}
	root := doc.Content[0]

	if mode == ModeAuto || mode == "" {
		mode = ModeByDate
		for i := 0; i < len(root.Content); i += 2 {
			if catalog.Has(root.Content[i].Value) {
				mode = ModeByProcedure
				break
			}
		}
	}

	if mode == ModeByProcedure {
		return parseByProcedure(root, catalog)
	}
	return parseByDate(root)
}

func parseByDate(root *yaml.Node) (domain.SlotSource, error) {
	byDate := make(map[time.Time][]domain.Clock, len(root.Content)/2)
	for i := 0; i < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		date, err := domain.ParseDate(key.Value)
		if err != nil {
			return domain.SlotSource{}, err
		}
		slots, err := slotList(val, "date "+key.Value)
		if err != nil {
			return domain.SlotSource{}, err
		}
		byDate[date] = slots
	}
	return domain.NewByDateSlotSource(byDate)
}

func parseByProcedure(root *yaml.Node, catalog *domain.Catalog) (domain.SlotSource, error) {
	byProc := make(map[string]domain.ProcedureSlots, len(root.Content)/2)
	for i := 0; i < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if !catalog.Has(key.Value) {
			return domain.SlotSource{}, fmt.Errorf("%w: unknown procedure key in slots config: %s", domain.ErrConfiguration, key.Value)
		}
		var ps domain.ProcedureSlots
		if val.Kind == yaml.MappingNode {
			ps.Groups = make(map[string][]domain.Clock, len(val.Content)/2)
			for j := 0; j < len(val.Content); j += 2 {
				group := val.Content[j].Value
				slots, err := slotList(val.Content[j+1], fmt.Sprintf("procedure %s group %s", key.Value, group))
				if err != nil {
					return domain.SlotSource{}, err
				}
				ps.Groups[group] = slots
			}
		} else {
			slots, err := slotList(val, "procedure "+key.Value)
			if err != nil {
				return domain.SlotSource{}, err
			}
			ps.Flat = slots
		}
		byProc[key.Value] = ps
	}
	return domain.NewByProcedureSlotSource(byProc)
}

// slotList accepts a single time or a list of times.
func slotList(n *yaml.Node, what string) ([]domain.Clock, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return domain.ParseSlotList([]string{n.Value})
	case yaml.SequenceNode:
		values := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: slots for %s must be a list of times", domain.ErrConfiguration, what)
			}
			values = append(values, item.Value)
		}
		return domain.ParseSlotList(values)
	default:
		return nil, fmt.Errorf("%w: slots for %s must be a list or string", domain.ErrConfiguration, what)
	}
}
