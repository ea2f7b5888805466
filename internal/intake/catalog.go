package intake

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Branch conditions a slot on the judicial choice.
const (
	WhenAlways         = ""
	WhenJudicial       = "judicial"
	WhenAdministrative = "administrative"
)

// Document categories used by the bundled catalogs.
const (
	CategoryCommon         = "Documentos Comuns"
	CategoryAdministrative = "Via Administrativa"
	CategoryJudicial       = "Via Judicial"
)

//go:embed catalogs/*.yaml
var bundled embed.FS

// Slot is one named document the officer must (or may) attach.
type Slot struct {
	Key      string `yaml:"key" json:"key"`
	Category string `yaml:"category" json:"category"`
	Label    string `yaml:"label" json:"label"`
	Hint     string `yaml:"hint" json:"hint,omitempty"`
	Required bool   `yaml:"required" json:"required"`
	When     string `yaml:"when" json:"when,omitempty"`
}

// AppliesTo reports whether the slot is part of a form with the given
// judicial choice.
func (s Slot) AppliesTo(judicial bool) bool {
	switch s.When {
	case WhenJudicial:
		return judicial
	case WhenAdministrative:
		return !judicial
	default:
		return true
	}
}

// Catalog is the configured list of document slots.
type Catalog struct {
	Name  string `yaml:"name" json:"name"`
	Slots []Slot `yaml:"slots" json:"slots"`
}

// LoadCatalog resolves name to a bundled catalog ("default", "judicial")
// or, failing that, reads it as a YAML file path.
func LoadCatalog(name string) (*Catalog, error) {
	if name == "" {
		name = "default"
	}
	data, err := bundled.ReadFile("catalogs/" + name + ".yaml")
	if err != nil {
		data, err = os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("intake: load catalog %q: %w", name, err)
		}
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and checks a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("intake: parse catalog: %w", err)
	}
	if len(c.Slots) == 0 {
		return nil, fmt.Errorf("intake: catalog %q has no slots", c.Name)
	}
	seen := make(map[string]bool, len(c.Slots))
	for i, s := range c.Slots {
		if s.Key == "" || s.Label == "" {
			return nil, fmt.Errorf("intake: slot %d needs a key and a label", i)
		}
		if seen[s.Key] {
			return nil, fmt.Errorf("intake: duplicate slot key %q", s.Key)
		}
		seen[s.Key] = true
		switch s.When {
		case WhenAlways, WhenJudicial, WhenAdministrative:
		default:
			return nil, fmt.Errorf("intake: slot %q has unknown condition %q", s.Key, s.When)
		}
		if s.Category == "" {
			c.Slots[i].Category = CategoryCommon
		}
	}
	return &c, nil
}

// Active returns the slots that apply to the judicial choice, in order.
func (c *Catalog) Active(judicial bool) []Slot {
	out := make([]Slot, 0, len(c.Slots))
	for _, s := range c.Slots {
		if s.AppliesTo(judicial) {
			out = append(out, s)
		}
	}
	return out
}

// Lookup finds a slot by key.
func (c *Catalog) Lookup(key string) (Slot, bool) {
	for _, s := range c.Slots {
		if s.Key == key {
			return s, true
		}
	}
	return Slot{}, false
}

// Branched reports whether any slot depends on the judicial choice.
func (c *Catalog) Branched() bool {
	for _, s := range c.Slots {
		if s.When != WhenAlways {
			return true
		}
	}
	return false
}
