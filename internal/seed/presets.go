package seed

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"aura/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var defaultCatalog []byte

// CircleTemplate describes one built-in mood circle.
type CircleTemplate struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Mood        models.Mood `yaml:"mood"`
}

// Preset sizes a seeding run.
type Preset struct {
	Name            string  `yaml:"-"`
	Users           int     `yaml:"users"`
	PostsPerUser    int     `yaml:"postsPerUser"`
	AnonymousRatio  float64 `yaml:"anonymousRatio"`
	CapsulesPerUser int     `yaml:"capsulesPerUser"`
	VibesPerPost    int     `yaml:"vibesPerPost"`
	CircleJoins     int     `yaml:"circleJoins"`
	MaxDays         int     `yaml:"maxDays"`
}

// Catalog is the parsed preset file.
type Catalog struct {
	Circles []CircleTemplate  `yaml:"circles"`
	Presets map[string]Preset `yaml:"presets"`
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes and checks a preset file.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse seed catalog: %w", err)
	}

	seen := make(map[string]bool, len(c.Circles))
	for i, circle := range c.Circles {
		name := strings.TrimSpace(circle.Name)
		if name == "" {
			return nil, fmt.Errorf("circle %d has no name", i)
		}
		if !circle.Mood.Valid() {
			return nil, fmt.Errorf("circle %q has unknown mood %q", name, circle.Mood)
		}
		if seen[name] {
			return nil, fmt.Errorf("circle %q listed twice", name)
		}
		seen[name] = true
		c.Circles[i].Name = name
	}

	for name, p := range c.Presets {
		p.Name = name
		if p.Users < 0 || p.PostsPerUser < 0 || p.CapsulesPerUser < 0 || p.VibesPerPost < 0 || p.CircleJoins < 0 {
			return nil, fmt.Errorf("preset %q has a negative count", name)
		}
		if p.AnonymousRatio < 0 || p.AnonymousRatio > 1 {
			return nil, fmt.Errorf("preset %q anonymousRatio must be between 0 and 1", name)
		}
		if p.MaxDays <= 0 {
			p.MaxDays = 90
		}
		c.Presets[name] = p
	}

	return &c, nil
}

// Preset looks up a preset by name, case-insensitively.
func (c *Catalog) Preset(name string) (Preset, error) {
	p, ok := c.Presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(c.PresetNames(), ", "))
	}
	return p, nil
}

// PresetNames lists the preset names in sorted order.
func (c *Catalog) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
