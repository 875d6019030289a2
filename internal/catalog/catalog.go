// Package catalog holds the read-only reference data used to fabricate
// candidates: the identity pool, company and university pools and the
// per-country locale data. It is loaded once per process.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"applygen-backend/resume/model"
)

//go:embed catalog.yaml
var embedded []byte

// ErrInvalidCatalog is returned when catalog data fails validation.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Country carries locale-specific data for one target country.
type Country struct {
	Name     string `yaml:"name" json:"name"`
	Language string `yaml:"language" json:"language"`
	// AlwaysIncludeLanguage requires the local language on every resume,
	// regardless of whether the job description mentions it.
	AlwaysIncludeLanguage bool     `yaml:"alwaysIncludeLanguage" json:"alwaysIncludeLanguage"`
	Cities                []string `yaml:"cities" json:"cities"`
	Universities          []string `yaml:"universities" json:"universities"`
	Companies             []string `yaml:"companies" json:"companies"`
}

// OriginGroups maps the three balance groups to origin tags.
type OriginGroups struct {
	Majority  []string `yaml:"majority"`
	MinorityA []string `yaml:"minorityA"`
	MinorityB []string `yaml:"minorityB"`
}

// CountBounds bounds the requested candidate count.
type CountBounds struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Catalog is the immutable reference data set.
type Catalog struct {
	countBounds     CountBounds
	educationLevels []string
	candidates      []model.Candidate
	originGroups    OriginGroups
	companies       []string
	universities    []string
	countries       []Country
}

type document struct {
	CountBounds     CountBounds       `yaml:"countBounds"`
	EducationLevels []string          `yaml:"educationLevels"`
	Candidates      []model.Candidate `yaml:"candidates"`
	OriginGroups    OriginGroups      `yaml:"originGroups"`
	Companies       []string          `yaml:"companies"`
	Universities    []string          `yaml:"universities"`
	Countries       []Country         `yaml:"countries"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog. It panics if the embedded data is invalid.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(embedded)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load reads a catalog from path, or returns the embedded catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates catalog YAML.
func Parse(raw []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &Catalog{
		countBounds:     doc.CountBounds,
		educationLevels: doc.EducationLevels,
		candidates:      doc.Candidates,
		originGroups:    doc.OriginGroups,
		companies:       doc.Companies,
		universities:    doc.Universities,
		countries:       doc.Countries,
	}, nil
}

func (d *document) validate() error {
	var errs []error
	if len(d.Candidates) == 0 {
		errs = append(errs, errors.New("candidates must not be empty"))
	}
	seen := make(map[string]struct{}, len(d.Candidates))
	for i := range d.Candidates {
		c := &d.Candidates[i]
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, fmt.Errorf("candidates[%d].name is required", i))
		}
		if c.ID == "" {
			c.ID = fmt.Sprintf("c%02d", i+1)
		}
		if _, dup := seen[c.ID]; dup {
			errs = append(errs, fmt.Errorf("candidates[%d].id %q is duplicated", i, c.ID))
		}
		seen[c.ID] = struct{}{}
	}
	if len(d.Universities) < 2 {
		errs = append(errs, errors.New("universities needs at least two entries"))
	}
	if len(d.EducationLevels) == 0 {
		errs = append(errs, errors.New("educationLevels must not be empty"))
	}
	if len(d.Countries) == 0 {
		errs = append(errs, errors.New("countries must not be empty"))
	}
	for i, c := range d.Countries {
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, fmt.Errorf("countries[%d].name is required", i))
		}
		if len(c.Cities) == 0 {
			errs = append(errs, fmt.Errorf("countries[%d].cities must not be empty", i))
		}
		if len(c.Companies) == 0 {
			errs = append(errs, fmt.Errorf("countries[%d].companies must not be empty", i))
		}
	}
	if d.CountBounds.Min <= 0 {
		d.CountBounds.Min = 2
	}
	if d.CountBounds.Max < d.CountBounds.Min {
		d.CountBounds.Max = d.CountBounds.Min
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return nil
}

// Candidates returns a copy of the identity pool.
func (c *Catalog) Candidates() []model.Candidate {
	return append([]model.Candidate(nil), c.candidates...)
}

// Companies returns a copy of the global company pool.
func (c *Catalog) Companies() []string {
	return append([]string(nil), c.companies...)
}

// Universities returns a copy of the global university pool.
func (c *Catalog) Universities() []string {
	return append([]string(nil), c.universities...)
}

// OriginGroups returns the balance group definitions.
func (c *Catalog) OriginGroups() OriginGroups {
	return OriginGroups{
		Majority:  append([]string(nil), c.originGroups.Majority...),
		MinorityA: append([]string(nil), c.originGroups.MinorityA...),
		MinorityB: append([]string(nil), c.originGroups.MinorityB...),
	}
}

// EducationLevels returns the supported education levels.
func (c *Catalog) EducationLevels() []string {
	return append([]string(nil), c.educationLevels...)
}

// ValidEducationLevel reports whether level is supported.
func (c *Catalog) ValidEducationLevel(level string) bool {
	for _, l := range c.educationLevels {
		if l == level {
			return true
		}
	}
	return false
}

// CountBounds returns the accepted candidate count range.
func (c *Catalog) CountBounds() CountBounds {
	return c.countBounds
}

// Country looks up a country by case-insensitive name.
func (c *Catalog) Country(name string) (Country, bool) {
	name = strings.TrimSpace(name)
	for _, country := range c.countries {
		if strings.EqualFold(country.Name, name) {
			return country.clone(), true
		}
	}
	return Country{}, false
}

// Countries returns all countries in catalog order.
func (c *Catalog) Countries() []Country {
	out := make([]Country, 0, len(c.countries))
	for _, country := range c.countries {
		out = append(out, country.clone())
	}
	return out
}

// CountryNames returns country names in catalog order.
func (c *Catalog) CountryNames() []string {
	out := make([]string, 0, len(c.countries))
	for _, country := range c.countries {
		out = append(out, country.Name)
	}
	return out
}

func (c Country) clone() Country {
	c.Cities = append([]string(nil), c.Cities...)
	c.Universities = append([]string(nil), c.Universities...)
	c.Companies = append([]string(nil), c.Companies...)
	return c
}

// IsGraduateLevel reports whether the education level implies a master's
// degree on top of a bachelor's.
func IsGraduateLevel(level string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(level)), "master")
}
