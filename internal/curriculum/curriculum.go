// Package curriculum holds the read-only practice content: writing exercises,
// speech exercises and annotated speeches, each tied to a day of the cycle.
package curriculum

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// CycleLength is the number of days after which the curriculum repeats.
const CycleLength = 30

//go:embed content/*.yaml
var contentFS embed.FS

// Catalog is an immutable, validated set of curriculum content.
type Catalog struct {
	writings []WritingMaterial
	speeches []SpeechMaterial
	analyses []SpeechAnalysis
}

// Load parses the embedded content files.
func Load() (*Catalog, error) {
	c := &Catalog{}
	files := []struct {
		name string
		dest any
	}{
		{"content/writing_materials.yaml", &c.writings},
		{"content/speech_materials.yaml", &c.speeches},
		{"content/speech_analyses.yaml", &c.analyses},
	}
	for _, f := range files {
		data, err := contentFS.ReadFile(f.name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.name, err)
		}
		if err := yaml.Unmarshal(data, f.dest); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f.name, err)
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustLoad is Load for content that ships with the binary.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// New builds a catalog from explicit lists, validating them.
func New(writings []WritingMaterial, speeches []SpeechMaterial, analyses []SpeechAnalysis) (*Catalog, error) {
	c := &Catalog{writings: writings, speeches: speeches, analyses: analyses}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	ids := make(map[string]bool)
	checkID := func(id string) error {
		if id == "" {
			return fmt.Errorf("material with empty id")
		}
		if ids[id] {
			return fmt.Errorf("duplicate material id %q", id)
		}
		ids[id] = true
		return nil
	}
	checkDay := func(kind string, seen map[int]string, id string, day int) error {
		if day < 1 || day > CycleLength {
			return fmt.Errorf("%s %s: day_number %d outside 1..%d", kind, id, day, CycleLength)
		}
		if prev, ok := seen[day]; ok {
			return fmt.Errorf("%s %s: day_number %d already used by %s", kind, id, day, prev)
		}
		seen[day] = id
		return nil
	}

	days := make(map[int]string)
	for _, m := range c.writings {
		if err := checkID(m.ID); err != nil {
			return err
		}
		if err := checkDay("writing", days, m.ID, m.DayNumber); err != nil {
			return err
		}
		if !m.Type.Valid() {
			return fmt.Errorf("writing %s: unknown type %q", m.ID, m.Type)
		}
		if m.Difficulty < 1 || m.Difficulty > 3 {
			return fmt.Errorf("writing %s: difficulty %d outside 1..3", m.ID, m.Difficulty)
		}
		if !m.Phase.Valid() {
			return fmt.Errorf("writing %s: invalid phase %d", m.ID, m.Phase)
		}
	}

	days = make(map[int]string)
	for _, m := range c.speeches {
		if err := checkID(m.ID); err != nil {
			return err
		}
		if err := checkDay("speech", days, m.ID, m.DayNumber); err != nil {
			return err
		}
		if !m.Type.Valid() {
			return fmt.Errorf("speech %s: unknown type %q", m.ID, m.Type)
		}
		if m.Difficulty < 1 || m.Difficulty > 3 {
			return fmt.Errorf("speech %s: difficulty %d outside 1..3", m.ID, m.Difficulty)
		}
		if !m.Phase.Valid() {
			return fmt.Errorf("speech %s: invalid phase %d", m.ID, m.Phase)
		}
	}

	days = make(map[int]string)
	for _, a := range c.analyses {
		if err := checkID(a.ID); err != nil {
			return err
		}
		if err := checkDay("analysis", days, a.ID, a.DayNumber); err != nil {
			return err
		}
		for _, s := range a.StructureBreakdown {
			switch s.Type {
			case "opening", "body", "closing":
			default:
				return fmt.Errorf("analysis %s: unknown segment type %q", a.ID, s.Type)
			}
		}
	}
	return nil
}

// Writings returns a copy of all writing materials.
func (c *Catalog) Writings() []WritingMaterial {
	return append([]WritingMaterial(nil), c.writings...)
}

// Speeches returns a copy of all speech materials.
func (c *Catalog) Speeches() []SpeechMaterial {
	return append([]SpeechMaterial(nil), c.speeches...)
}

// Analyses returns a copy of all speech analyses.
func (c *Catalog) Analyses() []SpeechAnalysis {
	out := make([]SpeechAnalysis, len(c.analyses))
	for i, a := range c.analyses {
		out[i] = a.clone()
	}
	return out
}

// WritingByID returns the writing material with the given id, or nil.
func (c *Catalog) WritingByID(id string) *WritingMaterial {
	for i := range c.writings {
		if c.writings[i].ID == id {
			m := c.writings[i]
			return &m
		}
	}
	return nil
}

// SpeechByID returns the speech material with the given id, or nil.
func (c *Catalog) SpeechByID(id string) *SpeechMaterial {
	for i := range c.speeches {
		if c.speeches[i].ID == id {
			m := c.speeches[i]
			return &m
		}
	}
	return nil
}

// AnalysisByID returns the speech analysis with the given id, or nil.
func (c *Catalog) AnalysisByID(id string) *SpeechAnalysis {
	for i := range c.analyses {
		if c.analyses[i].ID == id {
			a := c.analyses[i].clone()
			return &a
		}
	}
	return nil
}

// WritingForDay returns the writing material scheduled for a day in the cycle, or nil.
func (c *Catalog) WritingForDay(day int) *WritingMaterial {
	for i := range c.writings {
		if c.writings[i].DayNumber == day {
			m := c.writings[i]
			return &m
		}
	}
	return nil
}

// SpeechForDay returns the speech material scheduled for a day in the cycle, or nil.
func (c *Catalog) SpeechForDay(day int) *SpeechMaterial {
	for i := range c.speeches {
		if c.speeches[i].DayNumber == day {
			m := c.speeches[i]
			return &m
		}
	}
	return nil
}

// AnalysisForDay returns the speech analysis scheduled for a day in the cycle, or nil.
func (c *Catalog) AnalysisForDay(day int) *SpeechAnalysis {
	for i := range c.analyses {
		if c.analyses[i].DayNumber == day {
			a := c.analyses[i].clone()
			return &a
		}
	}
	return nil
}
