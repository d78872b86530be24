// Package spec loads declarative design specs: markdown documents with
// YAML frontmatter describing pillars of checks, with inheritance via
// "extends" and a dedicated overrides section.
package spec

// Severity is the closed vocabulary a check's severity must belong to.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// ValidSeverity reports whether s is one of the three allowed tokens.
func ValidSeverity(s string) bool {
	switch Severity(s) {
	case SeverityBlocking, SeverityMajor, SeverityMinor:
		return true
	}
	return false
}

// Check is one reviewable property within a pillar.
type Check struct {
	ID             string                 `yaml:"id" json:"id"`
	Severity       Severity               `json:"severity"`
	Description    string                 `json:"description"`
	Config         map[string]interface{} `json:"config"`
	HowToCheck     string                 `json:"howToCheck,omitempty"`
	ApprovedValues []string               `json:"approvedValues,omitempty"`
}

// Pillar is a named grouping of related checks.
type Pillar struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Checks      []*Check `json:"checks"`
}

// Override declares a partial update to an inherited check, by id.
type Override struct {
	CheckID  string
	Severity Severity
	Config   map[string]interface{}
}

// Spec is a fully-resolved, immutable collection of pillars.
type Spec struct {
	Name         string
	Version      string
	Extends      string
	Pillars      []*Pillar
	ResolvedFrom string // path the root document was loaded from

	diagnostics []string // override-target-not-found warnings, non-fatal
}

// Diagnostics returns non-fatal warnings accumulated while resolving
// this spec (e.g. a dangling override).
func (s *Spec) Diagnostics() []string {
	return s.diagnostics
}

// CheckByID returns the check with the given id, if present, searching
// all pillars.
func (s *Spec) CheckByID(id string) (*Check, *Pillar, bool) {
	for _, p := range s.Pillars {
		for _, c := range p.Checks {
			if c.ID == id {
				return c, p, true
			}
		}
	}
	return nil, nil, false
}

// AllChecks returns every check across all pillars, in pillar order
// then check order — the order the review orchestrator invokes them in.
func (s *Spec) AllChecks() []*Check {
	var out []*Check
	for _, p := range s.Pillars {
		out = append(out, p.Checks...)
	}
	return out
}
