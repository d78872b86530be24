package spec

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	canvaserrors "github.com/alantheprice/canvasreview/pkg/errors"
)

// frontmatter covers both shapes spec.md §4.1 requires: the spec form
// ({name, version, extends}) and the skill form ({name, description}).
// Both parse into the same struct; unset fields default below.
type frontmatter struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Extends     string `yaml:"extends"`
	Description string `yaml:"description"`
}

var (
	h2Heading     = regexp.MustCompile(`^##\s+(.+)$`)
	h3Heading     = regexp.MustCompile(`^###\s+(.+)$`)
	h4Heading     = regexp.MustCompile(`^####\s+(.+)$`)
	bulletKV      = regexp.MustCompile(`^-\s*\*\*(\w[\w ]*)\*\*:\s*(.+)$`)
	overridesHead = regexp.MustCompile(`^##\s+Overrides\s*$`)
)

// Loader resolves spec ids to fully-merged Specs, caching by the
// requested spec id and serializing concurrent loads of the same id behind
// a single-writer lock, per spec.md §5's "spec cache is read-mostly"
// rule.
type Loader struct {
	searchRoots []string
	mu          sync.Mutex
	cache       map[string]*Spec
	locks       map[string]*sync.Mutex
}

// NewLoader builds a Loader that searches the given project search
// roots, in order, when resolving a bare spec id.
func NewLoader(searchRoots []string) *Loader {
	return &Loader{
		searchRoots: searchRoots,
		cache:       make(map[string]*Spec),
		locks:       make(map[string]*sync.Mutex),
	}
}

func (l *Loader) lockFor(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.locks[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	l.locks[key] = m
	return m
}

// Load resolves specID to a fully-merged Spec, following "extends"
// recursively and applying overrides. specID may be a bare name
// (resolved against search roots) or a direct path.
func (l *Loader) Load(specID string) (*Spec, error) {
	key := specID
	lock := l.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	l.mu.Lock()
	if cached, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return cached, nil
	}
	l.mu.Unlock()

	resolved, err := l.resolve(specID, map[string]bool{})
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[key] = resolved
	l.mu.Unlock()
	return resolved, nil
}

func (l *Loader) findPath(specID string) (string, error) {
	if _, err := os.Stat(specID); err == nil {
		return specID, nil
	}
	for _, root := range l.searchRoots {
		candidate := root
		if !strings.HasSuffix(candidate, ".md") {
			candidate = filepath.Join(root, specID+".md")
		}
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", canvaserrors.New(canvaserrors.SpecNotFound, fmt.Sprintf("spec %q not found in search roots", specID))
}

// resolve loads one spec document, recursively resolving its "extends"
// parent (tracked in loading to detect cycles), and returns the merged
// result.
func (l *Loader) resolve(specID string, loading map[string]bool) (*Spec, error) {
	path, err := l.findPath(specID)
	if err != nil {
		return nil, err
	}

	if loading[path] {
		return nil, canvaserrors.New(canvaserrors.SpecCycle, fmt.Sprintf("extends cycle detected at %q", path))
	}
	loading[path] = true

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, canvaserrors.Wrap(canvaserrors.SpecParseError, "failed to read spec file", err)
	}

	child, err := parseDocument(string(raw), path)
	if err != nil {
		return nil, err
	}

	if child.Extends == "" {
		return child, nil
	}

	parent, err := l.resolve(child.Extends, loading)
	if err != nil {
		return nil, err
	}

	merged := mergeSpecs(parent, child)

	// Apply the child's ## Overrides again now that inherited checks are
	// present; misses recorded against the child alone are replaced.
	_, body, _ := splitFrontmatter(string(raw))
	_, overrides, _ := parseBody(body)
	merged.diagnostics = append([]string{}, parent.diagnostics...)
	applyOverrides(merged, overrides)
	if err := validateSeverities(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// parseDocument splits frontmatter from body and parses both.
func parseDocument(raw string, path string) (*Spec, error) {
	fm, body, err := splitFrontmatter(raw)
	if err != nil {
		return nil, err
	}

	version := fm.Version
	if version == "" {
		version = "1.0"
	}

	s := &Spec{
		Name:         fm.Name,
		Version:      version,
		Extends:      fm.Extends,
		ResolvedFrom: path,
	}

	pillars, overrides, err := parseBody(body)
	if err != nil {
		return nil, err
	}
	s.Pillars = pillars

	// Inline overrides (declared in ## Overrides) apply to this
	// document's own checks too, in case a spec redefines and then
	// overrides in the same file; overrides of inherited checks are
	// applied by resolve after mergeSpecs.
	applyOverrides(s, overrides)

	if err := validateSeverities(s); err != nil {
		return nil, err
	}

	return s, nil
}

func splitFrontmatter(raw string) (*frontmatter, string, error) {
	trimmed := strings.TrimLeft(raw, "\n")
	if !strings.HasPrefix(trimmed, "---") {
		return nil, "", canvaserrors.New(canvaserrors.SpecParseError, "spec is missing a YAML frontmatter block")
	}

	rest := trimmed[3:]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return nil, "", canvaserrors.New(canvaserrors.SpecParseError, "spec frontmatter block is not closed")
	}

	fmBlock := rest[:idx]
	body := rest[idx+4:]
	body = strings.TrimPrefix(body, "\n")

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(fmBlock), &fm); err != nil {
		return nil, "", canvaserrors.Wrap(canvaserrors.SpecParseError, "malformed frontmatter YAML", err)
	}
	if fm.Name == "" {
		return nil, "", canvaserrors.New(canvaserrors.SpecParseError, "frontmatter is missing required field \"name\"")
	}

	return &fm, body, nil
}

// parseBody walks the markdown body line by line, collecting H2
// sections as pillars, H4 items within a "### Checks" subsection as
// checks, and a dedicated "## Overrides" section as override blocks.
func parseBody(body string) ([]*Pillar, []*Override, error) {
	lines := strings.Split(body, "\n")

	var pillars []*Pillar
	var overrides []*Override

	var currentPillar *Pillar
	var currentCheck *Check
	inChecksSection := false
	inOverridesSection := false
	var currentOverride *Override

	flushCheck := func() {
		if currentCheck != nil && currentPillar != nil {
			currentPillar.Checks = append(currentPillar.Checks, currentCheck)
		}
		currentCheck = nil
	}
	flushOverride := func() {
		if currentOverride != nil {
			overrides = append(overrides, currentOverride)
		}
		currentOverride = nil
	}
	flushPillar := func() {
		flushCheck()
		if currentPillar != nil {
			pillars = append(pillars, currentPillar)
		}
		currentPillar = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t\r")

		if overridesHead.MatchString(trimmed) {
			flushPillar()
			inOverridesSection = true
			inChecksSection = false
			continue
		}

		if m := h2Heading.FindStringSubmatch(trimmed); m != nil && !overridesHead.MatchString(trimmed) {
			if inOverridesSection {
				flushOverride()
				inOverridesSection = false
			}
			flushPillar()
			currentPillar = &Pillar{Name: strings.TrimSpace(m[1])}
			inChecksSection = false
			continue
		}

		if inOverridesSection {
			if m := h3Heading.FindStringSubmatch(trimmed); m != nil {
				flushOverride()
				currentOverride = &Override{CheckID: strings.TrimSpace(m[1]), Config: map[string]interface{}{}}
				continue
			}
			if kv := bulletKV.FindStringSubmatch(trimmed); kv != nil && currentOverride != nil {
				applyBulletToOverride(currentOverride, kv[1], kv[2])
			}
			continue
		}

		if m := h3Heading.FindStringSubmatch(trimmed); m != nil {
			inChecksSection = strings.EqualFold(strings.TrimSpace(m[1]), "Checks")
			continue
		}

		if m := h4Heading.FindStringSubmatch(trimmed); m != nil && inChecksSection {
			flushCheck()
			currentCheck = &Check{
				ID:     strings.TrimSpace(m[1]),
				Config: map[string]interface{}{},
			}
			continue
		}

		if currentCheck != nil {
			if kv := bulletKV.FindStringSubmatch(trimmed); kv != nil {
				applyBulletToCheck(currentCheck, kv[1], kv[2])
				continue
			}
			if strings.HasPrefix(strings.TrimSpace(trimmed), "-") && currentCheck.Description != "" {
				// continuation bullet without a **Key**: prefix is
				// treated as free text appended to the description.
			}
		}
	}

	if inOverridesSection {
		flushOverride()
	} else {
		flushPillar()
	}

	return pillars, overrides, nil
}

func applyBulletToCheck(c *Check, key, value string) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "severity":
		c.Severity = Severity(strings.ToLower(strings.TrimSpace(value)))
	case "description":
		c.Description = strings.TrimSpace(value)
	case "howtocheck", "how to check":
		c.HowToCheck = strings.TrimSpace(value)
	case "approvedvalues", "approved values":
		for _, v := range strings.Split(value, ",") {
			c.ApprovedValues = append(c.ApprovedValues, strings.TrimSpace(v))
		}
	case "config":
		mergeConfigLine(c.Config, value)
	default:
		// unrecognized bullet keys are treated as additional opaque
		// config knobs, matching the loose "opaque mapping" contract.
		c.Config[strings.ToLower(strings.TrimSpace(key))] = coerceScalar(strings.TrimSpace(value))
	}
}

func applyBulletToOverride(o *Override, key, value string) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "severity":
		o.Severity = Severity(strings.ToLower(strings.TrimSpace(value)))
	case "config":
		mergeConfigLine(o.Config, value)
	default:
		o.Config[strings.ToLower(strings.TrimSpace(key))] = coerceScalar(strings.TrimSpace(value))
	}
}

// mergeConfigLine parses "key: value, key2: value2" style config
// bullet bodies into the target map, coercing numeric scalars.
func mergeConfigLine(target map[string]interface{}, value string) {
	parts := strings.Split(value, ",")
	for _, part := range parts {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		k := strings.TrimSpace(kv[0])
		v := strings.TrimSpace(kv[1])
		if k == "" {
			continue
		}
		target[k] = coerceScalar(v)
	}
}

func coerceScalar(v string) interface{} {
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

func validateSeverities(s *Spec) error {
	for _, p := range s.Pillars {
		for _, c := range p.Checks {
			if c.Severity == "" {
				continue // severity may arrive later via an ancestor merge
			}
			if !ValidSeverity(string(c.Severity)) {
				return canvaserrors.New(canvaserrors.SpecInvalidSeverity, fmt.Sprintf("check %q has invalid severity %q", c.ID, c.Severity))
			}
		}
	}
	return nil
}

// applyOverrides mutates s's checks in place per the given overrides,
// recording a diagnostic (not an error) for any override whose target
// check id does not exist.
func applyOverrides(s *Spec, overrides []*Override) {
	for _, o := range overrides {
		check, _, found := s.CheckByID(o.CheckID)
		if !found {
			s.diagnostics = append(s.diagnostics, fmt.Sprintf("override targets unknown check id %q", o.CheckID))
			continue
		}
		if o.Severity != "" {
			check.Severity = o.Severity
		}
		for k, v := range o.Config {
			check.Config[k] = v
		}
	}
}

// mergeSpecs combines a resolved parent with a child document: checks
// are merged by id (most-derived wins on conflicting severity fields,
// config keys merge shallowly). The child's own "## Overrides" section
// is applied to the merged result by resolve, so it takes precedence
// over both inherited checks and inline redefinitions.
func mergeSpecs(parent, child *Spec) *Spec {
	merged := &Spec{
		Name:         child.Name,
		Version:      child.Version,
		Extends:      child.Extends,
		ResolvedFrom: child.ResolvedFrom,
		diagnostics:  append([]string{}, parent.diagnostics...),
	}
	merged.diagnostics = append(merged.diagnostics, child.diagnostics...)

	pillarIndex := make(map[string]*Pillar)
	var order []string

	for _, p := range parent.Pillars {
		clone := &Pillar{Name: p.Name, Description: p.Description}
		for _, c := range p.Checks {
			cc := *c
			cc.Config = cloneConfig(c.Config)
			clone.Checks = append(clone.Checks, &cc)
		}
		pillarIndex[p.Name] = clone
		order = append(order, p.Name)
	}

	for _, p := range child.Pillars {
		existing, ok := pillarIndex[p.Name]
		if !ok {
			clone := &Pillar{Name: p.Name, Description: p.Description}
			clone.Checks = append(clone.Checks, p.Checks...)
			pillarIndex[p.Name] = clone
			order = append(order, p.Name)
			continue
		}
		if p.Description != "" {
			existing.Description = p.Description
		}
		for _, childCheck := range p.Checks {
			mergeCheckInto(existing, childCheck)
		}
	}

	for _, name := range order {
		merged.Pillars = append(merged.Pillars, pillarIndex[name])
	}

	return merged
}

func mergeCheckInto(p *Pillar, childCheck *Check) {
	for i, existing := range p.Checks {
		if existing.ID == childCheck.ID {
			// most-derived (child) wins for severity/description when set
			if childCheck.Severity != "" {
				existing.Severity = childCheck.Severity
			}
			if childCheck.Description != "" {
				existing.Description = childCheck.Description
			}
			if childCheck.HowToCheck != "" {
				existing.HowToCheck = childCheck.HowToCheck
			}
			if len(childCheck.ApprovedValues) > 0 {
				existing.ApprovedValues = childCheck.ApprovedValues
			}
			for k, v := range childCheck.Config {
				existing.Config[k] = v
			}
			p.Checks[i] = existing
			return
		}
	}
	p.Checks = append(p.Checks, childCheck)
}

func cloneConfig(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
