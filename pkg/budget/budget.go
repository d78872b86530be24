// Package budget estimates output size and enforces per-stage caps so
// a review's machine-readable output stays within a predictable token
// envelope, mirroring the source skill's token_budget module.
package budget

import (
	"fmt"
	"sync"
)

// charsPerToken is the plain-text estimate ratio; base64 blobs are
// denser per token so they use a lower ratio.
const charsPerToken = 4.0
const charsPerTokenBase64 = 3.5

// EstimateTokens approximates the token count of s. isBase64 selects
// the denser base64 ratio.
func EstimateTokens(s string, isBase64 bool) int {
	ratio := charsPerToken
	if isBase64 {
		ratio = charsPerTokenBase64
	}
	if len(s) == 0 {
		return 0
	}
	n := float64(len(s)) / ratio
	return int(n + 0.999999) // ceil without importing math
}

// Presets mirrors the skill's BUDGETS table: named token ceilings for
// common review stages.
var Presets = map[string]int{
	"compact_review": 20000,
	"full_review":    80000,
	"sub_agent":      10000,
	"screenshot":     1000,
	"a11y":           5000,
	"dom":            5000,
}

// ErrExceeded is returned by Add when usage would exceed the limit.
type ErrExceeded struct {
	Stage   string
	Used    int
	Limit   int
	Attempt int
}

func (e *ErrExceeded) Error() string {
	return fmt.Sprintf("token budget exceeded at stage %q: used=%d attempt=%d limit=%d", e.Stage, e.Used, e.Attempt, e.Limit)
}

// Budget tracks cumulative token usage against a limit, with a warn
// threshold below the hard limit.
type Budget struct {
	mu      sync.Mutex
	Limit   int
	WarnAt  int
	usage   map[string]int
}

// New creates a Budget with the given limit and a warn threshold at
// 80% of the limit, matching the skill's default.
func New(limit int) *Budget {
	return &Budget{
		Limit:  limit,
		WarnAt: int(float64(limit) * 0.8),
		usage:  make(map[string]int),
	}
}

// FromPreset constructs a Budget from a named entry in Presets,
// falling back to full_review if the name is unknown.
func FromPreset(name string) *Budget {
	limit, ok := Presets[name]
	if !ok {
		limit = Presets["full_review"]
	}
	return New(limit)
}

// TotalUsed returns the sum of all recorded stage usage.
func (b *Budget) TotalUsed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, v := range b.usage {
		total += v
	}
	return total
}

// Remaining returns Limit - TotalUsed, never negative.
func (b *Budget) Remaining() int {
	r := b.Limit - b.TotalUsed()
	if r < 0 {
		return 0
	}
	return r
}

// Utilization returns used/limit as a fraction in [0, +inf).
func (b *Budget) Utilization() float64 {
	if b.Limit == 0 {
		return 0
	}
	return float64(b.TotalUsed()) / float64(b.Limit)
}

// IsExceeded reports whether total usage has passed the limit.
func (b *Budget) IsExceeded() bool {
	return b.TotalUsed() > b.Limit
}

// ShouldWarn reports whether total usage has passed WarnAt but not yet
// the hard limit.
func (b *Budget) ShouldWarn() bool {
	used := b.TotalUsed()
	return used >= b.WarnAt && used <= b.Limit
}

// CanAfford reports whether setting stage's usage to n tokens (in place
// of what stage has already recorded) would stay within the limit.
func (b *Budget) CanAfford(stage string, n int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for k, v := range b.usage {
		if k == stage {
			continue
		}
		total += v
	}
	return total+n <= b.Limit
}

// Add records n tokens against stage, returning ErrExceeded if doing
// so would exceed the limit. The usage is still recorded so callers
// can inspect Summary after a hard failure.
func (b *Budget) Add(stage string, n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.usage[stage] += n

	total := 0
	for _, v := range b.usage {
		total += v
	}
	if total > b.Limit {
		return &ErrExceeded{Stage: stage, Used: total, Limit: b.Limit, Attempt: n}
	}
	return nil
}

// Set overwrites the recorded usage for stage to exactly n tokens.
func (b *Budget) Set(stage string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.usage[stage] = n
}

// Reset clears all recorded usage.
func (b *Budget) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.usage = make(map[string]int)
}

// Summary returns a snapshot of per-stage usage plus totals, suitable
// for embedding in diagnostics.
func (b *Budget) Summary() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	byStage := make(map[string]int, len(b.usage))
	for k, v := range b.usage {
		byStage[k] = v
	}
	total := 0
	for _, v := range byStage {
		total += v
	}
	utilization := 0.0
	if b.Limit != 0 {
		utilization = float64(total) / float64(b.Limit)
	}
	return map[string]interface{}{
		"byStage":     byStage,
		"totalUsed":   total,
		"limit":       b.Limit,
		"utilization": utilization,
	}
}
