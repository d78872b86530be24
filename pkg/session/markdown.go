package session

import (
	"fmt"
	"sort"
	"strings"
)

var severityEmoji = map[string]string{
	"blocking": "⚫",
	"major":    "🟠",
	"minor":    "🟡",
}

var severityRank = map[string]int{
	"blocking": 0,
	"major":    1,
	"minor":    2,
}

// GenerateMarkdown renders issues.md: a human-readable per-issue
// writeup with severity emoji, selector, description and
// recommendation, grounded on generate_markdown_export.
func GenerateMarkdown(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Design Review — %s\n\n", r.URL)

	if len(r.Issues) == 0 {
		b.WriteString("No issues found.\n")
		return b.String()
	}

	for _, iss := range r.Issues {
		emoji := severityEmoji[iss.Severity]
		fmt.Fprintf(&b, "## %s #%d: %s\n\n", emoji, iss.ID, iss.Description)
		fmt.Fprintf(&b, "- **Check**: %s\n", iss.CheckID)
		fmt.Fprintf(&b, "- **Pillar**: %s\n", iss.Pillar)
		fmt.Fprintf(&b, "- **Severity**: %s\n", iss.Severity)
		if iss.CSSSelector != "" {
			fmt.Fprintf(&b, "- **Selector**: `%s`\n", iss.CSSSelector)
		}
		if iss.SourceFile != "" {
			fmt.Fprintf(&b, "- **Likely defined in**: `%s`\n", iss.SourceFile)
		}
		if iss.Recommendation != "" {
			fmt.Fprintf(&b, "- **Recommendation**: %s\n", iss.Recommendation)
		}
		b.WriteString("\n")
	}

	if len(r.Diagnostics) > 0 {
		b.WriteString("## Diagnostics\n\n")
		for _, d := range r.Diagnostics {
			fmt.Fprintf(&b, "- `%s` (%s): %s\n", d.CheckID, d.ErrorKind, d.Message)
		}
	}

	return b.String()
}

// GenerateTasks renders tasks.md: a checklist grouping issues by
// pillar then severity, one checkbox line per issue with its
// selector and description, grounded on generate_tasks_file.
func GenerateTasks(r *Report) string {
	grouped := make(map[string][]Issue)
	var pillars []string
	for _, iss := range r.Issues {
		if _, ok := grouped[iss.Pillar]; !ok {
			pillars = append(pillars, iss.Pillar)
		}
		grouped[iss.Pillar] = append(grouped[iss.Pillar], iss)
	}
	sort.Strings(pillars)

	var b strings.Builder
	b.WriteString("# Review Tasks\n\n")

	if len(r.Issues) == 0 {
		b.WriteString("No outstanding tasks.\n")
		return b.String()
	}

	for _, pillar := range pillars {
		fmt.Fprintf(&b, "## %s\n\n", pillar)

		issues := grouped[pillar]
		sort.SliceStable(issues, func(i, j int) bool {
			return severityRank[issues[i].Severity] < severityRank[issues[j].Severity]
		})

		for _, iss := range issues {
			line := fmt.Sprintf("- [ ] **#%d** (%s) %s", iss.ID, iss.Severity, iss.Description)
			if iss.CSSSelector != "" {
				line += fmt.Sprintf(" — `%s`", iss.CSSSelector)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}
