package session

// compactDescriptionLimit is the per-issue description cap in compact
// mode, per spec.md §4.7.
const compactDescriptionLimit = 100

// CompactIssue is the subset of Issue kept in compact mode: no raw
// a11y trees, no DOM snapshots, no details, no recommendation.
type CompactIssue struct {
	ID          int    `json:"id"`
	CheckID     string `json:"checkId"`
	Severity    string `json:"severity"`
	Element     string `json:"element"`
	Description string `json:"description"`
}

// CompactResult is the compact-mode response: summary, pillar grades,
// per-issue minimal fields, and artifact paths — targeted at staying
// under 20K tokens for a full review.
type CompactResult struct {
	SessionID    string                 `json:"sessionId"`
	Summary      Summary                `json:"summary"`
	PillarGrades map[string]PillarGrade `json:"pillarGrades"`
	Issues       []CompactIssue         `json:"issues"`
	Artifacts    Artifacts              `json:"artifacts"`
}

// Compact projects a full File down to its compact-mode response.
func Compact(f *File) *CompactResult {
	issues := make([]CompactIssue, len(f.Issues))
	for i, iss := range f.Issues {
		issues[i] = CompactIssue{
			ID:          iss.ID,
			CheckID:     iss.CheckID,
			Severity:    iss.Severity,
			Element:     iss.CSSSelector,
			Description: truncate(iss.Description, compactDescriptionLimit),
		}
	}
	return &CompactResult{
		SessionID:    f.SessionID,
		Summary:      f.Summary,
		PillarGrades: f.PillarGrades,
		Issues:       issues,
		Artifacts:    f.Artifacts,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
