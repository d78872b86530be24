package session

import "github.com/sergi/go-diff/diffmatchpatch"

// Diff computes a character-level diff (go-diff's DiffMain with
// semantic cleanup, rendered by DiffPrettyText) between the previous
// session's issues.md and the newly generated one, written to issues.diff
// alongside the new session's artifacts. This is additive bookkeeping
// — it never changes session.json's schema.
func Diff(previousMarkdown, currentMarkdown string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(previousMarkdown, currentMarkdown, true)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}
