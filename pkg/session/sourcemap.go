package session

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var sourceFileExtensions = map[string]bool{
	".html": true, ".htm": true, ".jsx": true, ".tsx": true,
	".vue": true, ".svelte": true, ".js": true, ".ts": true,
}

// DetectSourceFile is a best-effort heuristic that scans searchRoot
// for a file whose text contains the selector's leading token (its id
// or first class, or its bare tag as a last resort). Failure is
// silent — it never blocks the review.
func DetectSourceFile(selector, searchRoot string) (string, bool) {
	token := leadingToken(selector)
	if token == "" || searchRoot == "" {
		return "", false
	}

	var found string
	_ = filepath.WalkDir(searchRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found != "" {
			return nil
		}
		if d.IsDir() {
			if d.Name() == "node_modules" || d.Name() == ".git" || strings.HasPrefix(d.Name(), ".") && d.Name() != "." {
				return filepath.SkipDir
			}
			return nil
		}
		if !sourceFileExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if strings.Contains(string(data), token) {
			found = path
		}
		return nil
	})

	if found == "" {
		return "", false
	}
	return found, true
}

// leadingToken extracts the most identifying fragment of a synthesized
// selector: the id or first class name of its leftmost (outermost)
// segment, or the bare tag if neither is present.
func leadingToken(selector string) string {
	segments := strings.Split(selector, " > ")
	if len(segments) == 0 {
		return ""
	}
	first := segments[0]

	if strings.HasPrefix(first, "#") {
		return strings.TrimPrefix(first, "#")
	}
	if idx := strings.Index(first, "."); idx != -1 {
		rest := first[idx+1:]
		if dot := strings.Index(rest, "."); dot != -1 {
			rest = rest[:dot]
		}
		return rest
	}
	return first
}
