package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	canvaserrors "github.com/alantheprice/canvasreview/pkg/errors"
)

// maxStringLen enforces the "no base64 in session.json" invariant:
// session.json never contains a string longer than 1 KB.
const maxStringLen = 1024

// DefaultRoot is the artifact filesystem root relative to the project
// directory the CLI was invoked from.
const DefaultRoot = ".canvas/reviews"

// NewSessionID returns a ses-<12 hex> session id, per the open
// question decision recorded for this implementation: a UUID-derived
// id composes with concurrent reviews without a shared counter.
func NewSessionID() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "ses-" + raw[:12]
}

// Dir returns the session directory path for sessionID under root.
func Dir(root, sessionID string) string {
	return filepath.Join(root, sessionID)
}

// EnsureDir creates the session directory (and any parents), returning
// its path.
func EnsureDir(root, sessionID string) (string, error) {
	dir := Dir(root, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", canvaserrors.Wrap(canvaserrors.ArtifactWriteError, "failed to create session directory", err)
	}
	return dir, nil
}

// Remove deletes a partially-written session directory, per the
// cancellation/fatal-failure cleanup rule in §5/§7.
func Remove(root, sessionID string) error {
	return os.RemoveAll(Dir(root, sessionID))
}

// Paths are the well-known file paths inside one session directory.
type Paths struct {
	Dir         string
	SessionJSON string
	Report      string
	Screenshot  string
	Annotated   string
	Markdown    string
	Tasks       string
	Diff        string
}

// PathsFor computes every well-known artifact path for a session,
// without creating anything on disk.
func PathsFor(root, sessionID string) Paths {
	dir := Dir(root, sessionID)
	return Paths{
		Dir:         dir,
		SessionJSON: filepath.Join(dir, "session.json"),
		Report:      filepath.Join(dir, "report.json"),
		Screenshot:  filepath.Join(dir, "screenshot.png"),
		Annotated:   filepath.Join(dir, "annotated.png"),
		Markdown:    filepath.Join(dir, "issues.md"),
		Tasks:       filepath.Join(dir, "tasks.md"),
		Diff:        filepath.Join(dir, "issues.diff"),
	}
}

// WriteSessionJSON marshals f and writes it to path, refusing to
// write if any string value inside it exceeds maxStringLen (the
// invariant that catches an accidentally-inlined base64 blob).
func WriteSessionJSON(path string, f *File) error {
	if err := checkNoLongStrings(f); err != nil {
		return err
	}
	return writeJSON(path, f)
}

// WriteReport marshals the full typed report to path.
func WriteReport(path string, r *Report) error {
	return writeJSON(path, r)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return canvaserrors.Wrap(canvaserrors.ArtifactWriteError, "failed to marshal artifact", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return canvaserrors.Wrap(canvaserrors.ArtifactWriteError, "failed to write artifact", err)
	}
	return nil
}

// WriteText writes a plain-text artifact (markdown, diff) to path.
func WriteText(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return canvaserrors.Wrap(canvaserrors.ArtifactWriteError, "failed to write artifact", err)
	}
	return nil
}

// checkNoLongStrings walks f's marshaled JSON looking for any string
// value over maxStringLen characters, which would indicate an
// accidentally-embedded binary blob rather than a path reference.
func checkNoLongStrings(f *File) error {
	data, err := json.Marshal(f)
	if err != nil {
		return canvaserrors.Wrap(canvaserrors.ArtifactWriteError, "failed to marshal session.json", err)
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return canvaserrors.Wrap(canvaserrors.ArtifactWriteError, "failed to validate session.json", err)
	}
	if long := findLongString(generic); long != "" {
		return canvaserrors.New(canvaserrors.ArtifactWriteError,
			fmt.Sprintf("session.json would contain a string longer than %d bytes", maxStringLen))
	}
	return nil
}

func findLongString(v interface{}) string {
	switch t := v.(type) {
	case string:
		if len(t) > maxStringLen {
			return t
		}
	case []interface{}:
		for _, item := range t {
			if s := findLongString(item); s != "" {
				return s
			}
		}
	case map[string]interface{}:
		for _, item := range t {
			if s := findLongString(item); s != "" {
				return s
			}
		}
	}
	return ""
}
