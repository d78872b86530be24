package review

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/alantheprice/canvasreview/pkg/compare"
	canvaserrors "github.com/alantheprice/canvasreview/pkg/errors"
	"github.com/alantheprice/canvasreview/pkg/session"
)

// Compare captures url and diffs it against referencePath, per
// spec.md §4.2's compare() operation and §4.6's comparator contract.
func (o *Orchestrator) Compare(ctx context.Context, url, referencePath string, opts CompareOptions) *CompareResult {
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = session.NewSessionID()
	}

	navCtx, cancel := context.WithTimeout(ctx, navigationTimeout)
	defer cancel()

	driver, err := o.OpenDriver(navCtx)
	if err != nil {
		return &CompareResult{OK: false, ErrorKind: string(canvaserrors.NavigationError), Message: err.Error()}
	}
	defer driver.Close()

	if err := driver.Navigate(navCtx, url); err != nil {
		if navCtx.Err() != nil {
			return &CompareResult{OK: false, ErrorKind: string(canvaserrors.NavigationTimeout), Message: "navigation timed out"}
		}
		return &CompareResult{OK: false, ErrorKind: string(canvaserrors.NavigationError), Message: err.Error()}
	}

	paths := session.PathsFor(o.ArtifactRoot, sessionID)
	if _, err := session.EnsureDir(o.ArtifactRoot, sessionID); err != nil {
		return &CompareResult{OK: false, ErrorKind: string(canvaserrors.ArtifactWriteError), Message: err.Error()}
	}

	if err := driver.CaptureScreenshot(ctx, paths.Screenshot); err != nil {
		session.Remove(o.ArtifactRoot, sessionID)
		return &CompareResult{OK: false, ErrorKind: string(canvaserrors.ArtifactWriteError), Message: err.Error()}
	}

	compareOpts := compare.Options{
		Method:         opts.Method,
		PixelThreshold: opts.PixelThreshold,
		SSIMThreshold:  opts.SSIMThreshold,
		DiffStyle:      opts.DiffStyle,
	}
	if compareOpts.Method == "" {
		compareOpts.Method = compare.MethodHybrid
	}
	if compareOpts.PixelThreshold == 0 {
		compareOpts.PixelThreshold = 5.0
	}
	if compareOpts.SSIMThreshold == 0 {
		compareOpts.SSIMThreshold = 0.95
	}
	if compareOpts.DiffStyle == "" {
		compareOpts.DiffStyle = compare.StyleOverlay
	}

	result, err := compare.Compare(referencePath, paths.Screenshot, compareOpts, paths.Diff)
	if err != nil {
		kind, ok := canvaserrors.KindOf(err)
		if !ok {
			kind = canvaserrors.ArtifactWriteError
		}
		session.Remove(o.ArtifactRoot, sessionID)
		return &CompareResult{OK: false, ErrorKind: string(kind), Message: err.Error()}
	}

	artifacts := session.Artifacts{Screenshot: paths.Screenshot, Diff: result.DiffImagePath}

	if err := writeCompareReport(paths.Report, sessionID, url, result); err != nil {
		session.Remove(o.ArtifactRoot, sessionID)
		return &CompareResult{OK: false, ErrorKind: string(canvaserrors.ArtifactWriteError), Message: err.Error()}
	}
	artifacts.Report = paths.Report

	now := time.Now().UTC().Format(time.RFC3339)
	sessionFile := &session.File{
		SchemaVersion: session.SchemaVersion,
		SessionID:     sessionID,
		URL:           url,
		StartTime:     now,
		EndTime:       now,
		PillarGrades:  map[string]session.PillarGrade{},
		Artifacts:     artifacts,
	}
	if err := session.WriteSessionJSON(paths.SessionJSON, sessionFile); err != nil {
		session.Remove(o.ArtifactRoot, sessionID)
		return &CompareResult{OK: false, ErrorKind: string(canvaserrors.ArtifactWriteError), Message: err.Error()}
	}

	return &CompareResult{OK: true, SessionID: sessionID, Result: result, Artifacts: artifacts}
}

func writeCompareReport(path, sessionID, url string, result *compare.Result) error {
	payload := struct {
		SessionID string         `json:"sessionId"`
		URL       string         `json:"url"`
		Result    *compare.Result `json:"result"`
	}{SessionID: sessionID, URL: url, Result: result}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return canvaserrors.Wrap(canvaserrors.ArtifactWriteError, "failed to marshal comparison report", err)
	}
	return os.WriteFile(path, data, 0o644)
}
