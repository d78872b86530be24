package review

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alantheprice/canvasreview/pkg/budget"
	"github.com/alantheprice/canvasreview/pkg/capture"
	"github.com/alantheprice/canvasreview/pkg/checks"
	canvaserrors "github.com/alantheprice/canvasreview/pkg/errors"
	"github.com/alantheprice/canvasreview/pkg/events"
	"github.com/alantheprice/canvasreview/pkg/logging"
	"github.com/alantheprice/canvasreview/pkg/session"
	"github.com/alantheprice/canvasreview/pkg/spec"
)

// navigationTimeout is the hard per-review navigation budget, per
// spec.md §5.
const navigationTimeout = 30 * time.Second

// DriverFactory opens a browser context for one review. Tests supply
// a fake; production wires capture.Open.
type DriverFactory func(ctx context.Context) (capture.BrowserDriver, error)

// Orchestrator ties the engine's components together into the
// public review()/compare() operations.
type Orchestrator struct {
	Loader       *spec.Loader
	Registry     *checks.Registry
	Bus          *events.Bus
	ArtifactRoot string
	Viewport     capture.Viewport
	OpenDriver   DriverFactory
	// SourceSearchRoot, when non-empty, is the project tree detectSourceFile
	// scans to enrich issues.md with "Likely defined in" hints (§4.2's
	// supplemented detectSourceFile operation). Left empty, no source
	// lookup is attempted.
	SourceSearchRoot string
}

// New constructs an Orchestrator from its collaborators.
func New(loader *spec.Loader, registry *checks.Registry, bus *events.Bus, artifactRoot string, viewport capture.Viewport, openDriver DriverFactory) *Orchestrator {
	return &Orchestrator{
		Loader:       loader,
		Registry:     registry,
		Bus:          bus,
		ArtifactRoot: artifactRoot,
		Viewport:     viewport,
		OpenDriver:   openDriver,
	}
}

// Review runs the pipeline end-to-end for one URL, per spec.md §4.2's
// 8-step algorithm.
func (o *Orchestrator) Review(ctx context.Context, url, specID string, opts Options) *Result {
	log := logging.Get()

	// Step 1: resolve spec via loader.
	resolvedSpec, err := o.Loader.Load(specID)
	if err != nil {
		kind, _ := canvaserrors.KindOf(err)
		return &Result{OK: false, ErrorKind: string(kind), Message: err.Error()}
	}

	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = session.NewSessionID()
	}

	o.Bus.PublishReviewStarted(url, sessionID, resolvedSpec.Name)

	// Step 2: acquire a scoped browser context; navigate with a hard
	// timeout.
	navCtx, cancel := context.WithTimeout(ctx, navigationTimeout)
	defer cancel()

	driver, err := o.OpenDriver(navCtx)
	if err != nil {
		return &Result{OK: false, ErrorKind: string(canvaserrors.NavigationError), Message: err.Error()}
	}
	defer driver.Close()

	if err := driver.Navigate(navCtx, url); err != nil {
		if navCtx.Err() != nil {
			return &Result{OK: false, ErrorKind: string(canvaserrors.NavigationTimeout), Message: "navigation timed out"}
		}
		return &Result{OK: false, ErrorKind: string(canvaserrors.NavigationError), Message: err.Error()}
	}

	paths := session.PathsFor(o.ArtifactRoot, sessionID)
	if _, err := session.EnsureDir(o.ArtifactRoot, sessionID); err != nil {
		return &Result{OK: false, ErrorKind: string(canvaserrors.ArtifactWriteError), Message: err.Error()}
	}

	// Step 3: capture page state once; every check reads the snapshot.
	cap, diagnostics, err := o.capturePage(ctx, driver, url, paths.Screenshot)
	if err != nil {
		session.Remove(o.ArtifactRoot, sessionID)
		return &Result{OK: false, ErrorKind: string(canvaserrors.ArtifactWriteError), Message: err.Error()}
	}

	// Steps 4-5: invoke evaluators in spec order, assign ids, resolve
	// selectors.
	issues, evalDiagnostics, handles := o.runChecks(resolvedSpec, cap, opts.Selector)
	diagnostics = append(diagnostics, evalDiagnostics...)
	o.detectSourceFiles(issues)

	for _, iss := range issues {
		o.Bus.PublishIssueFound(iss)
	}

	// Step 6: pillar grades.
	pillarGrades := gradePillars(resolvedSpec, issues)
	summary := summarize(issues, pillarGrades)

	// Step 7: annotate + derived documents.
	artifacts := session.Artifacts{Screenshot: paths.Screenshot}
	if opts.Annotate {
		if err := renderAnnotation(paths.Screenshot, issues, handles, cap, paths.Annotated); err != nil {
			log.Warn("annotation failed: %v", err)
			diagnostics = append(diagnostics, session.Diagnostic{
				ErrorKind: string(canvaserrors.AnnotationError), Message: err.Error(),
			})
		} else {
			artifacts.Annotated = paths.Annotated
		}
	}

	report := &session.Report{
		SessionID:    sessionID,
		URL:          url,
		Issues:       issues,
		Diagnostics:  diagnostics,
		PillarGrades: pillarGrades,
	}

	var previousMarkdown string
	if opts.SessionID != "" {
		if existing, err := os.ReadFile(paths.Markdown); err == nil {
			previousMarkdown = string(existing)
		}
	}

	if opts.GenerateMarkdown || opts.SessionID != "" {
		md := session.GenerateMarkdown(report)
		if err := session.WriteText(paths.Markdown, md); err == nil {
			artifacts.Markdown = paths.Markdown
		}
		if previousMarkdown != "" && previousMarkdown != md {
			diffText := session.Diff(previousMarkdown, md)
			if err := session.WriteText(paths.Diff, diffText); err == nil {
				artifacts.Diff = paths.Diff
			}
		}
	}
	if opts.GenerateTasks {
		if err := session.WriteText(paths.Tasks, session.GenerateTasks(report)); err == nil {
			artifacts.Tasks = paths.Tasks
		}
	}

	if err := session.WriteReport(paths.Report, report); err != nil {
		session.Remove(o.ArtifactRoot, sessionID)
		return &Result{OK: false, ErrorKind: string(canvaserrors.ArtifactWriteError), Message: err.Error()}
	}
	artifacts.Report = paths.Report

	now := time.Now().UTC().Format(time.RFC3339)
	sessionFile := &session.File{
		SchemaVersion: session.SchemaVersion,
		SessionID:     sessionID,
		URL:           url,
		StartTime:     now,
		EndTime:       now,
		Spec:          session.SpecRef{Name: resolvedSpec.Name, Version: resolvedSpec.Version, ResolvedFrom: resolvedSpec.ResolvedFrom},
		Summary:       summary,
		PillarGrades:  pillarGrades,
		Issues:        issues,
		Artifacts:     artifacts,
	}

	if err := session.WriteSessionJSON(paths.SessionJSON, sessionFile); err != nil {
		session.Remove(o.ArtifactRoot, sessionID)
		return &Result{OK: false, ErrorKind: string(canvaserrors.ArtifactWriteError), Message: err.Error()}
	}

	o.Bus.PublishReviewCompleted(sessionID, map[string]int{
		"blocking": summary.Blocking, "major": summary.Major, "minor": summary.Minor, "passing": summary.Passing,
	}, pillarGradesToInterface(pillarGrades))

	result := &Result{
		OK:           true,
		SessionID:    sessionID,
		URL:          url,
		Summary:      summary,
		PillarGrades: pillarGrades,
		Issues:       issues,
		Artifacts:    artifacts,
		Diagnostics:  diagnostics,
	}

	if opts.Compact {
		result.Compact = session.Compact(sessionFile)
	}

	result.TokenEstimate = estimateResultTokens(result)
	responseBudget := budget.FromPreset(budgetPresetFor(opts.Compact))
	if err := responseBudget.Add("response", result.TokenEstimate); err != nil {
		result.Diagnostics = append(result.Diagnostics, session.Diagnostic{
			ErrorKind: string(canvaserrors.BudgetExceeded),
			Message:   err.Error(),
		})
	}

	return result
}

// budgetPresetFor picks the token envelope a review's output is
// measured against, per spec.md §4.7: compact mode targets a tighter
// ceiling than a full review.
func budgetPresetFor(compact bool) string {
	if compact {
		return "compact_review"
	}
	return "full_review"
}

// estimateResultTokens approximates the token cost of the JSON surface
// a caller actually receives: the compact projection when present,
// otherwise the full result.
func estimateResultTokens(r *Result) int {
	var payload interface{} = r
	if r.Compact != nil {
		payload = r.Compact
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return 0
	}
	return budget.EstimateTokens(string(b), false)
}

// detectSourceFiles best-effort-enriches each issue with the project
// file its selector was likely defined in, feeding the "Likely defined
// in" line in GenerateMarkdown's output (§4.2's supplemented
// detectSourceFile operation). A miss, or an unconfigured search root,
// leaves SourceFile empty.
func (o *Orchestrator) detectSourceFiles(issues []session.Issue) {
	if o.SourceSearchRoot == "" {
		return
	}
	for i := range issues {
		if issues[i].CSSSelector == "" {
			continue
		}
		if file, ok := session.DetectSourceFile(issues[i].CSSSelector, o.SourceSearchRoot); ok {
			issues[i].SourceFile = file
		}
	}
}

func pillarGradesToInterface(grades map[string]session.PillarGrade) map[string]interface{} {
	out := make(map[string]interface{}, len(grades))
	for k, v := range grades {
		out[k] = v
	}
	return out
}

func (o *Orchestrator) capturePage(ctx context.Context, driver capture.BrowserDriver, url, screenshotPath string) (*capture.Capture, []session.Diagnostic, error) {
	if err := driver.CaptureScreenshot(ctx, screenshotPath); err != nil {
		return nil, nil, fmt.Errorf("screenshot capture failed: %w", err)
	}

	domTree, err := driver.SnapshotDOM(ctx, false)
	if err != nil {
		return nil, nil, fmt.Errorf("DOM snapshot failed: %w", err)
	}

	elements, err := driver.ExtractElements(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("element extraction failed: %w", err)
	}

	var diagnostics []session.Diagnostic
	a11yReport, ok := driver.RunA11yScan(ctx)
	a11yFailed := !ok
	if a11yFailed {
		diagnostics = append(diagnostics, session.Diagnostic{
			ErrorKind: string(canvaserrors.A11yScanFailed),
			Message:   "accessibility scan did not complete; a11y-dependent checks are skipped",
		})
	}

	cap := &capture.Capture{
		URL:            url,
		Viewport:       o.Viewport,
		Timestamp:      time.Now().UTC(),
		ScreenshotPath: screenshotPath,
		DOMTree:        domTree,
		A11yReport:     a11yReport,
		A11yScanFailed: a11yFailed,
		Elements:       elements,
	}
	return cap, diagnostics, nil
}
