package review

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alantheprice/canvasreview/pkg/capture"
	"github.com/alantheprice/canvasreview/pkg/checks"
	"github.com/alantheprice/canvasreview/pkg/events"
	"github.com/alantheprice/canvasreview/pkg/session"
	"github.com/alantheprice/canvasreview/pkg/spec"
)

// fakeDriver implements capture.BrowserDriver entirely in memory, so
// review_test.go never touches a real browser.
type fakeDriver struct {
	elements map[int]*capture.ElementInfo
	a11yOK   bool
	violations []capture.A11yViolation
}

func (f *fakeDriver) Navigate(ctx context.Context, url string) error { return nil }

func (f *fakeDriver) CaptureScreenshot(ctx context.Context, outPath string) error {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, img)
}

func (f *fakeDriver) SnapshotDOM(ctx context.Context, compact bool) (*capture.DOMNode, error) {
	return &capture.DOMNode{Tag: "html"}, nil
}

func (f *fakeDriver) RunA11yScan(ctx context.Context) ([]capture.A11yViolation, bool) {
	return f.violations, f.a11yOK
}

func (f *fakeDriver) ExtractElements(ctx context.Context) (map[int]*capture.ElementInfo, error) {
	return f.elements, nil
}

func (f *fakeDriver) Close() error { return nil }

func writeSpecFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const contrastSpecBody = `---
name: contrast-spec
version: "1.0"
---

## Visual

### Checks

#### color-contrast
- **Severity**: major
- **Description**: text has sufficient contrast
- **Config**: minimum_ratio: 4.5
`

// Scenario A (spec.md §8): a low-contrast text element yields exactly
// one color-contrast issue graded major.
func TestReviewDetectsLowContrastEndToEnd(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSpecFile(t, dir, "contrast.md", contrastSpecBody)

	loader := spec.NewLoader(nil)
	registry := checks.NewRegistry()
	bus := events.NewBus()
	artifactRoot := filepath.Join(dir, "artifacts")

	driver := &fakeDriver{
		a11yOK: true,
		elements: map[int]*capture.ElementInfo{
			0: {
				Handle: 0, Tag: "p", ID: "low-contrast", TextContent: "hard to read",
				ComputedStyles: capture.ComputedStyles{Color: "rgb(119, 119, 119)", BackgroundColor: "rgb(136, 136, 136)"},
				BoundingBox:    capture.BoundingBox{X: 0, Y: 0, W: 100, H: 20},
			},
		},
	}

	orch := New(loader, registry, bus, artifactRoot, capture.Viewport{Width: 1280, Height: 800},
		func(ctx context.Context) (capture.BrowserDriver, error) { return driver, nil })

	result := orch.Review(context.Background(), "https://example.com", specPath, Options{})
	require.True(t, result.OK, result.Message)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "color-contrast", result.Issues[0].CheckID)
	assert.Equal(t, "major", result.Issues[0].Severity)
	assert.NotEmpty(t, result.Issues[0].CSSSelector)
	assert.Equal(t, "C", result.PillarGrades["Visual"].Grade)

	data, err := os.ReadFile(filepath.Join(artifactRoot, result.SessionID, "session.json"))
	require.NoError(t, err)
	var sessionFile session.File
	require.NoError(t, json.Unmarshal(data, &sessionFile))
	assert.Equal(t, session.SchemaVersion, sessionFile.SchemaVersion)
}

const touchTargetSpecBody = `---
name: touch-spec
version: "1.0"
---

## Interaction

### Checks

#### touch-targets
- **Severity**: blocking
- **Description**: interactive elements are large enough to tap
- **Config**: minimum_size: 44
`

// Scenario B (spec.md §8): a small button fails touch-targets and
// grades its pillar F.
func TestReviewDetectsSmallTouchTarget(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSpecFile(t, dir, "touch.md", touchTargetSpecBody)

	loader := spec.NewLoader(nil)
	registry := checks.NewRegistry()
	bus := events.NewBus()
	artifactRoot := filepath.Join(dir, "artifacts")

	driver := &fakeDriver{
		a11yOK: true,
		elements: map[int]*capture.ElementInfo{
			0: {Handle: 0, Tag: "BUTTON", BoundingBox: capture.BoundingBox{W: 20, H: 20}},
		},
	}

	orch := New(loader, registry, bus, artifactRoot, capture.Viewport{Width: 1280, Height: 800},
		func(ctx context.Context) (capture.BrowserDriver, error) { return driver, nil })

	result := orch.Review(context.Background(), "https://example.com", specPath, Options{Annotate: true})
	require.True(t, result.OK, result.Message)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "blocking", result.Issues[0].Severity)
	assert.Equal(t, "F", result.PillarGrades["Interaction"].Grade)
	assert.NotEmpty(t, result.Artifacts.Annotated)
}

const altTextSpecBody = `---
name: alt-spec
version: "1.0"
---

## Content

### Checks

#### alt-text
- **Severity**: minor
- **Description**: images have meaningful alt text
`

// alt-text's missing-alt outcome is intrinsically blocking (§4.3),
// independent of the check's declared severity and independent of
// whether any *other* element on the page produced a different
// severity. A page where every image is missing alt (a homogeneous
// batch) must not have that blocking severity silently downgraded to
// the check's declared "minor".
func TestReviewAltTextMissingAltStaysBlockingEvenWhenHomogeneous(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSpecFile(t, dir, "alt.md", altTextSpecBody)

	driver := &fakeDriver{
		a11yOK: true,
		elements: map[int]*capture.ElementInfo{
			0: {Handle: 0, Tag: "img", BoundingBox: capture.BoundingBox{W: 10, H: 10}},
			1: {Handle: 1, Tag: "img", BoundingBox: capture.BoundingBox{W: 10, H: 10}},
		},
	}

	orch := New(spec.NewLoader(nil), checks.NewRegistry(), events.NewBus(), filepath.Join(dir, "artifacts"), capture.Viewport{Width: 1280, Height: 800},
		func(ctx context.Context) (capture.BrowserDriver, error) { return driver, nil })

	result := orch.Review(context.Background(), "https://example.com", specPath, Options{})
	require.True(t, result.OK, result.Message)
	require.Len(t, result.Issues, 2)
	for _, iss := range result.Issues {
		assert.Equal(t, "blocking", iss.Severity)
	}
}

// The annotator's contrast fallback (§4.5) only fires when the engine
// actually samples the element's background and threads it through;
// this exercises that path end to end rather than hand-setting
// BackgroundHex on an annotate.Issue directly.
func TestReviewPlumbsElementBackgroundIntoAnnotatorFallback(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSpecFile(t, dir, "touch.md", touchTargetSpecBody)
	artifactRoot := filepath.Join(dir, "artifacts")

	driver := &fakeDriver{
		a11yOK: true,
		elements: map[int]*capture.ElementInfo{
			0: {
				Handle: 0, Tag: "BUTTON",
				ComputedStyles: capture.ComputedStyles{BackgroundColor: "rgb(220, 53, 69)"}, // matches severityColorHex[blocking]
				BoundingBox:    capture.BoundingBox{W: 20, H: 20},
			},
		},
	}

	orch := New(spec.NewLoader(nil), checks.NewRegistry(), events.NewBus(), artifactRoot, capture.Viewport{Width: 1280, Height: 800},
		func(ctx context.Context) (capture.BrowserDriver, error) { return driver, nil })

	result := orch.Review(context.Background(), "https://example.com", specPath, Options{Annotate: true})
	require.True(t, result.OK, result.Message)
	require.Len(t, result.Issues, 1)
	require.NotEmpty(t, result.Artifacts.Annotated)
	for _, d := range result.Diagnostics {
		assert.NotEqual(t, "AnnotationError", d.ErrorKind)
	}

	cap := &capture.Capture{Elements: driver.elements}
	handle := 0
	assert.Equal(t, "#dc3545", elementBackgroundHex(cap, &handle))
}

// Exercises detectSourceFiles through the real pipeline: being
// unit-tested in isolation doesn't prove DetectSourceFile is ever
// reached from Review, so this sets SourceSearchRoot on the
// Orchestrator itself and checks both the returned issue and the
// written issues.md pick up the hint.
func TestReviewWiresSourceSearchRootIntoIssuesAndMarkdown(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSpecFile(t, dir, "touch.md", touchTargetSpecBody)
	artifactRoot := filepath.Join(dir, "artifacts")

	srcRoot := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(srcRoot, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "Checkout.tsx"), []byte(`<button id="buy-now">Buy now</button>`), 0o644))

	driver := &fakeDriver{
		a11yOK: true,
		elements: map[int]*capture.ElementInfo{
			0: {Handle: 0, Tag: "BUTTON", ID: "buy-now", BoundingBox: capture.BoundingBox{W: 20, H: 20}},
		},
	}

	orch := New(spec.NewLoader(nil), checks.NewRegistry(), events.NewBus(), artifactRoot, capture.Viewport{Width: 1280, Height: 800},
		func(ctx context.Context) (capture.BrowserDriver, error) { return driver, nil })
	orch.SourceSearchRoot = srcRoot

	result := orch.Review(context.Background(), "https://example.com", specPath, Options{GenerateMarkdown: true})
	require.True(t, result.OK, result.Message)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, filepath.Join(srcRoot, "Checkout.tsx"), result.Issues[0].SourceFile)

	md, err := os.ReadFile(filepath.Join(artifactRoot, result.SessionID, "issues.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "Likely defined in")
	assert.Contains(t, string(md), "Checkout.tsx")
}

func TestReviewReturnsNavigationErrorWithoutWritingSession(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSpecFile(t, dir, "touch.md", touchTargetSpecBody)
	artifactRoot := filepath.Join(dir, "artifacts")

	orch := New(spec.NewLoader(nil), checks.NewRegistry(), events.NewBus(), artifactRoot, capture.Viewport{},
		func(ctx context.Context) (capture.BrowserDriver, error) { return nil, assertError{} })

	result := orch.Review(context.Background(), "https://example.com", specPath, Options{})
	assert.False(t, result.OK)
	assert.Equal(t, "NavigationError", result.ErrorKind)

	entries, _ := os.ReadDir(artifactRoot)
	assert.Empty(t, entries)
}

func TestReviewUnknownSpecIDFails(t *testing.T) {
	dir := t.TempDir()
	orch := New(spec.NewLoader(nil), checks.NewRegistry(), events.NewBus(), filepath.Join(dir, "artifacts"), capture.Viewport{},
		func(ctx context.Context) (capture.BrowserDriver, error) { return &fakeDriver{a11yOK: true}, nil })

	result := orch.Review(context.Background(), "https://example.com", "does-not-exist", Options{})
	assert.False(t, result.OK)
	assert.Equal(t, "SpecNotFound", result.ErrorKind)
}

type assertError struct{}

func (assertError) Error() string { return "failed to launch browser" }

func TestReviewCompactModeOmitsDetails(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSpecFile(t, dir, "contrast.md", contrastSpecBody)
	artifactRoot := filepath.Join(dir, "artifacts")

	driver := &fakeDriver{
		a11yOK: true,
		elements: map[int]*capture.ElementInfo{
			0: {Handle: 0, Tag: "p", TextContent: "hard to read",
				ComputedStyles: capture.ComputedStyles{Color: "rgb(119, 119, 119)", BackgroundColor: "rgb(136, 136, 136)"},
				BoundingBox:    capture.BoundingBox{W: 100, H: 20}},
		},
	}
	orch := New(spec.NewLoader(nil), checks.NewRegistry(), events.NewBus(), artifactRoot, capture.Viewport{},
		func(ctx context.Context) (capture.BrowserDriver, error) { return driver, nil })

	result := orch.Review(context.Background(), "https://example.com", specPath, Options{Compact: true})
	require.True(t, result.OK)
	require.NotNil(t, result.Compact)
	require.Len(t, result.Compact.Issues, 1)
	assert.NotEmpty(t, result.Compact.Issues[0].Description)
	assert.LessOrEqual(t, len(result.Compact.Issues[0].Description), 100)
}
