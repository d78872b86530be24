package capture

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"

	canvaserrors "github.com/alantheprice/canvasreview/pkg/errors"
)

// BrowserDriver is the interface the review orchestrator (pkg/review)
// depends on; pkg/checks never sees it, per the no-browser-callback
// contract boundary in spec.md §4.3.
type BrowserDriver interface {
	Navigate(ctx context.Context, url string) error
	CaptureScreenshot(ctx context.Context, outPath string) error
	SnapshotDOM(ctx context.Context, compact bool) (*DOMNode, error)
	RunA11yScan(ctx context.Context) ([]A11yViolation, bool)
	ExtractElements(ctx context.Context) (map[int]*ElementInfo, error)
	Close() error
}

// ChromeDriver drives a locally-launched Chrome/Chromium instance over
// the DevTools Protocol. Navigation and capture calls are sequential
// and cooperative: the driver owns exactly one page at a time, per
// spec.md §5.
type ChromeDriver struct {
	process *BrowserProcess
	client  *Client
}

// Open launches a new binary process with remote debugging on
// remotePort and connects to its first page target. An already running
// browser on that port is not reused.
func Open(ctx context.Context, binary string, remotePort int) (*ChromeDriver, error) {
	proc, err := Launch(ctx, binary, remotePort)
	if err != nil {
		return nil, err
	}

	wsURL, err := DiscoverPageTarget(ctx, remotePort)
	if err != nil {
		_ = proc.Kill()
		return nil, err
	}

	client, err := Dial(ctx, wsURL)
	if err != nil {
		_ = proc.Kill()
		return nil, err
	}

	return &ChromeDriver{process: proc, client: client}, nil
}

// Close closes the CDP connection and terminates the browser process.
// Every exit path (including a canceled review) must reach this, per
// the scoped browser-context-acquisition design note in spec.md §9.
func (d *ChromeDriver) Close() error {
	if d.client != nil {
		_ = d.client.Close()
	}
	if d.process != nil {
		return d.process.Kill()
	}
	return nil
}

// Navigate loads url and waits for the load event, bounded by the
// caller's context deadline (spec.md §5: navigation has a hard
// timeout, default 30s, applied by the caller via context.WithTimeout).
func (d *ChromeDriver) Navigate(ctx context.Context, url string) error {
	if err := d.client.Call(ctx, "Page.enable", nil, nil); err != nil {
		return err
	}

	type navResult struct {
		FrameID   string `json:"frameId"`
		ErrorText string `json:"errorText"`
	}
	var result navResult
	if err := d.client.Call(ctx, "Page.navigate", map[string]string{"url": url}, &result); err != nil {
		return err
	}
	if result.ErrorText != "" {
		return canvaserrors.New(canvaserrors.NavigationError, result.ErrorText)
	}

	// no event subscription wired; approximate "wait for network-idle"
	// with readyState polling via Runtime.evaluate.
	err := waitFor(ctx, 200*time.Millisecond, func() bool {
		var ready string
		callErr := d.client.Call(ctx, "Runtime.evaluate", map[string]interface{}{
			"expression":    "document.readyState",
			"returnByValue": true,
		}, &evalEnvelope{Result: &evalValue{Value: &ready}})
		return callErr == nil && ready == "complete"
	})
	if err != nil {
		if ctx.Err() != nil {
			return canvaserrors.Wrap(canvaserrors.NavigationTimeout, "navigation did not complete before deadline", err)
		}
		return canvaserrors.Wrap(canvaserrors.NavigationError, "failed waiting for page load", err)
	}
	return nil
}

type evalValue struct {
	Value interface{} `json:"value"`
}

type evalEnvelope struct {
	Result           *evalValue `json:"result"`
	ExceptionDetails *struct {
		Text string `json:"text"`
	} `json:"exceptionDetails,omitempty"`
}

// evaluate runs expression and decodes its JSON-stringified return
// value into out.
func (d *ChromeDriver) evaluate(ctx context.Context, expression string, out interface{}) error {
	var raw string
	env := evalEnvelope{Result: &evalValue{Value: &raw}}
	if err := d.client.Call(ctx, "Runtime.evaluate", map[string]interface{}{
		"expression":    expression,
		"returnByValue": true,
	}, &env); err != nil {
		return err
	}
	if env.ExceptionDetails != nil {
		return canvaserrors.New(canvaserrors.NavigationError, env.ExceptionDetails.Text)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}

// CaptureScreenshot writes a PNG of the current page to outPath.
// Screenshots are always written to disk; the driver never returns
// raw image bytes, per spec.md §4.7's no-inline-base64 rule.
func (d *ChromeDriver) CaptureScreenshot(ctx context.Context, outPath string) error {
	type screenshotResult struct {
		Data string `json:"data"`
	}
	var result screenshotResult
	if err := d.client.Call(ctx, "Page.captureScreenshot", map[string]string{"format": "png"}, &result); err != nil {
		return canvaserrors.Wrap(canvaserrors.AnnotationError, "screenshot capture failed", err)
	}

	data, err := base64.StdEncoding.DecodeString(result.Data)
	if err != nil {
		return canvaserrors.Wrap(canvaserrors.AnnotationError, "failed to decode screenshot payload", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return canvaserrors.Wrap(canvaserrors.ArtifactWriteError, "failed to write screenshot file", err)
	}
	return nil
}

// domBoundsCompact/domBoundsFull encode spec.md §3.2's bounded-tree
// limits for the two capture granularities.
var domBoundsCompact = domBounds{maxDepth: 3, maxChildren: 10, maxText: 50}
var domBoundsFull = domBounds{maxDepth: 5, maxChildren: 20, maxText: 100}

type domBounds struct {
	maxDepth    int
	maxChildren int
	maxText     int
}

// rawDOMNode mirrors the shape of the JS snapshot below.
type rawDOMNode struct {
	Tag      string       `json:"tag"`
	ID       string       `json:"id"`
	Classes  []string     `json:"classes"`
	Text     string       `json:"text"`
	Children []rawDOMNode `json:"children"`
}

const domSnapshotExpr = `
JSON.stringify((function walk(el, depth, maxDepth, maxChildren, maxText) {
  if (!el || depth > maxDepth) return null;
  var kids = [];
  var children = el.children ? Array.prototype.slice.call(el.children, 0, maxChildren) : [];
  for (var i = 0; i < children.length; i++) {
    var child = walk(children[i], depth + 1, maxDepth, maxChildren, maxText);
    if (child) kids.push(child);
  }
  var text = (el.textContent || '').trim().slice(0, maxText);
  return {
    tag: el.tagName ? el.tagName.toLowerCase() : '',
    id: el.id || '',
    classes: el.className ? String(el.className).split(/\s+/).filter(Boolean) : [],
    text: depth === maxDepth || kids.length === 0 ? text : '',
    children: kids
  };
})(document.body, 0, %d, %d, %d))`

// SnapshotDOM returns the bounded DOM tree rooted at document.body.
func (d *ChromeDriver) SnapshotDOM(ctx context.Context, compact bool) (*DOMNode, error) {
	bounds := domBoundsFull
	if compact {
		bounds = domBoundsCompact
	}

	expr := fmt.Sprintf(domSnapshotExpr, bounds.maxDepth, bounds.maxChildren, bounds.maxText)
	var raw rawDOMNode
	if err := d.evaluate(ctx, expr, &raw); err != nil {
		return nil, canvaserrors.Wrap(canvaserrors.NavigationError, "DOM snapshot failed", err)
	}
	return convertDOMNode(raw), nil
}

func convertDOMNode(raw rawDOMNode) *DOMNode {
	node := &DOMNode{Tag: raw.Tag, ID: raw.ID, Classes: raw.Classes, Text: raw.Text}
	for _, c := range raw.Children {
		node.Children = append(node.Children, convertDOMNode(c))
	}
	return node
}

const a11yScanExpr = `
(function() {
  if (typeof axe === 'undefined') return JSON.stringify({available: false});
  try {
    return JSON.stringify({available: true, results: axe.run()});
  } catch (e) {
    return JSON.stringify({available: false, error: String(e)});
  }
})()`

type a11yScanEnvelope struct {
	Available bool `json:"available"`
	Results   *struct {
		Violations []A11yViolation `json:"violations"`
	} `json:"results"`
}

// RunA11yScan evaluates the page's injected accessibility engine (an
// axe-like scanner assumed present on window.axe) and returns its
// violations. The second return value is false when the scan could
// not run — callers treat this as a non-fatal A11yScanFailed
// diagnostic, per spec.md §4.2/§7.
func (d *ChromeDriver) RunA11yScan(ctx context.Context) ([]A11yViolation, bool) {
	var env a11yScanEnvelope
	if err := d.evaluate(ctx, a11yScanExpr, &env); err != nil {
		return nil, false
	}
	if !env.Available || env.Results == nil {
		return nil, false
	}
	return env.Results.Violations, true
}

const elementsSnapshotExpr = `
JSON.stringify((function() {
  function parentChain(el) {
    var chain = [];
    var cur = el.parentElement;
    var depth = 0;
    while (cur && cur.tagName !== 'BODY' && depth < 3) {
      chain.push({
        tag: cur.tagName.toLowerCase(),
        id: cur.id || '',
        classes: cur.className ? String(cur.className).split(/\s+/).filter(Boolean) : []
      });
      cur = cur.parentElement;
      depth++;
    }
    return chain;
  }

  var out = [];
  var all = document.querySelectorAll('*');
  for (var i = 0; i < all.length; i++) {
    var el = all[i];
    var rect = el.getBoundingClientRect();
    var style = window.getComputedStyle(el);
    if (style.display === 'none') continue;
    out.push({
      handle: i,
      tag: el.tagName.toLowerCase(),
      id: el.id || '',
      classes: el.className ? String(el.className).split(/\s+/).filter(Boolean) : [],
      role: el.getAttribute('role') || '',
      alt: el.hasAttribute('alt') ? el.getAttribute('alt') : null,
      type: el.getAttribute('type') || '',
      computedStyles: {
        color: style.color,
        backgroundColor: style.backgroundColor,
        fontSize: style.fontSize,
        fontWeight: style.fontWeight,
        outlineStyle: style.outlineStyle,
        boxShadow: style.boxShadow,
        display: style.display
      },
      boundingBox: {x: rect.x, y: rect.y, w: rect.width, h: rect.height},
      parentChain: parentChain(el),
      textContent: (el.textContent || '').trim().slice(0, 100)
    });
  }
  return out;
})())`

type rawElement struct {
	Handle         int             `json:"handle"`
	Tag            string          `json:"tag"`
	ID             string          `json:"id"`
	Classes        []string        `json:"classes"`
	Role           string          `json:"role"`
	Alt            *string         `json:"alt"`
	Type           string          `json:"type"`
	ComputedStyles ComputedStyles  `json:"computedStyles"`
	BoundingBox    BoundingBox     `json:"boundingBox"`
	ParentChain    []rawParentElem `json:"parentChain"`
	TextContent    string          `json:"textContent"`
}

type rawParentElem struct {
	Tag     string   `json:"tag"`
	ID      string   `json:"id"`
	Classes []string `json:"classes"`
}

// ExtractElements walks every visible element on the page and returns
// a capture-scoped handle → ElementInfo mapping, per spec.md §3.2.
func (d *ChromeDriver) ExtractElements(ctx context.Context) (map[int]*ElementInfo, error) {
	var raw []rawElement
	if err := d.evaluate(ctx, elementsSnapshotExpr, &raw); err != nil {
		return nil, canvaserrors.Wrap(canvaserrors.NavigationError, "element extraction failed", err)
	}

	out := make(map[int]*ElementInfo, len(raw))
	for _, r := range raw {
		info := &ElementInfo{
			Handle:         r.Handle,
			Tag:            r.Tag,
			ID:             r.ID,
			Classes:        r.Classes,
			Role:           r.Role,
			AttrAlt:        r.Alt,
			Type:           r.Type,
			ComputedStyles: r.ComputedStyles,
			BoundingBox:    r.BoundingBox,
			TextContent:    r.TextContent,
		}
		for _, p := range r.ParentChain {
			info.ParentChain = append(info.ParentChain, ElementInfo{Tag: p.Tag, ID: p.ID, Classes: p.Classes})
		}
		out[r.Handle] = info
	}
	return out, nil
}
