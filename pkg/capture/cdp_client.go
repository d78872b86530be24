package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	canvaserrors "github.com/alantheprice/canvasreview/pkg/errors"
)

// safeConn wraps a websocket connection with a write mutex and panic
// recovery, adapted from the teacher's webui SafeConn.
type safeConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  bool
}

func newSafeConn(conn *websocket.Conn) *safeConn {
	return &safeConn{conn: conn}
}

func (sc *safeConn) WriteJSON(v interface{}) error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	if sc.closed {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			sc.closed = true
		}
	}()
	return sc.conn.WriteJSON(v)
}

func (sc *safeConn) Close() error {
	sc.writeMu.Lock()
	sc.closed = true
	sc.writeMu.Unlock()
	return sc.conn.Close()
}

type cdpRequest struct {
	ID     int64       `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

type cdpResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *cdpError       `json:"error,omitempty"`
}

type cdpError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Client is a minimal Chrome DevTools Protocol client over a single
// page-target websocket connection: request/response correlation by
// id, plus a background read loop dispatching responses to waiting
// callers. Modeled on the teacher's read-goroutine/write-loop split
// with context-driven cancellation.
type Client struct {
	conn     *safeConn
	nextID   int64
	mu       sync.Mutex
	pending  map[int64]chan cdpResponse
	cancel   context.CancelFunc
	doneCh   chan struct{}
}

// Dial opens a websocket connection to the given CDP page target URL
// (as returned by the browser's /json/list HTTP endpoint) and starts
// the background read loop.
func Dial(ctx context.Context, wsURL string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, canvaserrors.Wrap(canvaserrors.NavigationError, "failed to connect to browser debugging endpoint", err)
	}

	readCtx, cancel := context.WithCancel(ctx)
	c := &Client{
		conn:    newSafeConn(conn),
		pending: make(map[int64]chan cdpResponse),
		cancel:  cancel,
		doneCh:  make(chan struct{}),
	}
	go c.readLoop(readCtx)
	return c, nil
}

func (c *Client) readLoop(ctx context.Context) {
	defer close(c.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var resp cdpResponse
		if err := c.conn.conn.ReadJSON(&resp); err != nil {
			c.failAllPending(err)
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.mu.Unlock()

		if ok {
			select {
			case ch <- resp:
			default:
			}
		}
	}
}

func (c *Client) failAllPending(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

// Call invokes a CDP method and unmarshals its result into out (which
// may be nil if the caller doesn't need the result).
func (c *Client) Call(ctx context.Context, method string, params interface{}, out interface{}) error {
	id := atomic.AddInt64(&c.nextID, 1)
	respCh := make(chan cdpResponse, 1)

	c.mu.Lock()
	c.pending[id] = respCh
	c.mu.Unlock()

	if err := c.conn.WriteJSON(cdpRequest{ID: id, Method: method, Params: params}); err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return canvaserrors.Wrap(canvaserrors.NavigationError, fmt.Sprintf("failed to send CDP method %s", method), err)
	}

	select {
	case resp, ok := <-respCh:
		if !ok {
			return canvaserrors.New(canvaserrors.NavigationError, "browser connection closed before response")
		}
		if resp.Error != nil {
			return canvaserrors.New(canvaserrors.NavigationError, fmt.Sprintf("CDP method %s failed: %s", method, resp.Error.Message))
		}
		if out != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, out); err != nil {
				return canvaserrors.Wrap(canvaserrors.NavigationError, "failed to decode CDP result", err)
			}
		}
		return nil
	case <-ctx.Done():
		return canvaserrors.New(canvaserrors.NavigationTimeout, fmt.Sprintf("timed out waiting for CDP method %s", method))
	}
}

// Close stops the read loop and closes the underlying connection.
func (c *Client) Close() error {
	c.cancel()
	return c.conn.Close()
}

// listTarget is one entry from the browser's /json/list endpoint.
type listTarget struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// DiscoverPageTarget queries the browser's remote-debugging HTTP
// endpoint for its first open page target's websocket URL.
func DiscoverPageTarget(ctx context.Context, remotePort int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://127.0.0.1:%d/json/list", remotePort), nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", canvaserrors.Wrap(canvaserrors.NavigationError, "failed to reach browser debugging endpoint", err)
	}
	defer resp.Body.Close()

	var targets []listTarget
	if err := json.NewDecoder(resp.Body).Decode(&targets); err != nil {
		return "", canvaserrors.Wrap(canvaserrors.NavigationError, "failed to decode target list", err)
	}

	for _, t := range targets {
		if t.Type == "page" {
			return t.WebSocketDebuggerURL, nil
		}
	}
	return "", canvaserrors.New(canvaserrors.NavigationError, "browser has no open page target")
}

// waitFor polls until pred returns true or the deadline elapses,
// checked every interval — used for event-less readiness checks such
// as network-idle where CDP event subscription is not wired.
func waitFor(ctx context.Context, interval time.Duration, pred func() bool) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if pred() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
