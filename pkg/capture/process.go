package capture

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	canvaserrors "github.com/alantheprice/canvasreview/pkg/errors"
)

// launchTimeout bounds how long we wait for the browser's debugging
// port to come up: Launch polls the endpoint under a context with this
// timeout.
const launchTimeout = 10 * time.Second

// BrowserProcess is a running headless browser subprocess.
type BrowserProcess struct {
	cmd *exec.Cmd
}

// Launch starts binary in headless mode with remote debugging enabled
// on remotePort, waits for the debugging endpoint to accept
// connections, and returns a handle the caller must Kill.
func Launch(ctx context.Context, binary string, remotePort int) (*BrowserProcess, error) {
	args := []string{
		"--headless=new",
		"--disable-gpu",
		"--no-sandbox",
		fmt.Sprintf("--remote-debugging-port=%d", remotePort),
		"about:blank",
	}

	cmd := exec.Command(binary, args...)
	if err := cmd.Start(); err != nil {
		return nil, canvaserrors.Wrap(canvaserrors.NavigationError, fmt.Sprintf("failed to start browser binary %q", binary), err)
	}

	proc := &BrowserProcess{cmd: cmd}

	readyCtx, cancel := context.WithTimeout(ctx, launchTimeout)
	defer cancel()

	err := waitFor(readyCtx, 100*time.Millisecond, func() bool {
		_, err := DiscoverPageTarget(readyCtx, remotePort)
		return err == nil
	})
	if err != nil {
		_ = proc.Kill()
		return nil, canvaserrors.Wrap(canvaserrors.NavigationError, "browser did not become ready within launch timeout", err)
	}

	return proc, nil
}

// Kill terminates the browser subprocess.
func (p *BrowserProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// Wait blocks until the process exits.
func (p *BrowserProcess) Wait() error {
	return p.cmd.Wait()
}
