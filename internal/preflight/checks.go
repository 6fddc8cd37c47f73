package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const kodiCheckTimeout = 5 * time.Second

// CheckKodi verifies the JSON-RPC endpoint answers a ping.
func CheckKodi(ctx context.Context, endpoint string, lib Pinger) Result {
	const name = "Kodi"

	checkCtx, cancel := context.WithTimeout(ctx, kodiCheckTimeout)
	defer cancel()

	if err := lib.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%s)", endpoint, summarizeError(err))}
	}
	return Result{Name: name, Passed: true, Detail: endpoint + " (reachable)"}
}

// CheckProviderKey reports whether a provider is enabled. A missing key only
// disables that provider.
func CheckProviderKey(name, apiKey string) Result {
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Warning: true, Detail: "api key missing (provider disabled)"}
	}
	return Result{Name: name, Passed: true, Detail: "api key set"}
}

// CheckDirectoryAccess passes when path is a directory the process can list,
// enter, and create files in.
func CheckDirectoryAccess(name, path string) Result {
	if problem := directoryProblem(path); problem != "" {
		return Result{Name: name, Detail: path + " (" + problem + ")"}
	}
	return Result{Name: name, Passed: true, Detail: path + " (writable)"}
}

func directoryProblem(path string) string {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "missing"
	case err != nil:
		return "stat failed: " + err.Error()
	case !info.IsDir():
		return "not a directory"
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return "insufficient permissions: " + err.Error()
	}
	return ""
}

func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "unreachable: " + opErr.Err.Error()
	}
	return err.Error()
}
