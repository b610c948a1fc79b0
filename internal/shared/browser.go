package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

// goos is replaceable in tests.
var goos = func() string { return runtime.GOOS }

// OpenBrowser opens the default system browser at the given URL. Used by the
// interactive authorization flow; callers fall back to printing the URL when
// no opener is available.
func OpenBrowser(url string) error {
	var name string
	var args []string

	switch os := goos(); os {
	case "darwin":
		name = "open"
	case "linux":
		name = "xdg-open"
	case "windows":
		name, args = "cmd", []string{"/c", "start"}
	default:
		return fmt.Errorf("unsupported platform: %s", os)
	}

	cmd := exec.Command(name, append(args, url)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
