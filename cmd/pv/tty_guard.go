package main

import (
	"os"
	"strings"
)

// init runs before Bubble Tea or lipgloss touch the terminal.
//
// Lipgloss/termenv background detection can write OSC/DSR control sequences
// to stdout. In a real terminal they are invisible, but they corrupt JSON,
// markdown and other piped output. Non-interactive invocations set CI=1,
// which termenv honours by skipping the probe.
func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !shouldSuppressTTYQueries(os.Args[1:], os.Getenv("PV_TEST_MODE") != "") {
		return
	}
	_ = os.Setenv("CI", "1")
}

// shouldSuppressTTYQueries reports whether args ask for output that is not
// the interactive viewer.
func shouldSuppressTTYQueries(args []string, envTest bool) bool {
	if envTest {
		return true
	}
	for _, arg := range args {
		name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		switch name {
		case "json", "markdown", "summary", "export", "sqlite", "workspace", "compare", "version", "help":
			return true
		}
	}
	return false
}
