package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// maxSummaryStderr caps the stderr excerpt per failed hook in Summary.
const maxSummaryStderr = 200

// Result is the outcome of one hook run.
type Result struct {
	Hook     string
	Phase    HookPhase
	Success  bool
	Stdout   string
	Stderr   string
	Error    error
	Duration time.Duration
}

// Executor runs the hooks of one export.
type Executor struct {
	config  *Config
	ectx    ExportContext
	results []Result
}

// NewExecutor creates an executor for config. A nil config runs nothing.
func NewExecutor(config *Config, ectx ExportContext) *Executor {
	if config == nil {
		config = &Config{}
	}
	return &Executor{config: config, ectx: ectx}
}

// RunPreExport runs pre-export hooks in order and stops at the first
// failing hook with on_error "fail".
func (e *Executor) RunPreExport(ctx context.Context) error {
	for _, h := range e.config.Hooks.PreExport {
		res := e.run(ctx, h, PreExport)
		if !res.Success && h.OnError != OnErrorContinue {
			return fmt.Errorf("pre-export hook %q failed: %w", h.Name, res.Error)
		}
	}
	return nil
}

// RunPostExport runs every post-export hook. The first failure with
// on_error "fail" is returned after all hooks have run.
func (e *Executor) RunPostExport(ctx context.Context) error {
	var first error
	for _, h := range e.config.Hooks.PostExport {
		res := e.run(ctx, h, PostExport)
		if !res.Success && h.OnError == OnErrorFail && first == nil {
			first = fmt.Errorf("post-export hook %q failed: %w", h.Name, res.Error)
		}
	}
	return first
}

// Results returns the results so far, in run order.
func (e *Executor) Results() []Result {
	return append([]Result(nil), e.results...)
}

// Summary is a short report of the hooks run: counts, then one line per
// failure with a stderr excerpt.
func (e *Executor) Summary() string {
	if len(e.results) == 0 {
		return ""
	}
	var ok, failed int
	for _, r := range e.results {
		if r.Success {
			ok++
		} else {
			failed++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hooks: %d succeeded, %d failed\n", ok, failed)
	for _, r := range e.results {
		if r.Success {
			continue
		}
		fmt.Fprintf(&sb, "  ✗ %s (%s): %v\n", r.Hook, r.Phase, r.Error)
		if r.Stderr != "" {
			fmt.Fprintf(&sb, "    stderr: %s\n", truncate(r.Stderr, maxSummaryStderr))
		}
	}
	return sb.String()
}

func (e *Executor) run(ctx context.Context, h Hook, phase HookPhase) Result {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := shellCommand(ctx, h.Command)
	cmd.Env = append(os.Environ(), e.ectx.ToEnv()...)
	for k, v := range h.Env {
		cmd.Env = append(cmd.Env, k+"="+os.ExpandEnv(v))
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Do not wait for grandchildren holding the pipes after a timeout.
	cmd.WaitDelay = 100 * time.Millisecond

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Hook:     h.Name,
		Phase:    phase,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
	}
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.Error = fmt.Errorf("timed out after %v", timeout)
	case err != nil:
		res.Error = err
	default:
		res.Success = true
	}
	e.results = append(e.results, res)
	return res
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

// RunHooks loads hooks.yaml from dir and returns an executor for it, or
// nil when noHooks is set or nothing is configured.
func RunHooks(dir string, ectx ExportContext, noHooks bool) (*Executor, error) {
	if noHooks {
		return nil, nil
	}
	l := NewLoader(WithDir(dir))
	if err := l.Load(); err != nil {
		return nil, err
	}
	if !l.HasHooks() {
		return nil, nil
	}
	return NewExecutor(l.Config(), ectx), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
