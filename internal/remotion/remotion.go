// Package remotion implements the Remotion runner (section 4.8): one
// Remotion project per output project, created on first render and
// refreshed thereafter, driving the `pnpm`/`npx` toolchain as a
// subprocess — grounded on the teacher's FFmpegService's
// exec.CommandContext idiom (combined stdout/stderr captured into the
// wrapped exit error), generalized from ffmpeg calls to the Node/pnpm toolchain.
package remotion

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/bobarin/kobanashi/internal/models"
)

// Runner drives one project's Remotion workspace: init, TypeScript
// generation, workspace membership, asset links, and render. Steps 1, 3
// and 4 are idempotent and skipped when already satisfied; step 2
// regenerates the sources on every call and render always runs.
type Runner struct {
	paths       *models.ProjectPaths
	timeout     time.Duration
	concurrency int
}

func NewRunner(paths *models.ProjectPaths, renderTimeoutSeconds, renderConcurrency int) *Runner {
	return &Runner{
		paths:       paths,
		timeout:     time.Duration(renderTimeoutSeconds) * time.Second,
		concurrency: renderConcurrency,
	}
}

var (
	toolchainCheckOnce sync.Once
	toolchainCheckErr  error
)

// checkToolchain verifies Node.js and pnpm are on PATH, once per process —
// matching spec's "Chrome/headless checks are performed once per session
// via a shared helper."
func checkToolchain() error {
	toolchainCheckOnce.Do(func() {
		if _, err := exec.LookPath("node"); err != nil {
			toolchainCheckErr = models.NewRenderingError("node", "Node.js is required to render with Remotion but was not found on PATH", err)
			return
		}
		if _, err := exec.LookPath("pnpm"); err != nil {
			toolchainCheckErr = models.NewRenderingError("pnpm", "pnpm is required to render with Remotion but was not found on PATH", err)
			return
		}
	})
	return toolchainCheckErr
}

// runCommand wraps exec.CommandContext with the teacher's wrapped-error
// idiom, capturing combined stdout/stderr and appending it to the returned
// error; used by every step below.
func runCommand(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %v failed: %w\n%s", name, args, err, out)
	}
	return nil
}
