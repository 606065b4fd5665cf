package remotion

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/bobarin/kobanashi/internal/models"
)

// Render invokes `npx remotion render VideoGenerator <output> --props
// <composition.json>`, bounded by r.timeout and r.concurrency (step 5,
// always executed, never skipped).
func (r *Runner) Render(ctx context.Context, outputPath string) error {
	if err := checkToolchain(); err != nil {
		return err
	}

	renderCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := []string{
		"remotion", "render", "VideoGenerator", outputPath,
		"--props", r.paths.CompositionPath(),
		"--concurrency", strconv.Itoa(r.concurrency),
	}

	cmd := exec.CommandContext(renderCtx, "npx", args...)
	cmd.Dir = r.paths.RemotionDir()
	out, err := cmd.CombinedOutput()
	if err != nil {
		if renderCtx.Err() == context.DeadlineExceeded {
			return models.NewRenderingError(outputPath, fmt.Sprintf("remotion render timed out after %v", r.timeout), err)
		}
		return models.NewRenderingError(outputPath, "remotion render failed", fmt.Errorf("%w\n%s", err, out))
	}
	return nil
}
