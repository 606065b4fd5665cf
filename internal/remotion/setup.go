package remotion

import (
	"context"
	"os"

	"github.com/bobarin/kobanashi/internal/models"
)

// Initialize scaffolds a fresh Remotion project via `pnpm create
// @remotion/video` with the blank template, skipped entirely when the
// project directory already exists (step 1, idempotent).
func (r *Runner) Initialize(ctx context.Context) error {
	if err := checkToolchain(); err != nil {
		return err
	}

	dir := r.paths.RemotionDir()
	if _, err := os.Stat(dir); err == nil {
		return nil // already initialized
	}

	parent := r.paths.Root
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return models.NewRenderingError(dir, "failed to create project directory", err)
	}

	if err := runCommand(ctx, parent, "pnpm", "create", "@remotion/video", "remotion", "--template", "blank", "--package-manager", "pnpm"); err != nil {
		return models.NewRenderingError(dir, "pnpm create @remotion/video failed", err)
	}
	return nil
}
