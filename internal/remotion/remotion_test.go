package remotion

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bobarin/kobanashi/internal/models"
)

func TestEnsureWorkspaceMemberCreatesFileWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pnpm-workspace.yaml")

	if err := EnsureWorkspaceMember(path, "projects/demo/remotion"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected workspace file to be created: %v", err)
	}
	if !strings.Contains(string(data), "projects/demo/remotion") {
		t.Errorf("expected member path in workspace file, got: %s", data)
	}
}

func TestEnsureWorkspaceMemberIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pnpm-workspace.yaml")

	if err := EnsureWorkspaceMember(path, "projects/demo/remotion"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	firstData, _ := os.ReadFile(path)

	if err := EnsureWorkspaceMember(path, "projects/demo/remotion"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	secondData, _ := os.ReadFile(path)

	if string(firstData) != string(secondData) {
		t.Errorf("expected re-adding the same member to be a no-op, got different content")
	}
}

func TestEnsureWorkspaceMemberAppendsAdditionalMember(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pnpm-workspace.yaml")

	if err := EnsureWorkspaceMember(path, "projects/a/remotion"); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := EnsureWorkspaceMember(path, "projects/b/remotion"); err != nil {
		t.Fatalf("second: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "projects/a/remotion") || !strings.Contains(string(data), "projects/b/remotion") {
		t.Errorf("expected both members present, got: %s", data)
	}
}

func TestGenerateSourcesEmitsTransitionSeriesOnlyWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	runner := NewRunner(models.NewProjectPaths(dir), 600, 2)

	if err := runner.GenerateSources(models.TransitionConfig{Type: models.TransitionNone}, 1920, 1080, 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plain, err := os.ReadFile(filepath.Join(runner.paths.RemotionSrcDir(), "VideoGenerator.tsx"))
	if err != nil {
		t.Fatalf("expected VideoGenerator.tsx: %v", err)
	}
	if strings.Contains(string(plain), "TransitionSeries") {
		t.Error("expected no TransitionSeries import when transition type is none")
	}

	if err := runner.GenerateSources(models.TransitionConfig{Type: models.TransitionFade, DurationFrames: 15}, 1920, 1080, 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	faded, err := os.ReadFile(filepath.Join(runner.paths.RemotionSrcDir(), "VideoGenerator.tsx"))
	if err != nil {
		t.Fatalf("expected VideoGenerator.tsx: %v", err)
	}
	if !strings.Contains(string(faded), "TransitionSeries") {
		t.Error("expected TransitionSeries import when transition type is fade")
	}
}

func TestEnsureSymlinkIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "audio")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "public-audio")

	if err := ensureSymlink(target, link); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if err := ensureSymlink(target, link); err != nil {
		t.Fatalf("second call should be a no-op, got: %v", err)
	}

	resolved, err := os.Readlink(link)
	if err != nil {
		t.Fatalf("expected a symlink: %v", err)
	}
	if resolved != target {
		t.Errorf("expected link to %s, got %s", target, resolved)
	}
}

func TestCopyFileIfNewerSkipsIdenticalFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst.png")

	if err := os.WriteFile(src, []byte("image-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := copyFileIfNewer(src, dst); err != nil {
		t.Fatalf("unexpected error on first copy: %v", err)
	}
	if err := copyFileIfNewer(src, dst); err != nil {
		t.Fatalf("unexpected error on second (skip) copy: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "image-bytes" {
		t.Errorf("expected copied content to match source, got %q, err=%v", data, err)
	}
}
