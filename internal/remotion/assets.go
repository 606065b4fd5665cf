package remotion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bobarin/kobanashi/internal/models"
)

// LinkAssets symlinks public/audio and public/slides to the project's asset
// directories and copies character images under
// public/characters/<persona_id>/ (step 4, idempotent — existing correct
// symlinks/files are left alone).
func (r *Runner) LinkAssets(lang string, multilingual bool, personas []models.Persona) error {
	publicDir := r.paths.RemotionPublicDir()
	if err := os.MkdirAll(publicDir, 0o755); err != nil {
		return models.NewRenderingError(publicDir, "failed to create public directory", err)
	}

	if err := ensureSymlink(r.paths.AudioDir(), filepath.Join(publicDir, "audio")); err != nil {
		return err
	}
	if err := ensureSymlink(r.paths.SlidesDir(lang, multilingual), filepath.Join(publicDir, "slides")); err != nil {
		return err
	}

	for _, p := range personas {
		if err := copyCharacterImages(r.paths, publicDir, p); err != nil {
			return err
		}
	}
	return nil
}

func ensureSymlink(target, linkPath string) error {
	if info, err := os.Lstat(linkPath); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			if existing, err := os.Readlink(linkPath); err == nil && existing == target {
				return nil
			}
		}
		if err := os.Remove(linkPath); err != nil {
			return models.NewRenderingError(linkPath, "failed to replace stale asset link", err)
		}
	}

	if err := os.Symlink(target, linkPath); err != nil {
		return models.NewRenderingError(linkPath, fmt.Sprintf("failed to symlink %s", target), err)
	}
	return nil
}

func copyCharacterImages(paths *models.ProjectPaths, publicDir string, persona models.Persona) error {
	images := []string{persona.CharacterImage, persona.MouthOpenImage, persona.EyeCloseImage}
	hasAny := false
	for _, img := range images {
		if img != "" {
			hasAny = true
		}
	}
	if !hasAny {
		return nil
	}

	destDir := filepath.Join(publicDir, "characters", persona.ID)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return models.NewRenderingError(destDir, "failed to create character asset directory", err)
	}

	srcDir := paths.AssetsCharacterDir(persona.ID)
	for _, img := range images {
		if img == "" {
			continue
		}
		src := filepath.Join(srcDir, img)
		dst := filepath.Join(destDir, img)
		if err := copyFileIfNewer(src, dst); err != nil {
			return models.NewRenderingError(dst, "failed to copy character image", err)
		}
	}
	return nil
}

func copyFileIfNewer(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if dstInfo, err := os.Stat(dst); err == nil && dstInfo.Size() == srcInfo.Size() && !dstInfo.ModTime().Before(srcInfo.ModTime()) {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
