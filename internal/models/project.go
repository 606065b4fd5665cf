package models

import (
	"fmt"
	"path/filepath"
)

// ProjectPaths centralizes the deterministic on-disk layout so every
// component agrees on filenames without passing strings around by hand.
type ProjectPaths struct {
	Root string
}

func NewProjectPaths(root string) *ProjectPaths {
	return &ProjectPaths{Root: root}
}

const (
	PhraseFilenameFormat = "phrase_%04d.wav"
	SlideFilenameFormat  = "slide_%04d.png"
)

func PhraseFilename(index int) string {
	return fmt.Sprintf(PhraseFilenameFormat, index)
}

func SlideFilename(index int) string {
	return fmt.Sprintf(SlideFilenameFormat, index)
}

// ScriptPath returns script.yaml, or script_<lang>.yaml for multilingual runs.
func (p *ProjectPaths) ScriptPath(lang string, multilingual bool) string {
	if multilingual {
		return filepath.Join(p.Root, fmt.Sprintf("script_%s.yaml", lang))
	}
	return filepath.Join(p.Root, "script.yaml")
}

func (p *ProjectPaths) AudioDir() string {
	return filepath.Join(p.Root, "audio")
}

func (p *ProjectPaths) AudioPath(index int) string {
	return filepath.Join(p.AudioDir(), PhraseFilename(index))
}

// SlidesDir returns slides/, or slides/<lang> when the project has more
// than one configured language.
func (p *ProjectPaths) SlidesDir(lang string, multilingual bool) string {
	if multilingual {
		return filepath.Join(p.Root, "slides", lang)
	}
	return filepath.Join(p.Root, "slides")
}

func (p *ProjectPaths) SlidePath(lang string, multilingual bool, index int) string {
	return filepath.Join(p.SlidesDir(lang, multilingual), SlideFilename(index))
}

func (p *ProjectPaths) RemotionDir() string {
	return filepath.Join(p.Root, "remotion")
}

func (p *ProjectPaths) RemotionPublicDir() string {
	return filepath.Join(p.RemotionDir(), "public")
}

func (p *ProjectPaths) CompositionPath() string {
	return filepath.Join(p.RemotionDir(), "composition.json")
}

func (p *ProjectPaths) RemotionSrcDir() string {
	return filepath.Join(p.RemotionDir(), "src")
}

// OutputPath returns output.mp4, or output_scenes_<range>.mp4 when a scene
// range was supplied.
func (p *ProjectPaths) OutputPath(sceneRange string) string {
	if sceneRange == "" {
		return filepath.Join(p.Root, "output.mp4")
	}
	return filepath.Join(p.Root, fmt.Sprintf("output_scenes_%s.mp4", sceneRange))
}

func (p *ProjectPaths) AssetsLogosDir() string {
	return filepath.Join(p.Root, "assets", "logos")
}

func (p *ProjectPaths) AssetsCharacterDir(personaID string) string {
	return filepath.Join(p.Root, "assets", "characters", personaID)
}
