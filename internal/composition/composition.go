// Package composition implements the composition builder (section 4.7): a
// pure, deterministic function turning the phrase list, the persona table,
// and resolved background/bgm fallbacks into CompositionData — the single
// JSON contract the Remotion runner consumes. Nothing else writes
// composition.json.
package composition

import (
	"path/filepath"

	"github.com/bobarin/kobanashi/internal/models"
)

// Input bundles everything Build needs. SectionBackgrounds and SlideFiles
// are keyed by SectionIndex since slides and background overrides are
// resolved per-section while phrases are the frame-indexed rendering unit.
type Input struct {
	Phrases            []*models.Phrase
	Personas           []models.Persona
	SlideFiles         map[int]string // SectionIndex -> slide filename, relative to public/
	SectionBackgrounds map[int]*models.BackgroundConfig
	FPS                int
	Width              int
	Height             int
	Transition         models.TransitionConfig
	GlobalBackground   *models.BackgroundConfig
	GlobalBGM          string
	CrossFadeRenderer  bool // whether the configured renderer actually produces a cross-fade for Transition
}

// Build is the pure function spec section 4.7 describes: deterministic,
// side-effect-free, taking the already-resolved phrase/persona/slide state
// and producing the exact document written to composition.json.
func Build(in Input) *models.CompositionData {
	data := &models.CompositionData{
		FPS:        in.FPS,
		Width:      in.Width,
		Height:     in.Height,
		Transition: in.Transition,
		Background: in.GlobalBackground,
		BGM:        in.GlobalBGM,
	}

	transitionFrames := 0
	if in.Transition.Type != models.TransitionNone && in.CrossFadeRenderer {
		transitionFrames = in.Transition.DurationFrames
	}

	phrases := make([]models.CompositionPhrase, 0, len(in.Phrases))
	cursor := 0
	var prevSlide string

	for i, p := range in.Phrases {
		durationFrames := int(p.Duration*float64(in.FPS) + 0.5) // round-half-up

		slideFile := in.SlideFiles[p.SectionIndex]

		startFrame := cursor
		if i > 0 && transitionFrames > 0 && slideFile != prevSlide {
			startFrame -= transitionFrames
			if startFrame < 0 {
				startFrame = 0
			}
		}
		p.StartFrame = startFrame

		cp := models.CompositionPhrase{
			Text:           p.GetSubtitleText(),
			Reading:        p.Reading,
			AudioFile:      normalizePath("audio", p.AudioFilename()),
			SlideFile:      normalizePath("slides", slideFile),
			DurationFrames: durationFrames,
			StartFrame:     startFrame,
			Background:     resolveBackground(p, in.SectionBackgrounds[p.SectionIndex], in.GlobalBackground),
		}

		if persona := models.FindPersona(in.Personas, p.PersonaID); persona != nil {
			cp.PersonaID = persona.ID
			cp.PersonaName = persona.Name
			cp.SubtitleColor = persona.SubtitleColor
			cp.CharacterImage = normalizeCharacterPath(persona.ID, persona.CharacterImage)
			cp.MouthOpenImage = normalizeCharacterPath(persona.ID, persona.MouthOpenImage)
			cp.EyeCloseImage = normalizeCharacterPath(persona.ID, persona.EyeCloseImage)
			cp.CharacterPosition = persona.CharacterPosition
			cp.AnimationStyle = persona.AnimationStyle
		}

		phrases = append(phrases, cp)
		cursor = startFrame + durationFrames
		prevSlide = slideFile
	}

	data.Phrases = phrases
	// cursor already reflects every transition pull-back applied above, so
	// it equals Σ durationFrames − (n_slide_changes × T) directly.
	data.TotalFrames = cursor

	return data
}

// resolveBackground applies the fallback order phrase override -> section
// -> global -> nil (black/none, left to the Remotion template's default).
func resolveBackground(p *models.Phrase, section, global *models.BackgroundConfig) *models.BackgroundConfig {
	if p.BackgroundOverride != nil {
		return p.BackgroundOverride
	}
	if section != nil {
		return section
	}
	return global
}

// normalizePath joins a subdir symlinked under remotion/public/ (see
// internal/remotion's link-assets step) with a bare filename.
func normalizePath(subdir, filename string) string {
	if filename == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Join(subdir, filename))
}

func normalizeCharacterPath(personaID, filename string) string {
	if filename == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Join("characters", personaID, filename))
}
