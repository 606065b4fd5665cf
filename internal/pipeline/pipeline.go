// Package pipeline implements the pipeline orchestrator (section 4.1/C9):
// the single entry point driving S1 content fetch through S6 video render,
// honoring the per-stage skip/force table, scene-range filtering, dry-run,
// and per-language failure isolation. Grounded on the teacher's
// internal/worker for the bounded-concurrency shape of its fan-out stages
// and on internal/config.Load's stage-by-stage validation style for error
// wrapping.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobarin/kobanashi/internal/audio"
	"github.com/bobarin/kobanashi/internal/config"
	"github.com/bobarin/kobanashi/internal/content"
	"github.com/bobarin/kobanashi/internal/models"
	"github.com/bobarin/kobanashi/internal/pronounce"
	"github.com/bobarin/kobanashi/internal/remotion"
	"github.com/bobarin/kobanashi/internal/scriptgen"
	"github.com/bobarin/kobanashi/internal/segment"
	"github.com/bobarin/kobanashi/internal/slides"
	"github.com/bobarin/kobanashi/internal/videobg"
)

// Flags mirrors the CLI surface's generate flags (section 6).
type Flags struct {
	Force            bool
	Quiet            bool
	Verbose          bool
	DryRun           bool
	AllowPlaceholder bool
}

// Pipeline wires the full component graph described in section 2's data
// flow (C1->C2->C3->(C4||C6)->C5->C7->C8) for one project directory.
type Pipeline struct {
	cfg     *config.Config
	paths   *models.ProjectPaths
	fetcher *content.Fetcher
	script  *scriptgen.Generator
	verify  *pronounce.LLMVerifier
}

// New builds a Pipeline from a validated config. Component construction
// never touches the network or the filesystem beyond reading cfg itself.
func New(cfg *config.Config) *Pipeline {
	pronunciationModel := cfg.Audio.PronunciationModel
	if pronunciationModel == "" {
		pronunciationModel = cfg.Content.LLM.Model
	}

	return &Pipeline{
		cfg:     cfg,
		paths:   models.NewProjectPaths(cfg.Project.OutputDir),
		fetcher: content.NewFetcher(),
		script:  scriptgen.NewGenerator(cfg.OpenRouterAPIKey, cfg.Content.LLM.BaseURL, cfg.Content.LLM.Model),
		verify:  pronounce.NewLLMVerifier(cfg.OpenRouterAPIKey, cfg.Content.LLM.BaseURL, pronunciationModel),
	}
}

// Generate is the orchestrator's single operation (section 4.1): fetch or
// load input, synthesize/reuse a script per configured language, then run
// the per-language render pipeline, isolating failures language-by-language.
func (p *Pipeline) Generate(ctx context.Context, input string, sceneRangeArg string, flags Flags) error {
	if err := os.MkdirAll(p.cfg.Project.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	mode := p.cfg.Narration.Mode
	personas := p.personasForRun(flags)

	languages := p.cfg.Content.Languages
	multilingual := len(languages) > 1

	var failed []string
	ran := 0
	for _, lang := range languages {
		if err := p.generateLanguage(ctx, input, lang, multilingual, sceneRangeArg, personas, mode, flags); err != nil {
			log.Printf("[pipeline] language %q failed: %v", lang, err)
			failed = append(failed, lang)
			continue
		}
		ran++
	}

	if ran == 0 {
		return fmt.Errorf("pipeline: all %d language(s) failed: %s", len(languages), strings.Join(failed, ", "))
	}
	if len(failed) > 0 {
		return fmt.Errorf("pipeline: %d of %d language(s) failed: %s", len(failed), len(languages), strings.Join(failed, ", "))
	}
	return nil
}

// generateLanguage runs S1-S6 for a single language's script, scoped by
// ProjectPaths' lang-suffixed filenames when the run is multilingual.
func (p *Pipeline) generateLanguage(ctx context.Context, input, lang string, multilingual bool, sceneRangeArg string, personas []models.Persona, mode models.NarrationMode, flags Flags) error {
	script, err := p.ensureScript(ctx, input, lang, multilingual, personas, mode, flags)
	if err != nil {
		return fmt.Errorf("script stage: %w", err)
	}
	if script == nil {
		// Dry-run with nothing to load/generate: nothing further can run.
		return nil
	}

	maxSection := len(script.Sections)
	sceneRange, err := ParseSceneRange(sceneRangeArg, maxSection)
	if err != nil {
		return err
	}

	segmenter := segment.New(segment.DefaultOptions())
	phrases := segmentScript(segmenter, script, personas)
	phrases = FilterPhrases(phrases, sceneRange)
	if len(phrases) == 0 {
		return fmt.Errorf("scene range %q selected zero phrases out of %d section(s)", sceneRangeArg, maxSection)
	}

	dict := models.NewPronunciationDictionary()
	resolver := pronounce.NewResolver(p.verify)
	resolver.LoadManual(dict, manualEntries(p.cfg.Pronunciation.Custom))
	if flags.DryRun {
		p.logf(flags, "[dry-run] would resolve pronunciations via LLM verification for %q", lang)
	} else {
		resolver.PrepareTexts(ctx, dict, phrases)
	}

	pool := audio.NewPool(personas, p.cfg.Audio.VoicevoxURL, flags.AllowPlaceholder)
	if flags.DryRun {
		p.logf(flags, "[dry-run] would initialize audio pool and dictionary for %q", lang)
	} else {
		if err := pool.Initialize(ctx); err != nil {
			return fmt.Errorf("audio init: %w", err)
		}
		if err := pool.PrepareDictionary(ctx, dict); err != nil {
			return fmt.Errorf("audio dictionary: %w", err)
		}
		for _, w := range pool.ValidateDispatch(phrases) {
			log.Printf("[pipeline] %s", w)
		}
	}

	if err := p.synthesizeAudio(ctx, pool, phrases, flags); err != nil {
		return fmt.Errorf("audio synthesis: %w", err)
	}

	slideFiles, err := p.produceSlides(ctx, script, lang, multilingual, sceneRange, flags)
	if err != nil {
		return fmt.Errorf("slide generation: %w", err)
	}

	return p.buildAndRender(ctx, script, phrases, personas, slideFiles, lang, multilingual, sceneRange, flags)
}

// personasForRun resolves the persona pool sampling described in section
// 4.9: the full configured roster, or a seeded sample of it when
// persona_pool.enabled, computed once so every downstream stage (script
// prompt, segmentation, dispatch validation) sees the same universe.
func (p *Pipeline) personasForRun(flags Flags) []models.Persona {
	personas := p.cfg.Personas
	if p.cfg.PersonaPool.Enabled {
		personas = scriptgen.Sample(p.cfg.Personas, p.cfg.PersonaPool.Count, p.cfg.PersonaPool.Seed)
		p.logf(flags, "persona pool sampled %d of %d configured personas", len(personas), len(p.cfg.Personas))
	}
	return personas
}

func (p *Pipeline) logf(flags Flags, format string, args ...interface{}) {
	if flags.Quiet {
		return
	}
	log.Printf("[pipeline] "+format, args...)
}

func manualEntries(custom []config.CustomPronunciation) []pronounce.ManualEntry {
	out := make([]pronounce.ManualEntry, len(custom))
	for i, c := range custom {
		out[i] = pronounce.ManualEntry{
			Surface:    c.Surface,
			Reading:    c.Reading,
			AccentType: c.AccentType,
			WordType:   c.WordType,
		}
	}
	return out
}

// segmentScript runs the shared Segmenter over every narration in document
// order, keeping OriginalIndex monotonic across the whole script (not just
// within a section).
func segmentScript(segmenter *segment.Segmenter, script *models.VideoScript, personas []models.Persona) []*models.Phrase {
	var phrases []*models.Phrase
	for si := range script.Sections {
		sec := &script.Sections[si]
		for _, n := range sec.Narrations {
			personaName := ""
			if persona := models.FindPersona(personas, n.PersonaID); persona != nil {
				personaName = persona.Name
			}
			ps := segmenter.Segment(n.Text, n.Reading, n.PersonaID, personaName, si+1)
			for _, ph := range ps {
				if sec.Background != nil {
					ph.BackgroundOverride = sec.Background
				}
				phrases = append(phrases, ph)
			}
		}
	}
	return phrases
}

// outputPathForLanguage inserts a language suffix ahead of the scene-range
// suffix ProjectPaths.OutputPath already encodes, so multilingual runs never
// clobber each other's rendered file.
func outputPathForLanguage(paths *models.ProjectPaths, sceneRange string, lang string, multilingual bool) string {
	base := paths.OutputPath(sceneRange)
	if !multilingual {
		return base
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_" + lang + ext
}

// resolveBackendVideo invokes C10 when a BackgroundConfig's Type is video
// and Path is empty but Prompt is set. Returns the asset bytes to write, or
// nil bytes when nothing needed generating or under dry-run; bg itself is
// left unchanged.
func (p *Pipeline) resolveBackendVideo(ctx context.Context, bg *models.BackgroundConfig, flags Flags) ([]byte, error) {
	if bg == nil || bg.Type != models.BackgroundVideo || bg.Path != "" {
		return nil, nil
	}
	if flags.DryRun {
		p.logf(flags, "[dry-run] would generate background video for prompt %q", bg.Prompt)
		return nil, nil
	}

	gen, err := videobg.Resolve(p.cfg.Video.BackgroundVideoBackend, p.cfg.OpenRouterAPIKey, p.cfg.Video.BackgroundVideoModel)
	if err != nil {
		return nil, err
	}
	return videobg.GenerateForBackground(ctx, gen, bg, nil, "")
}

// remotionRunner lazily builds a Runner scoped to this project's paths.
func (p *Pipeline) remotionRunner() *remotion.Runner {
	return remotion.NewRunner(p.paths, p.cfg.Video.RenderTimeoutSeconds, p.cfg.Video.RenderConcurrency)
}
