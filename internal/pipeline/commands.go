package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bobarin/kobanashi/internal/audio"
	"github.com/bobarin/kobanashi/internal/config"
	"github.com/bobarin/kobanashi/internal/models"
	"github.com/bobarin/kobanashi/internal/pronounce"
	"github.com/bobarin/kobanashi/internal/segment"
)

// withOverrides returns a Pipeline sharing every component except a copy of
// cfg mutated by fn, so a single standalone CLI invocation (e.g. `slides
// generate --model ...`) can override one setting without touching the
// loaded config file or affecting any other in-process caller.
func (p *Pipeline) withOverrides(fn func(*config.Config)) *Pipeline {
	cfgCopy := *p.cfg
	fn(&cfgCopy)
	return &Pipeline{cfg: &cfgCopy, paths: p.paths, fetcher: p.fetcher, script: p.script, verify: p.verify}
}

// ScriptOnly runs S1+S2 for every configured language and persists each
// script.yaml without touching audio, slides, or render — the `script
// create` CLI command.
func (p *Pipeline) ScriptOnly(ctx context.Context, input string, flags Flags) error {
	mode := p.cfg.Narration.Mode
	personas := p.personasForRun(flags)
	languages := p.cfg.Content.Languages
	multilingual := len(languages) > 1

	var failed []string
	for _, lang := range languages {
		if _, err := p.ensureScript(ctx, input, lang, multilingual, personas, mode, flags); err != nil {
			log.Printf("[pipeline] script %q failed: %v", lang, err)
			failed = append(failed, lang)
		}
	}
	if len(failed) == len(languages) {
		return fmt.Errorf("script: all %d language(s) failed: %s", len(languages), strings.Join(failed, ", "))
	}
	if len(failed) > 0 {
		return fmt.Errorf("script: %d of %d language(s) failed: %s", len(failed), len(languages), strings.Join(failed, ", "))
	}
	return nil
}

// AudioOnly runs S3 against an already-produced script file — the `audio
// generate` CLI command. speakerIDOverride, when >= 0, overrides every
// configured persona's synthesizer speaker_id for this run only.
func (p *Pipeline) AudioOnly(ctx context.Context, scriptPath, sceneRangeArg string, speakerIDOverride int, flags Flags) error {
	script, err := loadScriptFile(scriptPath)
	if err != nil {
		return err
	}

	personas := p.personasForRun(flags)
	if speakerIDOverride >= 0 {
		overridden := make([]models.Persona, len(personas))
		for i, persona := range personas {
			persona.Synthesizer.SpeakerID = speakerIDOverride
			overridden[i] = persona
		}
		personas = overridden
	}

	if err := script.Validate(personas, p.cfg.Narration.Mode); err != nil {
		return err
	}

	sceneRange, err := ParseSceneRange(sceneRangeArg, len(script.Sections))
	if err != nil {
		return err
	}

	segmenter := segment.New(segment.DefaultOptions())
	phrases := FilterPhrases(segmentScript(segmenter, script, personas), sceneRange)
	if len(phrases) == 0 {
		return fmt.Errorf("scene range %q selected zero phrases out of %d section(s)", sceneRangeArg, len(script.Sections))
	}

	dict := models.NewPronunciationDictionary()
	resolver := pronounce.NewResolver(p.verify)
	resolver.LoadManual(dict, manualEntries(p.cfg.Pronunciation.Custom))
	if flags.DryRun {
		p.logf(flags, "[dry-run] would resolve pronunciations via LLM verification")
	} else {
		resolver.PrepareTexts(ctx, dict, phrases)
	}

	pool := audio.NewPool(personas, p.cfg.Audio.VoicevoxURL, flags.AllowPlaceholder)
	if !flags.DryRun {
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

	return p.synthesizeAudio(ctx, pool, phrases, flags)
}

// SlidesOnly runs S4 against an already-produced script file — the `slides
// generate` CLI command. model and maxConcurrent, when non-empty/non-zero,
// override slides.llm.model / slides.max_concurrent for this run only.
func (p *Pipeline) SlidesOnly(ctx context.Context, scriptPath, lang, sceneRangeArg, model string, maxConcurrent int, flags Flags) error {
	script, err := loadScriptFile(scriptPath)
	if err != nil {
		return err
	}

	sceneRange, err := ParseSceneRange(sceneRangeArg, len(script.Sections))
	if err != nil {
		return err
	}

	scoped := p.withOverrides(func(c *config.Config) {
		if model != "" {
			c.Slides.LLM.Model = model
		}
		if maxConcurrent > 0 {
			c.Slides.MaxConcurrent = maxConcurrent
		}
	})

	multilingual := len(p.cfg.Content.Languages) > 1
	_, err = scoped.produceSlides(ctx, script, lang, multilingual, sceneRange, flags)
	return err
}

// RenderOnly runs S5+S6 against an already-produced script file plus its
// already-synthesized audio/slide artifacts — the `video render` CLI
// command. transitionOverride/fpsOverride, when set, override
// video.transition.type / style.fps for this run only.
func (p *Pipeline) RenderOnly(ctx context.Context, scriptPath, lang, sceneRangeArg, transitionOverride string, fpsOverride int, flags Flags) error {
	script, err := loadScriptFile(scriptPath)
	if err != nil {
		return err
	}

	personas := p.personasForRun(flags)
	sceneRange, err := ParseSceneRange(sceneRangeArg, len(script.Sections))
	if err != nil {
		return err
	}

	segmenter := segment.New(segment.DefaultOptions())
	phrases := FilterPhrases(segmentScript(segmenter, script, personas), sceneRange)
	if len(phrases) == 0 {
		return fmt.Errorf("scene range %q selected zero phrases out of %d section(s)", sceneRangeArg, len(script.Sections))
	}

	multilingual := len(p.cfg.Content.Languages) > 1
	for _, ph := range phrases {
		duration, err := audio.WavDurationSeconds(p.paths.AudioPath(ph.OriginalIndex))
		if err != nil {
			return fmt.Errorf("phrase %d: audio not synthesized yet, run `audio generate` first: %w", ph.OriginalIndex, err)
		}
		ph.Duration = duration
	}

	slideFiles := make(map[int]string, len(script.Sections))
	for si := range script.Sections {
		sectionIndex := si + 1
		if !sceneRange.Contains(sectionIndex) {
			continue
		}
		outputPath := p.paths.SlidePath(lang, multilingual, sectionIndex)
		if !slideArtifactReady(outputPath) {
			return fmt.Errorf("section %d: slide not produced yet, run `slides generate` first", sectionIndex)
		}
		slideFiles[sectionIndex] = models.SlideFilename(sectionIndex)
	}

	scoped := p.withOverrides(func(c *config.Config) {
		if transitionOverride != "" {
			c.Video.Transition.Type = models.TransitionType(transitionOverride)
		}
		if fpsOverride > 0 {
			c.Style.FPS = fpsOverride
		}
	})

	return scoped.buildAndRender(ctx, script, phrases, personas, slideFiles, lang, multilingual, sceneRange, flags)
}
