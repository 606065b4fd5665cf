package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobarin/kobanashi/internal/audio"
	"github.com/bobarin/kobanashi/internal/composition"
	"github.com/bobarin/kobanashi/internal/models"
	"github.com/bobarin/kobanashi/internal/remotion"
	"github.com/bobarin/kobanashi/internal/scriptgen"
	"github.com/bobarin/kobanashi/internal/slides"
)

// ensureScript implements S1 (content fetch) + S2 (script generation) per
// the stage table: skip S1 entirely when input already names a script file
// or script.yaml already exists; reuse an existing non-empty script unless
// force is set.
func (p *Pipeline) ensureScript(ctx context.Context, input, lang string, multilingual bool, personas []models.Persona, mode models.NarrationMode, flags Flags) (*models.VideoScript, error) {
	scriptPath := p.paths.ScriptPath(lang, multilingual)

	if !flags.Force && scriptExistsAndNonEmpty(scriptPath) {
		p.logf(flags, "reusing existing script %s", scriptPath)
		return loadScriptFile(scriptPath)
	}

	if looksLikeScriptPath(input) {
		p.logf(flags, "input %s is a script file, S1 fetch skipped", input)
		script, err := loadScriptFile(input)
		if err != nil {
			return nil, err
		}
		if err := script.Validate(personas, mode); err != nil {
			return nil, err
		}
		if flags.DryRun {
			p.logf(flags, "[dry-run] would write %s", scriptPath)
			return script, nil
		}
		if err := saveScriptAtomic(scriptPath, script); err != nil {
			return nil, err
		}
		return script, nil
	}

	if flags.DryRun {
		p.logf(flags, "[dry-run] would fetch %s and generate a %s script", input, lang)
		return nil, nil
	}

	p.logf(flags, "fetching %s", input)
	page, err := p.fetcher.Fetch(ctx, input)
	if err != nil {
		return nil, err
	}

	promptInput := scriptgen.PromptInput{
		ContentText: page.Body,
		Images:      page.Images,
		Personas:    personas,
		Language:    lang,
		Mode:        mode,
		Style:       p.cfg.Narration.Style,
	}

	p.logf(flags, "generating script (%s, %s mode)", lang, mode)
	script, err := p.script.GenerateScript(ctx, promptInput)
	if err != nil {
		return nil, err
	}
	if err := script.Validate(personas, mode); err != nil {
		return nil, err
	}
	if err := saveScriptAtomic(scriptPath, script); err != nil {
		return nil, err
	}
	return script, nil
}

// synthesizeAudio implements S3: per-phrase skip/force, fanned out with one
// in-flight call per persona (the audio pool's native engine handles are
// not safe for concurrent use within a single persona).
func (p *Pipeline) synthesizeAudio(ctx context.Context, pool *audio.Pool, phrases []*models.Phrase, flags Flags) error {
	sems := make(map[string]chan struct{})
	for _, ph := range phrases {
		if _, ok := sems[ph.PersonaID]; !ok {
			sems[ph.PersonaID] = make(chan struct{}, 1)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	failures := make(map[int]error)

	for _, ph := range phrases {
		ph := ph
		outputPath := p.paths.AudioPath(ph.OriginalIndex)

		if flags.Force && !flags.DryRun {
			_ = os.Remove(outputPath)
		}

		if flags.DryRun {
			if flags.Force || !audioArtifactReady(outputPath) {
				p.logf(flags, "[dry-run] would synthesize %s", outputPath)
			}
			continue
		}

		sem := sems[ph.PersonaID]
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return nil
			}
			defer func() { <-sem }()

			duration, err := pool.SynthesizePhrase(gctx, ph, outputPath)
			if err != nil {
				mu.Lock()
				failures[ph.OriginalIndex] = err
				mu.Unlock()
				return nil
			}
			ph.Duration = duration
			return nil
		})
	}

	_ = g.Wait() // per-phrase failures are collected, never abort siblings (P-ISO)

	if len(failures) > 0 {
		return &models.StageFailure{Stage: models.StageAudioSynthesis, Failures: failures}
	}
	return nil
}

// produceSlides implements S4: one slide per section, per-item skip/force,
// delegating the bounded concurrent batch run to slides.Producer.ProduceAll.
// Sections outside sceneRange are left untouched entirely (not even
// skip-checked), matching the same scene-range filter FilterPhrases applies
// to S3. Returns the SectionIndex -> filename map composition.Build expects.
func (p *Pipeline) produceSlides(ctx context.Context, script *models.VideoScript, lang string, multilingual bool, sceneRange SceneRange, flags Flags) (map[int]string, error) {
	slidesDir := p.paths.SlidesDir(lang, multilingual)
	if !flags.DryRun {
		if err := os.MkdirAll(slidesDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create slides directory: %w", err)
		}
	}

	producer := slides.NewProducer(
		p.cfg.Slides.MaxRetries,
		time.Duration(p.cfg.Slides.RetryDelaySecs*float64(time.Second)),
		p.cfg.OpenRouterAPIKey,
		p.cfg.Slides.LLM.Model,
		p.cfg.Slides.MaxConcurrent,
	)

	slideFiles := make(map[int]string, len(script.Sections))
	var jobs []slides.Job
	var jobSections []int

	for si := range script.Sections {
		sec := &script.Sections[si]
		sectionIndex := si + 1
		if !sceneRange.Contains(sectionIndex) {
			continue
		}
		outputPath := p.paths.SlidePath(lang, multilingual, sectionIndex)
		slideFiles[sectionIndex] = models.SlideFilename(sectionIndex)

		if flags.Force && !flags.DryRun {
			_ = os.Remove(outputPath)
		}
		if !flags.Force && slideArtifactReady(outputPath) {
			continue
		}
		if flags.DryRun {
			p.logf(flags, "[dry-run] would produce slide %s", outputPath)
			continue
		}

		jobs = append(jobs, slides.Job{
			OriginalIndex:  sectionIndex,
			SlidePrompt:    sec.SlidePrompt,
			SourceImageURL: sec.SourceImageURL,
			OutputPath:     outputPath,
		})
		jobSections = append(jobSections, sectionIndex)
	}

	if len(jobs) == 0 {
		return slideFiles, nil
	}

	errs := producer.ProduceAll(ctx, jobs, p.cfg.Narration.Style)
	failures := make(map[int]error)
	for i, err := range errs {
		if err != nil {
			failures[jobSections[i]] = err
		}
	}
	if len(failures) > 0 {
		return slideFiles, &models.StageFailure{Stage: models.StageSlideGeneration, Failures: failures}
	}
	return slideFiles, nil
}

// buildAndRender implements S5 (composition build) + S6 (video render),
// never skipped: config-derived output must always reflect current
// settings, even on an otherwise fully-cached run.
func (p *Pipeline) buildAndRender(ctx context.Context, script *models.VideoScript, phrases []*models.Phrase, personas []models.Persona, slideFiles map[int]string, lang string, multilingual bool, sceneRange SceneRange, flags Flags) error {
	sectionBackgrounds := make(map[int]*models.BackgroundConfig, len(script.Sections))
	for si := range script.Sections {
		sec := &script.Sections[si]
		if sec.Background == nil {
			continue
		}
		if err := p.realizeBackgroundAsset(ctx, sec.Background, lang, si+1, flags); err != nil {
			return fmt.Errorf("section %d background: %w", si+1, err)
		}
		sectionBackgrounds[si+1] = sec.Background
	}

	globalBackground := p.cfg.Video.Background
	if globalBackground != nil {
		if err := p.realizeBackgroundAsset(ctx, globalBackground, lang, 0, flags); err != nil {
			return fmt.Errorf("global background: %w", err)
		}
	}

	data := composition.Build(composition.Input{
		Phrases:            phrases,
		Personas:           personas,
		SlideFiles:         slideFiles,
		SectionBackgrounds: sectionBackgrounds,
		FPS:                p.cfg.Style.FPS,
		Width:              p.cfg.Style.Width,
		Height:             p.cfg.Style.Height,
		Transition:         p.cfg.Video.Transition,
		GlobalBackground:   globalBackground,
		GlobalBGM:          p.cfg.Video.BGM,
		CrossFadeRenderer:  p.cfg.Video.Renderer == "remotion",
	})

	runner := p.remotionRunner()
	outputPath := outputPathForLanguage(p.paths, sceneRange.String(), lang, multilingual)

	if flags.DryRun {
		p.logf(flags, "[dry-run] would write %s (%d phrase(s), %d total frames)", p.paths.CompositionPath(), len(data.Phrases), data.TotalFrames)
		p.logf(flags, "[dry-run] would initialize/refresh the Remotion project and render %s", outputPath)
		return nil
	}

	if err := runner.Initialize(ctx); err != nil {
		return err
	}
	if err := os.MkdirAll(p.paths.RemotionDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create remotion directory: %w", err)
	}
	if err := writeCompositionAtomic(p.paths.CompositionPath(), data); err != nil {
		return err
	}

	if err := runner.GenerateSources(p.cfg.Video.Transition, p.cfg.Style.Width, p.cfg.Style.Height, p.cfg.Style.FPS); err != nil {
		return err
	}

	workspaceRoot := filepath.Dir(p.paths.Root)
	memberPath, err := filepath.Rel(workspaceRoot, p.paths.RemotionDir())
	if err != nil {
		memberPath = p.paths.RemotionDir()
	}
	if err := remotion.EnsureWorkspaceMember(filepath.Join(workspaceRoot, "pnpm-workspace.yaml"), memberPath); err != nil {
		return err
	}
	if err := runner.LinkAssets(lang, multilingual, personas); err != nil {
		return err
	}
	return runner.Render(ctx, outputPath)
}

// realizeBackgroundAsset invokes C10 for a video background that names a
// prompt but no ready path, writing the result under remotion/public and
// rewriting bg.Path in place so composition.Build sees a usable asset.
func (p *Pipeline) realizeBackgroundAsset(ctx context.Context, bg *models.BackgroundConfig, lang string, scopeIndex int, flags Flags) error {
	data, err := p.resolveBackendVideo(ctx, bg, flags)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}

	dir := filepath.Join(p.paths.RemotionPublicDir(), "backgrounds")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create backgrounds directory: %w", err)
	}
	filename := fmt.Sprintf("bg_%s_%04d.mp4", lang, scopeIndex)
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return fmt.Errorf("failed to write generated background: %w", err)
	}
	bg.Path = filepath.ToSlash(filepath.Join("backgrounds", filename))
	return nil
}

func writeCompositionAtomic(path string, data *models.CompositionData) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return models.NewRenderingError(path, "failed to marshal composition", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return models.NewRenderingError(path, "failed to write temp composition file", err)
	}
	return os.Rename(tmp, path)
}
