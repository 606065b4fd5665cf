package remotion

import (
	"os"
	"path/filepath"
	"text/template"

	"github.com/bobarin/kobanashi/internal/models"
)

// templateData feeds both TSX templates: the composition's static frame
// geometry plus whether a TransitionSeries is needed.
type templateData struct {
	Width          int
	Height         int
	FPS            int
	UsesTransition bool
	TransitionType string
}

const videoGeneratorTemplate = `import {AbsoluteFill, Sequence, Audio, Img, staticFile} from 'remotion';
[[if .UsesTransition]]import {TransitionSeries, linearTiming} from '@remotion/transitions';
import {fade} from '@remotion/transitions/fade';
import {wipe} from '@remotion/transitions/wipe';
import {slide} from '@remotion/transitions/slide';
[[end]]
import composition from '../composition.json';

export type CompositionPhrase = (typeof composition.phrases)[number];

// Generated from composition.json — do not hand-edit; regenerated on every
// render by the pipeline's composition builder + Remotion runner.
export const VideoGenerator: React.FC = () => {
	const phrases: CompositionPhrase[] = composition.phrases;

	[[if .UsesTransition]]
	return (
		<AbsoluteFill style={{backgroundColor: 'black'}}>
			<TransitionSeries>
				{phrases.map((phrase, i) => (
					<TransitionSeries.Sequence key={i} durationInFrames={phrase.durationFrames}>
						<PhraseFrame phrase={phrase} />
					</TransitionSeries.Sequence>
				))}
			</TransitionSeries>
		</AbsoluteFill>
	);
	[[else]]
	return (
		<AbsoluteFill style={{backgroundColor: 'black'}}>
			{phrases.map((phrase, i) => (
				<Sequence key={i} from={phrase.startFrame} durationInFrames={phrase.durationFrames}>
					<PhraseFrame phrase={phrase} />
				</Sequence>
			))}
		</AbsoluteFill>
	);
	[[end]]
};

const PhraseFrame: React.FC<{phrase: CompositionPhrase}> = ({phrase}) => (
	<AbsoluteFill>
		{phrase.slideFile ? <Img src={staticFile(phrase.slideFile)} style={{width: '100%', height: '100%', objectFit: 'cover'}} /> : null}
		{phrase.audioFile ? <Audio src={staticFile(phrase.audioFile)} /> : null}
		<AbsoluteFill style={{justifyContent: 'flex-end', alignItems: 'center', paddingBottom: 48}}>
			<div style={{color: phrase.subtitleColor ?? '#FFFFFF', fontSize: 48, textAlign: 'center'}}>{phrase.text}</div>
		</AbsoluteFill>
	</AbsoluteFill>
);
`

const rootTemplate = `import {Composition} from 'remotion';
import {VideoGenerator} from './VideoGenerator';
import composition from '../composition.json';

export const RemotionRoot: React.FC = () => {
	return (
		<Composition
			id="VideoGenerator"
			component={VideoGenerator}
			durationInFrames={composition.totalFrames}
			fps={ [[.FPS]] }
			width={ [[.Width]] }
			height={ [[.Height]] }
		/>
	);
};
`

// GenerateSources renders VideoGenerator.tsx and Root.tsx by substitution
// into the templates above (step 2). Re-run every time Render is called —
// composition.json changes between runs and the TSX must track it.
func (r *Runner) GenerateSources(cfg models.TransitionConfig, width, height, fps int) error {
	data := templateData{
		Width:          width,
		Height:         height,
		FPS:            fps,
		UsesTransition: cfg.Type != models.TransitionNone,
		TransitionType: string(cfg.Type),
	}

	srcDir := r.paths.RemotionSrcDir()
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return models.NewRenderingError(srcDir, "failed to create src directory", err)
	}

	if err := renderTemplate(filepath.Join(srcDir, "VideoGenerator.tsx"), videoGeneratorTemplate, data); err != nil {
		return err
	}
	if err := renderTemplate(filepath.Join(srcDir, "Root.tsx"), rootTemplate, data); err != nil {
		return err
	}
	return nil
}

func renderTemplate(path, tmplText string, data templateData) error {
	// [[ ]] delimiters keep JSX's style={{...}} literals out of the parser.
	tmpl, err := template.New(filepath.Base(path)).Delims("[[", "]]").Parse(tmplText)
	if err != nil {
		return models.NewRenderingError(path, "failed to parse template", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return models.NewRenderingError(path, "failed to create source file", err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return models.NewRenderingError(path, "failed to render template", err)
	}
	return nil
}
