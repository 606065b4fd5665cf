// Package audio implements the audio synthesizer pool (section 4.5): one
// VOICEVOX-backed instance per persona, dispatched by persona_id, with caching and an opt-in silent placeholder
// mode for dry-running downstream stages without the native engine.
package audio

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/bobarin/kobanashi/internal/models"
)

const placeholderDurationSeconds = 3.0

type instance struct {
	client     *VoicevoxClient
	speakerID  int
	speedScale float64
}

// Pool dispatches synthesis calls by persona_id across one instance per
// persona.
type Pool struct {
	instances        map[string]*instance // keyed by persona_id
	fallbackPersona  string
	allowPlaceholder bool
	placeholderOnly  bool
}

// NewPool builds one VoicevoxClient per persona (today, the only registered
// engine is voicevox — an unknown engine tag fails config validation before
// reaching here). baseURL is shared: every persona talks to the same local
// engine process, distinguished only by speaker_id.
func NewPool(personas []models.Persona, baseURL string, allowPlaceholder bool) *Pool {
	p := &Pool{
		instances:        make(map[string]*instance, len(personas)),
		allowPlaceholder: allowPlaceholder,
	}
	for i, persona := range personas {
		if i == 0 {
			p.fallbackPersona = persona.ID
		}
		p.instances[persona.ID] = &instance{
			client:     NewVoicevoxClient(baseURL),
			speakerID:  persona.Synthesizer.SpeakerID,
			speedScale: persona.Synthesizer.SpeedScale,
		}
	}
	return p
}

// Initialize verifies the engine is reachable. Failure is a domain error
// unless allow_placeholder was set, in which case the pool logs the failure
// and downgrades to placeholder-only for the rest of the run.
func (p *Pool) Initialize(ctx context.Context) error {
	if len(p.instances) == 0 {
		return models.NewAudioGenerationError("", "no personas configured for audio synthesis", nil)
	}

	for personaID, inst := range p.instances {
		if err := inst.client.Ping(ctx); err != nil {
			if !p.allowPlaceholder {
				return models.NewAudioGenerationError(personaID, "voicevox engine unavailable and allow_placeholder is not set", err)
			}
			log.Printf("[audio] voicevox engine unavailable (%v); falling back to placeholder mode for this run", err)
			p.placeholderOnly = true
			return nil
		}
	}
	return nil
}

// PrepareDictionary pushes every resolved pronunciation entry into the
// engine's user dictionary, once, before any phrase synthesis begins.
func (p *Pool) PrepareDictionary(ctx context.Context, dict *models.PronunciationDictionary) error {
	if p.placeholderOnly {
		return nil
	}
	var first *instance
	for _, inst := range p.instances {
		first = inst
		break
	}
	if first == nil {
		return nil
	}
	for _, entry := range dict.Entries() {
		if err := first.client.RegisterWord(ctx, entry); err != nil {
			return models.NewAudioGenerationError(entry.Surface, "failed to register pronunciation dictionary entry", err)
		}
	}
	return nil
}

// SynthesizePhrase writes phrase_NNNN.wav at outputPath and returns its
// duration in seconds. An existing non-empty file at outputPath is reused
// (its duration is re-read from the header) rather than re-synthesized.
func (p *Pool) SynthesizePhrase(ctx context.Context, phrase *models.Phrase, outputPath string) (float64, error) {
	if fileExistsNonEmpty(outputPath) {
		return wavDurationSeconds(outputPath)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return 0, models.NewAudioGenerationError(fmt.Sprint(phrase.OriginalIndex), "failed to create audio directory", err)
	}

	if p.placeholderOnly {
		if err := writeSilentWAV(outputPath, placeholderDurationSeconds); err != nil {
			return 0, models.NewAudioGenerationError(fmt.Sprint(phrase.OriginalIndex), "failed to write placeholder audio", err)
		}
		return placeholderDurationSeconds, nil
	}

	inst, personaID := p.resolve(phrase.PersonaID)

	text := phrase.Text
	if phrase.Reading != "" {
		text = phrase.Reading
	}

	audioData, err := inst.client.Synthesize(ctx, text, inst.speakerID, inst.speedScale)
	if err != nil {
		if p.allowPlaceholder {
			log.Printf("[audio] synthesis failed for phrase %d (persona %s), writing placeholder: %v", phrase.OriginalIndex, personaID, err)
			if werr := writeSilentWAV(outputPath, placeholderDurationSeconds); werr != nil {
				return 0, models.NewAudioGenerationError(fmt.Sprint(phrase.OriginalIndex), "failed to write placeholder audio after synthesis failure", werr)
			}
			return placeholderDurationSeconds, nil
		}
		return 0, models.NewAudioGenerationError(fmt.Sprint(phrase.OriginalIndex), "synthesis failed", err)
	}

	if err := os.WriteFile(outputPath, audioData, 0o644); err != nil {
		return 0, models.NewAudioGenerationError(fmt.Sprint(phrase.OriginalIndex), "failed to write audio file", err)
	}

	return wavDurationSeconds(outputPath)
}

// resolve dispatches by persona_id, falling back to the first registered
// synthesizer (with an explicit log entry) on an unknown id — never silent.
func (p *Pool) resolve(personaID string) (*instance, string) {
	if inst, ok := p.instances[personaID]; ok {
		return inst, personaID
	}
	log.Printf("[audio] unknown persona_id %q, falling back to %q", personaID, p.fallbackPersona)
	return p.instances[p.fallbackPersona], p.fallbackPersona
}

// ValidateDispatch checks every phrase's persona_id against the registered
// instances once, before any synthesis begins, so dispatch warnings surface
// up front rather than trickling out mid-run.
func (p *Pool) ValidateDispatch(phrases []*models.Phrase) []string {
	var warnings []string
	for _, ph := range phrases {
		if _, ok := p.instances[ph.PersonaID]; !ok {
			warnings = append(warnings, fmt.Sprintf("phrase %d: unknown persona_id %q, will fall back to %q", ph.OriginalIndex, ph.PersonaID, p.fallbackPersona))
		}
	}
	return warnings
}
