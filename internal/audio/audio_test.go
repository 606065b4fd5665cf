package audio

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bobarin/kobanashi/internal/models"
)

func TestWavRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.wav")

	if err := writeSilentWAV(path, 2.5); err != nil {
		t.Fatalf("failed to write silent wav: %v", err)
	}

	dur, err := wavDurationSeconds(path)
	if err != nil {
		t.Fatalf("failed to read duration: %v", err)
	}
	if dur < 2.4 || dur > 2.6 {
		t.Errorf("expected duration near 2.5s, got %f", dur)
	}
}

func TestSynthesizePhraseReusesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phrase_0000.wav")
	if err := writeSilentWAV(path, 4.0); err != nil {
		t.Fatalf("setup: %v", err)
	}

	pool := NewPool([]models.Persona{{ID: "p1", Synthesizer: models.SynthesizerConfig{SpeakerID: 1}}}, "http://unused", false)

	phrase := &models.Phrase{OriginalIndex: 0, PersonaID: "p1", Text: "hello"}
	dur, err := pool.SynthesizePhrase(context.Background(), phrase, path)
	if err != nil {
		t.Fatalf("unexpected error reusing cached file: %v", err)
	}
	if dur < 3.9 || dur > 4.1 {
		t.Errorf("expected cached duration near 4.0s, got %f", dur)
	}
}

func TestSynthesizePhrasePlaceholderModeWhenForced(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phrase_0001.wav")

	pool := NewPool([]models.Persona{{ID: "p1"}}, "http://unused", true)
	pool.placeholderOnly = true // simulate Initialize() having downgraded

	phrase := &models.Phrase{OriginalIndex: 1, PersonaID: "p1", Text: "hello"}
	dur, err := pool.SynthesizePhrase(context.Background(), phrase, path)
	if err != nil {
		t.Fatalf("unexpected error in placeholder mode: %v", err)
	}
	if dur != placeholderDurationSeconds {
		t.Errorf("expected placeholder duration %f, got %f", placeholderDurationSeconds, dur)
	}
	if !fileExistsNonEmpty(path) {
		t.Error("expected a placeholder wav file to be written")
	}
}

func TestValidateDispatchWarnsOnUnknownPersona(t *testing.T) {
	pool := NewPool([]models.Persona{{ID: "known"}}, "http://unused", false)

	phrases := []*models.Phrase{
		{OriginalIndex: 0, PersonaID: "known"},
		{OriginalIndex: 1, PersonaID: "ghost"},
	}
	warnings := pool.ValidateDispatch(phrases)
	if len(warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %d: %v", len(warnings), warnings)
	}
}

func TestInitializeFailsWithoutPlaceholderWhenEngineUnreachable(t *testing.T) {
	pool := NewPool([]models.Persona{{ID: "p1"}}, "http://127.0.0.1:1", false)
	if err := pool.Initialize(context.Background()); err == nil {
		t.Fatal("expected an error when the engine is unreachable and placeholders are disallowed")
	}
}

func TestInitializeDowngradesToPlaceholderWhenAllowed(t *testing.T) {
	pool := NewPool([]models.Persona{{ID: "p1"}}, "http://127.0.0.1:1", true)
	if err := pool.Initialize(context.Background()); err != nil {
		t.Fatalf("expected no error, placeholder mode should absorb engine unavailability: %v", err)
	}
	if !pool.placeholderOnly {
		t.Error("expected placeholderOnly to be set after a failed ping with allow_placeholder")
	}
}
