package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bobarin/kobanashi/internal/models"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadRejectsMissingOutputDir(t *testing.T) {
	path := writeTempConfig(t, "project:\n  name: x\n")
	t.Setenv("OPENROUTER_API_KEY", "test-key")

	if _, err := Load(path); err == nil {
		t.Fatal("expected ConfigurationError for missing output_dir")
	}
}

func TestLoadRejectsMissingAPIKey(t *testing.T) {
	path := writeTempConfig(t, "project:\n  output_dir: ./out\n")
	t.Setenv("OPENROUTER_API_KEY", "")

	if _, err := Load(path); err == nil {
		t.Fatal("expected ConfigurationError for missing OPENROUTER_API_KEY")
	}
}

func TestLoadAppliesDefaultsAndValidates(t *testing.T) {
	path := writeTempConfig(t, "project:\n  output_dir: ./out\n")
	t.Setenv("OPENROUTER_API_KEY", "test-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Style.FPS != 30 {
		t.Errorf("expected default fps 30, got %d", cfg.Style.FPS)
	}
	if cfg.Slides.MaxConcurrent != 3 {
		t.Errorf("expected default max_concurrent 3, got %d", cfg.Slides.MaxConcurrent)
	}
}

func TestLoadRejectsDuplicatePersonaIDs(t *testing.T) {
	contents := `
project:
  output_dir: ./out
personas:
  - id: a
    synthesizer: {engine: voicevox, speaker_id: 1}
  - id: a
    synthesizer: {engine: voicevox, speaker_id: 2}
`
	path := writeTempConfig(t, contents)
	t.Setenv("OPENROUTER_API_KEY", "test-key")

	if _, err := Load(path); err == nil {
		t.Fatal("expected ConfigurationError for duplicate persona id")
	}
}

func TestLoadRejectsUnknownSynthesizerEngine(t *testing.T) {
	contents := `
project:
  output_dir: ./out
personas:
  - id: a
    synthesizer: {engine: unknown_tts, speaker_id: 1}
`
	path := writeTempConfig(t, contents)
	t.Setenv("OPENROUTER_API_KEY", "test-key")

	if _, err := Load(path); err == nil {
		t.Fatal("expected ConfigurationError for unknown synthesizer engine")
	}
}

// TestWriteLoadRoundTrip exercises L1 (load_config(write_config(c)) == c)
// over the fields that survive YAML round-tripping.
func TestWriteLoadRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Project.OutputDir = "./out"
	cfg.Personas = []models.Persona{{
		ID:            "zundamon",
		Name:          "Zundamon",
		SubtitleColor: "#8FCF4F",
		Synthesizer:   models.SynthesizerConfig{Engine: models.EngineVoicevox, SpeakerID: 3, SpeedScale: 1.0},
	}}

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := cfg.Write(path); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("OPENROUTER_API_KEY", "test-key")
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("failed to reload written config: %v", err)
	}

	if loaded.Project.OutputDir != cfg.Project.OutputDir {
		t.Errorf("output_dir did not round-trip: got %q", loaded.Project.OutputDir)
	}
	if len(loaded.Personas) != 1 || loaded.Personas[0].ID != "zundamon" {
		t.Errorf("personas did not round-trip: %+v", loaded.Personas)
	}
	if loaded.Personas[0].Synthesizer.SpeakerID != 3 {
		t.Errorf("speaker_id did not round-trip: %+v", loaded.Personas[0].Synthesizer)
	}
}
