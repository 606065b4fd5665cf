// Package config loads and validates the pipeline's YAML config file and
// the small set of secrets that arrive via the environment, following the
// teacher's Load()-with-required-field-validation shape but generalized
// from flat env vars to a structured YAML document.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bobarin/kobanashi/internal/models"
)

// ProjectConfig names the project and its output root.
type ProjectConfig struct {
	Name      string `yaml:"name"`
	OutputDir string `yaml:"output_dir"`
}

// StyleConfig governs render resolution and quality.
type StyleConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
	CRF    int `yaml:"crf"`
}

// LLMConfig is shared by content and slide generation: a model name plus an
// optional endpoint override (spec's "Config-level base_url overrides
// provider endpoints").
type LLMConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// ContentConfig governs script synthesis language and LLM selection.
type ContentConfig struct {
	Languages []string  `yaml:"languages"`
	LLM       LLMConfig `yaml:"llm"`
}

// NarrationConfig selects single vs. dialogue mode and a free-text style hint.
type NarrationConfig struct {
	Mode  models.NarrationMode `yaml:"mode"`
	Style string                `yaml:"style,omitempty"`
}

// AudioConfig governs the pronunciation/dictionary side of synthesis.
type AudioConfig struct {
	DictDir            string `yaml:"dict_dir"`
	ModelPath          string `yaml:"model_path"`
	EnableFurigana     bool   `yaml:"enable_furigana"`
	PronunciationModel string `yaml:"pronunciation_model,omitempty"`
	VoicevoxURL        string `yaml:"voicevox_url"`
}

// SlidesConfig governs the image-LLM producer's concurrency and retry policy.
type SlidesConfig struct {
	LLM            LLMConfig `yaml:"llm"`
	MaxConcurrent  int       `yaml:"max_concurrent"`
	MaxRetries     int       `yaml:"max_retries"`
	RetryDelaySecs float64   `yaml:"retry_delay"`
}

// VideoConfig governs rendering: renderer selection, transition, and global
// background/bgm fallbacks.
type VideoConfig struct {
	Renderer             string                    `yaml:"renderer"`
	Transition           models.TransitionConfig   `yaml:"transition"`
	Background           *models.BackgroundConfig  `yaml:"background,omitempty"`
	BGM                  string                    `yaml:"bgm,omitempty"`
	RenderConcurrency    int                       `yaml:"render_concurrency"`
	RenderTimeoutSeconds int                       `yaml:"render_timeout_seconds"`
	// BackgroundVideoBackend/Model select the C10 generator (internal/videobg)
	// used when a background declares type: video with a prompt but no path.
	BackgroundVideoBackend string `yaml:"background_video_backend,omitempty"`
	BackgroundVideoModel   string `yaml:"background_video_model,omitempty"`
}

// PronunciationConfig carries manual dictionary overrides, priority 10
// (section 4.4) — see models.PriorityManual.
type PronunciationConfig struct {
	Custom []CustomPronunciation `yaml:"custom,omitempty"`
}

type CustomPronunciation struct {
	Surface    string          `yaml:"surface"`
	Reading    string          `yaml:"reading"`
	AccentType int             `yaml:"accent_type"`
	WordType   models.WordType `yaml:"word_type"`
}

// Config is the full recognized top-level YAML document (section 6).
type Config struct {
	Project       ProjectConfig        `yaml:"project"`
	Style         StyleConfig          `yaml:"style"`
	Content       ContentConfig        `yaml:"content"`
	Narration     NarrationConfig      `yaml:"narration"`
	Personas      []models.Persona     `yaml:"personas"`
	PersonaPool   models.PersonaPool   `yaml:"persona_pool"`
	Audio         AudioConfig          `yaml:"audio"`
	Slides        SlidesConfig         `yaml:"slides"`
	Video         VideoConfig          `yaml:"video"`
	Pronunciation PronunciationConfig  `yaml:"pronunciation"`

	// Secrets — loaded from the environment, never serialized to YAML.
	OpenRouterAPIKey string `yaml:"-"`
	FirecrawlAPIKey  string `yaml:"-"`
	ProjectRoot      string `yaml:"-"`
}

// Load reads and validates the config YAML at path, then overlays secrets
// from .env/the environment exactly as the teacher's Load() does for its
// flat env-var config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewConfigurationError(path, "failed to read config file", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, models.NewConfigurationError(path, "failed to parse config YAML", err)
	}

	loadSecrets(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadSecrets(cfg *Config) {
	_ = godotenv.Load()

	cfg.OpenRouterAPIKey = getEnv("OPENROUTER_API_KEY", "")
	cfg.FirecrawlAPIKey = getEnv("FIRECRAWL_API_KEY", "")
	cfg.ProjectRoot = getEnv("PROJECT_ROOT", "")
}

// Defaults returns a Config pre-populated with the style, content,
// narration, audio, slides and video values `config init` emits, before the
// user's YAML is unmarshaled on top. Project name/output_dir and
// persona_pool are left at their zero values.
func Defaults() *Config {
	return &Config{
		Style: StyleConfig{Width: 1920, Height: 1080, FPS: 30, CRF: 18},
		Content: ContentConfig{
			Languages: []string{"ja"},
			LLM:       LLMConfig{Model: "anthropic/claude-sonnet-4"},
		},
		Narration: NarrationConfig{Mode: models.NarrationSingle},
		Audio: AudioConfig{
			DictDir:     "dict",
			ModelPath:   "models",
			VoicevoxURL: "http://127.0.0.1:50021",
		},
		Slides: SlidesConfig{
			LLM:            LLMConfig{Model: "google/gemini-2.5-flash-image"},
			MaxConcurrent:  3,
			MaxRetries:     4,
			RetryDelaySecs: 1.0,
		},
		Video: VideoConfig{
			Renderer:             "remotion",
			Transition:           models.TransitionConfig{Type: models.TransitionFade, DurationFrames: 15},
			RenderConcurrency:    2,
			RenderTimeoutSeconds: 600,
		},
	}
}

// Validate enforces the numeric-range and reference invariants sections 6-7
// assign to ConfigurationError.
func (c *Config) Validate() error {
	if c.Project.OutputDir == "" {
		return models.NewConfigurationError("project.output_dir", "required", nil)
	}
	if len(c.Content.Languages) == 0 {
		return models.NewConfigurationError("content.languages", "at least one language is required", nil)
	}
	if c.Style.FPS <= 0 {
		return models.NewConfigurationError("style.fps", "must be > 0", nil)
	}
	if c.Style.Width <= 0 || c.Style.Height <= 0 {
		return models.NewConfigurationError("style", "width/height must be > 0", nil)
	}

	if err := models.ValidatePersonas(c.Personas); err != nil {
		return err
	}
	if c.PersonaPool.Enabled && c.PersonaPool.Count > len(c.Personas) {
		return models.NewConfigurationError("persona_pool.count", "count must be <= number of configured personas", nil)
	}
	for _, p := range c.Personas {
		if p.Synthesizer.Engine != models.EngineVoicevox {
			return models.NewConfigurationError("personas."+p.ID+".synthesizer.engine", "unknown synthesizer engine: "+string(p.Synthesizer.Engine), nil)
		}
		if p.Synthesizer.SpeakerID < 0 {
			return models.NewConfigurationError("personas."+p.ID+".synthesizer.speaker_id", "must be >= 0", nil)
		}
	}

	if c.Slides.MaxConcurrent < 1 || c.Slides.MaxConcurrent > 10 {
		return models.NewConfigurationError("slides.max_concurrent", "must be between 1 and 10", nil)
	}
	if c.Video.RenderConcurrency < 1 {
		return models.NewConfigurationError("video.render_concurrency", "must be >= 1", nil)
	}

	switch c.Video.Transition.Type {
	case models.TransitionNone, models.TransitionFade, models.TransitionWipe, models.TransitionSlide:
	default:
		return models.NewConfigurationError("video.transition.type", "unknown transition type: "+string(c.Video.Transition.Type), nil)
	}
	if c.Video.Transition.Type != models.TransitionNone && c.Video.Transition.DurationFrames <= 0 {
		return models.NewConfigurationError("video.transition.duration_frames", "must be > 0 when transition.type != none", nil)
	}

	if c.OpenRouterAPIKey == "" {
		return models.NewConfigurationError("OPENROUTER_API_KEY", "required environment variable is not set", nil)
	}

	return nil
}

// Write serializes c back to YAML at path using an atomic temp-file-then-
// rename, matching the project's "atomic writes for script/config" design
// note.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp config: %w", err)
	}
	return os.Rename(tmp, path)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
