package models

// NarrationMode selects single-speaker vs. multi-persona dialogue generation.
type NarrationMode string

const (
	NarrationSingle   NarrationMode = "single"
	NarrationDialogue NarrationMode = "dialogue"
)

// BackgroundType distinguishes a still image background from a generated
// or supplied video background.
type BackgroundType string

const (
	BackgroundImage BackgroundType = "image"
	BackgroundVideo BackgroundType = "video"
)

// BackgroundFit mirrors CSS object-fit semantics for how a background
// is scaled to the frame.
type BackgroundFit string

const (
	FitCover   BackgroundFit = "cover"
	FitContain BackgroundFit = "contain"
	FitFill    BackgroundFit = "fill"
)

// BackgroundConfig is an optional per-section or global background override.
// Path is a ready asset; Prompt (kobanashi addition, see SPEC_FULL C10) lets
// a section request a generated background when no asset exists yet.
type BackgroundConfig struct {
	Type   BackgroundType `yaml:"type"`
	Path   string         `yaml:"path,omitempty"`
	Prompt string         `yaml:"prompt,omitempty"`
	Fit    BackgroundFit  `yaml:"fit,omitempty"`
}

// RoleAssignment is an LLM-produced, informational annotation naming a
// persona's conversational function. Never consulted for runtime dispatch.
type RoleAssignment struct {
	PersonaID   string `yaml:"persona_id"`
	Role        string `yaml:"role"`
	Description string `yaml:"description"`
}

// Narration is one line of dialogue within a section, immutable once parsed.
type Narration struct {
	Text      string `yaml:"text"`
	Reading   string `yaml:"reading"`
	PersonaID string `yaml:"persona_id,omitempty"`
}

// ScriptSection groups narrations sharing one slide/background.
type ScriptSection struct {
	Title           string            `yaml:"title"`
	Narrations      []Narration       `yaml:"narrations"`
	SlidePrompt     string            `yaml:"slide_prompt,omitempty"`
	SourceImageURL  string            `yaml:"source_image_url,omitempty"`
	Background      *BackgroundConfig `yaml:"background,omitempty"`
}

// Validate enforces that at least one of (SlidePrompt, SourceImageURL) is
// set; a section carrying both is accepted.
func (s *ScriptSection) Validate() error {
	hasPrompt := s.SlidePrompt != ""
	hasURL := s.SourceImageURL != ""
	if !hasPrompt && !hasURL {
		return NewScriptGenerationError(s.Title, "section has neither slide_prompt nor source_image_url", nil)
	}
	return nil
}

// VideoScript is the persisted, round-trippable YAML document produced by
// the Script Synthesizer and consumed by every downstream stage.
type VideoScript struct {
	Title           string            `yaml:"title"`
	Description     string            `yaml:"description"`
	RoleAssignments []RoleAssignment  `yaml:"role_assignments,omitempty"`
	Sections        []ScriptSection   `yaml:"sections"`
}

// Validate walks every narration, enforcing the reading-non-empty invariant
// and persona_id resolution rules described for the Script Synthesizer.
func (s *VideoScript) Validate(personas []Persona, mode NarrationMode) error {
	for si := range s.Sections {
		sec := &s.Sections[si]
		if err := sec.Validate(); err != nil {
			return err
		}
		for ni := range sec.Narrations {
			n := &sec.Narrations[ni]
			if n.Reading == "" {
				// Legacy input without reading: back-compat synthesis of last
				// resort. Logged by the caller, not here (pure function).
				n.Reading = n.Text
			}
			if n.PersonaID == "" {
				if len(personas) == 1 {
					n.PersonaID = personas[0].ID
				} else if mode == NarrationDialogue && len(personas) > 1 {
					return NewScriptGenerationError(s.Title, "persona_id required in dialogue mode with multiple personas", nil)
				}
			} else if FindPersona(personas, n.PersonaID) == nil {
				return NewScriptGenerationError(s.Title, "unknown persona_id: "+n.PersonaID, nil)
			}
		}
	}
	return nil
}
