package models

// TransitionType selects the Remotion cross-effect between consecutive slides.
type TransitionType string

const (
	TransitionNone TransitionType = "none"
	TransitionFade TransitionType = "fade"
	TransitionWipe TransitionType = "wipe"
	TransitionSlide TransitionType = "slide"
)

// TransitionConfig describes the cross-fade (or none) applied between
// consecutive phrases whose slides differ.
type TransitionConfig struct {
	Type           TransitionType `json:"type" yaml:"type"`
	DurationFrames int            `json:"duration_frames" yaml:"duration_frames"`
	Timing         string         `json:"timing,omitempty" yaml:"timing,omitempty"`
}

// CompositionPhrase is one entry of composition.json's phrases array, the
// frame-indexed unit Remotion actually renders.
type CompositionPhrase struct {
	Text              string            `json:"text"`
	Reading           string            `json:"reading,omitempty"`
	AudioFile         string            `json:"audioFile"`
	SlideFile         string            `json:"slideFile"`
	DurationFrames    int               `json:"durationFrames"`
	StartFrame        int               `json:"startFrame"`
	PersonaID         string            `json:"personaId,omitempty"`
	PersonaName       string            `json:"personaName,omitempty"`
	SubtitleColor     string            `json:"subtitleColor,omitempty"`
	CharacterImage    string            `json:"characterImage,omitempty"`
	MouthOpenImage    string            `json:"mouthOpenImage,omitempty"`
	EyeCloseImage     string            `json:"eyeCloseImage,omitempty"`
	CharacterPosition CharacterPosition `json:"characterPosition,omitempty"`
	AnimationStyle    AnimationStyle    `json:"animationStyle,omitempty"`
	Background        *BackgroundConfig `json:"background,omitempty"`
}

// CompositionData is the sole Python/Go <-> Remotion contract, serialized
// verbatim as composition.json. Never read back by this side after writing.
type CompositionData struct {
	FPS         int                `json:"fps"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	Transition  TransitionConfig   `json:"transition"`
	Background  *BackgroundConfig  `json:"background,omitempty"`
	BGM         string             `json:"bgm,omitempty"`
	Phrases     []CompositionPhrase `json:"phrases"`
	TotalFrames int                `json:"totalFrames"`
}
