package models

import "strings"

// Phrase is the mutable unit of work threaded through S3-S6. OriginalIndex
// is assigned once by the segmenter and never changes again: it is the sole
// source of filename indexing and must survive scene-range filtering and
// partial re-runs untouched.
type Phrase struct {
	OriginalIndex     int
	SectionIndex      int
	PersonaID         string
	PersonaName       string
	Text              string
	Reading           string
	Duration          float64 // seconds, filled by C5
	StartFrame        int     // filled by C7
	BackgroundOverride *BackgroundConfig
}

// strippablePunctuation is discarded from the tail of a phrase's subtitle
// text; segmentation punctuation a viewer should not see on a subtitle card.
const strippablePunctuation = "。、"

// GetSubtitleText derives display text by iteratively stripping trailing
// `。`/`、`. Text and Reading themselves are never modified (P7).
func (p *Phrase) GetSubtitleText() string {
	text := p.Text
	for {
		trimmed := strings.TrimRight(text, strippablePunctuation)
		if trimmed == text {
			return text
		}
		text = trimmed
	}
}

// IsEmpty reports whether the phrase's stripped text is devoid of content
// (P6): pure punctuation/whitespace never reaches the downstream stages.
func (p *Phrase) IsEmpty() bool {
	stripped := strings.Trim(p.Text, strippablePunctuation+"！？\n\r\t ")
	return stripped == ""
}

// AudioFilename is the deterministic phrase_NNNN.wav name keyed on
// OriginalIndex, stable across scene-range filtering (see Project Layout).
func (p *Phrase) AudioFilename() string {
	return PhraseFilename(p.OriginalIndex)
}

// SlideFilename is the deterministic slide_NNNN.png name keyed on OriginalIndex.
func (p *Phrase) SlideFilename() string {
	return SlideFilename(p.OriginalIndex)
}
