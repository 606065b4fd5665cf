// Package pronounce fuses manual, per-phrase, and LLM-verified readings
// into the pronunciation dictionary consumed by the audio synthesizer pool.
package pronounce

import (
	"context"
	"log"
	"regexp"
	"strings"
	"unicode"

	"github.com/bobarin/kobanashi/internal/models"
)

// Token is a candidate span of text needing a reading resolved — a run of
// non-kana, non-punctuation characters.
type Token struct {
	Surface string
}

// Verifier calls an LLM to confirm or produce katakana readings for a batch
// of tokens given surrounding context.
type Verifier interface {
	VerifyReadings(ctx context.Context, tokens []Token, contextText string) (map[string]string, error)
}

// ManualEntry mirrors config.pronunciation.custom.
type ManualEntry struct {
	Surface    string
	Reading    string
	AccentType int
	WordType   models.WordType
}

// Resolver runs the three-source fusion described in section 4.4. The
// per-phrase reading path (priority over everything here) is handled by
// the segmenter and the synthesizer directly — this package only owns the
// manual-entry load and the morphological+LLM fallback.
type Resolver struct {
	verifier Verifier
}

func NewResolver(v Verifier) *Resolver {
	return &Resolver{verifier: v}
}

// LoadManual inserts config-supplied entries at priority 10, loaded first
// so nothing else can override them.
func (r *Resolver) LoadManual(dict *models.PronunciationDictionary, entries []ManualEntry) {
	for _, e := range entries {
		dict.Insert(models.PronunciationEntry{
			Surface:    e.Surface,
			Reading:    e.Reading,
			AccentType: e.AccentType,
			WordType:   e.WordType,
			Priority:   models.PriorityManual,
		})
	}
}

// PrepareTexts runs once at the top of synthesis (section 4.5's pre-pass)
// over every phrase whose reading field is empty: it tokenizes the text,
// registers raw morpheme readings at priority 5, then tries to upgrade them
// to priority 7 via the configured Verifier. LLM failure is never fatal —
// it logs a warning and the priority-5 readings stand.
func (r *Resolver) PrepareTexts(ctx context.Context, dict *models.PronunciationDictionary, phrases []*models.Phrase) {
	var needsResolution []*models.Phrase
	for _, p := range phrases {
		if p.Reading == "" {
			needsResolution = append(needsResolution, p)
		}
	}
	if len(needsResolution) == 0 {
		return
	}

	seen := make(map[string]bool)
	var tokens []Token
	for _, p := range needsResolution {
		for _, tok := range Tokenize(p.Text) {
			if seen[tok.Surface] {
				continue
			}
			seen[tok.Surface] = true
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return
	}

	for _, tok := range tokens {
		dict.Insert(models.PronunciationEntry{
			Surface:  tok.Surface,
			Reading:  tok.Surface,
			Priority: models.PriorityMorphological,
		})
	}

	if r.verifier == nil {
		log.Printf("[pronounce] no verifier configured, proceeding with %d raw morpheme readings", len(tokens))
		return
	}

	verified, err := r.verifier.VerifyReadings(ctx, tokens, joinContext(needsResolution))
	if err != nil {
		log.Printf("[pronounce] LLM verification failed, proceeding with raw morpheme readings: %v", err)
		return
	}

	for surface, reading := range verified {
		clean := sanitizeReading(reading)
		if clean == "" {
			continue
		}
		dict.Insert(models.PronunciationEntry{
			Surface:  surface,
			Reading:  clean,
			Priority: models.PriorityLLMVerified,
		})
	}
}

func joinContext(phrases []*models.Phrase) string {
	var sb strings.Builder
	for _, p := range phrases {
		sb.WriteString(p.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Tokenize groups maximal runs of non-kana, non-punctuation, non-space
// characters. There is no morphological analyzer in the dependency stack
// available to this project, so this heuristic stands in for one: it is
// adequate for a priority-5 fallback since manual entries and per-phrase
// readings both take precedence over it in practice.
func Tokenize(text string) []Token {
	var tokens []Token
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			tokens = append(tokens, Token{Surface: buf.String()})
			buf.Reset()
		}
	}

	for _, r := range text {
		if isKana(r) || unicode.IsSpace(r) || isPunctuation(r) {
			flush()
			continue
		}
		buf.WriteRune(r)
	}
	flush()

	return tokens
}

func isKana(r rune) bool {
	return (r >= 0x3040 && r <= 0x309F) || (r >= 0x30A0 && r <= 0x30FF) || r == 'ー'
}

func isPunctuation(r rune) bool {
	return strings.ContainsRune("。、「」『』！？!?.,　", r)
}

var nonKatakana = regexp.MustCompile(`[^\x{30A0}-\x{30FF}ー]`)

// sanitizeReading strips whitespace and keeps only katakana plus the
// long-vowel mark, per section 4.4's rule for LLM-returned strings.
func sanitizeReading(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	return nonKatakana.ReplaceAllString(s, "")
}
