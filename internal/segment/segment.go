// Package segment splits narration text into timing-sized phrases, honoring
// quote nesting and punctuation priority so a cut never lands mid-quotation.
package segment

import (
	"strings"
	"unicode"

	"github.com/bobarin/kobanashi/internal/models"
)

// Options controls the character-count heuristic used as a stand-in for the
// post-synthesis 3-6s target (section 4.3: pre-synthesis splitting can only
// approximate duration from character count).
type Options struct {
	MinChars int
	MaxChars int
}

// DefaultOptions returns the 15/80 rune bounds used by every pipeline caller.
func DefaultOptions() Options {
	return Options{MinChars: 15, MaxChars: 80}
}

func (o Options) withDefaults() Options {
	if o.MinChars <= 0 {
		o.MinChars = 15
	}
	if o.MaxChars <= 0 {
		o.MaxChars = 80
	}
	return o
}

const punctuationOnly = "。、！？"

// split candidate priority: lower wins.
const (
	priorityMaru = iota
	priorityTen
	priorityNewline
	priorityBang
)

// Segmenter assigns original_index monotonically across every narration of
// a script, so one Segmenter must be shared across all sections and
// narrations of a single generation run.
type Segmenter struct {
	opts      Options
	nextIndex int
}

func New(opts Options) *Segmenter {
	return &Segmenter{opts: opts.withDefaults()}
}

// Segment splits one narration into ordered phrases using the punctuation
// heuristics below, regardless of whether a reading was supplied — the
// 3-6s timing target (section 4.3) applies to every narration, long or
// short. A non-empty reading only governs the dictionary/synthesis bypass
// of section 4.4 (P8): it is the full spoken form of the narration as a
// whole, so it can only be attached to a phrase when the split produced a
// single phrase (the narration was short enough not to need splitting).
// When splitting yields more than one phrase, each one is left to resolve
// its own reading through the normal per-phrase dictionary/LLM fallback.
func (s *Segmenter) Segment(text, reading, personaID, personaName string, sectionIndex int) []*models.Phrase {
	raws := splitText(text, s.opts)

	var kept []string
	for _, raw := range raws {
		if isPunctuationOnly(raw) {
			continue
		}
		kept = append(kept, raw)
	}

	var phrases []*models.Phrase
	for i, raw := range kept {
		p := &models.Phrase{
			OriginalIndex: s.nextIndex,
			SectionIndex:  sectionIndex,
			PersonaID:     personaID,
			PersonaName:   personaName,
			Text:          raw,
		}
		if len(kept) == 1 && i == 0 {
			p.Reading = reading
		}
		phrases = append(phrases, p)
		s.nextIndex++
	}
	return phrases
}

type candidate struct {
	offset   int
	priority int
}

// splitText implements the deterministic algorithm from section 4.3: walk
// the text tracking quote depth, rank admissible split candidates by
// punctuation priority inside the current window, hard-cut at max_chars
// when nothing admissible exists, and allow an emergency release at the
// next closing quote once the buffer has blown past 1.5x max_chars.
func splitText(text string, opts Options) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	var phrases []string
	bufStart := 0
	quoteDepth := 0
	var candidates []candidate

	flush := func(offset int) {
		phrases = append(phrases, string(runes[bufStart:offset]))
		bufStart = offset
		candidates = candidates[:0]
	}

	emergencyLimit := int(1.5 * float64(opts.MaxChars))

	for i := 0; i < n; i++ {
		r := runes[i]
		switch r {
		case '「', '『':
			quoteDepth++
		case '」', '』':
			if quoteDepth > 0 {
				quoteDepth--
			}
		}

		offset := i + 1
		bufLen := offset - bufStart

		if quoteDepth == 0 {
			if pri, ok := splitPriority(r); ok {
				candidates = append(candidates, candidate{offset: offset, priority: pri})
			}
		}

		if quoteDepth == 0 && (r == '」' || r == '』') && bufLen >= emergencyLimit {
			flush(offset)
			continue
		}

		if bufLen >= opts.MaxChars {
			if best, ok := bestCandidate(candidates, bufStart, opts.MinChars); ok {
				flush(best)
				continue
			}
			if quoteDepth == 0 {
				flush(offset)
			}
			// else: still inside a quote with nothing admissible; keep
			// accumulating until the emergency release above fires.
		}
	}

	if bufStart < n {
		phrases = append(phrases, string(runes[bufStart:n]))
	}

	return phrases
}

func splitPriority(r rune) (int, bool) {
	switch r {
	case '。':
		return priorityMaru, true
	case '、':
		return priorityTen, true
	case '\n':
		return priorityNewline, true
	case '!', '?', '！', '？':
		return priorityBang, true
	}
	return 0, false
}

// bestCandidate returns the highest-priority offset that leaves at least
// min_chars in the resulting phrase; ties go to the earliest such offset.
func bestCandidate(candidates []candidate, bufStart, minChars int) (int, bool) {
	bestPri := -1
	bestOffset := -1
	for _, c := range candidates {
		if c.offset-bufStart < minChars {
			continue
		}
		if bestPri == -1 || c.priority < bestPri {
			bestPri = c.priority
			bestOffset = c.offset
		}
	}
	if bestOffset == -1 {
		return 0, false
	}
	return bestOffset, true
}

func isPunctuationOnly(s string) bool {
	trimmed := strings.TrimFunc(s, func(r rune) bool {
		return strings.ContainsRune(punctuationOnly, r) || unicode.IsSpace(r)
	})
	return trimmed == ""
}
