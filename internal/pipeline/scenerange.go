package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bobarin/kobanashi/internal/models"
)

// SceneRange filters phrases by section_index (1-indexed, inclusive).
// A zero value (Start==0 && End==0) means "no range": everything passes.
type SceneRange struct {
	raw   string
	Start int
	End   int
}

// ParseSceneRange accepts "" (no range), "N", "N-M", "N-", or "-M", all
// 1-indexed and inclusive. maxSection bounds the open-ended forms and is
// used to build the "valid bounds" message on an out-of-range input.
func ParseSceneRange(s string, maxSection int) (SceneRange, error) {
	if s == "" {
		return SceneRange{}, nil
	}

	var start, end int
	switch {
	case strings.HasPrefix(s, "-"):
		n, err := strconv.Atoi(s[1:])
		if err != nil {
			return SceneRange{}, invalidRange(s, maxSection)
		}
		start, end = 1, n
	case strings.HasSuffix(s, "-"):
		n, err := strconv.Atoi(s[:len(s)-1])
		if err != nil {
			return SceneRange{}, invalidRange(s, maxSection)
		}
		start, end = n, maxSection
	case strings.Contains(s, "-"):
		parts := strings.SplitN(s, "-", 2)
		a, errA := strconv.Atoi(parts[0])
		b, errB := strconv.Atoi(parts[1])
		if errA != nil || errB != nil {
			return SceneRange{}, invalidRange(s, maxSection)
		}
		start, end = a, b
	default:
		n, err := strconv.Atoi(s)
		if err != nil {
			return SceneRange{}, invalidRange(s, maxSection)
		}
		start, end = n, n
	}

	if start < 1 || end < start || end > maxSection {
		return SceneRange{}, invalidRange(s, maxSection)
	}

	return SceneRange{raw: s, Start: start, End: end}, nil
}

func invalidRange(s string, maxSection int) error {
	return models.NewConfigurationError("scenes", fmt.Sprintf("invalid scene range %q, valid bounds are 1-%d", s, maxSection), nil)
}

// String returns the raw range token as supplied, for output filename
// encoding via ProjectPaths.OutputPath.
func (r SceneRange) String() string {
	return r.raw
}

// IsZero reports whether no range was requested.
func (r SceneRange) IsZero() bool {
	return r.raw == ""
}

// Contains reports whether sectionIndex (1-indexed) falls within the range.
func (r SceneRange) Contains(sectionIndex int) bool {
	if r.IsZero() {
		return true
	}
	return sectionIndex >= r.Start && sectionIndex <= r.End
}

// FilterPhrases keeps only phrases whose SectionIndex falls in the range,
// preserving OriginalIndex untouched on survivors (P-ORD: original_index
// never gets renumbered by scene filtering).
func FilterPhrases(phrases []*models.Phrase, r SceneRange) []*models.Phrase {
	if r.IsZero() {
		return phrases
	}
	out := make([]*models.Phrase, 0, len(phrases))
	for _, p := range phrases {
		if r.Contains(p.SectionIndex) {
			out = append(out, p)
		}
	}
	return out
}
