package segment

import (
	"strings"
	"testing"
)

func TestSegmentReadingCarriesOverWhenNarrationFitsOnePhrase(t *testing.T) {
	s := New(DefaultOptions())
	short := "短い文章。"
	phrases := s.Segment(short, "アイウエオ", "p1", "Persona", 0)

	if len(phrases) != 1 {
		t.Fatalf("expected a single phrase, got %d", len(phrases))
	}
	if phrases[0].Reading != "アイウエオ" {
		t.Errorf("reading not preserved: %q", phrases[0].Reading)
	}
	if phrases[0].Text != short {
		t.Errorf("text mutated while carrying reading forward")
	}
}

func TestSegmentLongNarrationStillSplitsDespiteReading(t *testing.T) {
	// A mandatory narration-level reading must never suppress the
	// punctuation-priority/hard-cut algorithm: every phrase still has to
	// land inside the 3-6s timing target.
	s := New(DefaultOptions())
	long := strings.Repeat("あ", 200)
	phrases := s.Segment(long, "アイウエオ", "p1", "Persona", 0)

	if len(phrases) < 2 {
		t.Fatalf("expected a long narration to still split into multiple phrases, got %d", len(phrases))
	}
	for _, p := range phrases {
		if p.Reading != "" {
			t.Errorf("expected per-phrase reading to be left for dictionary resolution, got %q", p.Reading)
		}
	}
	var rejoined strings.Builder
	for _, p := range phrases {
		rejoined.WriteString(p.Text)
	}
	if rejoined.String() != long {
		t.Errorf("splitting lost or duplicated text: got %q", rejoined.String())
	}
}

func TestSegmentPrefersMaruOverTenWithinWindow(t *testing.T) {
	// Buffer must grow to max_chars before a split is forced; both "。"
	// and "、" are admissible candidates in the window, maru should win.
	opts := Options{MinChars: 2, MaxChars: 10}
	s := New(opts)

	text := "abcd、efgh。ij"
	phrases := s.Segment(text, "", "p1", "", 0)

	if len(phrases) == 0 {
		t.Fatal("expected at least one phrase")
	}
	if !strings.HasSuffix(phrases[0].Text, "。") {
		t.Errorf("expected first phrase to end at the maru boundary, got %q", phrases[0].Text)
	}
}

func TestSegmentRespectsQuoteDepth(t *testing.T) {
	opts := Options{MinChars: 2, MaxChars: 6}
	s := New(opts)

	// A 。 inside the quotation must not be treated as an admissible split;
	// the phrase should only break after the quote closes.
	text := "「abc。def」ghi。"
	phrases := s.Segment(text, "", "p1", "", 0)

	for _, p := range phrases {
		depth := 0
		for _, r := range p.Text {
			switch r {
			case '「':
				depth++
			case '」':
				depth--
			}
		}
		if depth != 0 {
			t.Errorf("phrase %q split inside an open quote", p.Text)
		}
	}
}

func TestSegmentHardCutWhenNoPunctuation(t *testing.T) {
	opts := Options{MinChars: 2, MaxChars: 5}
	s := New(opts)

	text := strings.Repeat("a", 17)
	phrases := s.Segment(text, "", "p1", "", 0)

	if len(phrases) < 3 {
		t.Fatalf("expected hard cuts to produce multiple phrases, got %d", len(phrases))
	}
	for _, p := range phrases[:len(phrases)-1] {
		if len([]rune(p.Text)) != opts.MaxChars {
			t.Errorf("expected hard-cut phrase of length %d, got %d (%q)", opts.MaxChars, len([]rune(p.Text)), p.Text)
		}
	}
}

func TestSegmentEmergencyReleaseInsideOverlongQuote(t *testing.T) {
	opts := Options{MinChars: 2, MaxChars: 4}
	s := New(opts)

	// No admissible boundary until 」 closes; buffer should release there
	// once past 1.5x max_chars (6 runes) rather than running forever.
	text := "「" + strings.Repeat("a", 10) + "」"
	phrases := s.Segment(text, "", "p1", "", 0)

	if len(phrases) == 0 {
		t.Fatal("expected at least one phrase")
	}
	if !strings.HasSuffix(phrases[0].Text, "」") {
		t.Errorf("expected emergency release at closing quote, got %q", phrases[0].Text)
	}
}

func TestSegmentDiscardsPunctuationOnlyPhrases(t *testing.T) {
	opts := Options{MinChars: 1, MaxChars: 3}
	s := New(opts)

	phrases := s.Segment("。、\n", "", "p1", "", 0)
	if len(phrases) != 0 {
		t.Errorf("expected punctuation-only content to be discarded, got %+v", phrases)
	}
}

func TestSegmentOriginalIndexMonotonicAcrossNarrations(t *testing.T) {
	s := New(Options{MinChars: 1, MaxChars: 100})

	first := s.Segment("一つ目。", "", "p1", "", 0)
	second := s.Segment("二つ目。", "", "p1", "", 1)

	seen := map[int]bool{}
	for _, p := range append(first, second...) {
		if seen[p.OriginalIndex] {
			t.Fatalf("duplicate original_index %d", p.OriginalIndex)
		}
		seen[p.OriginalIndex] = true
	}
	if len(first) == 0 || len(second) == 0 {
		t.Fatal("expected phrases from both narrations")
	}
	if first[len(first)-1].OriginalIndex >= second[0].OriginalIndex {
		t.Errorf("expected original_index to increase monotonically across narrations")
	}
}
