package pronounce

import (
	"context"
	"errors"
	"testing"

	"github.com/bobarin/kobanashi/internal/models"
)

func TestTokenizeSkipsKanaAndPunctuation(t *testing.T) {
	tokens := Tokenize("東京タワーに行く。3番目の場所です")
	if len(tokens) == 0 {
		t.Fatal("expected at least one token")
	}
	for _, tok := range tokens {
		for _, r := range tok.Surface {
			if isKana(r) {
				t.Errorf("token %q retained a kana rune", tok.Surface)
			}
		}
	}
}

func TestSanitizeReadingKeepsOnlyKatakana(t *testing.T) {
	got := sanitizeReading(" トウキョウ tower ー ")
	want := "トウキョウー"
	if got != want {
		t.Errorf("sanitizeReading() = %q, want %q", got, want)
	}
}

func TestLoadManualInsertsPriorityTen(t *testing.T) {
	dict := models.NewPronunciationDictionary()
	r := NewResolver(nil)
	r.LoadManual(dict, []ManualEntry{
		{Surface: "東京", Reading: "トウキョウ", WordType: models.WordProperNoun},
	})

	entry, ok := dict.Get("東京")
	if !ok {
		t.Fatal("expected manual entry to be present")
	}
	if entry.Priority != models.PriorityManual {
		t.Errorf("expected manual priority %d, got %d", models.PriorityManual, entry.Priority)
	}
}

type fakeVerifier struct {
	readings map[string]string
	err      error
}

func (f *fakeVerifier) VerifyReadings(ctx context.Context, tokens []Token, contextText string) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.readings, nil
}

func TestPrepareTextsSkipsPhrasesWithReading(t *testing.T) {
	dict := models.NewPronunciationDictionary()
	r := NewResolver(&fakeVerifier{readings: map[string]string{}})

	phrases := []*models.Phrase{
		{Text: "東京タワー", Reading: "already-resolved"},
	}
	r.PrepareTexts(context.Background(), dict, phrases)

	if dict.Len() != 0 {
		t.Errorf("expected no dictionary entries for a phrase with a reading already set, got %d", dict.Len())
	}
}

func TestPrepareTextsUpgradesToLLMVerified(t *testing.T) {
	dict := models.NewPronunciationDictionary()
	r := NewResolver(&fakeVerifier{readings: map[string]string{"東京": "トウキョウ"}})

	phrases := []*models.Phrase{{Text: "東京に行く"}}
	r.PrepareTexts(context.Background(), dict, phrases)

	entry, ok := dict.Get("東京")
	if !ok {
		t.Fatal("expected an entry for 東京")
	}
	if entry.Priority != models.PriorityLLMVerified {
		t.Errorf("expected LLM-verified priority %d, got %d", models.PriorityLLMVerified, entry.Priority)
	}
	if entry.Reading != "トウキョウ" {
		t.Errorf("expected reading トウキョウ, got %q", entry.Reading)
	}
}

func TestPrepareTextsFallsBackOnVerifierFailure(t *testing.T) {
	dict := models.NewPronunciationDictionary()
	r := NewResolver(&fakeVerifier{err: errors.New("llm unavailable")})

	phrases := []*models.Phrase{{Text: "東京に行く"}}
	r.PrepareTexts(context.Background(), dict, phrases)

	entry, ok := dict.Get("東京")
	if !ok {
		t.Fatal("expected a raw morpheme fallback entry")
	}
	if entry.Priority != models.PriorityMorphological {
		t.Errorf("expected morphological priority %d, got %d", models.PriorityMorphological, entry.Priority)
	}
}
