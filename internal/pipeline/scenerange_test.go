package pipeline

import (
	"testing"

	"github.com/bobarin/kobanashi/internal/models"
)

func TestParseSceneRangeEmptyMeansEverything(t *testing.T) {
	r, err := ParseSceneRange("", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.IsZero() {
		t.Error("expected an empty range to be zero")
	}
	if !r.Contains(1) || !r.Contains(10) {
		t.Error("expected an empty range to contain every section")
	}
}

func TestParseSceneRangeVariants(t *testing.T) {
	cases := []struct {
		in         string
		wantStart  int
		wantEnd    int
	}{
		{"3", 3, 3},
		{"2-5", 2, 5},
		{"4-", 4, 10},
		{"-6", 1, 6},
	}
	for _, c := range cases {
		r, err := ParseSceneRange(c.in, 10)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", c.in, err)
		}
		if r.Start != c.wantStart || r.End != c.wantEnd {
			t.Errorf("%q: got [%d,%d], want [%d,%d]", c.in, r.Start, r.End, c.wantStart, c.wantEnd)
		}
	}
}

func TestParseSceneRangeRejectsInvalid(t *testing.T) {
	cases := []string{"0", "5-2", "11", "-20", "abc", "1-2-3"}
	for _, in := range cases {
		if _, err := ParseSceneRange(in, 10); err == nil {
			t.Errorf("%q: expected an error", in)
		}
	}
}

func TestFilterPhrasesKeepsOriginalIndexUntouched(t *testing.T) {
	phrases := []*models.Phrase{
		{OriginalIndex: 0, SectionIndex: 1},
		{OriginalIndex: 1, SectionIndex: 2},
		{OriginalIndex: 2, SectionIndex: 3},
		{OriginalIndex: 3, SectionIndex: 4},
	}
	r, err := ParseSceneRange("2-3", 4)
	if err != nil {
		t.Fatal(err)
	}
	filtered := FilterPhrases(phrases, r)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 phrases, got %d", len(filtered))
	}
	if filtered[0].OriginalIndex != 1 || filtered[1].OriginalIndex != 2 {
		t.Errorf("expected original indices [1,2] preserved, got [%d,%d]", filtered[0].OriginalIndex, filtered[1].OriginalIndex)
	}
}
