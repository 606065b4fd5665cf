package models

import "testing"

func TestNarrationModes(t *testing.T) {
	modes := []NarrationMode{NarrationSingle, NarrationDialogue}
	for _, m := range modes {
		if m == "" {
			t.Errorf("empty narration mode found")
		}
	}
}

func TestCharacterPositions(t *testing.T) {
	positions := []CharacterPosition{PositionLeft, PositionRight, PositionCenter}
	for _, p := range positions {
		if p == "" {
			t.Errorf("empty character position found")
		}
	}
}

func TestPersonaNormalizeDefaultsSubtitleColor(t *testing.T) {
	p := Persona{ID: "zundamon"}
	p.Normalize()
	if p.SubtitleColor != DefaultSubtitleColor {
		t.Errorf("expected default subtitle color %s, got %s", DefaultSubtitleColor, p.SubtitleColor)
	}
}

func TestValidatePersonasRejectsDuplicates(t *testing.T) {
	personas := []Persona{{ID: "a"}, {ID: "a"}}
	if err := ValidatePersonas(personas); err == nil {
		t.Fatal("expected error for duplicate persona id")
	}
}

func TestValidatePersonasAcceptsUnique(t *testing.T) {
	personas := []Persona{{ID: "a"}, {ID: "b"}}
	if err := ValidatePersonas(personas); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetSubtitleTextStripsTrailingPunctuation(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Web3って難しい。", "Web3って難しい"},
		{"こんにちは、、、", "こんにちは"},
		{"質問です？", "質問です？"}, // ! and ? are not stripped
		{"", ""},
	}

	for _, c := range cases {
		p := Phrase{Text: c.text}
		got := p.GetSubtitleText()
		if got != c.want {
			t.Errorf("GetSubtitleText(%q) = %q, want %q", c.text, got, c.want)
		}
		if p.Text != c.text {
			t.Errorf("GetSubtitleText mutated p.Text: got %q, want %q", p.Text, c.text)
		}
	}
}

func TestPhraseIsEmpty(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"。", true},
		{"、！？\n", true},
		{"  ", true},
		{"こんにちは", false},
		{"", true},
	}
	for _, c := range cases {
		p := Phrase{Text: c.text}
		if got := p.IsEmpty(); got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestPhraseFilenamesAreIndexStable(t *testing.T) {
	p := Phrase{OriginalIndex: 7}
	if p.AudioFilename() != "phrase_0007.wav" {
		t.Errorf("unexpected audio filename: %s", p.AudioFilename())
	}
	if p.SlideFilename() != "slide_0007.png" {
		t.Errorf("unexpected slide filename: %s", p.SlideFilename())
	}
}

func TestPronunciationDictionaryPriorityConflict(t *testing.T) {
	d := NewPronunciationDictionary()
	d.Insert(PronunciationEntry{Surface: "難しい", Reading: "ムズカシイ", Priority: PriorityMorphological})
	d.Insert(PronunciationEntry{Surface: "難しい", Reading: "ムツカシイ", Priority: PriorityLLMVerified})

	got, ok := d.Get("難しい")
	if !ok {
		t.Fatal("expected entry to be present")
	}
	if got.Reading != "ムツカシイ" {
		t.Errorf("expected higher-priority reading to win, got %s", got.Reading)
	}

	// Equal priority re-insert must not displace the first-inserted entry.
	d.Insert(PronunciationEntry{Surface: "難しい", Reading: "BOGUS", Priority: PriorityLLMVerified})
	got, _ = d.Get("難しい")
	if got.Reading != "ムツカシイ" {
		t.Errorf("equal-priority insert should not overwrite existing entry, got %s", got.Reading)
	}
}

func TestPronunciationDictionaryPreservesInsertionOrder(t *testing.T) {
	d := NewPronunciationDictionary()
	d.Insert(PronunciationEntry{Surface: "b", Priority: PriorityManual})
	d.Insert(PronunciationEntry{Surface: "a", Priority: PriorityManual})

	entries := d.Entries()
	if len(entries) != 2 || entries[0].Surface != "b" || entries[1].Surface != "a" {
		t.Errorf("expected insertion order [b, a], got %+v", entries)
	}
}

func TestScriptSectionValidateRequiresPromptOrImage(t *testing.T) {
	sec := ScriptSection{Title: "intro"}
	if err := sec.Validate(); err == nil {
		t.Fatal("expected error when neither slide_prompt nor source_image_url is set")
	}

	sec.SlidePrompt = "a cool illustration"
	if err := sec.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVideoScriptValidateBackfillsReading(t *testing.T) {
	script := VideoScript{
		Sections: []ScriptSection{{
			SlidePrompt: "x",
			Narrations:  []Narration{{Text: "hello"}},
		}},
	}
	personas := []Persona{{ID: "solo"}}

	if err := script.Validate(personas, NarrationSingle); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := script.Sections[0].Narrations[0]
	if n.Reading != "hello" {
		t.Errorf("expected legacy reading backfill, got %q", n.Reading)
	}
	if n.PersonaID != "solo" {
		t.Errorf("expected auto-assigned persona id, got %q", n.PersonaID)
	}
}

func TestVideoScriptValidateRequiresPersonaIDInDialogue(t *testing.T) {
	script := VideoScript{
		Sections: []ScriptSection{{
			SlidePrompt: "x",
			Narrations:  []Narration{{Text: "hi", Reading: "ヒー"}},
		}},
	}
	personas := []Persona{{ID: "a"}, {ID: "b"}}

	if err := script.Validate(personas, NarrationDialogue); err == nil {
		t.Fatal("expected error for missing persona_id in dialogue mode")
	}
}

func TestProjectPathsLayout(t *testing.T) {
	paths := NewProjectPaths("/out/my-project")

	if got := paths.AudioPath(3); got != "/out/my-project/audio/phrase_0003.wav" {
		t.Errorf("unexpected audio path: %s", got)
	}
	if got := paths.SlidePath("ja", true, 3); got != "/out/my-project/slides/ja/slide_0003.png" {
		t.Errorf("unexpected multilingual slide path: %s", got)
	}
	if got := paths.SlidePath("ja", false, 3); got != "/out/my-project/slides/slide_0003.png" {
		t.Errorf("unexpected single-language slide path: %s", got)
	}
	if got := paths.OutputPath(""); got != "/out/my-project/output.mp4" {
		t.Errorf("unexpected default output path: %s", got)
	}
	if got := paths.OutputPath("2-3"); got != "/out/my-project/output_scenes_2-3.mp4" {
		t.Errorf("unexpected scene-range output path: %s", got)
	}
}
