package scriptgen

import (
	"strings"
	"testing"

	"github.com/bobarin/kobanashi/internal/models"
)

func TestBuildPromptIncludesDialogueBlockOnlyInDialogueMode(t *testing.T) {
	personas := []models.Persona{{ID: "a", Name: "Alpha", Character: "calm"}, {ID: "b", Name: "Beta", Character: "excitable"}}

	single, _ := BuildPrompt(PromptInput{Personas: personas, Mode: models.NarrationSingle, Language: "en"})
	if strings.Contains(single, "dialogue between") {
		t.Error("single-mode prompt should not include the dialogue roster block")
	}

	dialogue, _ := BuildPrompt(PromptInput{Personas: personas, Mode: models.NarrationDialogue, Language: "en"})
	if !strings.Contains(dialogue, "Alpha") || !strings.Contains(dialogue, "Beta") {
		t.Error("dialogue-mode prompt should list every persona")
	}
}

func TestBuildPromptSwitchesRegisterByLanguage(t *testing.T) {
	ja, _ := BuildPrompt(PromptInput{Language: "ja", Mode: models.NarrationSingle})
	if !strings.Contains(ja, "日本語") {
		t.Error("expected Japanese-language prompt to open in Japanese")
	}

	en, _ := BuildPrompt(PromptInput{Language: "en", Mode: models.NarrationSingle})
	if strings.Contains(en, "日本語") {
		t.Error("expected English-language prompt not to open in Japanese")
	}
}

func TestParseResponseRejectsBlankReading(t *testing.T) {
	raw := `{"title":"t","sections":[{"title":"s","slide_prompt":"p","narrations":[{"text":"hi","reading":""}]}]}`
	_, err := ParseResponse([]byte(raw), nil, models.NarrationSingle)
	if err == nil {
		t.Fatal("expected an error for blank reading")
	}
}

func TestParseResponseAssignsSoloPersona(t *testing.T) {
	personas := []models.Persona{{ID: "solo", Name: "Solo"}}
	raw := `{"title":"t","sections":[{"title":"s","slide_prompt":"p","narrations":[{"text":"hi","reading":"ハイ"}]}]}`

	script, err := ParseResponse([]byte(raw), personas, models.NarrationSingle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if script.Sections[0].Narrations[0].PersonaID != "solo" {
		t.Errorf("expected auto-assigned persona_id 'solo', got %q", script.Sections[0].Narrations[0].PersonaID)
	}
}

func TestParseResponseRequiresPersonaIDInDialogue(t *testing.T) {
	personas := []models.Persona{{ID: "a"}, {ID: "b"}}
	raw := `{"title":"t","sections":[{"title":"s","slide_prompt":"p","narrations":[{"text":"hi","reading":"ハイ"}]}]}`

	_, err := ParseResponse([]byte(raw), personas, models.NarrationDialogue)
	if err == nil {
		t.Fatal("expected an error when persona_id is missing in dialogue mode with multiple personas")
	}
}

func TestParseResponseRejectsUnknownPersonaID(t *testing.T) {
	personas := []models.Persona{{ID: "a"}}
	raw := `{"title":"t","sections":[{"title":"s","slide_prompt":"p","narrations":[{"text":"hi","reading":"ハイ","persona_id":"ghost"}]}]}`

	_, err := ParseResponse([]byte(raw), personas, models.NarrationSingle)
	if err == nil {
		t.Fatal("expected an error for an unknown persona_id")
	}
}

func TestParseResponseAllowsBothPromptAndURLAsFallbackPair(t *testing.T) {
	// Both present is the documented fallback pattern (section 4.6): a
	// source_image_url download failure falls through to slide_prompt.
	raw := `{"title":"t","sections":[{"title":"s","slide_prompt":"p","source_image_url":"http://x","narrations":[{"text":"hi","reading":"ハイ"}]}]}`
	_, err := ParseResponse([]byte(raw), nil, models.NarrationSingle)
	if err != nil {
		t.Fatalf("expected both slide_prompt and source_image_url to be accepted together, got %v", err)
	}
}

func TestParseResponseRejectsSectionWithNeitherPromptNorURL(t *testing.T) {
	raw := `{"title":"t","sections":[{"title":"s","narrations":[{"text":"hi","reading":"ハイ"}]}]}`
	_, err := ParseResponse([]byte(raw), nil, models.NarrationSingle)
	if err == nil {
		t.Fatal("expected an error when neither slide_prompt nor source_image_url is set")
	}
}

func TestSampleIsDeterministicUnderFixedSeed(t *testing.T) {
	personas := []models.Persona{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	seed := 42

	first := Sample(personas, 2, &seed)
	second := Sample(personas, 2, &seed)

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 personas sampled, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("expected same seed to produce the same selection, got %v vs %v", first, second)
		}
	}
}

func TestSampleReturnsAllWhenCountExceedsPool(t *testing.T) {
	personas := []models.Persona{{ID: "a"}, {ID: "b"}}
	got := Sample(personas, 5, nil)
	if len(got) != len(personas) {
		t.Errorf("expected all %d personas, got %d", len(personas), len(got))
	}
}
