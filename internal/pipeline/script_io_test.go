package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bobarin/kobanashi/internal/models"
)

func TestLooksLikeScriptPathRequiresExistingYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.yaml")
	if err := os.WriteFile(path, []byte("title: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !looksLikeScriptPath(path) {
		t.Error("expected an existing .yaml file to look like a script path")
	}
	if looksLikeScriptPath(filepath.Join(dir, "missing.yaml")) {
		t.Error("expected a missing file not to look like a script path")
	}
	if looksLikeScriptPath("https://example.com/script.yaml") {
		t.Error("expected a URL not to look like a script path even with a .yaml suffix")
	}
	if looksLikeScriptPath("https://example.com/article") {
		t.Error("expected a plain URL not to look like a script path")
	}
}

func TestScriptExistsAndNonEmpty(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	nonEmpty := filepath.Join(dir, "full.yaml")
	os.WriteFile(empty, nil, 0o644)
	os.WriteFile(nonEmpty, []byte("title: x\n"), 0o644)

	if scriptExistsAndNonEmpty(empty) {
		t.Error("expected a zero-byte file not to count as an existing script")
	}
	if !scriptExistsAndNonEmpty(nonEmpty) {
		t.Error("expected a non-empty file to count as an existing script")
	}
	if scriptExistsAndNonEmpty(filepath.Join(dir, "missing.yaml")) {
		t.Error("expected a missing file not to count as an existing script")
	}
}

func TestSaveScriptAtomicThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.yaml")

	script := &models.VideoScript{
		Title:       "My Title",
		Description: "desc",
		Sections: []models.ScriptSection{
			{Title: "s1", SlidePrompt: "a prompt", Narrations: []models.Narration{{Text: "hi", Reading: "ハイ"}}},
		},
	}

	if err := saveScriptAtomic(path, script); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("expected the temp file to be renamed away")
	}

	loaded, err := loadScriptFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Title != script.Title || len(loaded.Sections) != 1 {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}
