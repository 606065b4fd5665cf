package pipeline

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bobarin/kobanashi/internal/models"
)

// looksLikeScriptPath reports whether input names an existing YAML file
// rather than a URL to fetch, per S1's skip predicate ("input is a YAML
// path"): scheme-less, .yaml/.yml suffixed, and present on disk.
func looksLikeScriptPath(input string) bool {
	lower := strings.ToLower(input)
	if !strings.HasSuffix(lower, ".yaml") && !strings.HasSuffix(lower, ".yml") {
		return false
	}
	if strings.Contains(input, "://") {
		return false
	}
	info, err := os.Stat(input)
	return err == nil && !info.IsDir()
}

// scriptExistsAndNonEmpty implements S1/S2's "script.yaml exists" skip
// predicate: present and non-zero size, not merely present.
func scriptExistsAndNonEmpty(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

func loadScriptFile(path string) (*models.VideoScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewScriptGenerationError(path, "failed to read script file", err)
	}
	var script models.VideoScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, models.NewScriptGenerationError(path, "failed to parse script YAML", err)
	}
	return &script, nil
}

// saveScriptAtomic writes script to path via temp-file-then-rename,
// matching config.Config.Write's atomicity discipline (section 5: atomic
// writes for script/composition files).
func saveScriptAtomic(path string, script *models.VideoScript) error {
	data, err := yaml.Marshal(script)
	if err != nil {
		return models.NewScriptGenerationError(path, "failed to marshal script", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return models.NewScriptGenerationError(path, "failed to write temp script file", err)
	}
	return os.Rename(tmp, path)
}

func audioArtifactReady(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

func slideArtifactReady(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
