package remotion

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bobarin/kobanashi/internal/models"
)

type workspaceFile struct {
	Packages []string `yaml:"packages"`
}

// EnsureWorkspaceMember adds memberPath to workspacePath's packages list if
// it isn't already present (step 3, idempotent). workspacePath is created
// fresh with just this member if it doesn't exist yet.
func EnsureWorkspaceMember(workspacePath, memberPath string) error {
	var ws workspaceFile

	if data, err := os.ReadFile(workspacePath); err == nil {
		if err := yaml.Unmarshal(data, &ws); err != nil {
			return models.NewRenderingError(workspacePath, "failed to parse pnpm-workspace.yaml", err)
		}
	} else if !os.IsNotExist(err) {
		return models.NewRenderingError(workspacePath, "failed to read pnpm-workspace.yaml", err)
	}

	for _, p := range ws.Packages {
		if p == memberPath {
			return nil // already a member
		}
	}
	ws.Packages = append(ws.Packages, memberPath)

	out, err := yaml.Marshal(ws)
	if err != nil {
		return models.NewRenderingError(workspacePath, "failed to marshal pnpm-workspace.yaml", err)
	}
	if err := os.WriteFile(workspacePath, out, 0o644); err != nil {
		return models.NewRenderingError(workspacePath, "failed to write pnpm-workspace.yaml", err)
	}
	return nil
}
