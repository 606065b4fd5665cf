package scriptgen

import (
	"encoding/json"
	"fmt"

	"github.com/bobarin/kobanashi/internal/models"
)

// rawResponse mirrors the JSON schema given to the LLM in outputSchemaBlock.
type rawResponse struct {
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	RoleAssignments []rawRoleAssignment `json:"role_assignments"`
	Sections        []rawSection        `json:"sections"`
}

type rawRoleAssignment struct {
	PersonaID   string `json:"persona_id"`
	Role        string `json:"role"`
	Description string `json:"description"`
}

type rawSection struct {
	Title          string         `json:"title"`
	SlidePrompt    string         `json:"slide_prompt"`
	SourceImageURL string         `json:"source_image_url"`
	Narrations     []rawNarration `json:"narrations"`
}

type rawNarration struct {
	Text      string `json:"text"`
	Reading   string `json:"reading"`
	PersonaID string `json:"persona_id"`
}

// ParseResponse implements section 4.2's pure response-parsing contract. It
// is deliberately stricter than models.VideoScript.Validate (used for
// loading already-saved scripts): a freshly generated script has no excuse
// for a blank reading, so this path rejects rather than backfilling one.
func ParseResponse(raw []byte, personas []models.Persona, mode models.NarrationMode) (*models.VideoScript, error) {
	var parsed rawResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, models.NewScriptGenerationError("", "failed to parse LLM response JSON", err)
	}

	if len(parsed.Sections) == 0 {
		return nil, models.NewScriptGenerationError(parsed.Title, "response has no sections", nil)
	}

	script := &models.VideoScript{
		Title:       parsed.Title,
		Description: parsed.Description,
	}
	for _, ra := range parsed.RoleAssignments {
		script.RoleAssignments = append(script.RoleAssignments, models.RoleAssignment{
			PersonaID:   ra.PersonaID,
			Role:        ra.Role,
			Description: ra.Description,
		})
	}

	for _, rs := range parsed.Sections {
		section := models.ScriptSection{
			Title:          rs.Title,
			SlidePrompt:    rs.SlidePrompt,
			SourceImageURL: rs.SourceImageURL,
		}
		if err := section.Validate(); err != nil {
			return nil, err
		}

		for _, rn := range rs.Narrations {
			if rn.Reading == "" {
				return nil, models.NewScriptGenerationError(rs.Title, fmt.Sprintf("narration %q missing reading", rn.Text), nil)
			}

			narration := models.Narration{Text: rn.Text, Reading: rn.Reading, PersonaID: rn.PersonaID}

			if narration.PersonaID == "" {
				if len(personas) == 1 {
					narration.PersonaID = personas[0].ID
				} else if mode == models.NarrationDialogue && len(personas) > 1 {
					return nil, models.NewScriptGenerationError(rs.Title, "persona_id required in dialogue mode with multiple personas", nil)
				}
			} else if models.FindPersona(personas, narration.PersonaID) == nil {
				return nil, models.NewScriptGenerationError(rs.Title, "unknown persona_id: "+narration.PersonaID, nil)
			}

			section.Narrations = append(section.Narrations, narration)
		}

		script.Sections = append(script.Sections, section)
	}

	return script, nil
}
