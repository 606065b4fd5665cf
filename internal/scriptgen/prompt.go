// Package scriptgen assembles the four script-generation prompt variants
// (single/dialogue x ja/en) and parses the resulting LLM response into a
// validated VideoScript, per section 4.2.
package scriptgen

import (
	"fmt"
	"strings"

	"github.com/bobarin/kobanashi/internal/models"
)

// ImageMetadata is one candidate source image surfaced to the LLM for the
// source_image_url selection criteria.
type ImageMetadata struct {
	Src             string
	Alt             string
	Title           string
	AriaDescribedBy string
	ResolvedURL     string
}

// PromptInput bundles everything the four prompt variants need.
type PromptInput struct {
	ContentText string
	Images      []ImageMetadata
	Personas    []models.Persona
	Language    string
	Mode        models.NarrationMode
	Style       string
}

const outputSchemaBlock = `Respond with JSON matching exactly this shape:
{
  "title": string,
  "description": string,
  "role_assignments": [{"persona_id": string, "role": string, "description": string}],
  "sections": [
    {
      "title": string,
      "slide_prompt": string,
      "source_image_url": string,
      "narrations": [
        {"text": string, "reading": string, "persona_id": string}
      ]
    }
  ]
}
role_assignments is only meaningful in dialogue mode; omit it or return [] in single mode.
Each section must set exactly one of slide_prompt or source_image_url, never both, never neither.
persona_id on a narration may be omitted in single-persona mode.`

const readingQualityBlock = `CRITICAL — reading quality:
Every narration's "reading" field is full katakana, exactly as it will be spoken. Never leave it blank. Get it right:
- Sokuon (促音, small ッ): render doubled consonants before stops correctly — 学校 -> ガッコウ, 一個 -> イッコ, 切符 -> キップ.
- Particle pronunciation: は as a particle reads ワ, へ as a particle reads エ, を always reads オ.
- Preserve natural word/particle boundaries; do not run compound readings together incorrectly.

Correct sokuon examples: ガッコウ, イッコ, キップ, ゼッタイ, マッタク, シュッパツ, ハッピョウ, ケッコン, ザッシ.
Incorrect (do not produce): ガツコウ, ケツコン.`

const imageSelectionBlock = `Image selection:
Set "source_image_url" on a section only when an available image's alt, title, and aria-describedby metadata ALL directly and specifically match that section's content. If there is any doubt, leave source_image_url empty and write "slide_prompt" instead — a generated slide beats a mismatched photo.`

const storytellingBlock = `Storytelling structure:
Open with a hook that earns attention in the first section. Shape the overall narrative with 起承転結 (introduction, development, turn, conclusion) rather than a flat list of facts. Each section should flow into the next — write transitions, not isolated paragraphs.`

const selfEvalBlock = `Before responding, check your own output against this list:
- Does every narration have a non-empty "reading" in full katakana?
- Are sokuon and particle readings (は/へ/を) correct everywhere?
- Does every section set exactly one of slide_prompt or source_image_url?
- In dialogue mode, does every narration carry a valid persona_id?`

// BuildPrompt composes the system and user turns for one of the four
// variants: mode (single/dialogue) selects whether the persona roster and
// dialogue instructions appear; Language selects the opening register.
func BuildPrompt(in PromptInput) (system, user string) {
	return composeSystemPrompt(in), composeUserPrompt(in)
}

func composeSystemPrompt(in PromptInput) string {
	var sb strings.Builder

	if in.Language == "ja" {
		sb.WriteString("あなたは日本語のナレーション台本を書く熟練の脚本家です。\n\n")
	} else {
		sb.WriteString("You are an expert narration scriptwriter.\n\n")
	}

	if in.Mode == models.NarrationDialogue {
		sb.WriteString(dialogueModeBlock(in.Personas))
		sb.WriteString("\n\n")
	}

	if in.Style != "" {
		fmt.Fprintf(&sb, "Style guidance: %s\n\n", in.Style)
	}

	sb.WriteString(storytellingBlock)
	sb.WriteString("\n\n")
	sb.WriteString(readingQualityBlock)
	sb.WriteString("\n\n")
	sb.WriteString(imageSelectionBlock)
	sb.WriteString("\n\n")
	sb.WriteString(outputSchemaBlock)
	sb.WriteString("\n\n")
	sb.WriteString(selfEvalBlock)

	return sb.String()
}

func dialogueModeBlock(personas []models.Persona) string {
	var sb strings.Builder
	sb.WriteString("This is a dialogue between the following personas:\n")
	for _, p := range personas {
		fmt.Fprintf(&sb, "- %s (id: %s): %s\n", p.Name, p.ID, p.Character)
	}
	sb.WriteString("Emit \"role_assignments\" describing each persona's conversational role, and set \"persona_id\" on every narration.")
	return sb.String()
}

func composeUserPrompt(in PromptInput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Language: %s\n\n", in.Language)
	sb.WriteString("Source content:\n")
	sb.WriteString(in.ContentText)
	sb.WriteString("\n")

	if len(in.Images) > 0 {
		sb.WriteString("\nCandidate images:\n")
		for _, img := range in.Images {
			fmt.Fprintf(&sb, "- url=%s alt=%q title=%q aria-describedby=%q\n", img.ResolvedURL, img.Alt, img.Title, img.AriaDescribedBy)
		}
	}

	return sb.String()
}
