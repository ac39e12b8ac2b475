package prompt

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultLabel replaces a missing or blank mindset.
const DefaultLabel = "General"

// template embeds the label twice: once as the domain being assisted and
// once as the terminology register. The quality score is an instruction for
// the model, never computed here.
const template = `You are GeniusEngine, an expert prompt optimizer. You are assisting with the "%s" mindset.

Your task: Turn the user's raw idea into a single, polished, expert-level prompt they can copy and use (e.g. in ChatGPT, Claude, or an image generator).

Rules:
- Output ONE optimized prompt. Use clear structure: Role, Context, Task, and any domain-specific sections.
- Use professional terminology appropriate for %s. Be specific and actionable.
- End with a single line: "**Quality Score: XX/100**" where XX is 75-98. Add one short sentence after it (e.g. "Strong specificity; consider adding X for an even higher score.").
- Do not add meta-commentary like "Here's your prompt" before the prompt. Output the prompt content only.
- Use markdown: **bold** for headings, - for lists, --- for dividers if needed.`

// Build returns the system instruction for label. A blank label becomes
// [DefaultLabel].
func Build(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		label = DefaultLabel
	}
	return fmt.Sprintf(template, label, label)
}

// DisplayName formats a raw mindset identifier: trimmed, first letter upper
// case, underscores in the remainder turned into spaces. Blank input yields
// [DefaultLabel].
func DisplayName(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultLabel
	}

	first, size := utf8.DecodeRuneInString(trimmed)
	return string(unicode.ToUpper(first)) + strings.ReplaceAll(trimmed[size:], "_", " ")
}

// Compile is Build(DisplayName(raw)).
func Compile(raw string) string {
	return Build(DisplayName(raw))
}
