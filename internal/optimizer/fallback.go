package optimizer

import (
	"strings"
)

const (
	// prompts shorter than this get a request framing prefix
	shortPromptLength = 20

	requestFraming = "Please help me with the following request: "

	stepByStepClause = " Please provide step-by-step detail."
	examplesClause   = " Include examples where helpful."
	clarityClause    = " Be clear and concise."
)

// deterministic stand-in used when no model is reachable
func Enhance(prompt string) string {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return ""
	}

	lower := strings.ToLower(trimmed)

	var b strings.Builder

	if len([]rune(trimmed)) < shortPromptLength {
		b.WriteString(requestFraming)
	}

	b.WriteString(trimmed)

	if !strings.HasSuffix(trimmed, ".") && !strings.HasSuffix(trimmed, "!") && !strings.HasSuffix(trimmed, "?") {
		b.WriteString(".")
	}

	if !strings.Contains(lower, "step") && !strings.Contains(lower, "detail") {
		b.WriteString(stepByStepClause)
	}

	if !strings.Contains(lower, "example") {
		b.WriteString(examplesClause)
	}

	if !strings.Contains(lower, "clear") && !strings.Contains(lower, "concise") {
		b.WriteString(clarityClause)
	}

	return b.String()
}
