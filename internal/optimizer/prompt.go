package optimizer

import (
	"fmt"
	"strings"
)

var styleGuidance = map[Style]string{
	StyleDetailed:       "Expand it with the context, constraints and expected output format a model needs to answer well.",
	StyleConcise:        "Make it as short and direct as possible while keeping every requirement.",
	StyleCreative:       "Encourage original, imaginative answers and give the model room to explore.",
	StyleTechnical:      "Use precise technical language, explicit requirements and relevant edge cases.",
	StyleConversational: "Use a natural, friendly tone, as if asking a knowledgeable colleague.",
}

const instructionTemplate = `You are an expert prompt engineer.
Rewrite the user's prompt so that a large language model will produce a better answer.
Target style: %s. %s
Keep the user's original intent and language.
Return only the rewritten prompt, with no preamble, quotes or explanation.`

// parses a style name; empty selects detailed
func ParseStyle(s string) (Style, error) {
	if strings.TrimSpace(s) == "" {
		return StyleDetailed, nil
	}

	style := Style(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := styleGuidance[style]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStyle, s)
	}

	return style, nil
}

// returns every supported style
func Styles() []Style {
	return []Style{StyleDetailed, StyleConcise, StyleCreative, StyleTechnical, StyleConversational}
}

// builds the system instruction for a style
func buildInstruction(style Style) string {
	return fmt.Sprintf(instructionTemplate, style, styleGuidance[style])
}
