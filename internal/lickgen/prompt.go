package lickgen

import (
	"fmt"
	"strings"

	"github.com/cbegin/basslab-go/internal/lick"
)

const systemPrompt = "You are an expert bassist and music theory teacher. " +
	"You answer with a single JSON object and nothing else."

const fretboard = `MIDI note and fretboard reference for a standard 4-string bass (EADG tuning):
- G string (string: 0): open=43, 1st fret=44, ...
- D string (string: 1): open=38, 1st fret=39, ...
- A string (string: 2): open=33, 1st fret=34, ...
- E string (string: 3): open=28, 1st fret=29, ...`

// Prompt renders the user prompt for req.
func Prompt(req Request) string {
	var b strings.Builder
	b.WriteString("Generate a new, original bass lick with the following specifications:\n")
	fmt.Fprintf(&b, "- Difficulty: %s\n", req.Difficulty)
	fmt.Fprintf(&b, "- Key signature: %s\n", req.Key)
	b.WriteString("- The lick should be musically interesting and useful for a bassist practicing at this level.\n")
	if len(req.Avoid) > 0 {
		fmt.Fprintf(&b, "- Do not use any of these names: %s.\n", strings.Join(req.Avoid, ", "))
	}
	fmt.Fprintf(&b, "- category must be one of: %s.\n", quoted(categoryNames()))
	fmt.Fprintf(&b, "- timeSignature must be one of: %s.\n", quoted([]string{
		string(lick.FourFour), string(lick.ThreeFour), string(lick.SevenFour),
	}))
	b.WriteString("- The sequence length implies the rhythm, e.g. 8 items for eighth notes in one bar of 4/4.\n\n")
	b.WriteString(fretboard)
	b.WriteString("\n\nReturn an object with the fields name, artist, category, description, timeSignature and sequence. ")
	b.WriteString("Each sequence item is either {\"midi\": int, \"string\": int, \"fret\": int} or null for a rest.")
	return b.String()
}

func categoryNames() []string {
	out := make([]string, len(lick.Categories))
	for i, c := range lick.Categories {
		out[i] = string(c)
	}
	return out
}

func quoted(items []string) string {
	q := make([]string, len(items))
	for i, s := range items {
		q[i] = "'" + s + "'"
	}
	return strings.Join(q, ", ")
}

// lickSchema is the JSON schema sent to providers that accept one.
func lickSchema() map[string]any {
	note := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"midi":   map[string]any{"type": "integer"},
			"string": map[string]any{"type": "integer"},
			"fret":   map[string]any{"type": "integer"},
		},
		"required":             []string{"midi", "string", "fret"},
		"additionalProperties": false,
	}
	str := map[string]any{"type": "string"}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":          str,
			"artist":        str,
			"category":      map[string]any{"type": "string", "enum": categoryNames()},
			"description":   str,
			"timeSignature": map[string]any{"type": "string", "enum": []string{"4/4", "3/4", "7/4"}},
			"sequence": map[string]any{
				"type":  "array",
				"items": map[string]any{"anyOf": []any{note, map[string]any{"type": "null"}}},
			},
		},
		"required":             []string{"name", "artist", "category", "description", "timeSignature", "sequence"},
		"additionalProperties": false,
	}
}
