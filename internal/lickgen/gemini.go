package lickgen

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"github.com/cbegin/basslab-go/internal/lick"
)

type geminiProvider struct {
	client *genai.Client
	model  string
}

func newGemini(ctx context.Context, apiKey, model string) (*geminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &geminiProvider{client: client, model: model}, nil
}

func (p *geminiProvider) name() string { return "gemini" }

func (p *geminiProvider) complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    geminiSchema(),
	})
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response")
	}
	return text, nil
}

func geminiSchema() *genai.Schema {
	integer := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeInteger, Description: desc}
	}
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	category := str("The category of the lick.")
	category.Enum = categoryNames()
	meter := str("The time signature.")
	meter.Enum = []string{string(lick.FourFour), string(lick.ThreeFour), string(lick.SevenFour)}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":          str("A creative, short name for the bass lick."),
			"artist":        str("The style or artist the lick is inspired by."),
			"category":      category,
			"description":   str("A one or two sentence description of the lick and how to play it."),
			"timeSignature": meter,
			"sequence": {
				Type:        genai.TypeArray,
				Description: "Notes or nulls for rests. The length implies the rhythm.",
				Items: &genai.Schema{
					Type:     genai.TypeObject,
					Nullable: genai.Ptr(true),
					Properties: map[string]*genai.Schema{
						"midi":   integer("The MIDI note number."),
						"string": integer("The string number (0=G, 1=D, 2=A, 3=E)."),
						"fret":   integer("The fret number on that string."),
					},
					Required: []string{"midi", "string", "fret"},
				},
			},
		},
		Required: []string{"name", "artist", "category", "description", "timeSignature", "sequence"},
	}
}
