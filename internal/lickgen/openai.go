package lickgen

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

type openAIProvider struct {
	client *openai.Client
	model  string
}

func newOpenAI(apiKey, model string) *openAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openAIProvider{client: &client, model: model}
}

func (p *openAIProvider) name() string { return "openai" }

func (p *openAIProvider) complete(ctx context.Context, system, prompt string) (string, error) {
	params := responses.ResponseNewParams{
		Model:        p.model,
		Input:        responses.ResponseNewParamsInputUnion{OfString: openai.String(prompt)},
		Instructions: openai.String(system),
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema("bass_lick", lickSchema()),
		},
	}
	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}
	text := resp.OutputText()
	if text == "" {
		return "", errors.New("empty response")
	}
	return text, nil
}
