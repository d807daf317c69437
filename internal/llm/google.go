package llm

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rotisserie/eris"
	googleoption "google.golang.org/api/option"
)

// googleProvider answers prompts through Gemini. A genai.Client is opened per
// request so it lives no longer than the caller's context.
type googleProvider struct {
	key   string
	model string
}

func newGoogleProvider(model string) (Provider, error) {
	key, err := apiKey("google", "GOOGLE_API_KEY")
	if err != nil {
		return nil, err
	}
	return &googleProvider{key: key, model: model}, nil
}

func (p *googleProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	client, err := genai.NewClient(ctx, googleoption.WithAPIKey(p.key))
	if err != nil {
		return "", eris.Wrap(err, "google: open client")
	}
	defer client.Close()

	m := client.GenerativeModel(p.model)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	maxOut, temp := int32(maxTokens), float32(temperature)
	m.MaxOutputTokens = &maxOut
	m.Temperature = &temp
	m.ResponseMIMEType = "application/json"

	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", eris.Wrapf(err, "google: answer request to %s", p.model)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	if sb.Len() == 0 {
		return "", errNoAnswerText("google", p.model)
	}
	return sb.String(), nil
}
