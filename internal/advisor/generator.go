package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultModel       = "gemini-2.5-flash"
	defaultTemperature = 0.4

	systemInstruction = "You explain career predictions to secondary school students. " +
		"Never alter the ranking or the probabilities you are given."
)

// adviceSchema constrains the reply to the shape parseResponse reads.
var adviceSchema = &genai.Schema{
	Type:     genai.TypeObject,
	Required: []string{"summary", "careers"},
	Properties: map[string]*genai.Schema{
		"summary": {Type: genai.TypeString},
		"careers": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type:     genai.TypeObject,
				Required: []string{"name", "note"},
				Properties: map[string]*genai.Schema{
					"name": {Type: genai.TypeString},
					"note": {Type: genai.TypeString},
				},
			},
		},
	},
}

// Generator sends advisor prompts to Gemini and returns the JSON reply.
type Generator struct {
	models modelsAPI
	model  string
	config *genai.GenerateContentConfig
}

type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewGenerator connects to the Gemini API. An empty model selects gemini-2.5-flash.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, model), nil
}

func newGenerator(models modelsAPI, model string) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Generator{
		models: models,
		model:  model,
		config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			Temperature:       genai.Ptr[float32](defaultTemperature),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    adviceSchema,
		},
	}
}

// GenerateContent returns the text of the first candidate that has any.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return "", errors.New("gemini returned no response")
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked the prompt: %s", fb.BlockReason)
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		var text strings.Builder
		for _, part := range candidate.Content.Parts {
			if part != nil && !part.Thought {
				text.WriteString(part.Text)
			}
		}
		if out := strings.TrimSpace(text.String()); out != "" {
			return out, nil
		}
	}
	return "", errors.New("gemini returned an empty response")
}

// Model is the Gemini model name requests are sent to.
func (g *Generator) Model() string {
	return g.model
}
