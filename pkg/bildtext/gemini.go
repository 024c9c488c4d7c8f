package bildtext

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

// geminiKeyEnv holds the Gemini API credential.
var geminiKeyEnv = "GOOGLE_AI_API_KEY"

type gemini struct {
	client *genai.Client
	model  Model
}

var _ Captioner = &gemini{}

// NewGemini returns a Captioner backed by the Gemini API.
func NewGemini(ctx context.Context, m Model) (Captioner, error) {
	key := os.Getenv(geminiKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%s is not set", geminiKeyEnv)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: key})
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	return &gemini{client: client, model: m}, nil
}

func (g *gemini) Name() string { return "gemini" }

func (g *gemini) Caption(ctx context.Context, jpeg []byte, prompt string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromBytes(jpeg, "image/jpeg"),
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{MaxOutputTokens: int32(maxCaptionTokens)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model.ID, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	for _, c := range resp.Candidates {
		if c.Content == nil || len(c.Content.Parts) == 0 {
			continue
		}

		return c.Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("no caption in response")
}
