package bildtext

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	oagc "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openaiKeyEnv holds the OpenAI API credential.
var openaiKeyEnv = "OPENAI_API_KEY"

type openai struct {
	oac   *oagc.Client
	model Model
}

var _ Captioner = &openai{}

// NewOpenAI returns a Captioner backed by the OpenAI chat completions API.
func NewOpenAI(m Model) (Captioner, error) {
	key := os.Getenv(openaiKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%s is not set", openaiKeyEnv)
	}

	return &openai{
		oac:   oagc.NewClient(option.WithAPIKey(key)),
		model: m,
	}, nil
}

func (o *openai) Name() string { return "openai" }

func (o *openai) Caption(ctx context.Context, jpeg []byte, prompt string) (string, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg)

	params := oagc.ChatCompletionNewParams{
		Model:     oagc.F(oagc.ChatModel(o.model.ID)),
		MaxTokens: oagc.Int(int64(maxCaptionTokens)),
		Messages: oagc.F([]oagc.ChatCompletionMessageParamUnion{
			oagc.UserMessageParts(
				oagc.ImagePart(dataURL),
				oagc.TextPart(prompt),
			),
		}),
	}

	resp, err := o.oac.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no caption in response")
	}

	return resp.Choices[0].Message.Content, nil
}
