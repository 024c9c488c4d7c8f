package bildtext

import (
	"context"
	"fmt"
	"strings"

	"k8s.io/klog/v2"
)

// maxCaptionTokens bounds the provider-side response length. Caption
// length is otherwise steered by the style instruction, not enforced here.
var maxCaptionTokens = 300

// Style is one of a closed set of caption instruction templates.
type Style struct {
	Name   string
	Prompt string
}

// Styles enumerates the supported caption styles.
var Styles = map[string]Style{
	"descriptive": {"descriptive", "Write a 2-3 sentence professional caption for this image."},
	"social":      {"social", "Write an engaging social media caption with relevant hashtags."},
	"minimal":     {"minimal", "Write a brief one-sentence caption."},
	"artistic":    {"artistic", "Write a poetic, evocative caption."},
	"documentary": {"documentary", "Write a factual, journalistic caption."},
	"travel":      {"travel", "Write a travel photography caption emphasizing the location."},
}

// StyleFor returns the named style, falling back to descriptive for
// unrecognized names.
func StyleFor(name string) Style {
	if s, ok := Styles[name]; ok {
		return s
	}

	klog.V(1).Infof("unknown style %q, using descriptive", name)
	return Styles["descriptive"]
}

// Model identifies a provider-side vision model.
type Model struct {
	Provider    string
	ID          string
	Cost        float64 // approximate USD per call
	Description string
}

// Models enumerates the supported models by alias.
var Models = map[string]Model{
	"flash-lite":  {"gemini", "gemini-2.5-flash-lite", 0.001, "Fast and affordable"},
	"flash":       {"gemini", "gemini-2.5-flash", 0.003, "Best balance"},
	"pro":         {"gemini", "gemini-2.5-pro", 0.015, "Highest quality"},
	"gpt-4o-mini": {"openai", "gpt-4o-mini", 0.001, "Fast and affordable"},
	"gpt-4o":      {"openai", "gpt-4o", 0.005, "Best balance"},
	"gpt-4-turbo": {"openai", "gpt-4-turbo", 0.02, "Highest quality"},
}

// defaultModels maps a provider to its cheapest model alias.
var defaultModels = map[string]string{
	"gemini": "flash-lite",
	"openai": "gpt-4o-mini",
}

// ModelFor resolves a model alias for a provider. An empty alias selects
// the provider default; an alias outside the table or belonging to another
// provider is rejected here rather than at request time.
func ModelFor(provider string, alias string) (Model, error) {
	if alias == "" {
		def, ok := defaultModels[provider]
		if !ok {
			return Model{}, fmt.Errorf("unknown provider %q", provider)
		}
		alias = def
	}

	m, ok := Models[alias]
	if !ok {
		return Model{}, fmt.Errorf("unknown model %q", alias)
	}

	if m.Provider != provider {
		return Model{}, fmt.Errorf("model %q belongs to provider %q", alias, m.Provider)
	}

	return m, nil
}

// Captioner generates a caption for a prepared image using a specific AI
// provider.
type Captioner interface {
	// Name returns the name of the backing provider, e.g. "gemini".
	Name() string

	// Caption returns caption text for the image. The image data should be
	// the full contents of a JPEG file including the header.
	Caption(ctx context.Context, jpeg []byte, prompt string) (string, error)
}

// NewCaptioner constructs the captioner for a provider using its
// environment credential. A missing credential is a configuration error,
// surfaced here before any network call.
func NewCaptioner(ctx context.Context, provider string, m Model) (Captioner, error) {
	switch provider {
	case "gemini":
		return NewGemini(ctx, m)
	case "openai":
		return NewOpenAI(m)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

// Generator produces captions for images on disk.
type Generator struct {
	Captioner Captioner
	Style     Style
}

// Generate captions a single image, folding the optional location context
// into the prompt. Provider failures propagate: captioning has no retry
// layer, unlike geocoding.
func (g *Generator) Generate(ctx context.Context, path string, locationContext string) (string, error) {
	data, err := PrepareImage(path)
	if err != nil {
		return "", fmt.Errorf("prepare: %w", err)
	}

	prompt := buildPrompt(g.Style, locationContext)
	klog.V(2).Infof("prompt for %s: %q", path, prompt)

	text, err := g.Captioner.Caption(ctx, data, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", g.Captioner.Name(), err)
	}

	return strings.TrimSpace(text), nil
}

// buildPrompt appends location context to the style instruction as its own
// paragraph.
func buildPrompt(s Style, locationContext string) string {
	if locationContext == "" {
		return s.Prompt
	}

	return s.Prompt + "\n\n" + locationContext
}
