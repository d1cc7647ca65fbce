package providers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"

	"google.golang.org/genai"
)

const defaultImageModel = "gemini-2.0-flash-preview-image-generation"

// GeminiImages generates scene illustrations with the Gemini API.
type GeminiImages struct {
	client *genai.Client
	model  string
}

var _ ImageGen = (*GeminiImages)(nil)

// NewGeminiImages builds a Gemini-backed image generator. An empty model
// selects the default image-capable model.
func NewGeminiImages(ctx context.Context, apiKey, model string) (*GeminiImages, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is required", ErrProvider)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if model == "" {
		model = defaultImageModel
	}
	return &GeminiImages{client: client, model: model}, nil
}

// GenerateImage asks the model for one illustration. A response with no
// image part is not an error; the caller skips that scene.
func (g *GeminiImages) GenerateImage(ctx context.Context, prompt string) (image.Image, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		slog.Warn("image generation returned no candidates", "model", g.model)
		return nil, nil
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(part.InlineData.Data))
		if err != nil {
			return nil, fmt.Errorf("%w: decode generated image: %v", ErrProvider, err)
		}
		return img, nil
	}

	slog.Warn("image generation returned no inline image", "model", g.model)
	return nil, nil
}
