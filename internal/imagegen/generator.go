package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/lox/forecastcards/internal/forecast"
)

// Generator draws missing weather-type icons using OpenAI's image API.
type Generator struct {
	client openai.Client
	model  string
}

// NewGenerator creates an icon generator authenticated with apiKey.
func NewGenerator(apiKey string) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key not set")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Generator{
		client: client,
		model:  "gpt-image-1",
	}, nil
}

// Generate creates a square icon for the weather type and returns PNG bytes.
func (g *Generator) Generate(ctx context.Context, t forecast.WeatherType) ([]byte, error) {
	log.Printf("imagegen: generating icon for %s", t)

	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Model:        g.model,
		Prompt:       forecast.IconPrompt(t),
		Size:         openai.ImageGenerateParamsSize1024x1024,
		Quality:      openai.ImageGenerateParamsQualityLow,
		OutputFormat: openai.ImageGenerateParamsOutputFormatPNG,
	})
	if err != nil {
		return nil, fmt.Errorf("icon generation failed: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no image data returned")
	}

	imageData := resp.Data[0].B64JSON
	if imageData == "" {
		return nil, errors.New("empty image data returned")
	}

	imageBytes, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return nil, fmt.Errorf("decode image data: %w", err)
	}

	log.Printf("imagegen: generated icon for %s (%d bytes)", t, len(imageBytes))
	return imageBytes, nil
}
