package genaiclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/emberfund/ember-api/internal/aiengine"
)

// Client implements the engine's remote-call primitive over the Gemini
// API. All provider failures leave this package as tagged variants
// (aiengine.HTTPError, timeout signals) so classification never has to
// probe provider-specific error shapes.
type Client struct {
	holder *Holder
	logger *slog.Logger
}

// NewClient wraps a holder. The underlying genai client is constructed
// lazily by the holder on first call.
func NewClient(holder *Holder, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{holder: holder, logger: logger}
}

// IsConfigured reports whether the shared client can be constructed.
func (c *Client) IsConfigured() bool {
	return c.holder.IsConfigured()
}

// GenerateJSON sends a structured-output request and returns the raw
// response text plus provider-reported usage.
func (c *Client) GenerateJSON(ctx context.Context, req aiengine.ContentRequest) (*aiengine.RawResult, error) {
	gc, err := c.holder.Get(ctx)
	if err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if schema, ok := req.Schema.(*genai.Schema); ok {
		cfg.ResponseSchema = schema
	}

	resp, err := gc.Models.GenerateContent(ctx, req.Model, buildContents(req), cfg)
	if err != nil {
		return nil, decodeError(err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	raw := &aiengine.RawResult{Text: text, Model: req.Model}
	if resp.UsageMetadata != nil {
		raw.TokensUsed = resp.UsageMetadata.TotalTokenCount
	}
	return raw, nil
}

// GenerateImage produces image bytes for a prompt using the configured
// image model.
func (c *Client) GenerateImage(ctx context.Context, model, prompt string) ([]byte, string, error) {
	gc, err := c.holder.Get(ctx)
	if err != nil {
		return nil, "", err
	}

	resp, err := gc.Models.GenerateImages(ctx, model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, "", decodeError(err)
	}

	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, "", aiengine.NewOperationError(aiengine.KindProcessing,
			"image response contained no image data", false, nil)
	}

	img := resp.GeneratedImages[0].Image
	return img.ImageBytes, img.MIMEType, nil
}

// buildContents assembles the user content from the prompt and any
// additional text or file-reference parts.
func buildContents(req aiengine.ContentRequest) []*genai.Content {
	if len(req.Parts) == 0 {
		return genai.Text(req.Prompt)
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, p := range req.Parts {
		switch {
		case p.Text != "":
			parts = append(parts, genai.NewPartFromText(p.Text))
		case p.FileURI != "":
			parts = append(parts, genai.NewPartFromURI(p.FileURI, p.MIMEType))
		case len(p.Data) > 0:
			parts = append(parts, genai.NewPartFromBytes(p.Data, p.MIMEType))
		}
	}
	return []*genai.Content{{Role: genai.RoleUser, Parts: parts}}
}

// responseText extracts the concatenated text of the first candidate. An
// empty or blocked response from an otherwise successful call is a
// processing failure, not a transient fault.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", aiengine.NewOperationError(aiengine.KindProcessing,
			"provider returned no content", false, nil)
	}

	text := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text += part.Text
		}
	}
	if text == "" {
		return "", aiengine.NewOperationError(aiengine.KindProcessing,
			"provider returned empty content", false, nil)
	}
	return text, nil
}

// decodeError converts provider failures into the engine's tagged variants.
// Timeouts and net errors pass through; the engine classifier recognizes
// them directly.
func decodeError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &aiengine.HTTPError{
			Status:  apiErr.Code,
			Message: fmt.Sprintf("%s: %s", apiErr.Status, apiErr.Message),
		}
	}
	return err
}
