package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"warden/contexts/moderation-safety/moderation-pipeline/domain/entities"
	domainerrors "warden/contexts/moderation-safety/moderation-pipeline/domain/errors"
	"warden/contexts/moderation-safety/moderation-pipeline/domain/services"
	"warden/contexts/moderation-safety/moderation-pipeline/ports"
)

const imageModerationPrompt = `You are a strict content moderator for a public marketplace.
Decide whether the image contains nudity, sexual content, sexualised minors, graphic violence, gore, hate symbols or other content unsafe for a general audience.
When in doubt, flag it.
Reply with ONLY a JSON object and nothing else:
{"is_nsfw": true|false, "confidence": <number between 0 and 1>, "category": "<short category>", "reason": "<one sentence>"}`

// ImageClient asks an OpenAI-compatible vision model to classify an image URL.
type ImageClient struct {
	BaseURL        string
	APIKey         string
	Model          string
	Threshold      float64
	HTTPClient     *http.Client
	MaxRetries     uint64
	RetryBaseDelay time.Duration
	Logger         *slog.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// imageModeration is the reply schema. is_nsfw and confidence are required;
// an object without them is malformed, never a pass.
type imageModeration struct {
	IsNSFW     *bool    `json:"is_nsfw"`
	Confidence *float64 `json:"confidence"`
	Category   string   `json:"category"`
	Reason     string   `json:"reason"`
}

func (c ImageClient) Check(ctx context.Context, imageURL string) (entities.Verdict, error) {
	if err := services.ValidateImageURL(imageURL); err != nil {
		return entities.Verdict{}, err
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return entities.Verdict{}, fmt.Errorf("%w: image classifier api key not configured", domainerrors.ErrClassifierUnavailable)
	}

	payload, err := json.Marshal(chatCompletionRequest{
		Model: c.model(),
		Messages: []chatMessage{
			{Role: "system", Content: imageModerationPrompt},
			{Role: "user", Content: []chatContentPart{
				{Type: "text", Text: "Classify this image."},
				{Type: "image_url", ImageURL: &chatImageURL{URL: strings.TrimSpace(imageURL)}},
			}},
		},
		Temperature: 0,
		MaxTokens:   200,
	})
	if err != nil {
		return entities.Verdict{}, err
	}

	body, err := newPoster(c.HTTPClient, c.MaxRetries, c.RetryBaseDelay).postJSON(ctx, c.endpoint(), c.APIKey, payload)
	if err != nil {
		return entities.Verdict{}, err
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return entities.Verdict{}, fmt.Errorf("%w: decode completion: %v", domainerrors.ErrMalformedResponse, err)
	}
	if len(completion.Choices) == 0 {
		return entities.Verdict{}, fmt.Errorf("%w: no completion choices", domainerrors.ErrMalformedResponse)
	}
	content := completion.Choices[0].Message.Content
	raw, ok := extractJSONObject(content)
	if !ok {
		return entities.Verdict{}, fmt.Errorf("%w: no json object in model reply", domainerrors.ErrMalformedResponse)
	}
	var result imageModeration
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return entities.Verdict{}, fmt.Errorf("%w: %v", domainerrors.ErrMalformedResponse, err)
	}
	if result.IsNSFW == nil || result.Confidence == nil {
		return entities.Verdict{}, fmt.Errorf("%w: reply missing is_nsfw or confidence", domainerrors.ErrMalformedResponse)
	}

	flagged := services.ImageFlagged(*result.IsNSFW, *result.Confidence, c.Threshold)
	verdict := entities.NewVerdict(entities.VerdictSourceImage, "image", flagged, *result.Confidence, result.Category, result.Reason)
	if c.Logger != nil {
		c.Logger.Debug("image classified",
			"event", "moderation_image_classified",
			"module", "moderation-safety/moderation-pipeline",
			"layer", "adapter",
			"flagged", verdict.IsFlagged,
			"confidence", verdict.Confidence,
			"category", verdict.Category,
		)
	}
	return verdict, nil
}

func (c ImageClient) endpoint() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}

func (c ImageClient) model() string {
	if model := strings.TrimSpace(c.Model); model != "" {
		return model
	}
	return "gpt-4o-mini"
}

var _ ports.ImageClassifier = ImageClient{}
