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

// TextClient screens text with a local explicit-language pattern and then a
// remote emotion classifier. Remote failures degrade to a pass.
type TextClient struct {
	URL            string
	APIKey         string
	DenyKeywords   []string
	HTTPClient     *http.Client
	MaxRetries     uint64
	RetryBaseDelay time.Duration
	Logger         *slog.Logger
}

type emotionLabel struct {
	label string
	score float64
}

func (c TextClient) Check(ctx context.Context, text string, field string) (entities.Verdict, error) {
	if strings.TrimSpace(text) == "" {
		return entities.NewVerdict(entities.VerdictSourceText, field, false, 0, "", ""), nil
	}
	if services.MatchesExplicitLanguage(text) {
		return entities.NewVerdict(entities.VerdictSourceText, field, true, 1, "explicit", "explicit language"), nil
	}
	if strings.TrimSpace(c.URL) == "" {
		return c.degraded(field, "text classifier not configured"), nil
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return c.degraded(field, err.Error()), nil
	}
	body, err := newPoster(c.HTTPClient, c.MaxRetries, c.RetryBaseDelay).postJSON(ctx, strings.TrimSpace(c.URL), c.APIKey, payload)
	if err != nil {
		return c.degraded(field, err.Error()), nil
	}
	emotion, err := parseEmotion(body)
	if err != nil {
		return c.degraded(field, err.Error()), nil
	}

	keyword, denied := services.EmotionDenied(emotion.label, c.DenyKeywords)
	reason := ""
	if denied {
		reason = fmt.Sprintf("text classified as %s (matches %q)", emotion.label, keyword)
	}
	return entities.NewVerdict(entities.VerdictSourceText, field, denied, emotion.score, emotion.label, reason), nil
}

func (c TextClient) degraded(field string, diagnostic string) entities.Verdict {
	if c.Logger != nil {
		c.Logger.Warn("text classifier degraded",
			"event", "moderation_text_classifier_degraded",
			"module", "moderation-safety/moderation-pipeline",
			"layer", "adapter",
			"field", field,
			"error", diagnostic,
		)
	}
	return entities.DegradedTextVerdict(field, "text screening unavailable: "+diagnostic)
}

// parseEmotion accepts {emotion, sentiment}, {label, score}, [{label, score}]
// and [[{label, score}]]. For lists the highest score wins.
func parseEmotion(body []byte) (emotionLabel, error) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return emotionLabel{}, fmt.Errorf("%w: %v", domainerrors.ErrMalformedResponse, err)
	}
	if label, ok := emotionFromValue(decoded); ok {
		return label, nil
	}
	return emotionLabel{}, fmt.Errorf("%w: unrecognised emotion payload", domainerrors.ErrMalformedResponse)
}

func emotionFromValue(value any) (emotionLabel, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return emotionFromObject(typed)
	case []any:
		best := emotionLabel{score: -1}
		found := false
		for _, item := range typed {
			candidate, ok := emotionFromValue(item)
			if ok && candidate.score > best.score {
				best = candidate
				found = true
			}
		}
		if found && best.score < 0 {
			best.score = 0
		}
		return best, found
	}
	return emotionLabel{}, false
}

func emotionFromObject(object map[string]any) (emotionLabel, bool) {
	for _, key := range []string{"emotion", "label"} {
		label, ok := object[key].(string)
		if !ok || strings.TrimSpace(label) == "" {
			continue
		}
		score := 0.0
		for _, scoreKey := range []string{"score", "confidence"} {
			if value, ok := object[scoreKey].(float64); ok {
				score = value
				break
			}
		}
		return emotionLabel{label: strings.TrimSpace(label), score: score}, true
	}
	return emotionLabel{}, false
}

var _ ports.TextClassifier = TextClient{}
