package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"warden/contexts/moderation-safety/moderation-pipeline/domain/entities"
	domainerrors "warden/contexts/moderation-safety/moderation-pipeline/domain/errors"
)

const (
	DefaultImageConfidenceThreshold = 0.65

	ReasonInvalidImage       = "missing or invalid image reference"
	ReasonVerificationFailed = "image verification failed"
)

// DefaultDenyKeywords are emotion labels that flag text.
var DefaultDenyKeywords = []string{
	"explicit",
	"sexual",
	"harassment",
	"abuse",
	"hate",
	"violence",
	"threat",
}

var explicitLanguage = regexp.MustCompile(`(?i)\b(sex|sexy|porn\w*|nude\w*|naked|nsfw|xxx|fuck\w*|shit\w*|bitch\w*|cock\w*|dick\w*|pussy|cum|hentai|onlyfans|erotic\w*|fetish\w*)\b`)

// MatchesExplicitLanguage reports whether text contains explicit tokens.
func MatchesExplicitLanguage(text string) bool {
	return explicitLanguage.MatchString(text)
}

// ValidateImageURL accepts only absolute http(s) URLs with a host.
func ValidateImageURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("%w: empty image url", domainerrors.ErrInvalidInput)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrInvalidInput, err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return fmt.Errorf("%w: image url must be absolute", domainerrors.ErrInvalidInput)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: unsupported image url scheme %q", domainerrors.ErrInvalidInput, parsed.Scheme)
	}
	return nil
}

// ImageFlagged combines the model's own flag with the confidence threshold.
// Either one is enough.
func ImageFlagged(isNSFW bool, confidence float64, threshold float64) bool {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultImageConfidenceThreshold
	}
	return isNSFW || confidence > threshold
}

// EmotionDenied matches label against the deny list by case-insensitive substring.
func EmotionDenied(label string, denyList []string) (string, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return "", false
	}
	if len(denyList) == 0 {
		denyList = DefaultDenyKeywords
	}
	for _, keyword := range denyList {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && strings.Contains(label, keyword) {
			return keyword, true
		}
	}
	return "", false
}

func RejectPrecondition() entities.Decision {
	return entities.Decision{
		Outcome:     entities.OutcomeReject,
		Stage:       entities.StagePrecondition,
		Reason:      ReasonInvalidImage,
		Category:    "invalid_image",
		AuditAction: entities.ActionRejectedInvalid,
	}
}

// ResolveText rejects on the first flagged field. All verdicts are kept for
// the audit trail. ok is false when nothing flagged.
func ResolveText(verdicts []entities.Verdict) (entities.Decision, bool) {
	for _, verdict := range verdicts {
		if !verdict.IsFlagged {
			continue
		}
		reason := verdict.Reason
		if verdict.Field != "" {
			reason = fmt.Sprintf("%s (%s)", verdict.Reason, verdict.Field)
		}
		return entities.Decision{
			Outcome:     entities.OutcomeReject,
			Stage:       entities.StageText,
			Reason:      reason,
			Confidence:  verdict.Confidence,
			Category:    verdict.Category,
			AuditAction: entities.ActionRejectedNSFWText,
			Verdicts:    verdicts,
		}, true
	}
	return entities.Decision{}, false
}

// ResolveImage turns the image stage result into a terminal decision. Any
// classifier error rejects.
func ResolveImage(textVerdicts []entities.Verdict, verdict entities.Verdict, err error) entities.Decision {
	verdicts := append(append([]entities.Verdict(nil), textVerdicts...), verdict)
	if err != nil {
		return entities.Decision{
			Outcome:     entities.OutcomeReject,
			Stage:       entities.StageImage,
			Reason:      ReasonVerificationFailed,
			Category:    "verification_failed",
			AuditAction: entities.ActionRejectedUnverified,
			Verdicts:    textVerdicts,
		}
	}
	if verdict.IsFlagged {
		return entities.Decision{
			Outcome:     entities.OutcomeReject,
			Stage:       entities.StageImage,
			Reason:      verdict.Reason,
			Confidence:  verdict.Confidence,
			Category:    verdict.Category,
			AuditAction: entities.ActionRejectedNSFW,
			Verdicts:    verdicts,
		}
	}
	return entities.Decision{
		Outcome:     entities.OutcomePublish,
		Stage:       entities.StageImage,
		Confidence:  verdict.Confidence,
		Category:    verdict.Category,
		AuditAction: entities.ActionAssetPublished,
		Verdicts:    verdicts,
	}
}
