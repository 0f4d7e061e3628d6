package services

import (
	"errors"
	"testing"

	"warden/contexts/moderation-safety/moderation-pipeline/domain/entities"
	domainerrors "warden/contexts/moderation-safety/moderation-pipeline/domain/errors"
)

func TestImageFlaggedUsesEitherSignal(t *testing.T) {
	if !ImageFlagged(false, 0.8, 0.65) {
		t.Fatalf("expected confidence above threshold to flag")
	}
	if ImageFlagged(false, 0.3, 0.65) {
		t.Fatalf("expected low confidence to pass")
	}
	if !ImageFlagged(true, 0.1, 0.65) {
		t.Fatalf("expected model flag to win")
	}
	if ImageFlagged(false, 0.65, 0.65) {
		t.Fatalf("threshold is exclusive")
	}
}

func TestValidateImageURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "/relative/img.png", "ftp://cdn.example/img.png", "https://"} {
		if err := ValidateImageURL(raw); !errors.Is(err, domainerrors.ErrInvalidInput) {
			t.Fatalf("expected invalid input for %q, got %v", raw, err)
		}
	}
	if err := ValidateImageURL("https://valid/img.png"); err != nil {
		t.Fatalf("expected valid url, got %v", err)
	}
}

func TestEmotionDeniedMatchesSubstring(t *testing.T) {
	if keyword, ok := EmotionDenied("Sexual_Content", nil); !ok || keyword != "sexual" {
		t.Fatalf("expected sexual match, got %q %v", keyword, ok)
	}
	if _, ok := EmotionDenied("neutral", nil); ok {
		t.Fatalf("neutral must pass")
	}
}

func TestExplicitLanguage(t *testing.T) {
	if !MatchesExplicitLanguage("sex toys collection") {
		t.Fatalf("expected explicit match")
	}
	if MatchesExplicitLanguage("Sussex landscape prints") {
		t.Fatalf("word boundaries must prevent partial matches")
	}
}

func TestResolveImageFailsClosed(t *testing.T) {
	decision := ResolveImage(nil, entities.Verdict{}, domainerrors.ErrClassifierUnavailable)
	if !decision.Rejected() || decision.Reason != ReasonVerificationFailed {
		t.Fatalf("expected verification failure reject, got %+v", decision)
	}
	if decision.AuditAction != entities.ActionRejectedUnverified {
		t.Fatalf("unexpected action %s", decision.AuditAction)
	}
}

func TestResolveTextPicksFirstFlaggedField(t *testing.T) {
	verdicts := []entities.Verdict{
		entities.NewVerdict(entities.VerdictSourceText, "name", false, 0, "", ""),
		entities.NewVerdict(entities.VerdictSourceText, "description", true, 0.9, "sexual", "emotion sexual"),
		entities.NewVerdict(entities.VerdictSourceText, "tags", true, 0.9, "explicit", "explicit language"),
	}
	decision, ok := ResolveText(verdicts)
	if !ok || decision.Reason != "emotion sexual (description)" || len(decision.Verdicts) != 3 {
		t.Fatalf("unexpected decision %+v", decision)
	}
}
