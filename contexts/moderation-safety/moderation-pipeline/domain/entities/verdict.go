package entities

import (
	"math"
	"strings"
)

type VerdictSource string

const (
	VerdictSourceImage VerdictSource = "image"
	VerdictSourceText  VerdictSource = "text"
)

// Verdict is one classifier's answer about one input.
type Verdict struct {
	Source     VerdictSource
	Field      string
	IsFlagged  bool
	Confidence float64
	Category   string
	Reason     string
	// Degraded marks a verdict produced without the remote classifier.
	Degraded bool
}

// NewVerdict clamps confidence into [0,1] and guarantees that a flagged
// verdict always explains itself.
func NewVerdict(
	source VerdictSource,
	field string,
	flagged bool,
	confidence float64,
	category string,
	reason string,
) Verdict {
	switch {
	case math.IsNaN(confidence):
		confidence = 0
	case confidence < 0:
		confidence = 0
	case confidence > 1:
		confidence = 1
	}
	category = strings.TrimSpace(category)
	reason = strings.TrimSpace(reason)
	if flagged && reason == "" {
		if category != "" {
			reason = "flagged as " + category
		} else {
			reason = "flagged by " + string(source) + " moderation"
		}
	}
	return Verdict{
		Source:     source,
		Field:      strings.TrimSpace(field),
		IsFlagged:  flagged,
		Confidence: confidence,
		Category:   category,
		Reason:     reason,
	}
}

// DegradedTextVerdict is the pass recorded when text screening could not run.
func DegradedTextVerdict(field string, diagnostic string) Verdict {
	verdict := NewVerdict(VerdictSourceText, field, false, 0, "", diagnostic)
	verdict.Degraded = true
	return verdict
}
