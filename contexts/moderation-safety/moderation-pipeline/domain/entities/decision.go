package entities

type DecisionOutcome string

const (
	OutcomePublish DecisionOutcome = "publish"
	OutcomeReject  DecisionOutcome = "reject"
)

type DecisionStage string

const (
	StagePrecondition DecisionStage = "precondition"
	StageText         DecisionStage = "text"
	StageImage        DecisionStage = "image"
)

// Audit action tags for terminal decisions.
const (
	ActionAssetPublished     = "ASSET_PUBLISHED"
	ActionAssetRescanned     = "ASSET_RESCANNED"
	ActionRejectedNSFW       = "UPLOAD_REJECTED_NSFW"
	ActionRejectedNSFWText   = "UPLOAD_REJECTED_NSFW_TEXT"
	ActionRejectedInvalid    = "UPLOAD_REJECTED_INVALID_IMAGE"
	ActionRejectedUnverified = "UPLOAD_REJECTED_VERIFICATION_FAILED"
)

type Decision struct {
	Outcome     DecisionOutcome
	Stage       DecisionStage
	Reason      string
	Confidence  float64
	Category    string
	AuditAction string
	Verdicts    []Verdict
}

func (d Decision) Rejected() bool {
	return d.Outcome == OutcomeReject
}

func (d Decision) TargetStatus() AssetStatus {
	if d.Rejected() {
		return AssetStatusRejected
	}
	return AssetStatusPublished
}
