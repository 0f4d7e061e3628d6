package httptransport

type AssetCreatedRequest struct {
	EventID string `json:"event_id,omitempty"`
	Status  string `json:"status,omitempty"`
}

type ModerationDTO struct {
	Confidence      float64 `json:"confidence"`
	Category        string  `json:"category,omitempty"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
	Stage           string  `json:"stage,omitempty"`
	DecidedAt       string  `json:"decided_at,omitempty"`
}

type ModerateAssetResponse struct {
	AssetID    string         `json:"asset_id"`
	Status     string         `json:"status"`
	Skipped    bool           `json:"skipped"`
	SkipReason string         `json:"skip_reason,omitempty"`
	Moderation *ModerationDTO `json:"moderation,omitempty"`
}

type VerdictDTO struct {
	Source     string  `json:"source"`
	IsFlagged  bool    `json:"is_flagged"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

type RescanResponse struct {
	AssetID string     `json:"asset_id"`
	Status  string     `json:"status"`
	Verdict VerdictDTO `json:"verdict"`
}

type AssetModerationResponse struct {
	AssetID    string        `json:"asset_id"`
	AuthorID   string        `json:"author_id"`
	Status     string        `json:"status"`
	Moderation ModerationDTO `json:"moderation"`
	UpdatedAt  string        `json:"updated_at"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
