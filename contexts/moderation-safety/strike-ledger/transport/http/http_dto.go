package httptransport

type RecordWarningRequest struct {
	Category string `json:"category"`
	Message  string `json:"message,omitempty"`
	Evidence string `json:"evidence,omitempty"`
}

type RecordWarningResponse struct {
	WarningID   string `json:"warning_id"`
	UserID      string `json:"user_id"`
	Category    string `json:"category"`
	StrikeCount int    `json:"strike_count"`
	Threshold   int    `json:"threshold"`
	Banned      bool   `json:"banned"`
	BanUntil    string `json:"ban_until,omitempty"`
	BanReason   string `json:"ban_reason,omitempty"`
}

type BanRequest struct {
	Reason string `json:"reason"`
	// DurationDays of zero bans permanently.
	DurationDays int `json:"duration_days,omitempty"`
}

type UnbanRequest struct {
	Reason string `json:"reason,omitempty"`
}

type BanDTO struct {
	IsBanned  bool   `json:"is_banned"`
	Reason    string `json:"reason,omitempty"`
	BanUntil  string `json:"ban_until,omitempty"`
	BannedAt  string `json:"banned_at,omitempty"`
	Permanent bool   `json:"permanent"`
	Expired   bool   `json:"expired"`
}

type AccountResponse struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Ban    BanDTO `json:"ban"`
}

type WarningDTO struct {
	WarningID string `json:"warning_id"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	Evidence  string `json:"evidence,omitempty"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type StandingResponse struct {
	UserID         string         `json:"user_id"`
	Ban            BanDTO         `json:"ban"`
	ActiveWarnings map[string]int `json:"active_warnings"`
	RecentWarnings []WarningDTO   `json:"recent_warnings"`
}

type SweepResponse struct {
	RestoredCount int `json:"restored_count"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
