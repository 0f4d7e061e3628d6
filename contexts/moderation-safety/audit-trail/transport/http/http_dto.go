package httptransport

type ListEntriesRequest struct {
	TargetID string `json:"target_id,omitempty"`
	ActorID  string `json:"actor_id,omitempty"`
	Action   string `json:"action,omitempty"`
	Status   string `json:"status,omitempty"`
	Since    string `json:"since,omitempty"`
	Until    string `json:"until,omitempty"`
	Cursor   string `json:"cursor,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type EntryDTO struct {
	EntryID   string         `json:"entry_id"`
	Timestamp string         `json:"timestamp"`
	ActorID   string         `json:"actor_id"`
	Action    string         `json:"action"`
	TargetID  string         `json:"target_id"`
	Details   map[string]any `json:"details"`
	Status    string         `json:"status"`
}

type ListEntriesResponse struct {
	Items      []EntryDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
