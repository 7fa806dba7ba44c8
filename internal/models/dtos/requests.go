package dtos

type ScanRequest struct {
	Token string `json:"token"`
}

type PenaltyRequest struct {
	Reason string `json:"reason"`
}

type UserIDsRequest struct {
	UserIDs []string `json:"user_ids"`
}

type IssueTokenRequest struct {
	TTLSeconds int `json:"ttl_seconds,omitempty"`
}
