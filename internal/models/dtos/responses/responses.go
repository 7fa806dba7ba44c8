package responses

import "time"

// ErrorResponse is the generic failure envelope. Error carries one of
// the stable codes from internal/constants.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ScanResponse is returned by POST /scan. On window rejections the
// Now/Start/End fields are populated so scanning devices can display
// the mismatch.
type ScanResponse struct {
	OK           bool       `json:"ok"`
	Error        string     `json:"error,omitempty"`
	UserID       string     `json:"user_id,omitempty"`
	EventID      string     `json:"event_id,omitempty"`
	CheckedAt    *time.Time `json:"checked_at,omitempty"`
	Now          *time.Time `json:"now,omitempty"`
	Start        *time.Time `json:"start,omitempty"`
	End          *time.Time `json:"end,omitempty"`
	PenaltyLevel *int       `json:"penalty_level,omitempty"`
}

type CheckStatusResponse struct {
	OK        bool `json:"ok"`
	CheckedIn bool `json:"checked_in"`
	Banned    bool `json:"banned"`
}

// PenaltyStateResponse reports a user's penalty standing after a
// mutation.
type PenaltyStateResponse struct {
	OK             bool   `json:"ok"`
	PenaltyLevel   int    `json:"penalty_level"`
	PenaltyStatus  string `json:"penalty_status"`
	IsActiveMember bool   `json:"is_active_member"`
}

type PenaltyRecord struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Reason        string    `json:"reason"`
	Admin         *string   `json:"admin"`
	PreviousLevel int       `json:"previous_level"`
	CreatedAt     time.Time `json:"created_at"`
}

type PenaltyHistoryResponse struct {
	OK        bool            `json:"ok"`
	Total     int64           `json:"total"`
	Penalties []PenaltyRecord `json:"penalties"`
}

type EndEventResponse struct {
	OK             bool `json:"ok"`
	PenaltiesAdded int  `json:"penalties_added"`
	TotalNoShows   int  `json:"total_no_shows"`
	TotalAttended  int  `json:"total_attended"`
}

type EventInfo struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	Status             string    `json:"status"`
	PenaltiesProcessed bool      `json:"penalties_processed"`
}

type Attendee struct {
	UserID      string     `json:"user_id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayname"`
	Group       *string    `json:"group"`
	IsChecked   bool       `json:"is_checked"`
	CheckedAt   *time.Time `json:"checked_at"`
	Scanner     *string    `json:"scanner"`
}

type EventDetailsResponse struct {
	OK        bool       `json:"ok"`
	Event     EventInfo  `json:"event"`
	Attendees []Attendee `json:"attendees"`
}

type CheckinResponse struct {
	OK        bool       `json:"ok"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
	Scanner   *string    `json:"scanner,omitempty"`
	Error     string     `json:"error,omitempty"`
}

type CountResponse struct {
	OK    bool `json:"ok"`
	Count int  `json:"count"`
}

type TokenResponse struct {
	OK        bool      `json:"ok"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserToken struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type BulkTokensResponse struct {
	OK     bool        `json:"ok"`
	Tokens []UserToken `json:"tokens"`
}

type LogEntry struct {
	ID          int64     `json:"id"`
	Action      string    `json:"action"`
	Actor       *string   `json:"actor"`
	TargetUser  *string   `json:"target_user"`
	TargetEvent *string   `json:"target_event"`
	Details     string    `json:"details"`
	IPAddress   *string   `json:"ip_address"`
	Timestamp   time.Time `json:"timestamp"`
}

type LogsResponse struct {
	OK   bool       `json:"ok"`
	Logs []LogEntry `json:"logs"`
}
