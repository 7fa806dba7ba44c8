package constants

// Stable machine-readable error codes returned to scanning devices.
// These strings are part of the wire contract; do not rename.
const (
	CodeBadRequest        = "bad_request"
	CodeTokenExpired      = "token_expired"
	CodeTokenInvalid      = "token_invalid"
	CodeNoEvent           = "no_event"
	CodeNoUser            = "no_user"
	CodeUserBanned        = "user_banned"
	CodeOutsideEventTime  = "outside_event_time"
	CodeAlreadyCheckedIn  = "already_checked_in"
	CodeWarningOverlap    = "warning_overlapping_scan"
	CodeBannedOverlaps    = "banned_due_to_multiple_overlaps"
	CodeAlreadyProcessed  = "already_processed"
	CodeEventEnded        = "event_ended"
	CodeNotAssigned       = "not_assigned"
	CodeAttendanceMissing = "attendance_not_found"
	CodeCapacityExceeded  = "capacity_exceeded"
)
