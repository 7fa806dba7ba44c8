package constants

// Audit log action types for the audit_logs table
const (
	ActionCheckin       = "checkin"
	ActionCheckinUndo   = "checkin_undo"
	ActionCheckinBulk   = "checkin_bulk"
	ActionEventEnd      = "event_end"
	ActionEventAssign   = "event_assign"
	ActionPenaltyAdd    = "penalty_add"
	ActionPenaltyReduce = "penalty_reduce"
	ActionPenaltyPardon = "penalty_pardon"
	ActionPenaltyBan    = "penalty_ban"
	ActionPenaltyAuto   = "penalty_auto"
	ActionSchedulerRun  = "scheduler_run"
	ActionTokenIssued   = "token_issued"
)
