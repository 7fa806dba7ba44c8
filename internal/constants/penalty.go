package constants

import (
	"database/sql/driver"
	"fmt"
)

// PenaltyStatus is the derived standing of a user.
type PenaltyStatus string

const (
	PenaltyStatusOK     PenaltyStatus = "ok"
	PenaltyStatusWarned PenaltyStatus = "warned"
	PenaltyStatusBanned PenaltyStatus = "banned"
)

func (s PenaltyStatus) String() string { return string(s) }

// PenaltyType classifies a penalty history record.
type PenaltyType string

const (
	PenaltyTypeAdd    PenaltyType = "add"
	PenaltyTypeReduce PenaltyType = "reduce"
	PenaltyTypePardon PenaltyType = "pardon"
	PenaltyTypeBan    PenaltyType = "ban"
)

func (t PenaltyType) String() string { return string(t) }

// Penalty policy thresholds. Status is always a pure function of level:
// 0 is ok, WarnThreshold..BanThreshold-1 is warned, BanThreshold and above
// is banned.
const (
	WarnThreshold = 1
	BanThreshold  = 3
)

// StatusForLevel derives the penalty status from a level.
func StatusForLevel(level int) PenaltyStatus {
	switch {
	case level >= BanThreshold:
		return PenaltyStatusBanned
	case level >= WarnThreshold:
		return PenaltyStatusWarned
	default:
		return PenaltyStatusOK
	}
}

// SystemUsername identifies the non-human actor recorded on automatic
// penalties. It never accrues penalties itself.
const SystemUsername = "system"

/* ---------- DB adapters ---------- */

func (s *PenaltyStatus) Scan(src interface{}) error {
	if src == nil {
		*s = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*s = PenaltyStatus(v)
	case []byte:
		*s = PenaltyStatus(v)
	default:
		return fmt.Errorf("PenaltyStatus: cannot scan type %T", src)
	}
	return nil
}

func (s PenaltyStatus) Value() (driver.Value, error) { return string(s), nil }

func (t *PenaltyType) Scan(src interface{}) error {
	if src == nil {
		*t = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*t = PenaltyType(v)
	case []byte:
		*t = PenaltyType(v)
	default:
		return fmt.Errorf("PenaltyType: cannot scan type %T", src)
	}
	return nil
}

func (t PenaltyType) Value() (driver.Value, error) { return string(t), nil }
