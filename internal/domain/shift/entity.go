package shift

import (
	"math"
	"strings"
	"time"

	"github.com/dineops/attendance-backend-go/internal/pkg/validator"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Shift is one work session bounded by a start event and, once
// completed, an end event. Derived fields (LateMinutes, IsOvertime,
// TotalHours) are computed at transition time and never accepted from
// callers. All timestamps are UTC.
type Shift struct {
	ID        string
	UserID    string
	Date      time.Time // work day, derived from StartTime
	StartTime time.Time
	EndTime   *time.Time

	// Photo refs are opaque blob-store handles. The retention sweeper
	// clears them after the retention window, so a nil ref on an old
	// record is normal.
	StartPhotoRef *string
	EndPhotoRef   *string

	Status         Status
	ApprovalStatus ApprovalStatus // meaningful only once completed
	Remarks        *string
	ApprovedBy     *string
	ApprovedAt     *time.Time

	LateMinutes int
	IsOvertime  bool
	TotalHours  *float64

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO / Join
	UserName  *string
	UserEmail *string
}

// Flags is the read-side triage classification for the review screen.
// It is derived, never stored.
type Flags struct {
	Late     bool `json:"late"`
	Overtime bool `json:"overtime"`
	Disputed bool `json:"disputed"`
}

// Triage classifies a record for approval triage. The dispute marker
// is deployment policy (config), not a constant.
func (s *Shift) Triage(disputeMarker string) Flags {
	f := Flags{
		Late:     s.LateMinutes > 0,
		Overtime: s.IsOvertime,
	}
	if s.Remarks != nil && disputeMarker != "" {
		f.Disputed = strings.Contains(strings.ToLower(*s.Remarks), strings.ToLower(disputeMarker))
	}
	return f
}

// IsDecided reports whether the approval state is terminal.
func (s *Shift) IsDecided() bool {
	return s.ApprovalStatus == ApprovalApproved || s.ApprovalStatus == ApprovalRejected
}

// RoundHours converts a duration to hours rounded half-up to one
// decimal place.
func RoundHours(d time.Duration) float64 {
	return math.Floor(d.Hours()*10+0.5) / 10
}

// DeriveLateMinutes computes whole minutes of lateness against an
// expected "HH:MM" UTC clock time on the start day. Unparseable or
// absent schedules yield zero.
func DeriveLateMinutes(startTime time.Time, expectedStart *string) int {
	if expectedStart == nil || *expectedStart == "" {
		return 0
	}
	clock, ok := validator.IsValidClock(*expectedStart)
	if !ok {
		return 0
	}

	startUTC := startTime.UTC()
	scheduled := time.Date(
		startUTC.Year(), startUTC.Month(), startUTC.Day(),
		clock.Hour(), clock.Minute(), 0, 0,
		time.UTC,
	)

	diff := startUTC.Sub(scheduled).Minutes()
	if diff <= 0 {
		return 0
	}
	return int(math.Floor(diff))
}

// DeriveOvertime reports whether a completed shift of totalHours
// exceeds the expected shift length. Unscheduled users are never
// overtime.
func DeriveOvertime(totalHours float64, expectedShiftHours *float64) bool {
	if expectedShiftHours == nil {
		return false
	}
	return totalHours > *expectedShiftHours
}

// WorkDay truncates a UTC timestamp to its calendar date.
func WorkDay(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}
