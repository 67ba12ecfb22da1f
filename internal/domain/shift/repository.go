package shift

import (
	"context"
	"time"
)

// EndMutation carries the derived fields written by the atomic
// close-shift update.
type EndMutation struct {
	ShiftID     string
	EndTime     time.Time
	EndPhotoRef *string
	TotalHours  float64
	IsOvertime  bool
}

// ApprovalMutation carries an approval decision.
type ApprovalMutation struct {
	Status     ApprovalStatus
	ApprovedBy string
	ApprovedAt time.Time
	Remarks    *string
}

// PhotoRef pairs a shift with its retained photo refs, for the
// retention sweeper.
type PhotoRef struct {
	ShiftID       string
	StartPhotoRef *string
	EndPhotoRef   *string
}

// StatsRow is the raw aggregation result; the service derives the
// average.
type StatsRow struct {
	TotalShifts     int64
	CompletedShifts int64
	ActiveShifts    int64
	TotalHours      float64
	DaysPresent     int64
}

// ShiftRepository is the record store collaborator. The single-active-
// shift invariant is enforced here with atomic conditional writes, not
// with read-then-write sequences in the service.
type ShiftRepository interface {
	// InsertActive creates a new active shift iff no active shift
	// exists for the user; returns ErrShiftAlreadyActive otherwise.
	InsertActive(ctx context.Context, s Shift) (Shift, error)

	// GetActive retrieves the user's active shift, ErrNoActiveShift
	// when there is none.
	GetActive(ctx context.Context, userID string) (Shift, error)

	// CompleteActive atomically closes the user's active shift;
	// returns ErrNoActiveShift when no row matched.
	CompleteActive(ctx context.Context, userID string, end EndMutation) (Shift, error)

	// GetByID retrieves a shift with its user join
	GetByID(ctx context.Context, id string) (Shift, error)

	// Query retrieves shift records with filters and pagination,
	// newest start first with a stable id tie-break.
	Query(ctx context.Context, filter ShiftFilter, disputeMarker string) ([]Shift, int64, error)

	// QueryByUser retrieves records for a single user
	QueryByUser(ctx context.Context, userID string, filter MyShiftFilter, disputeMarker string) ([]Shift, int64, error)

	// UpdateApproval atomically applies a decision iff the record is
	// still pending; returns ErrNotPending when no row matched and
	// ErrShiftNotFound when the record does not exist at all.
	UpdateApproval(ctx context.Context, id string, d ApprovalMutation) (Shift, error)

	// Summarize aggregates over a month/year window
	Summarize(ctx context.Context, userID string, w StatsWindow) (StatsRow, error)

	// ListExpiredPhotoRefs returns records created before cutoff that
	// still carry photo refs.
	ListExpiredPhotoRefs(ctx context.Context, cutoff time.Time, limit int) ([]PhotoRef, error)

	// ClearPhotoRefs drops photo refs after their blobs are purged
	ClearPhotoRefs(ctx context.Context, shiftID string) error
}
