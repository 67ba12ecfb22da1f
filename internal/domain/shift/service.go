package shift

import (
	"context"
)

// ShiftService defines business logic for shift attendance operations
type ShiftService interface {
	// StartShift opens a shift with a mandatory verification photo
	StartShift(ctx context.Context, req StartShiftRequest) (ShiftResponse, error)

	// EndShift closes the user's active shift; photo optional
	EndShift(ctx context.Context, req EndShiftRequest) (ShiftResponse, error)

	// GetCurrentShift reports the user's live shift state
	GetCurrentShift(ctx context.Context, userID string) (CurrentShiftResponse, error)

	// GetShift retrieves a single shift record by ID
	GetShift(ctx context.Context, id string) (ShiftResponse, error)

	// ListShifts retrieves shift records with filters (manager)
	ListShifts(ctx context.Context, filter ShiftFilter) (ListShiftsResponse, error)

	// ListMyShifts retrieves records for the authenticated user
	ListMyShifts(ctx context.Context, userID string, filter MyShiftFilter) (ListShiftsResponse, error)

	// DecideApproval approves or rejects a pending completed shift
	DecideApproval(ctx context.Context, req DecideApprovalRequest) (ShiftResponse, error)

	// GetStats aggregates attendance statistics over a window
	GetStats(ctx context.Context, userID string, w StatsWindow) (StatsResponse, error)
}
