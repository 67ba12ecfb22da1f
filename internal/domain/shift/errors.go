package shift

import "errors"

// Shift domain errors
var (
	// Start/end errors
	ErrShiftAlreadyActive = errors.New("an active shift already exists for this user")
	ErrNoActiveShift      = errors.New("no active shift found for this user")
	ErrPhotoRequired      = errors.New("a verification photo is required to start a shift")
	ErrInvalidPhoto       = errors.New("verification photo failed type or size validation")
	ErrEndBeforeStart     = errors.New("shift end time must be after its start time")

	// Approval errors
	ErrNotPending        = errors.New("shift record is not pending approval")
	ErrApprovalForbidden = errors.New("only managers may decide on shift records")
	ErrRemarksRequired   = errors.New("remarks are required when rejecting a shift record")

	// General errors
	ErrShiftNotFound = errors.New("shift record not found")
)
