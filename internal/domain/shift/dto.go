package shift

import (
	"strings"

	"github.com/dineops/attendance-backend-go/internal/domain/user"
	"github.com/dineops/attendance-backend-go/internal/pkg/photo"
	"github.com/dineops/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// SHIFT DTOs
// ========================================

type StartShiftRequest struct {
	UserID string `json:"user_id"`

	// Photo is attached by the handler after multipart extraction;
	// mandatory for start (enforced by the service as ErrPhotoRequired).
	Photo *photo.Payload `json:"-"`
}

func (r *StartShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EndShiftRequest struct {
	UserID string `json:"user_id"`

	// Photo is optional for end
	Photo *photo.Payload `json:"-"`
}

func (r *EndShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// DecideApprovalRequest carries a manager's decision on a completed
// shift record.
type DecideApprovalRequest struct {
	ID        string    `json:"-"`
	ActorID   string    `json:"-"`
	ActorRole user.Role `json:"-"`
	Decision  Decision  `json:"-"`
	Remarks   *string   `json:"remarks,omitempty"`
}

func (r *DecideApprovalRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "record id is required",
		})
	}

	if r.Decision != DecisionApprove && r.Decision != DecisionReject {
		errs = append(errs, validator.ValidationError{
			Field:   "decision",
			Message: "decision must be one of: approve, reject",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ShiftResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	UserName      *string `json:"user_name,omitempty"`
	UserEmail     *string `json:"user_email,omitempty"`
	Date          string  `json:"date"`
	StartTime     string  `json:"start_time"`
	EndTime       *string `json:"end_time,omitempty"`
	StartPhotoURL *string `json:"start_photo_url,omitempty"`
	EndPhotoURL   *string `json:"end_photo_url,omitempty"`

	Status         string  `json:"status"`
	ApprovalStatus *string `json:"approval_status,omitempty"`
	Remarks        *string `json:"remarks,omitempty"`
	ApprovedBy     *string `json:"approved_by,omitempty"`
	ApprovedAt     *string `json:"approved_at,omitempty"`

	LateMinutes int      `json:"late_minutes"`
	IsOvertime  *bool    `json:"is_overtime,omitempty"`
	TotalHours  *float64 `json:"total_hours,omitempty"`
	Flags       *Flags   `json:"flags,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ShiftFilter struct {
	// Search & Filter
	UserID         *string `json:"user_id,omitempty"`
	StartDate      *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate        *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status         *string `json:"status,omitempty"`
	ApprovalStatus *string `json:"approval_status,omitempty"`
	LateOnly       bool    `json:"late_only"`
	OvertimeOnly   bool    `json:"overtime_only"`
	DisputedOnly   bool    `json:"disputed_only"`
	Search         *string `json:"search,omitempty"` // matches user display name/email

	// Pagination (1-indexed)
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (f *ShiftFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	if f.PageSize < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page_size",
			Message: "page_size must be a positive number",
		})
	}
	if f.PageSize == 0 {
		f.PageSize = 20 // Default page size
	}
	if f.PageSize > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "page_size",
			Message: "page_size must not exceed 100",
		})
	}

	if f.Status != nil {
		validStatuses := []string{string(StatusActive), string(StatusCompleted)}
		if !validator.IsInSlice(*f.Status, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: active, completed",
			})
		}
	}

	if f.ApprovalStatus != nil {
		validStatuses := []string{
			string(ApprovalPending), string(ApprovalApproved), string(ApprovalRejected),
		}
		if !validator.IsInSlice(*f.ApprovalStatus, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "approval_status",
				Message: "approval_status must be one of: pending, approved, rejected",
			})
		}
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.Search != nil && strings.TrimSpace(*f.Search) == "" {
		f.Search = nil
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// MyShiftFilter scopes a query to the authenticated user, so it has no
// user or search filters.
type MyShiftFilter struct {
	StartDate      *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate        *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status         *string `json:"status,omitempty"`
	ApprovalStatus *string `json:"approval_status,omitempty"`
	LateOnly       bool    `json:"late_only"`
	OvertimeOnly   bool    `json:"overtime_only"`
	DisputedOnly   bool    `json:"disputed_only"`

	// Pagination (1-indexed)
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (f *MyShiftFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	if f.PageSize < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page_size",
			Message: "page_size must be a positive number",
		})
	}
	if f.PageSize == 0 {
		f.PageSize = 20 // Default page size
	}
	if f.PageSize > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "page_size",
			Message: "page_size must not exceed 100",
		})
	}

	if f.Status != nil {
		validStatuses := []string{string(StatusActive), string(StatusCompleted)}
		if !validator.IsInSlice(*f.Status, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: active, completed",
			})
		}
	}

	if f.ApprovalStatus != nil {
		validStatuses := []string{
			string(ApprovalPending), string(ApprovalApproved), string(ApprovalRejected),
		}
		if !validator.IsInSlice(*f.ApprovalStatus, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "approval_status",
				Message: "approval_status must be one of: pending, approved, rejected",
			})
		}
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Pagination is 1-indexed. Pages is never below 1, even for an empty
// result set.
type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// NewPagination computes pagination info for a 1-indexed page over
// total rows.
func NewPagination(page, pageSize int, total int64) Pagination {
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if pages < 1 {
		pages = 1
	}
	return Pagination{
		Current: page,
		Pages:   pages,
		Total:   total,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

type ListShiftsResponse struct {
	Shifts     []ShiftResponse `json:"shifts"`
	Pagination Pagination      `json:"pagination"`
}

// CurrentShiftResponse tells the client what it may do right now.
type CurrentShiftResponse struct {
	HasActiveShift bool           `json:"has_active_shift"`
	ActiveShift    *ShiftResponse `json:"active_shift,omitempty"`
	CanStart       bool           `json:"can_start"`
	CanEnd         bool           `json:"can_end"`
	Message        string         `json:"message"`
}

// ========================================
// STATS DTOs
// ========================================

// StatsWindow filters the aggregation; absent fields mean "all".
type StatsWindow struct {
	Month *int `json:"month,omitempty"`
	Year  *int `json:"year,omitempty"`
}

func (w *StatsWindow) Validate() error {
	var errs validator.ValidationErrors

	if w.Month != nil && (*w.Month < 1 || *w.Month > 12) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	if w.Year != nil && (*w.Year < 2000 || *w.Year > 2100) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type StatsResponse struct {
	TotalShifts     int64   `json:"total_shifts"`
	CompletedShifts int64   `json:"completed_shifts"`
	ActiveShifts    int64   `json:"active_shifts"`
	TotalHours      float64 `json:"total_hours"`
	AverageHours    float64 `json:"average_hours"`
	DaysPresent     int64   `json:"days_present"`
}
