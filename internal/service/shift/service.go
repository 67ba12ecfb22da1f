package shift

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/dineops/attendance-backend-go/internal/config"
	"github.com/dineops/attendance-backend-go/internal/domain/shift"
	"github.com/dineops/attendance-backend-go/internal/domain/user"
	"github.com/dineops/attendance-backend-go/internal/pkg/photo"
	"github.com/dineops/attendance-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
)

type ShiftServiceImpl struct {
	shiftRepo shift.ShiftRepository
	userRepo  user.UserRepository
	blobs     storage.BlobStorage
	policy    config.PolicyConfig

	now func() time.Time
}

func NewShiftService(
	shiftRepo shift.ShiftRepository,
	userRepo user.UserRepository,
	blobs storage.BlobStorage,
	policy config.PolicyConfig,
) *ShiftServiceImpl {
	return &ShiftServiceImpl{
		shiftRepo: shiftRepo,
		userRepo:  userRepo,
		blobs:     blobs,
		policy:    policy,
		now:       time.Now,
	}
}

// timePtrToString safely converts a *time.Time to an RFC3339 string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}

// uploadPhoto stores a validated payload and returns the blob ref. The
// ref layout groups blobs per user and work day so the sweeper and
// operators can reason about them.
func (s *ShiftServiceImpl) uploadPhoto(ctx context.Context, userID string, day time.Time, phase string, p *photo.Payload) (string, error) {
	ref := fmt.Sprintf("shifts/%s/%s/%s-%s%s",
		userID, day.Format("2006-01-02"), phase, uuid.Must(uuid.NewV7()).String(), p.Ext)

	storedRef, err := s.blobs.Upload(ctx, bytes.NewReader(p.Data), ref, p.MIME)
	if err != nil {
		return "", fmt.Errorf("failed to upload verification photo: %w", err)
	}
	return storedRef, nil
}

// discardPhoto removes an uploaded blob after a failed state
// transition, keeping start/end all-or-nothing. Best effort.
func (s *ShiftServiceImpl) discardPhoto(ctx context.Context, ref string) {
	if err := s.blobs.Delete(ctx, ref); err != nil {
		slog.Warn("failed to discard orphaned photo blob", "ref", ref, "error", err)
	}
}

// StartShift implements shift.ShiftService.
func (s *ShiftServiceImpl) StartShift(ctx context.Context, req shift.StartShiftRequest) (shift.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.ShiftResponse{}, err
	}
	if req.Photo == nil {
		return shift.ShiftResponse{}, shift.ErrPhotoRequired
	}

	u, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	nowUTC := s.now().UTC()
	day := shift.WorkDay(nowUTC)

	// Upload before taking the state transition; the transition itself
	// never waits on blob I/O.
	ref, err := s.uploadPhoto(ctx, req.UserID, day, "start", req.Photo)
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	record := shift.Shift{
		UserID:        req.UserID,
		Date:          day,
		StartTime:     nowUTC,
		StartPhotoRef: &ref,
		LateMinutes:   shift.DeriveLateMinutes(nowUTC, u.ExpectedStart),
	}

	created, err := s.shiftRepo.InsertActive(ctx, record)
	if err != nil {
		s.discardPhoto(ctx, ref)
		return shift.ShiftResponse{}, err
	}

	created.UserName = &u.DisplayName
	created.UserEmail = &u.Email
	return s.toResponse(ctx, created), nil
}

// EndShift implements shift.ShiftService.
func (s *ShiftServiceImpl) EndShift(ctx context.Context, req shift.EndShiftRequest) (shift.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.ShiftResponse{}, err
	}

	u, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	active, err := s.shiftRepo.GetActive(ctx, req.UserID)
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	nowUTC := s.now().UTC()
	if !nowUTC.After(active.StartTime) {
		return shift.ShiftResponse{}, shift.ErrEndBeforeStart
	}

	var endRef *string
	if req.Photo != nil {
		ref, err := s.uploadPhoto(ctx, req.UserID, active.Date, "end", req.Photo)
		if err != nil {
			return shift.ShiftResponse{}, err
		}
		endRef = &ref
	}

	totalHours := shift.RoundHours(nowUTC.Sub(active.StartTime))
	end := shift.EndMutation{
		ShiftID:     active.ID,
		EndTime:     nowUTC,
		EndPhotoRef: endRef,
		TotalHours:  totalHours,
		IsOvertime:  shift.DeriveOvertime(totalHours, u.ExpectedShiftHours),
	}

	completed, err := s.shiftRepo.CompleteActive(ctx, req.UserID, end)
	if err != nil {
		if endRef != nil {
			s.discardPhoto(ctx, *endRef)
		}
		return shift.ShiftResponse{}, err
	}

	completed.UserName = &u.DisplayName
	completed.UserEmail = &u.Email
	return s.toResponse(ctx, completed), nil
}

// GetCurrentShift implements shift.ShiftService.
func (s *ShiftServiceImpl) GetCurrentShift(ctx context.Context, userID string) (shift.CurrentShiftResponse, error) {
	active, err := s.shiftRepo.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, shift.ErrNoActiveShift) {
			return shift.CurrentShiftResponse{
				HasActiveShift: false,
				CanStart:       true,
				CanEnd:         false,
				Message:        "No active shift. You can start one.",
			}, nil
		}
		return shift.CurrentShiftResponse{}, err
	}

	resp := s.toResponse(ctx, active)
	return shift.CurrentShiftResponse{
		HasActiveShift: true,
		ActiveShift:    &resp,
		CanStart:       false,
		CanEnd:         true,
		Message:        fmt.Sprintf("Shift in progress since %s.", active.StartTime.UTC().Format(time.RFC3339)),
	}, nil
}

// GetShift implements shift.ShiftService.
func (s *ShiftServiceImpl) GetShift(ctx context.Context, id string) (shift.ShiftResponse, error) {
	record, err := s.shiftRepo.GetByID(ctx, id)
	if err != nil {
		return shift.ShiftResponse{}, err
	}
	return s.toResponse(ctx, record), nil
}

// ListShifts implements shift.ShiftService.
func (s *ShiftServiceImpl) ListShifts(ctx context.Context, filter shift.ShiftFilter) (shift.ListShiftsResponse, error) {
	if filter.PageSize == 0 {
		filter.PageSize = s.policy.DefaultPageSize
	}
	if err := filter.Validate(); err != nil {
		return shift.ListShiftsResponse{}, err
	}

	records, total, err := s.shiftRepo.Query(ctx, filter, s.policy.DisputeMarker)
	if err != nil {
		return shift.ListShiftsResponse{}, err
	}

	return s.toListResponse(ctx, records, filter.Page, filter.PageSize, total), nil
}

// ListMyShifts implements shift.ShiftService.
func (s *ShiftServiceImpl) ListMyShifts(ctx context.Context, userID string, filter shift.MyShiftFilter) (shift.ListShiftsResponse, error) {
	if filter.PageSize == 0 {
		filter.PageSize = s.policy.DefaultPageSize
	}
	if err := filter.Validate(); err != nil {
		return shift.ListShiftsResponse{}, err
	}

	records, total, err := s.shiftRepo.QueryByUser(ctx, userID, filter, s.policy.DisputeMarker)
	if err != nil {
		return shift.ListShiftsResponse{}, err
	}

	return s.toListResponse(ctx, records, filter.Page, filter.PageSize, total), nil
}

// DecideApproval implements shift.ShiftService.
func (s *ShiftServiceImpl) DecideApproval(ctx context.Context, req shift.DecideApprovalRequest) (shift.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.ShiftResponse{}, err
	}

	if !user.IsPrivileged(req.ActorRole) {
		return shift.ShiftResponse{}, shift.ErrApprovalForbidden
	}

	remarks := req.Remarks
	if remarks != nil && strings.TrimSpace(*remarks) == "" {
		remarks = nil
	}
	if req.Decision == shift.DecisionReject && remarks == nil {
		return shift.ShiftResponse{}, shift.ErrRemarksRequired
	}

	status := shift.ApprovalApproved
	if req.Decision == shift.DecisionReject {
		status = shift.ApprovalRejected
	}

	decided, err := s.shiftRepo.UpdateApproval(ctx, req.ID, shift.ApprovalMutation{
		Status:     status,
		ApprovedBy: req.ActorID,
		ApprovedAt: s.now().UTC(),
		Remarks:    remarks,
	})
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	return s.toResponse(ctx, decided), nil
}

// GetStats implements shift.ShiftService.
func (s *ShiftServiceImpl) GetStats(ctx context.Context, userID string, w shift.StatsWindow) (shift.StatsResponse, error) {
	if err := w.Validate(); err != nil {
		return shift.StatsResponse{}, err
	}

	row, err := s.shiftRepo.Summarize(ctx, userID, w)
	if err != nil {
		return shift.StatsResponse{}, err
	}

	average := 0.0
	if row.CompletedShifts > 0 {
		average = math.Floor(row.TotalHours/float64(row.CompletedShifts)*10+0.5) / 10
	}

	return shift.StatsResponse{
		TotalShifts:     row.TotalShifts,
		CompletedShifts: row.CompletedShifts,
		ActiveShifts:    row.ActiveShifts,
		TotalHours:      row.TotalHours,
		AverageHours:    average,
		DaysPresent:     row.DaysPresent,
	}, nil
}

// photoURL resolves a blob ref to a URL, tolerating purged blobs.
func (s *ShiftServiceImpl) photoURL(ctx context.Context, ref *string) *string {
	if ref == nil {
		return nil
	}
	url, err := s.blobs.GetURL(ctx, *ref, time.Hour)
	if err != nil {
		slog.Warn("failed to resolve photo URL", "ref", *ref, "error", err)
		return nil
	}
	return &url
}

func (s *ShiftServiceImpl) toResponse(ctx context.Context, record shift.Shift) shift.ShiftResponse {
	resp := shift.ShiftResponse{
		ID:            record.ID,
		UserID:        record.UserID,
		UserName:      record.UserName,
		UserEmail:     record.UserEmail,
		Date:          record.Date.Format("2006-01-02"),
		StartTime:     record.StartTime.UTC().Format(time.RFC3339),
		EndTime:       timePtrToString(record.EndTime),
		StartPhotoURL: s.photoURL(ctx, record.StartPhotoRef),
		EndPhotoURL:   s.photoURL(ctx, record.EndPhotoRef),
		Status:        string(record.Status),
		Remarks:       record.Remarks,
		ApprovedBy:    record.ApprovedBy,
		ApprovedAt:    timePtrToString(record.ApprovedAt),
		LateMinutes:   record.LateMinutes,
		TotalHours:    record.TotalHours,
		CreatedAt:     record.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     record.UpdatedAt.UTC().Format(time.RFC3339),
	}

	// Approval state and overtime only exist once the shift completed
	if record.Status == shift.StatusCompleted {
		approval := string(record.ApprovalStatus)
		resp.ApprovalStatus = &approval
		overtime := record.IsOvertime
		resp.IsOvertime = &overtime
		flags := record.Triage(s.policy.DisputeMarker)
		resp.Flags = &flags
	}

	return resp
}

func (s *ShiftServiceImpl) toListResponse(ctx context.Context, records []shift.Shift, page, pageSize int, total int64) shift.ListShiftsResponse {
	responses := make([]shift.ShiftResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, s.toResponse(ctx, record))
	}
	return shift.ListShiftsResponse{
		Shifts:     responses,
		Pagination: shift.NewPagination(page, pageSize, total),
	}
}
