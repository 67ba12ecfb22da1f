package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dineops/attendance-backend-go/internal/domain/shift"
	"github.com/dineops/attendance-backend-go/internal/domain/user"
	"github.com/dineops/attendance-backend-go/internal/handler/http/response"
	"github.com/dineops/attendance-backend-go/internal/pkg/photo"
	"github.com/dineops/attendance-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type ShiftHandler interface {
	Start(w http.ResponseWriter, r *http.Request)
	End(w http.ResponseWriter, r *http.Request)
	Current(w http.ResponseWriter, r *http.Request)
	ListMy(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
}

type shiftHandlerImpl struct {
	shiftService shift.ShiftService
}

func NewShiftHandler(shiftService shift.ShiftService) ShiftHandler {
	return &shiftHandlerImpl{
		shiftService: shiftService,
	}
}

// principal extracts the caller's identity from the verified token.
func principal(ctx context.Context) (string, user.Role, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "", fmt.Errorf("user_id claim is missing or invalid")
	}

	roleStr, ok := claims["role"].(string)
	if !ok || roleStr == "" {
		return "", "", fmt.Errorf("role claim is missing or invalid")
	}
	role, err := user.ParseRole(roleStr)
	if err != nil {
		return "", "", fmt.Errorf("role claim is invalid: %w", err)
	}

	return userID, role, nil
}

// formPhoto pulls and validates an optional multipart photo. A missing
// file yields a nil payload, not an error.
func formPhoto(r *http.Request) (*photo.Payload, error) {
	file, _, err := r.FormFile("photo")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid file upload: %w", err)
	}
	defer file.Close()

	payload, err := photo.FromReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shift.ErrInvalidPhoto, err)
	}
	return &payload, nil
}

// Start implements ShiftHandler.
func (h *shiftHandlerImpl) Start(w http.ResponseWriter, r *http.Request) {
	userID, _, err := principal(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	// Parse multipart form; the photo cap is enforced downstream
	if err := r.ParseMultipartForm(photo.MaxSize + 1<<20); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	p, err := formPhoto(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req := shift.StartShiftRequest{UserID: userID, Photo: p}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.shiftService.StartShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Shift started", result)
}

// End implements ShiftHandler.
func (h *shiftHandlerImpl) End(w http.ResponseWriter, r *http.Request) {
	userID, _, err := principal(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	if err := r.ParseMultipartForm(photo.MaxSize + 1<<20); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	// Photo is optional on end
	p, err := formPhoto(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req := shift.EndShiftRequest{UserID: userID, Photo: p}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.shiftService.EndShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift ended", result)
}

// Current implements ShiftHandler.
func (h *shiftHandlerImpl) Current(w http.ResponseWriter, r *http.Request) {
	userID, _, err := principal(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.shiftService.GetCurrentShift(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

func queryStringPtr(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// ListMy implements ShiftHandler.
func (h *shiftHandlerImpl) ListMy(w http.ResponseWriter, r *http.Request) {
	userID, _, err := principal(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	filter := shift.MyShiftFilter{
		StartDate:      queryStringPtr(r, "start_date"),
		EndDate:        queryStringPtr(r, "end_date"),
		Status:         queryStringPtr(r, "status"),
		ApprovalStatus: queryStringPtr(r, "approval_status"),
		LateOnly:       queryBool(r, "late_only"),
		OvertimeOnly:   queryBool(r, "overtime_only"),
		DisputedOnly:   queryBool(r, "disputed_only"),
		Page:           queryInt(r, "page", 1),
		PageSize:       queryInt(r, "page_size", 0),
	}

	results, err := h.shiftService.ListMyShifts(r.Context(), userID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// List implements ShiftHandler.
func (h *shiftHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := shift.ShiftFilter{
		UserID:         queryStringPtr(r, "user_id"),
		StartDate:      queryStringPtr(r, "start_date"),
		EndDate:        queryStringPtr(r, "end_date"),
		Status:         queryStringPtr(r, "status"),
		ApprovalStatus: queryStringPtr(r, "approval_status"),
		LateOnly:       queryBool(r, "late_only"),
		OvertimeOnly:   queryBool(r, "overtime_only"),
		DisputedOnly:   queryBool(r, "disputed_only"),
		Search:         queryStringPtr(r, "search"),
		Page:           queryInt(r, "page", 1),
		PageSize:       queryInt(r, "page_size", 0),
	}

	results, err := h.shiftService.ListShifts(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Get implements ShiftHandler.
func (h *shiftHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.shiftService.GetShift(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *shiftHandlerImpl) decide(w http.ResponseWriter, r *http.Request, decision shift.Decision) {
	actorID, actorRole, err := principal(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	req := shift.DecideApprovalRequest{
		ID:        chi.URLParam(r, "id"),
		ActorID:   actorID,
		ActorRole: actorRole,
		Decision:  decision,
	}

	// Body is optional on approve; remarks ride in it when present
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	result, err := h.shiftService.DecideApproval(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := "Shift approved"
	if decision == shift.DecisionReject {
		message = "Shift rejected"
	}
	response.SuccessWithMessage(w, message, result)
}

// Approve implements ShiftHandler.
func (h *shiftHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, shift.DecisionApprove)
}

// Reject implements ShiftHandler.
func (h *shiftHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, shift.DecisionReject)
}

// Stats implements ShiftHandler.
func (h *shiftHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	callerID, callerRole, err := principal(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	// Managers may read any user's stats; staff only their own
	targetID := callerID
	if v := r.URL.Query().Get("user_id"); v != "" && v != callerID {
		if !user.IsPrivileged(callerRole) {
			response.HandleError(w, user.ErrManagerAccessRequired)
			return
		}
		targetID = v
	}

	window := shift.StatsWindow{}
	var verrs validator.ValidationErrors
	if v := r.URL.Query().Get("month"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			window.Month = &n
		} else {
			verrs = append(verrs, validator.ValidationError{Field: "month", Message: "month must be a number"})
		}
	}
	if v := r.URL.Query().Get("year"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			window.Year = &n
		} else {
			verrs = append(verrs, validator.ValidationError{Field: "year", Message: "year must be a number"})
		}
	}
	if len(verrs) > 0 {
		response.HandleError(w, verrs)
		return
	}

	result, err := h.shiftService.GetStats(r.Context(), targetID, window)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
