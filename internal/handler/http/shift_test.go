package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dineops/attendance-backend-go/internal/domain/shift"
	"github.com/dineops/attendance-backend-go/internal/domain/user"
	"github.com/dineops/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubShiftService lets each test plug in just the method it needs.
type stubShiftService struct {
	startFn   func(ctx context.Context, req shift.StartShiftRequest) (shift.ShiftResponse, error)
	endFn     func(ctx context.Context, req shift.EndShiftRequest) (shift.ShiftResponse, error)
	currentFn func(ctx context.Context, userID string) (shift.CurrentShiftResponse, error)
	getFn     func(ctx context.Context, id string) (shift.ShiftResponse, error)
	listFn    func(ctx context.Context, filter shift.ShiftFilter) (shift.ListShiftsResponse, error)
	listMyFn  func(ctx context.Context, userID string, filter shift.MyShiftFilter) (shift.ListShiftsResponse, error)
	decideFn  func(ctx context.Context, req shift.DecideApprovalRequest) (shift.ShiftResponse, error)
	statsFn   func(ctx context.Context, userID string, w shift.StatsWindow) (shift.StatsResponse, error)
}

func (s *stubShiftService) StartShift(ctx context.Context, req shift.StartShiftRequest) (shift.ShiftResponse, error) {
	if s.startFn == nil {
		return shift.ShiftResponse{}, nil
	}
	return s.startFn(ctx, req)
}

func (s *stubShiftService) EndShift(ctx context.Context, req shift.EndShiftRequest) (shift.ShiftResponse, error) {
	if s.endFn == nil {
		return shift.ShiftResponse{}, nil
	}
	return s.endFn(ctx, req)
}

func (s *stubShiftService) GetCurrentShift(ctx context.Context, userID string) (shift.CurrentShiftResponse, error) {
	if s.currentFn == nil {
		return shift.CurrentShiftResponse{}, nil
	}
	return s.currentFn(ctx, userID)
}

func (s *stubShiftService) GetShift(ctx context.Context, id string) (shift.ShiftResponse, error) {
	if s.getFn == nil {
		return shift.ShiftResponse{}, nil
	}
	return s.getFn(ctx, id)
}

func (s *stubShiftService) ListShifts(ctx context.Context, filter shift.ShiftFilter) (shift.ListShiftsResponse, error) {
	if s.listFn == nil {
		return shift.ListShiftsResponse{}, nil
	}
	return s.listFn(ctx, filter)
}

func (s *stubShiftService) ListMyShifts(ctx context.Context, userID string, filter shift.MyShiftFilter) (shift.ListShiftsResponse, error) {
	if s.listMyFn == nil {
		return shift.ListShiftsResponse{}, nil
	}
	return s.listMyFn(ctx, userID, filter)
}

func (s *stubShiftService) DecideApproval(ctx context.Context, req shift.DecideApprovalRequest) (shift.ShiftResponse, error) {
	if s.decideFn == nil {
		return shift.ShiftResponse{}, nil
	}
	return s.decideFn(ctx, req)
}

func (s *stubShiftService) GetStats(ctx context.Context, userID string, w shift.StatsWindow) (shift.StatsResponse, error) {
	if s.statsFn == nil {
		return shift.StatsResponse{}, nil
	}
	return s.statsFn(ctx, userID, w)
}

var _ shift.ShiftService = (*stubShiftService)(nil)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

type testEnv struct {
	router *chi.Mux
	jwt    jwt.Service
}

func newTestEnv(t *testing.T, svc shift.ShiftService) testEnv {
	t.Helper()
	jwtService := jwt.NewJWTService("test-secret")
	router := NewRouter(jwtService, NewShiftHandler(svc), t.TempDir())
	return testEnv{router: router, jwt: jwtService}
}

func (e testEnv) authorize(t *testing.T, req *http.Request, userID string, role user.Role) {
	t.Helper()
	token, err := e.jwt.GenerateAccessToken(userID, role, time.Minute)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
}

func photoForm(t *testing.T, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("photo", "selfie.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	envelope := decodeEnvelope(t, rec)
	errObj, ok := envelope["error"].(map[string]interface{})
	require.True(t, ok, "expected error envelope, got: %s", rec.Body.String())
	code, _ := errObj["code"].(string)
	return code
}

func TestStartShift_Created(t *testing.T) {
	var captured shift.StartShiftRequest
	svc := &stubShiftService{
		startFn: func(ctx context.Context, req shift.StartShiftRequest) (shift.ShiftResponse, error) {
			captured = req
			return shift.ShiftResponse{ID: "rec-1", UserID: req.UserID, Status: "active"}, nil
		},
	}
	env := newTestEnv(t, svc)

	body, contentType := photoForm(t, pngHeader)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shifts/start", body)
	req.Header.Set("Content-Type", contentType)
	env.authorize(t, req, "u-1", user.RoleStaff)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u-1", captured.UserID, "user comes from the token, not the form")
	require.NotNil(t, captured.Photo)
	assert.Equal(t, "image/png", captured.Photo.MIME)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope["success"])
}

func TestStartShift_MissingToken(t *testing.T) {
	env := newTestEnv(t, &stubShiftService{})

	body, contentType := photoForm(t, pngHeader)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shifts/start", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStartShift_PhotoRequired(t *testing.T) {
	svc := &stubShiftService{
		startFn: func(ctx context.Context, req shift.StartShiftRequest) (shift.ShiftResponse, error) {
			return shift.ShiftResponse{}, shift.ErrPhotoRequired
		},
	}
	env := newTestEnv(t, svc)

	// Multipart form without a photo part
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("note", "forgot the selfie"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shifts/start", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	env.authorize(t, req, "u-1", user.RoleStaff)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", errorCode(t, rec))
}

func TestStartShift_RejectsNonImageUpload(t *testing.T) {
	serviceCalled := false
	svc := &stubShiftService{
		startFn: func(ctx context.Context, req shift.StartShiftRequest) (shift.ShiftResponse, error) {
			serviceCalled = true
			return shift.ShiftResponse{}, nil
		},
	}
	env := newTestEnv(t, svc)

	body, contentType := photoForm(t, []byte("just some text pretending to be selfie.png"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shifts/start", body)
	req.Header.Set("Content-Type", contentType)
	env.authorize(t, req, "u-1", user.RoleStaff)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, serviceCalled, "invalid uploads never reach the service")
}

func TestEndShift_ConflictWithoutActive(t *testing.T) {
	svc := &stubShiftService{
		endFn: func(ctx context.Context, req shift.EndShiftRequest) (shift.ShiftResponse, error) {
			return shift.ShiftResponse{}, shift.ErrNoActiveShift
		},
	}
	env := newTestEnv(t, svc)

	body, contentType := photoForm(t, pngHeader)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shifts/end", body)
	req.Header.Set("Content-Type", contentType)
	env.authorize(t, req, "u-1", user.RoleStaff)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorCode(t, rec))
}

func TestCurrentShift(t *testing.T) {
	svc := &stubShiftService{
		currentFn: func(ctx context.Context, userID string) (shift.CurrentShiftResponse, error) {
			return shift.CurrentShiftResponse{HasActiveShift: false, CanStart: true}, nil
		},
	}
	env := newTestEnv(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shifts/current", nil)
	env.authorize(t, req, "u-1", user.RoleStaff)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	data, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, data["has_active_shift"])
	assert.Equal(t, true, data["can_start"])
}

func TestListShifts_StaffForbidden(t *testing.T) {
	env := newTestEnv(t, &stubShiftService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shifts", nil)
	env.authorize(t, req, "u-1", user.RoleStaff)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListShifts_ManagerFilters(t *testing.T) {
	var captured shift.ShiftFilter
	svc := &stubShiftService{
		listFn: func(ctx context.Context, filter shift.ShiftFilter) (shift.ListShiftsResponse, error) {
			captured = filter
			return shift.ListShiftsResponse{Shifts: []shift.ShiftResponse{}}, nil
		},
	}
	env := newTestEnv(t, svc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/shifts?status=completed&late_only=true&search=dina&page=2&page_size=10", nil)
	env.authorize(t, req, "u-mgr", user.RoleManager)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured.Status)
	assert.Equal(t, "completed", *captured.Status)
	assert.True(t, captured.LateOnly)
	require.NotNil(t, captured.Search)
	assert.Equal(t, "dina", *captured.Search)
	assert.Equal(t, 2, captured.Page)
	assert.Equal(t, 10, captured.PageSize)
}

func TestApprove(t *testing.T) {
	var captured shift.DecideApprovalRequest
	svc := &stubShiftService{
		decideFn: func(ctx context.Context, req shift.DecideApprovalRequest) (shift.ShiftResponse, error) {
			captured = req
			approved := "approved"
			return shift.ShiftResponse{ID: req.ID, ApprovalStatus: &approved}, nil
		},
	}
	env := newTestEnv(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shifts/rec-1/approve", nil)
	env.authorize(t, req, "u-mgr", user.RoleManager)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rec-1", captured.ID)
	assert.Equal(t, "u-mgr", captured.ActorID)
	assert.Equal(t, user.RoleManager, captured.ActorRole)
	assert.Equal(t, shift.DecisionApprove, captured.Decision)
	assert.Nil(t, captured.Remarks)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "Shift approved", envelope["message"])
}

func TestReject_WithRemarks(t *testing.T) {
	var captured shift.DecideApprovalRequest
	svc := &stubShiftService{
		decideFn: func(ctx context.Context, req shift.DecideApprovalRequest) (shift.ShiftResponse, error) {
			captured = req
			rejected := "rejected"
			return shift.ShiftResponse{ID: req.ID, ApprovalStatus: &rejected}, nil
		},
	}
	env := newTestEnv(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shifts/rec-1/reject",
		strings.NewReader(`{"remarks":"selfie mismatch"}`))
	req.Header.Set("Content-Type", "application/json")
	env.authorize(t, req, "u-mgr", user.RoleMerchant)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, shift.DecisionReject, captured.Decision)
	require.NotNil(t, captured.Remarks)
	assert.Equal(t, "selfie mismatch", *captured.Remarks)
}

func TestReject_RemarksRequired(t *testing.T) {
	svc := &stubShiftService{
		decideFn: func(ctx context.Context, req shift.DecideApprovalRequest) (shift.ShiftResponse, error) {
			return shift.ShiftResponse{}, shift.ErrRemarksRequired
		},
	}
	env := newTestEnv(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shifts/rec-1/reject", nil)
	env.authorize(t, req, "u-mgr", user.RoleManager)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestApprove_StaffForbidden(t *testing.T) {
	serviceCalled := false
	svc := &stubShiftService{
		decideFn: func(ctx context.Context, req shift.DecideApprovalRequest) (shift.ShiftResponse, error) {
			serviceCalled = true
			return shift.ShiftResponse{}, nil
		},
	}
	env := newTestEnv(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shifts/rec-1/approve", nil)
	env.authorize(t, req, "u-1", user.RoleStaff)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, serviceCalled, "role middleware blocks before the handler")
}

func TestGetShift_NotFound(t *testing.T) {
	svc := &stubShiftService{
		getFn: func(ctx context.Context, id string) (shift.ShiftResponse, error) {
			return shift.ShiftResponse{}, shift.ErrShiftNotFound
		},
	}
	env := newTestEnv(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shifts/rec-404", nil)
	env.authorize(t, req, "u-mgr", user.RoleManager)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}

func TestStats_StaffScopedToSelf(t *testing.T) {
	env := newTestEnv(t, &stubShiftService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shifts/stats?user_id=u-other", nil)
	env.authorize(t, req, "u-1", user.RoleStaff)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStats_ManagerReadsAnyUser(t *testing.T) {
	var capturedID string
	var capturedWindow shift.StatsWindow
	svc := &stubShiftService{
		statsFn: func(ctx context.Context, userID string, w shift.StatsWindow) (shift.StatsResponse, error) {
			capturedID = userID
			capturedWindow = w
			return shift.StatsResponse{TotalShifts: 5}, nil
		},
	}
	env := newTestEnv(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shifts/stats?user_id=u-other&month=3&year=2025", nil)
	env.authorize(t, req, "u-mgr", user.RoleManager)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-other", capturedID)
	require.NotNil(t, capturedWindow.Month)
	assert.Equal(t, 3, *capturedWindow.Month)
	require.NotNil(t, capturedWindow.Year)
	assert.Equal(t, 2025, *capturedWindow.Year)
}

func TestStats_RejectsMalformedWindow(t *testing.T) {
	serviceCalled := false
	svc := &stubShiftService{
		statsFn: func(ctx context.Context, userID string, w shift.StatsWindow) (shift.StatsResponse, error) {
			serviceCalled = true
			return shift.StatsResponse{}, nil
		},
	}
	env := newTestEnv(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shifts/stats?month=march&year=last", nil)
	env.authorize(t, req, "u-1", user.RoleStaff)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
	assert.False(t, serviceCalled)
}

func TestListMyShifts(t *testing.T) {
	var capturedUser string
	svc := &stubShiftService{
		listMyFn: func(ctx context.Context, userID string, filter shift.MyShiftFilter) (shift.ListShiftsResponse, error) {
			capturedUser = userID
			return shift.ListShiftsResponse{
				Shifts:     []shift.ShiftResponse{},
				Pagination: shift.NewPagination(filter.Page, 20, 0),
			}, nil
		},
	}
	env := newTestEnv(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shifts/my", nil)
	env.authorize(t, req, "u-1", user.RoleStaff)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", capturedUser, "scope comes from the token")
}
