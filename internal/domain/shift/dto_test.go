package shift

import (
	"testing"

	"github.com/dineops/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShiftFilter_Validate_Defaults(t *testing.T) {
	f := ShiftFilter{}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PageSize)
}

func TestShiftFilter_Validate_Errors(t *testing.T) {
	bad := "sleeping"
	f := ShiftFilter{Status: &bad, PageSize: 500}

	err := f.Validate()
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	m := verrs.ToMap()
	assert.Contains(t, m, "status")
	assert.Contains(t, m, "page_size")
}

func TestShiftFilter_Validate_DateFormats(t *testing.T) {
	good := "2025-03-01"
	bad := "01/03/2025"

	f := ShiftFilter{StartDate: &good, EndDate: &bad}
	err := f.Validate()
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "end_date")
	assert.NotContains(t, verrs.ToMap(), "start_date")
}

func TestShiftFilter_Validate_BlankSearchDropped(t *testing.T) {
	blank := "   "
	f := ShiftFilter{Search: &blank}
	require.NoError(t, f.Validate())
	assert.Nil(t, f.Search)
}

func TestMyShiftFilter_Validate(t *testing.T) {
	f := MyShiftFilter{}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PageSize)

	approval := "maybe"
	f = MyShiftFilter{ApprovalStatus: &approval}
	assert.Error(t, f.Validate())
}

func TestStartShiftRequest_Validate(t *testing.T) {
	req := StartShiftRequest{}
	assert.Error(t, req.Validate())

	req.UserID = "u-1"
	assert.NoError(t, req.Validate())
}

func TestDecideApprovalRequest_Validate(t *testing.T) {
	req := DecideApprovalRequest{ID: "rec-1", Decision: DecisionApprove}
	assert.NoError(t, req.Validate())

	req.Decision = "escalate"
	assert.Error(t, req.Validate())

	req = DecideApprovalRequest{Decision: DecisionReject}
	assert.Error(t, req.Validate(), "record id is required")
}

func TestStatsWindow_Validate(t *testing.T) {
	month := 13
	w := StatsWindow{Month: &month}
	assert.Error(t, w.Validate())

	month = 6
	year := 2025
	w = StatsWindow{Month: &month, Year: &year}
	assert.NoError(t, w.Validate())

	assert.NoError(t, (&StatsWindow{}).Validate(), "absent fields mean all")
}
