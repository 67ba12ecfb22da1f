package response

import (
	"errors"
	"net/http"

	"github.com/dineops/attendance-backend-go/internal/domain/shift"
	"github.com/dineops/attendance-backend-go/internal/domain/user"
	"github.com/dineops/attendance-backend-go/internal/pkg/photo"
	"github.com/dineops/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses. Every domain error
// keeps its own message; only unknown errors collapse to a 500.
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Shift lifecycle errors
	case errors.Is(err, shift.ErrShiftAlreadyActive):
		Conflict(w, err.Error())
	case errors.Is(err, shift.ErrNoActiveShift):
		Conflict(w, err.Error())
	case errors.Is(err, shift.ErrEndBeforeStart):
		Conflict(w, err.Error())
	case errors.Is(err, shift.ErrPhotoRequired):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, shift.ErrInvalidPhoto),
		errors.Is(err, photo.ErrEmpty),
		errors.Is(err, photo.ErrTooLarge),
		errors.Is(err, photo.ErrUnsupportedType):
		UnprocessableEntity(w, err.Error())

	// Approval errors
	case errors.Is(err, shift.ErrNotPending):
		Conflict(w, err.Error())
	case errors.Is(err, shift.ErrApprovalForbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, shift.ErrRemarksRequired):
		UnprocessableEntity(w, err.Error())

	// Lookup errors
	case errors.Is(err, shift.ErrShiftNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, err.Error())

	// Access errors
	case errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, err.Error())

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
