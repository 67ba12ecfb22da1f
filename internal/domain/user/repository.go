package user

import (
	"context"
)

// UserRepository is the read-only user directory collaborator. The
// shift service resolves schedule policy and display fields from it.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
}
