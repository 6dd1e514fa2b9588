package middleware

import (
	"context"

	"rbac/internal/model"
)

// Identity is what authentication establishes about the caller.
type Identity struct {
	UserID        string
	RoleName      string
	AccessModules []string
}

// State flows through the checks of one request. Each check receives the state produced by the
// previous one and returns a possibly enriched copy.
type State struct {
	Authorization string      // raw Authorization header
	TargetID      string      // ":id" path parameter, "" when the route has none
	Identity      *Identity   // set by Authenticate
	TargetRole    *model.Role // set by ProtectSystemRole
}

// Check is one stage of the authorization pipeline.
type Check func(ctx context.Context, st State) (State, error)

// Run executes checks in order and stops at the first failure.
func Run(ctx context.Context, st State, checks ...Check) (State, error) {
	for _, check := range checks {
		next, err := check(ctx, st)
		if err != nil {
			return st, err
		}
		st = next
	}
	return st, nil
}
