package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rbac/internal/model"
	"rbac/internal/observability/metrics"
	"rbac/internal/repository"
	"rbac/internal/security/token"
	"rbac/pkg/apperr"
)

const (
	msgNoToken         = "Access denied. No token provided."
	msgInvalidToken    = "Invalid or expired token."
	msgTokenUserGone   = "Invalid token. User not found."
	msgUserInactive    = "User account is inactive."
	msgRoleInactive    = "Assigned role is inactive."
	msgOwnProfile      = "You can only access your own profile."
	msgInvalidID       = "Invalid ID format."
	msgRoleNotFound    = "Role not found"
	msgOwnRoleEditable = "You cannot delete the role you are assigned to."
)

// UserFinder loads a user together with its role.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type RoleFinder interface {
	FindByID(ctx context.Context, id string) (*model.Role, error)
}

// AccessVerifier validates access tokens.
type AccessVerifier interface {
	ParseAccess(raw string) (*token.Claims, error)
}

// AuthorizeOptions tunes Authorize. IsOwn also admits callers acting on their own record.
type AuthorizeOptions struct {
	IsOwn bool
}

func deny(stage string, err *apperr.Error) error {
	metrics.ObserveDenial(stage, err.Kind.String())
	return err
}

// Authenticate verifies the bearer access token and loads the caller. The role and module list
// come from the store, not from the token, so changes apply without re-login.
func Authenticate(users UserFinder, verifier AccessVerifier) Check {
	return func(ctx context.Context, st State) (State, error) {
		if st.Identity != nil {
			return st, nil
		}

		raw, err := token.ExtractBearer(st.Authorization)
		if err != nil {
			return st, deny("authenticate", apperr.Unauthorized(msgNoToken))
		}
		claims, err := verifier.ParseAccess(raw)
		if err != nil {
			return st, deny("authenticate", apperr.Unauthorized(msgInvalidToken))
		}

		user, err := users.FindByID(ctx, claims.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return st, deny("authenticate", apperr.Unauthorized(msgTokenUserGone))
		}
		if err != nil {
			return st, fmt.Errorf("authenticate: load user: %w", err)
		}
		if user.State() != model.AccountActive {
			return st, deny("authenticate", apperr.Denied(msgUserInactive))
		}
		if user.Role == nil || !user.Role.IsActive {
			return st, deny("authenticate", apperr.Denied(msgRoleInactive))
		}

		st.Identity = &Identity{
			UserID:        user.ID,
			RoleName:      user.Role.RoleName,
			AccessModules: append([]string(nil), user.Role.AccessModules...),
		}
		return st, nil
	}
}

func requireIdentity(stage string, st State) error {
	if st.Identity == nil {
		return deny(stage, apperr.Unauthorized(msgNoToken))
	}
	return nil
}

// CheckAccess requires module among the caller's access modules, ignoring case and padding.
func CheckAccess(module string) Check {
	want := strings.ToLower(strings.TrimSpace(module))
	return func(_ context.Context, st State) (State, error) {
		if err := requireIdentity("check_access", st); err != nil {
			return st, err
		}
		if !model.GrantsModule(st.Identity.AccessModules, want) {
			return st, deny("check_access", apperr.Newf(apperr.Forbidden, "Access denied. Missing permission for module '%s'.", want))
		}
		return st, nil
	}
}

// Authorize admits callers whose role name is in allowed (case-insensitive). With IsOwn it also
// admits callers whose id equals the target id.
func Authorize(allowed []string, opts AuthorizeOptions) Check {
	normalized := make([]string, 0, len(allowed))
	for _, r := range allowed {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(r)))
	}
	return func(_ context.Context, st State) (State, error) {
		if err := requireIdentity("authorize", st); err != nil {
			return st, err
		}
		role := strings.ToLower(strings.TrimSpace(st.Identity.RoleName))
		for _, r := range normalized {
			if r == role {
				return st, nil
			}
		}
		if opts.IsOwn && st.TargetID != "" && st.Identity.UserID == st.TargetID {
			return st, nil
		}
		if opts.IsOwn {
			return st, deny("authorize", apperr.Denied(msgOwnProfile))
		}
		return st, deny("authorize", apperr.Newf(apperr.Forbidden, "Access denied. Requires roles: %s", strings.Join(allowed, ", ")))
	}
}

// ProtectSystemRole loads the target role, refuses system roles and the caller's own role, and
// attaches the loaded role to the state.
func ProtectSystemRole(roles RoleFinder) Check {
	return func(ctx context.Context, st State) (State, error) {
		if err := requireIdentity("protect_system_role", st); err != nil {
			return st, err
		}
		if !model.IsValidID(st.TargetID) {
			return st, deny("protect_system_role", apperr.BadRequest(msgInvalidID))
		}

		role, err := roles.FindByID(ctx, st.TargetID)
		if errors.Is(err, repository.ErrNotFound) {
			return st, deny("protect_system_role", apperr.Missing(msgRoleNotFound))
		}
		if err != nil {
			return st, fmt.Errorf("protect system role: load role: %w", err)
		}
		if role.IsSystem() {
			return st, deny("protect_system_role", apperr.Newf(apperr.Forbidden, "System role '%s' cannot be modified or deleted.", role.RoleName))
		}
		if st.Identity.RoleName == role.RoleName {
			return st, deny("protect_system_role", apperr.Denied(msgOwnRoleEditable))
		}

		st.TargetRole = role
		return st, nil
	}
}

// ValidTargetID rejects malformed ":id" parameters before any store access.
func ValidTargetID() Check {
	return func(_ context.Context, st State) (State, error) {
		if !model.IsValidID(st.TargetID) {
			return st, deny("validate_id", apperr.BadRequest(msgInvalidID))
		}
		return st, nil
	}
}
