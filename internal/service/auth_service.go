package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rbac/internal/model"
	"rbac/internal/observability/metrics"
	"rbac/internal/observability/tracing"
	"rbac/internal/repository"
	"rbac/internal/security/password"
	"rbac/internal/security/token"
	"rbac/pkg/apperr"
)

// tokenRecordTTL is the stored expiry of a token row. It is fixed and independent of the JWT
// lifetimes.
const tokenRecordTTL = 24 * time.Hour

// TokenIssuer is the part of the token manager the auth flow depends on.
type TokenIssuer interface {
	IssuePair(userID string, role token.RoleClaim) (token.Pair, error)
	ParseRefresh(raw string) (*token.Claims, error)
}

type AuthService interface {
	Register(ctx context.Context, req CreateUserRequest) (*CreateUserResult, error)
	Login(ctx context.Context, req LoginRequest) (*token.Pair, error)
	Refresh(ctx context.Context, refreshToken string) (*token.Pair, error)
	Logout(ctx context.Context, refreshToken string) error
	CheckAccess(accessModules []string, module string) (string, any)
}

type authService struct {
	accounts UserService
	users    repository.UserRepository
	tokens   repository.TokenRepository
	hasher   password.Hasher
	issuer   TokenIssuer
	events   EventPublisher
	now      func() time.Time
}

func NewAuthService(accounts UserService, users repository.UserRepository, tokens repository.TokenRepository, hasher password.Hasher, issuer TokenIssuer, events EventPublisher) AuthService {
	if events == nil {
		events = nopPublisher{}
	}
	return &authService{
		accounts: accounts,
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		issuer:   issuer,
		events:   events,
		now:      time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req CreateUserRequest) (*CreateUserResult, error) {
	return s.accounts.CreateOrReactivate(ctx, "", req)
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (pair *token.Pair, err error) {
	ctx, span := tracing.Start(ctx, "AuthService.Login")
	defer span.End()
	defer func() { metrics.ObserveAuth("login", outcome(err)) }()

	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Missing(MsgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}
	if err := checkSignInAllowed(user); err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(user.PasswordHash, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	pair, err = s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, Event{Action: model.ActionLogin, ActorID: user.ID, EntityID: user.ID})
	return pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (pair *token.Pair, err error) {
	ctx, span := tracing.Start(ctx, "AuthService.Refresh")
	defer span.End()
	defer func() { metrics.ObserveAuth("refresh", outcome(err)) }()

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, apperr.BadRequest(MsgRefreshRequired)
	}
	claims, err := s.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized(MsgRefreshInvalid)
	}

	if _, err := s.tokens.FindByUserAndRefresh(ctx, claims.UserID, refreshToken); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized(MsgRefreshRevoked)
		}
		return nil, fmt.Errorf("failed to fetch stored token: %w", err)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Missing(MsgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if err := checkSignInAllowed(user); err != nil {
		return nil, err
	}

	return s.issueTokenPair(ctx, user)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) (err error) {
	defer func() { metrics.ObserveAuth("logout", outcome(err)) }()

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return apperr.BadRequest(MsgRefreshRequired)
	}
	// Logging out an unknown or already revoked token still succeeds.
	n, err := s.tokens.DeleteByRefresh(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	if n > 0 {
		publish(ctx, s.events, Event{Action: model.ActionLogout, EntityID: "token"})
	}
	return nil
}

// CheckAccess reports membership of module when given, otherwise the full module list.
func (s *authService) CheckAccess(accessModules []string, module string) (string, any) {
	if strings.TrimSpace(module) != "" {
		return MsgAccessChecked, ModuleAccessResponse{
			Module:    module,
			HasAccess: model.GrantsModule(accessModules, module),
		}
	}
	return MsgAccessModules, AccessModulesResponse{AccessModules: nonNil(accessModules)}
}

// issueTokenPair signs a fresh pair and replaces the user's stored row, which revokes the
// previous refresh token.
func (s *authService) issueTokenPair(ctx context.Context, user *model.User) (*token.Pair, error) {
	role := token.RoleClaim{}
	if user.Role != nil {
		role = token.RoleClaim{
			ID:            user.Role.ID,
			RoleName:      user.Role.RoleName,
			AccessModules: nonNil(user.Role.AccessModules),
		}
	}

	pair, err := s.issuer.IssuePair(user.ID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	record := &model.Token{
		UserID:       user.ID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    s.now().Add(tokenRecordTTL),
	}
	if err := s.tokens.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	return &pair, nil
}

func checkSignInAllowed(user *model.User) error {
	if user.State() != model.AccountActive {
		return apperr.Denied(MsgUserInactive)
	}
	if user.Role == nil || !user.Role.IsActive {
		return apperr.Denied(MsgRoleInactive)
	}
	return nil
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return apperr.KindOf(err).String()
}
