package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"rbac/internal/model"
	"rbac/internal/repository"
	"rbac/internal/security/password"
	"rbac/pkg/apperr"
)

// DefaultModules are the access modules granted to the system roles on seeding.
var DefaultModules = []string{"users", "roles", "audit"}

// SeedService bootstraps the system roles and the first administrator.
type SeedService interface {
	SeedSystemRoles(ctx context.Context, modules []string) ([]RoleResponse, error)
	BootstrapAdmin(ctx context.Context, firstName, lastName, email, plain string) (*CreateUserResult, error)
}

type seedService struct {
	roles    repository.RoleRepository
	accounts UserService
	logger   *slog.Logger
}

func NewSeedService(roles repository.RoleRepository, accounts UserService, logger *slog.Logger) SeedService {
	return &seedService{roles: roles, accounts: accounts, logger: logger}
}

// SeedSystemRoles creates the reserved roles when missing and makes sure existing ones are active
// and grant every module in modules. Running it twice changes nothing.
func (s *seedService) SeedSystemRoles(ctx context.Context, modules []string) ([]RoleResponse, error) {
	if len(modules) == 0 {
		modules = DefaultModules
	}

	out := make([]RoleResponse, 0, len(model.SystemRoleNames))
	for _, name := range []string{model.RoleSuperAdmin, model.RoleAdmin} {
		role, err := s.roles.FindByNameFold(ctx, name, "")
		switch {
		case errors.Is(err, repository.ErrNotFound):
			role = &model.Role{RoleName: name, AccessModules: model.DedupModules(modules), IsActive: true}
			if err := s.roles.Create(ctx, role); err != nil {
				return nil, fmt.Errorf("failed to create role %q: %w", name, err)
			}
			s.logger.Info("system role created", slog.String("role", name), slog.String("id", role.ID))
		case err != nil:
			return nil, fmt.Errorf("failed to fetch role %q: %w", name, err)
		default:
			changed := !role.IsActive
			for _, m := range modules {
				if !role.HasModule(m) {
					role.AddModule(m)
					changed = true
				}
			}
			role.IsActive = true
			if changed {
				if err := s.roles.Save(ctx, role); err != nil {
					return nil, fmt.Errorf("failed to update role %q: %w", name, err)
				}
				s.logger.Info("system role updated", slog.String("role", name))
			}
		}
		out = append(out, *toRoleResponse(role))
	}
	return out, nil
}

// BootstrapAdmin creates, or reactivates, an account holding the Admin role.
func (s *seedService) BootstrapAdmin(ctx context.Context, firstName, lastName, email, plain string) (*CreateUserResult, error) {
	if !password.IsStrong(plain) {
		return nil, apperr.BadRequest(password.StrengthMessage)
	}
	if len(strings.TrimSpace(firstName)) < 2 || len(strings.TrimSpace(lastName)) < 2 {
		return nil, apperr.BadRequest("First and last name must be at least 2 characters long.")
	}

	role, err := s.roles.FindByNameFold(ctx, model.RoleAdmin, "")
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Missing("Admin role not found. Seed the system roles first.")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch admin role: %w", err)
	}

	return s.accounts.CreateOrReactivate(ctx, "", CreateUserRequest{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     email,
		Password:  plain,
		Role:      role.ID,
	})
}
