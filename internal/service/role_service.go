package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rbac/internal/model"
	"rbac/internal/observability/tracing"
	"rbac/internal/repository"
	"rbac/pkg/apperr"
	"rbac/pkg/pagination"
)

// RoleService covers role administration. UpdateRole and DeleteRole receive the role already
// loaded and vetted by the system role guard.
type RoleService interface {
	CreateRole(ctx context.Context, actorID string, req CreateRoleRequest) (*RoleResponse, error)
	ListRoles(ctx context.Context, q ListQuery, p pagination.Params) (*RoleListResponse, error)
	GetRole(ctx context.Context, id string) (*RoleResponse, error)
	UpdateRole(ctx context.Context, actorID string, role *model.Role, req UpdateRoleRequest) (*RoleResponse, error)
	DeleteRole(ctx context.Context, actorID string, role *model.Role, req DeleteRoleRequest) (*DeleteRoleResponse, error)
}

type roleService struct {
	roles  repository.RoleRepository
	users  repository.UserRepository
	tx     repository.TransactionManager
	events EventPublisher
}

func NewRoleService(roles repository.RoleRepository, users repository.UserRepository, tx repository.TransactionManager, events EventPublisher) RoleService {
	if events == nil {
		events = nopPublisher{}
	}
	return &roleService{roles: roles, users: users, tx: tx, events: events}
}

func (s *roleService) ensureNameFree(ctx context.Context, name, excludeID string) error {
	_, err := s.roles.FindByNameFold(ctx, name, excludeID)
	if err == nil {
		return apperr.Newf(apperr.Conflict, "Role '%s' already exists", name)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to check role name: %w", err)
	}
	return nil
}

func (s *roleService) CreateRole(ctx context.Context, actorID string, req CreateRoleRequest) (*RoleResponse, error) {
	name := strings.TrimSpace(req.RoleName)
	if len([]rune(name)) < 2 {
		return nil, apperr.BadRequest(MsgShortRoleName)
	}
	modules := make([]string, 0, len(req.AccessModules))
	for _, m := range req.AccessModules {
		m = strings.TrimSpace(m)
		if m == "" {
			return nil, apperr.BadRequest(MsgEmptyModule)
		}
		modules = append(modules, m)
	}

	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	role := &model.Role{
		RoleName:      name,
		AccessModules: model.DedupModules(modules),
		IsActive:      true,
	}
	if err := s.roles.Create(ctx, role); err != nil {
		if apperr.Is(err, apperr.Conflict) {
			return nil, apperr.Newf(apperr.Conflict, "Role '%s' already exists", name)
		}
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	publish(ctx, s.events, Event{Action: model.ActionRoleCreated, ActorID: actorID, EntityID: role.ID, Data: toRoleResponse(role)})
	return toRoleResponse(role), nil
}

func (s *roleService) ListRoles(ctx context.Context, q ListQuery, p pagination.Params) (*RoleListResponse, error) {
	roles, total, err := s.roles.List(ctx, repository.RoleFilter{
		Search:   strings.TrimSpace(q.Search),
		IsActive: q.activeFilter(),
		Offset:   p.Offset,
		Limit:    p.Size,
	})
	if err != nil {
		return nil, err
	}

	res := &RoleListResponse{Roles: make([]RoleResponse, 0, len(roles)), Pagination: p.MetaFor(total)}
	for i := range roles {
		res.Roles = append(res.Roles, *toRoleResponse(&roles[i]))
	}
	return res, nil
}

func (s *roleService) GetRole(ctx context.Context, id string) (*RoleResponse, error) {
	role, err := s.roles.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Missing(MsgRoleNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch role: %w", err)
	}
	return toRoleResponse(role), nil
}

func (s *roleService) UpdateRole(ctx context.Context, actorID string, role *model.Role, req UpdateRoleRequest) (*RoleResponse, error) {
	name, addModule, removeModule := trimmed(req.RoleName), trimmed(req.AddModule), trimmed(req.RemoveModule)
	if name == nil && addModule == nil && removeModule == nil {
		return nil, apperr.BadRequest(MsgNothingToUpdate)
	}
	if name != nil && len([]rune(*name)) < 2 {
		return nil, apperr.BadRequest(MsgShortRoleName)
	}
	if (addModule != nil && *addModule == "") || (removeModule != nil && *removeModule == "") {
		return nil, apperr.BadRequest(MsgEmptyModule)
	}

	if name != nil {
		if err := s.ensureNameFree(ctx, *name, role.ID); err != nil {
			return nil, err
		}
		role.RoleName = *name
	}
	if addModule != nil {
		if role.HasModule(*addModule) {
			return nil, apperr.Newf(apperr.Conflict, "Module '%s' already exists in this role", *addModule)
		}
		role.AddModule(*addModule)
	}
	if removeModule != nil {
		role.RemoveModule(*removeModule)
	}
	role.AccessModules = model.DedupModules(role.AccessModules)

	if err := s.roles.Save(ctx, role); err != nil {
		if apperr.Is(err, apperr.Conflict) {
			return nil, apperr.Newf(apperr.Conflict, "Role '%s' already exists", role.RoleName)
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	publish(ctx, s.events, Event{Action: model.ActionRoleUpdated, ActorID: actorID, EntityID: role.ID, Data: req})
	return toRoleResponse(role), nil
}

func (s *roleService) DeleteRole(ctx context.Context, actorID string, role *model.Role, req DeleteRoleRequest) (*DeleteRoleResponse, error) {
	ctx, span := tracing.Start(ctx, "RoleService.DeleteRole")
	defer span.End()

	assigned, err := s.users.CountByRole(ctx, role.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count role users: %w", err)
	}
	if assigned > 0 && req.TransferRoleID == "" {
		return nil, apperr.Duplicate(MsgRoleHasUsers).WithData(map[string]any{
			"usersAssigned": assigned,
			"transferredTo": nil,
		})
	}

	var transferTo *string
	if req.TransferRoleID != "" {
		if req.TransferRoleID == role.ID {
			return nil, apperr.BadRequest(MsgTransferSelf)
		}
		target, err := s.roles.FindByID(ctx, req.TransferRoleID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Missing(MsgTransferMissing)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch transfer role: %w", err)
		}
		if !target.IsActive {
			return nil, apperr.BadRequest(MsgTransferInactive)
		}
		if target.IsSystem() {
			return nil, apperr.Denied(MsgTransferSystem)
		}
		transferTo = &target.ID
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if transferTo != nil {
			if _, err := s.users.ReassignRole(txCtx, role.ID, *transferTo); err != nil {
				return fmt.Errorf("failed to reassign users: %w", err)
			}
		}
		if err := s.roles.Delete(txCtx, role.ID); err != nil {
			return fmt.Errorf("failed to delete role: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &DeleteRoleResponse{PreviousUsersAssigned: assigned, TransferredTo: transferTo}
	publish(ctx, s.events, Event{Action: model.ActionRoleDeleted, ActorID: actorID, EntityID: role.ID, Data: res})
	return res, nil
}
