package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rbac/internal/model"
	"rbac/internal/observability/tracing"
	"rbac/internal/repository"
	"rbac/internal/security/password"
	"rbac/pkg/apperr"
	"rbac/pkg/pagination"
)

// UserService defines the interface for business logic related to User
type UserService interface {
	CreateOrReactivate(ctx context.Context, actorID string, req CreateUserRequest) (*CreateUserResult, error)
	ListUsers(ctx context.Context, q ListQuery, p pagination.Params) (*UserListResponse, error)
	GetUser(ctx context.Context, id string) (*UserResponse, error)
	UpdateUser(ctx context.Context, actorID, targetID string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, actorID, targetID string) (*DeleteUserResponse, error)
	BulkUpdateSame(ctx context.Context, actorID string, req BulkSameRequest) (*repository.BulkResult, error)
	BulkUpdateDifferent(ctx context.Context, actorID string, req BulkDifferentRequest) (*repository.BulkResult, error)
}

type userService struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	hasher password.Hasher
	events EventPublisher
}

// NewUserService returns a new instance of UserService
func NewUserService(users repository.UserRepository, roles repository.RoleRepository, hasher password.Hasher, events EventPublisher) UserService {
	if events == nil {
		events = nopPublisher{}
	}
	return &userService{users: users, roles: roles, hasher: hasher, events: events}
}

// assignableRole loads a role a user may be pointed at: it must exist and be active.
func (s *userService) assignableRole(ctx context.Context, id string) (*model.Role, error) {
	role, err := s.roles.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Missing(MsgRoleMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch role: %w", err)
	}
	if !role.IsActive {
		return nil, apperr.Denied(MsgRoleInactive)
	}
	return role, nil
}

func (s *userService) CreateOrReactivate(ctx context.Context, actorID string, req CreateUserRequest) (*CreateUserResult, error) {
	ctx, span := tracing.Start(ctx, "UserService.CreateOrReactivate")
	defer span.End()

	role, err := s.assignableRole(ctx, req.Role)
	if err != nil {
		return nil, err
	}

	email := model.NormalizeEmail(req.Email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}
	if existing != nil && existing.State() == model.AccountActive {
		return nil, apperr.Duplicate(MsgEmailTaken)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if err := existing.Reactivate(model.Reactivation{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			PasswordHash: hash,
			Role:         role,
		}); err != nil {
			return nil, fmt.Errorf("reactivate user: %w", err)
		}
		if err := s.users.Save(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to reactivate user: %w", err)
		}
		publish(ctx, s.events, Event{Action: model.ActionUserReactivated, ActorID: actorID, EntityID: existing.ID, Data: map[string]string{"email": existing.Email}})
		return &CreateUserResult{User: toUserResponse(existing), Reactivated: true}, nil
	}

	user := &model.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperr.Is(err, apperr.Conflict) {
			return nil, apperr.Duplicate(MsgEmailTaken)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.Role = role

	publish(ctx, s.events, Event{Action: model.ActionUserCreated, ActorID: actorID, EntityID: user.ID, Data: map[string]string{"email": user.Email, "role": role.RoleName}})
	return &CreateUserResult{User: toUserResponse(user)}, nil
}

func (s *userService) ListUsers(ctx context.Context, q ListQuery, p pagination.Params) (*UserListResponse, error) {
	users, total, err := s.users.List(ctx, repository.UserFilter{
		Search:   strings.TrimSpace(q.Search),
		IsActive: q.activeFilter(),
		Offset:   p.Offset,
		Limit:    p.Size,
	})
	if err != nil {
		return nil, err
	}

	res := &UserListResponse{Users: make([]UserResponse, 0, len(users)), Pagination: p.MetaFor(total)}
	for i := range users {
		res.Users = append(res.Users, *toUserResponse(&users[i]))
	}
	return res, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) findUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Missing(MsgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, actorID, targetID string, req UpdateUserRequest) (*UserResponse, error) {
	if req.empty() {
		return nil, apperr.BadRequest(MsgNothingToUpdate)
	}

	user, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	// Guard on the role currently held, not the requested one.
	if req.Role != nil && actorID == targetID && model.IsSystemRoleName(user.RoleName()) {
		return nil, apperr.Newf(apperr.Forbidden, "You cannot change your own '%s' role.", user.RoleName())
	}

	if req.Email != nil {
		email := model.NormalizeEmail(*req.Email)
		if email != user.Email {
			other, err := s.users.FindByEmail(ctx, email)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("failed to fetch user by email: %w", err)
			}
			if other != nil {
				return nil, apperr.Duplicate(MsgEmailTaken)
			}
			user.Email = email
		}
	}

	if req.Role != nil {
		role, err := s.assignableRole(ctx, *req.Role)
		if err != nil {
			return nil, err
		}
		user.RoleID = role.ID
		user.Role = role
	}
	if v := trimmed(req.FirstName); v != nil {
		user.FirstName = *v
	}
	if v := trimmed(req.LastName); v != nil {
		user.LastName = *v
	}

	if err := s.users.Save(ctx, user); err != nil {
		if apperr.Is(err, apperr.Conflict) {
			return nil, apperr.Duplicate(MsgEmailTaken)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	publish(ctx, s.events, Event{Action: model.ActionUserUpdated, ActorID: actorID, EntityID: user.ID, Data: req})
	return toUserResponse(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, actorID, targetID string) (*DeleteUserResponse, error) {
	user, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if actorID == targetID {
		return nil, apperr.Denied(MsgSelfDelete)
	}
	// Exact-case comparison; every other system role guard ignores case.
	if model.IsSystemRoleNameExact(user.RoleName()) {
		return nil, apperr.Newf(apperr.Forbidden, "System account '%s' cannot be deleted.", user.RoleName())
	}

	user.Deactivate()
	if err := s.users.SaveState(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Missing(MsgUserNotFound)
		}
		return nil, fmt.Errorf("failed to deactivate user: %w", err)
	}

	publish(ctx, s.events, Event{Action: model.ActionUserDeactivated, ActorID: actorID, EntityID: user.ID})
	return &DeleteUserResponse{UserID: user.ID}, nil
}

// bulkRole validates a role granted through a bulk operation. System roles are never grantable
// in bulk. Messages for the missing and inactive cases are supplied by the caller.
func (s *userService) bulkRole(ctx context.Context, id, missingMsg, inactiveMsg string) (*model.Role, error) {
	role, err := s.roles.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Missing(missingMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch role: %w", err)
	}
	if !role.IsActive {
		return nil, apperr.Denied(inactiveMsg)
	}
	if role.IsSystem() {
		return nil, apperr.Denied(MsgBulkSystemGrant)
	}
	return role, nil
}

func toPatch(f *UserPatchFields) repository.UserPatch {
	return repository.UserPatch{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		RoleID:    f.Role,
	}
}

func (s *userService) BulkUpdateSame(ctx context.Context, actorID string, req BulkSameRequest) (*repository.BulkResult, error) {
	ctx, span := tracing.Start(ctx, "UserService.BulkUpdateSame")
	defer span.End()

	if req.Update.empty() {
		return nil, apperr.BadRequest(MsgEmptyBulkPatch)
	}
	if req.Update.Role != nil {
		if _, err := s.bulkRole(ctx, *req.Update.Role, MsgRoleMissing, MsgRoleInactive); err != nil {
			return nil, err
		}
	}

	result, err := s.users.UpdateAllActive(ctx, toPatch(req.Update))
	if err != nil {
		return nil, fmt.Errorf("failed to bulk update users: %w", err)
	}

	publish(ctx, s.events, Event{Action: model.ActionUsersBulkUpdate, ActorID: actorID, EntityID: "*", Data: result})
	return &result, nil
}

func (s *userService) BulkUpdateDifferent(ctx context.Context, actorID string, req BulkDifferentRequest) (*repository.BulkResult, error) {
	ctx, span := tracing.Start(ctx, "UserService.BulkUpdateDifferent")
	defer span.End()

	if len(req.Updates) == 0 {
		return nil, apperr.BadRequest(MsgNoBulkEntries)
	}

	// Every entry is checked before anything is written; the first failure aborts the batch.
	items := make([]repository.BulkItem, 0, len(req.Updates))
	for _, entry := range req.Updates {
		if entry.Update.empty() {
			return nil, apperr.BadRequest(MsgEmptyBulkPatch)
		}

		user, err := s.users.FindByID(ctx, entry.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "User not found: %s", entry.UserID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch user: %w", err)
		}
		if user.State() != model.AccountActive {
			return nil, apperr.Newf(apperr.Forbidden, "User %s is inactive and cannot be updated.", entry.UserID)
		}
		if user.Role != nil && user.Role.IsSystem() {
			return nil, apperr.Newf(apperr.Forbidden, "System user '%s' cannot be updated in bulk.", user.RoleName())
		}
		if entry.Update.Role != nil {
			if user.ID == actorID {
				return nil, apperr.Denied(MsgBulkSelfRole)
			}
			_, err := s.bulkRole(ctx, *entry.Update.Role,
				fmt.Sprintf("Invalid new role for user %s", entry.UserID),
				fmt.Sprintf("Cannot assign inactive role to user %s", entry.UserID))
			if err != nil {
				return nil, err
			}
		}
		items = append(items, repository.BulkItem{UserID: user.ID, Patch: toPatch(entry.Update)})
	}

	result, err := s.users.BulkUpdate(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk update users: %w", err)
	}

	publish(ctx, s.events, Event{Action: model.ActionUsersBulkUpdate, ActorID: actorID, EntityID: "*", Data: result})
	return &result, nil
}
