package service

import (
	"context"
	"reflect"
	"testing"

	"rbac/internal/model"
	"rbac/internal/repository"
	"rbac/pkg/apperr"
	"rbac/pkg/pagination"
)

func TestCreateRoleDedupAndConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.roleSvc.CreateRole(ctx, "actor", CreateRoleRequest{
		RoleName:      "Editor",
		AccessModules: []string{"users", " users", "Users", "roles"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	want := []string{"users", "Users", "roles"}
	if !reflect.DeepEqual(res.AccessModules, want) {
		t.Fatalf("expected %v, got %v", want, res.AccessModules)
	}
	if !res.IsActive {
		t.Fatalf("new roles must be active")
	}

	_, err = f.roleSvc.CreateRole(ctx, "actor", CreateRoleRequest{RoleName: "EDITOR", AccessModules: []string{"x"}})
	e := expectKind(t, err, apperr.Conflict)
	if e.Message != "Role 'EDITOR' already exists" {
		t.Fatalf("unexpected message %q", e.Message)
	}
}

func TestCreateRoleTrimsInput(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.role("Admin", true, "users")

	_, err := f.roleSvc.CreateRole(ctx, "actor", CreateRoleRequest{RoleName: " admin ", AccessModules: []string{"users"}})
	e := expectKind(t, err, apperr.Conflict)
	if e.Message != "Role 'admin' already exists" {
		t.Fatalf("unexpected message %q", e.Message)
	}

	_, err = f.roleSvc.CreateRole(ctx, "actor", CreateRoleRequest{RoleName: "Auditor", AccessModules: []string{"   ", "users"}})
	e = expectKind(t, err, apperr.BadInput)
	if e.Message != MsgEmptyModule {
		t.Fatalf("unexpected message %q", e.Message)
	}

	_, err = f.roleSvc.CreateRole(ctx, "actor", CreateRoleRequest{RoleName: "  x ", AccessModules: []string{"users"}})
	expectKind(t, err, apperr.BadInput)

	res, err := f.roleSvc.CreateRole(ctx, "actor", CreateRoleRequest{RoleName: "  Auditor ", AccessModules: []string{" audit "}})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if res.RoleName != "Auditor" || !reflect.DeepEqual(res.AccessModules, []string{"audit"}) {
		t.Fatalf("expected trimmed role, got %+v", res)
	}
	if _, total, _ := f.roles.List(ctx, repository.RoleFilter{Limit: 10}); total != 2 {
		t.Fatalf("expected 2 stored roles, got %d", total)
	}
}

func TestRenameRoleTrimsName(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.role("Admin", true, "users")
	editor := f.role("Editor", true, "users")

	_, err := f.roleSvc.UpdateRole(ctx, "actor", cloneRole(editor), UpdateRoleRequest{RoleName: str(" ADMIN ")})
	expectKind(t, err, apperr.Conflict)

	_, err = f.roleSvc.UpdateRole(ctx, "actor", cloneRole(editor), UpdateRoleRequest{RoleName: str("   ")})
	expectKind(t, err, apperr.BadInput)

	res, err := f.roleSvc.UpdateRole(ctx, "actor", cloneRole(editor), UpdateRoleRequest{RoleName: str(" Writer ")})
	if err != nil || res.RoleName != "Writer" {
		t.Fatalf("rename failed: %+v %v", res, err)
	}
}

func TestUpdateRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.role("Viewer", true, "users")
	editor := f.role("Editor", true, "users")

	_, err := f.roleSvc.UpdateRole(ctx, "actor", cloneRole(editor), UpdateRoleRequest{RoleName: str("viewer")})
	expectKind(t, err, apperr.Conflict)

	// Renaming to its own name in another case is not a conflict with itself.
	res, err := f.roleSvc.UpdateRole(ctx, "actor", cloneRole(editor), UpdateRoleRequest{RoleName: str("EDITOR")})
	if err != nil || res.RoleName != "EDITOR" {
		t.Fatalf("rename failed: %+v %v", res, err)
	}

	_, err = f.roleSvc.UpdateRole(ctx, "actor", cloneRole(editor), UpdateRoleRequest{AddModule: str("users")})
	e := expectKind(t, err, apperr.Conflict)
	if e.Message != "Module 'users' already exists in this role" {
		t.Fatalf("unexpected message %q", e.Message)
	}

	res, err = f.roleSvc.UpdateRole(ctx, "actor", cloneRole(editor), UpdateRoleRequest{AddModule: str("roles"), RemoveModule: str("missing")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !reflect.DeepEqual(res.AccessModules, []string{"users", "roles"}) {
		t.Fatalf("unexpected modules %v", res.AccessModules)
	}

	stored, _ := f.roles.FindByID(ctx, editor.ID)
	res, err = f.roleSvc.UpdateRole(ctx, "actor", stored, UpdateRoleRequest{RemoveModule: str("users")})
	if err != nil || !reflect.DeepEqual(res.AccessModules, []string{"roles"}) {
		t.Fatalf("remove failed: %+v %v", res, err)
	}

	_, err = f.roleSvc.UpdateRole(ctx, "actor", stored, UpdateRoleRequest{})
	expectKind(t, err, apperr.BadInput)
	_, err = f.roleSvc.UpdateRole(ctx, "actor", stored, UpdateRoleRequest{AddModule: str("  ")})
	expectKind(t, err, apperr.BadInput)
}

func TestDeleteRoleRequiresTransfer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	editor := f.role("Editor", true, "users")
	viewer := f.role("Viewer", true, "users")
	for _, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		f.user(email, editor, true)
	}

	_, err := f.roleSvc.DeleteRole(ctx, "actor", editor, DeleteRoleRequest{})
	e := expectKind(t, err, apperr.Conflict)
	data, ok := e.Data.(map[string]any)
	if !ok || data["usersAssigned"] != int64(3) || data["transferredTo"] != nil {
		t.Fatalf("unexpected conflict data %+v", e.Data)
	}
	if _, err := f.roles.FindByID(ctx, editor.ID); err != nil {
		t.Fatalf("role must survive a refused delete")
	}

	res, err := f.roleSvc.DeleteRole(ctx, "actor", editor, DeleteRoleRequest{TransferRoleID: viewer.ID})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if res.PreviousUsersAssigned != 3 || res.TransferredTo == nil || *res.TransferredTo != viewer.ID {
		t.Fatalf("unexpected result %+v", res)
	}
	if n, _ := f.users.CountByRole(ctx, viewer.ID); n != 3 {
		t.Fatalf("expected 3 reassigned users, got %d", n)
	}
	if _, err := f.roles.FindByID(ctx, editor.ID); err == nil {
		t.Fatalf("expected role to be deleted")
	}
	if f.tx.calls != 1 {
		t.Fatalf("expected reassignment and delete in one transaction")
	}
}

func TestDeleteRoleTransferTargetChecks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	editor := f.role("Editor", true, "users")
	retired := f.role("Retired", false)
	admin := f.role("Admin", true, "users")
	f.user("a@x.io", editor, true)

	_, err := f.roleSvc.DeleteRole(ctx, "actor", editor, DeleteRoleRequest{TransferRoleID: model.NewID()})
	expectKind(t, err, apperr.NotFound)

	_, err = f.roleSvc.DeleteRole(ctx, "actor", editor, DeleteRoleRequest{TransferRoleID: retired.ID})
	e := expectKind(t, err, apperr.BadInput)
	if e.Message != MsgTransferInactive {
		t.Fatalf("unexpected message %q", e.Message)
	}

	_, err = f.roleSvc.DeleteRole(ctx, "actor", editor, DeleteRoleRequest{TransferRoleID: admin.ID})
	expectKind(t, err, apperr.Forbidden)

	_, err = f.roleSvc.DeleteRole(ctx, "actor", editor, DeleteRoleRequest{TransferRoleID: editor.ID})
	expectKind(t, err, apperr.BadInput)

	if f.tx.calls != 0 {
		t.Fatalf("no write may happen when the transfer target is rejected")
	}
}

func TestDeleteUnusedRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	temp := f.role("Temp", true, "users")

	res, err := f.roleSvc.DeleteRole(ctx, "actor", temp, DeleteRoleRequest{})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if res.PreviousUsersAssigned != 0 || res.TransferredTo != nil {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestListAndGetRoles(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.role("Viewer", true, "users")
	f.role("Manager", true, "users")
	f.role("Retired", false)

	res, err := f.roleSvc.ListRoles(ctx, ListQuery{Search: "er"}, pagination.New(1, 10))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if res.Pagination.TotalRecords != 2 || res.Roles[0].RoleName != "Manager" {
		t.Fatalf("unexpected listing %+v", res)
	}

	_, err = f.roleSvc.GetRole(ctx, model.NewID())
	e := expectKind(t, err, apperr.NotFound)
	if e.Message != MsgRoleNotFound {
		t.Fatalf("unexpected message %q", e.Message)
	}
}

func TestSeedSystemRolesIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	seeder := NewSeedService(f.roles, f.userSvc, discardLogger())

	first, err := seeder.SeedSystemRoles(ctx, nil)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	second, err := seeder.SeedSystemRoles(ctx, nil)
	if err != nil {
		t.Fatalf("reseed failed: %v", err)
	}
	if len(f.roles.byID) != 2 || first[1].ID != second[1].ID {
		t.Fatalf("expected two stable system roles, have %d", len(f.roles.byID))
	}

	res, err := seeder.BootstrapAdmin(ctx, "Root", "User", "root@x.io", "Root@123")
	if err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if res.User.Role == nil || res.User.Role.RoleName != model.RoleAdmin {
		t.Fatalf("expected admin role, got %+v", res.User.Role)
	}

	_, err = seeder.BootstrapAdmin(ctx, "Root", "User", "root2@x.io", "weak")
	expectKind(t, err, apperr.BadInput)
}
