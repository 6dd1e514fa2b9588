package service

import (
	"context"
	"fmt"
	"testing"

	"rbac/internal/model"
	"rbac/pkg/apperr"
	"rbac/pkg/pagination"
)

func expectKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	e, ok := apperr.As(err)
	if !ok || e.Kind != kind {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
	return e
}

func TestCreateUserAndDuplicateEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	viewer := f.role("Viewer", true, "users")

	req := CreateUserRequest{FirstName: "Ann", LastName: "Lee", Email: " Ann@Example.com ", Password: "Secret@1", Role: viewer.ID}
	res, err := f.userSvc.CreateOrReactivate(ctx, "", req)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if res.Reactivated || res.User.Email != "ann@example.com" || !res.User.IsActive {
		t.Fatalf("unexpected result %+v", res.User)
	}
	if res.User.Role == nil || res.User.Role.RoleName != "Viewer" {
		t.Fatalf("expected populated role, got %+v", res.User.Role)
	}

	_, err = f.userSvc.CreateOrReactivate(ctx, "", req)
	e := expectKind(t, err, apperr.Conflict)
	if e.Message != MsgEmailTaken {
		t.Fatalf("unexpected message %q", e.Message)
	}
}

func TestCreateUserRoleChecks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	inactive := f.role("Old", false, "users")

	req := CreateUserRequest{FirstName: "Ann", LastName: "Lee", Email: "a@x.io", Password: "Secret@1", Role: model.NewID()}
	_, err := f.userSvc.CreateOrReactivate(ctx, "", req)
	expectKind(t, err, apperr.NotFound)

	req.Role = inactive.ID
	_, err = f.userSvc.CreateOrReactivate(ctx, "", req)
	expectKind(t, err, apperr.Forbidden)
}

func TestReactivationKeepsIdentity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	viewer := f.role("Viewer", true, "users")
	manager := f.role("Manager", true, "users")
	old := f.user("gone@x.io", viewer, false)

	res, err := f.userSvc.CreateOrReactivate(ctx, "", CreateUserRequest{
		FirstName: "New", LastName: "Name", Email: "gone@x.io", Password: "Fresh@22", Role: manager.ID,
	})
	if err != nil {
		t.Fatalf("reactivate failed: %v", err)
	}
	if !res.Reactivated || res.User.ID != old.ID {
		t.Fatalf("expected in-place reactivation of %s, got %+v", old.ID, res)
	}

	stored, _ := f.users.FindByID(ctx, old.ID)
	if !stored.IsActive || stored.FirstName != "New" || stored.RoleID != manager.ID {
		t.Fatalf("unexpected stored user %+v", stored)
	}
	if ok, _ := f.hasher.Verify(stored.PasswordHash, "Fresh@22"); !ok {
		t.Fatalf("expected password to be replaced")
	}
	if len(f.users.byID) != 1 {
		t.Fatalf("expected no new record, have %d", len(f.users.byID))
	}
	if acts := f.events.actions(); acts[len(acts)-1] != model.ActionUserReactivated {
		t.Fatalf("expected reactivation event, got %v", acts)
	}
}

func TestListUsersPagination(t *testing.T) {
	f := newFixture()
	viewer := f.role("Viewer", true, "users")
	for i := 0; i < 12; i++ {
		f.user(fmt.Sprintf("user%02d@x.io", i), viewer, true)
	}
	f.user("inactive@x.io", viewer, false)

	res, err := f.userSvc.ListUsers(context.Background(), ListQuery{}, pagination.New(2, 5))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(res.Users) != 5 {
		t.Fatalf("expected 5 users, got %d", len(res.Users))
	}
	if res.Pagination.TotalRecords != 12 || res.Pagination.TotalPages != 3 || res.Pagination.CurrentPage != 2 {
		t.Fatalf("unexpected pagination %+v", res.Pagination)
	}
	// Newest first: the page starts at the sixth newest record.
	if res.Users[0].Email != "user06@x.io" {
		t.Fatalf("unexpected first record %s", res.Users[0].Email)
	}
}

func TestListUsersActiveFilter(t *testing.T) {
	f := newFixture()
	viewer := f.role("Viewer", true, "users")
	f.user("on@x.io", viewer, true)
	f.user("off@x.io", viewer, false)
	ctx := context.Background()

	cases := map[string]int64{"": 1, "true": 1, "false": 1, "all": 2}
	for flag, want := range cases {
		res, err := f.userSvc.ListUsers(ctx, ListQuery{IsActive: flag}, pagination.New(1, 10))
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if res.Pagination.TotalRecords != want {
			t.Fatalf("isActive=%q: expected %d, got %d", flag, want, res.Pagination.TotalRecords)
		}
	}

	res, _ := f.userSvc.ListUsers(ctx, ListQuery{Search: "ON@"}, pagination.New(1, 10))
	if res.Pagination.TotalRecords != 1 {
		t.Fatalf("expected case-insensitive search hit, got %d", res.Pagination.TotalRecords)
	}
}

func TestGetUserNotFound(t *testing.T) {
	f := newFixture()
	_, err := f.userSvc.GetUser(context.Background(), model.NewID())
	expectKind(t, err, apperr.NotFound)
}

func TestUpdateUserSelfDemotionGuard(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	admin := f.role("admin", true, "users")
	viewer := f.role("Viewer", true, "users")
	me := f.user("me@x.io", admin, true)

	_, err := f.userSvc.UpdateUser(ctx, me.ID, me.ID, UpdateUserRequest{Role: str(viewer.ID)})
	e := expectKind(t, err, apperr.Forbidden)
	if e.Message != "You cannot change your own 'admin' role." {
		t.Fatalf("unexpected message %q", e.Message)
	}

	// Name changes on oneself are fine.
	res, err := f.userSvc.UpdateUser(ctx, me.ID, me.ID, UpdateUserRequest{FirstName: str("  Neo ")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if res.FirstName != "Neo" {
		t.Fatalf("expected trimmed name, got %q", res.FirstName)
	}
}

func TestUpdateUserSelfGuardUsesCurrentRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	viewer := f.role("Viewer", true, "users")
	admin := f.role("Admin", true, "users")
	me := f.user("me@x.io", viewer, true)

	// The guard only looks at the role currently held, so promoting oneself is not blocked here.
	res, err := f.userSvc.UpdateUser(ctx, me.ID, me.ID, UpdateUserRequest{Role: str(admin.ID)})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if res.RoleID != admin.ID {
		t.Fatalf("expected role change, got %s", res.RoleID)
	}
}

func TestUpdateUserEmailConflictAndEmptyPatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	viewer := f.role("Viewer", true, "users")
	a := f.user("a@x.io", viewer, true)
	f.user("b@x.io", viewer, true)

	_, err := f.userSvc.UpdateUser(ctx, "actor", a.ID, UpdateUserRequest{Email: str("B@x.io")})
	expectKind(t, err, apperr.Conflict)

	_, err = f.userSvc.UpdateUser(ctx, "actor", a.ID, UpdateUserRequest{})
	expectKind(t, err, apperr.BadInput)

	_, err = f.userSvc.UpdateUser(ctx, "actor", model.NewID(), UpdateUserRequest{FirstName: str("Zed")})
	expectKind(t, err, apperr.NotFound)

	inactive := f.role("Gone", false)
	_, err = f.userSvc.UpdateUser(ctx, "actor", a.ID, UpdateUserRequest{Role: str(inactive.ID)})
	expectKind(t, err, apperr.Forbidden)
}

func TestDeleteUserRules(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	admin := f.role("Admin", true, "users")
	lowerAdmin := f.role("admin", true, "users")
	viewer := f.role("Viewer", true, "users")
	me := f.user("me@x.io", viewer, true)
	sys := f.user("sys@x.io", admin, true)
	lower := f.user("lower@x.io", lowerAdmin, true)
	target := f.user("target@x.io", viewer, true)

	_, err := f.userSvc.DeleteUser(ctx, me.ID, me.ID)
	expectKind(t, err, apperr.Forbidden)

	_, err = f.userSvc.DeleteUser(ctx, me.ID, sys.ID)
	e := expectKind(t, err, apperr.Forbidden)
	if e.Message != "System account 'Admin' cannot be deleted." {
		t.Fatalf("unexpected message %q", e.Message)
	}

	// The account deletion guard is case-sensitive.
	if _, err := f.userSvc.DeleteUser(ctx, me.ID, lower.ID); err != nil {
		t.Fatalf("expected lower-case admin account to be deletable: %v", err)
	}

	res, err := f.userSvc.DeleteUser(ctx, me.ID, target.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if res.UserID != target.ID {
		t.Fatalf("unexpected result %+v", res)
	}
	stored, err := f.users.FindByID(ctx, target.ID)
	if err != nil || stored.State() != model.AccountDeactivated {
		t.Fatalf("expected soft delete, got %+v err=%v", stored, err)
	}

	_, err = f.userSvc.DeleteUser(ctx, me.ID, model.NewID())
	expectKind(t, err, apperr.NotFound)
}

func TestBulkUpdateSame(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	viewer := f.role("Viewer", true, "users")
	admin := f.role("ADMIN", true, "users")
	editor := f.role("Editor", true, "users")
	f.user("a@x.io", viewer, true)
	f.user("b@x.io", viewer, true)
	f.user("c@x.io", viewer, false)

	_, err := f.userSvc.BulkUpdateSame(ctx, "actor", BulkSameRequest{Update: &UserPatchFields{Role: str(admin.ID)}})
	e := expectKind(t, err, apperr.Forbidden)
	if e.Message != MsgBulkSystemGrant {
		t.Fatalf("unexpected message %q", e.Message)
	}

	_, err = f.userSvc.BulkUpdateSame(ctx, "actor", BulkSameRequest{Update: &UserPatchFields{}})
	expectKind(t, err, apperr.BadInput)

	res, err := f.userSvc.BulkUpdateSame(ctx, "actor", BulkSameRequest{Update: &UserPatchFields{Role: str(editor.ID)}})
	if err != nil {
		t.Fatalf("bulk same failed: %v", err)
	}
	if res.MatchedCount != 2 || res.ModifiedCount != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestBulkUpdateDifferentIsAllOrNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	viewer := f.role("Viewer", true, "users")
	a := f.user("a@x.io", viewer, true)
	missing := model.NewID()

	_, err := f.userSvc.BulkUpdateDifferent(ctx, "actor", BulkDifferentRequest{Updates: []BulkDifferentItem{
		{UserID: a.ID, Update: &UserPatchFields{FirstName: str("Changed")}},
		{UserID: missing, Update: &UserPatchFields{FirstName: str("Nobody")}},
	}})
	e := expectKind(t, err, apperr.NotFound)
	if e.Message != "User not found: "+missing {
		t.Fatalf("unexpected message %q", e.Message)
	}
	if f.users.bulkCalls != 0 {
		t.Fatalf("expected no writes, got %d", f.users.bulkCalls)
	}
	stored, _ := f.users.FindByID(ctx, a.ID)
	if stored.FirstName == "Changed" {
		t.Fatalf("valid entry must not be applied when the batch fails")
	}
}

func TestBulkUpdateDifferentChecks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	viewer := f.role("Viewer", true, "users")
	editor := f.role("Editor", true, "users")
	superAdmin := f.role("Super Admin", true, "users")
	retired := f.role("Retired", false)
	me := f.user("me@x.io", viewer, true)
	off := f.user("off@x.io", viewer, false)
	sys := f.user("sys@x.io", superAdmin, true)
	other := f.user("other@x.io", viewer, true)

	cases := []struct {
		name string
		item BulkDifferentItem
		kind apperr.Kind
		msg  string
	}{
		{"inactive user", BulkDifferentItem{UserID: off.ID, Update: &UserPatchFields{FirstName: str("Xy")}}, apperr.Forbidden, "User " + off.ID + " is inactive and cannot be updated."},
		{"system user", BulkDifferentItem{UserID: sys.ID, Update: &UserPatchFields{FirstName: str("Xy")}}, apperr.Forbidden, "System user 'Super Admin' cannot be updated in bulk."},
		{"self role", BulkDifferentItem{UserID: me.ID, Update: &UserPatchFields{Role: str(editor.ID)}}, apperr.Forbidden, MsgBulkSelfRole},
		{"missing role", BulkDifferentItem{UserID: other.ID, Update: &UserPatchFields{Role: str(model.NewID())}}, apperr.NotFound, "Invalid new role for user " + other.ID},
		{"inactive role", BulkDifferentItem{UserID: other.ID, Update: &UserPatchFields{Role: str(retired.ID)}}, apperr.Forbidden, "Cannot assign inactive role to user " + other.ID},
		{"system role", BulkDifferentItem{UserID: other.ID, Update: &UserPatchFields{Role: str(superAdmin.ID)}}, apperr.Forbidden, MsgBulkSystemGrant},
		{"empty patch", BulkDifferentItem{UserID: other.ID, Update: &UserPatchFields{}}, apperr.BadInput, MsgEmptyBulkPatch},
	}
	for _, tc := range cases {
		_, err := f.userSvc.BulkUpdateDifferent(ctx, me.ID, BulkDifferentRequest{Updates: []BulkDifferentItem{tc.item}})
		e := expectKind(t, err, tc.kind)
		if e.Message != tc.msg {
			t.Fatalf("%s: unexpected message %q", tc.name, e.Message)
		}
	}

	res, err := f.userSvc.BulkUpdateDifferent(ctx, me.ID, BulkDifferentRequest{Updates: []BulkDifferentItem{
		{UserID: me.ID, Update: &UserPatchFields{FirstName: str("Self")}},
		{UserID: other.ID, Update: &UserPatchFields{Role: str(editor.ID)}},
	}})
	if err != nil {
		t.Fatalf("bulk different failed: %v", err)
	}
	if res.MatchedCount != 2 || f.users.bulkCalls != 1 {
		t.Fatalf("unexpected result %+v calls=%d", res, f.users.bulkCalls)
	}
	stored, _ := f.users.FindByID(ctx, other.ID)
	if stored.RoleID != editor.ID {
		t.Fatalf("expected role reassignment, got %s", stored.RoleID)
	}
}
