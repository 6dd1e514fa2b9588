package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"rbac/internal/service"
)

type fakeSeeder struct {
	modules []string
	email   string
}

func (f *fakeSeeder) SeedSystemRoles(_ context.Context, modules []string) ([]service.RoleResponse, error) {
	f.modules = modules
	return []service.RoleResponse{
		{ID: "r1", RoleName: "Super Admin", AccessModules: modules},
		{ID: "r2", RoleName: "Admin", AccessModules: modules},
	}, nil
}

func (f *fakeSeeder) BootstrapAdmin(_ context.Context, _, _, email, _ string) (*service.CreateUserResult, error) {
	f.email = email
	return &service.CreateUserResult{User: &service.UserResponse{ID: "u1", Email: email}}, nil
}

func run(t *testing.T, seeder *fakeSeeder, connected *bool, args ...string) (string, error) {
	t.Helper()
	conn := func() (service.SeedService, func(), error) {
		*connected = true
		return seeder, func() {}, nil
	}
	cmd := newRootCmd(conn)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedCommand(t *testing.T) {
	seeder := &fakeSeeder{}
	var connected bool
	out, err := run(t, seeder, &connected, "seed", "--modules", "users,reports")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if strings.Join(seeder.modules, ",") != "users,reports" {
		t.Fatalf("unexpected modules %v", seeder.modules)
	}
	if !strings.Contains(out, "Super Admin\tusers,reports") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCreateAdminRejectsWeakPasswordBeforeConnecting(t *testing.T) {
	t.Setenv("RBAC_ADMIN_PASSWORD", "")
	seeder := &fakeSeeder{}
	var connected bool
	_, err := run(t, seeder, &connected, "create-admin", "--email", "root@x.io", "--password", "weak")
	if err == nil || connected {
		t.Fatalf("expected validation failure without connecting, err=%v connected=%v", err, connected)
	}
}

func TestCreateAdminReadsPasswordFromEnv(t *testing.T) {
	t.Setenv("RBAC_ADMIN_PASSWORD", "Secret@1")
	seeder := &fakeSeeder{}
	var connected bool
	out, err := run(t, seeder, &connected, "create-admin", "--email", "root@x.io")
	if err != nil {
		t.Fatalf("create-admin: %v", err)
	}
	if seeder.email != "root@x.io" || !strings.Contains(out, "admin created: root@x.io") {
		t.Fatalf("unexpected result %q", out)
	}
}
