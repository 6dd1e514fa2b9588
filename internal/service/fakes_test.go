package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"rbac/internal/model"
	"rbac/internal/repository"
	"rbac/internal/security/password"
	"rbac/internal/security/token"
	"rbac/pkg/apperr"
	"rbac/pkg/pagination"

	"golang.org/x/crypto/bcrypt"
)

var clock = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func tick() time.Time {
	clock = clock.Add(time.Second)
	return clock
}

type memRoleRepo struct {
	byID map[string]*model.Role
}

func newMemRoleRepo() *memRoleRepo {
	return &memRoleRepo{byID: map[string]*model.Role{}}
}

func cloneRole(r *model.Role) *model.Role {
	c := *r
	c.AccessModules = append([]string(nil), r.AccessModules...)
	return &c
}

func (m *memRoleRepo) Create(_ context.Context, r *model.Role) error {
	for _, existing := range m.byID {
		if existing.RoleName == r.RoleName {
			return apperr.Duplicate("Duplicate entry detected.")
		}
	}
	if r.ID == "" {
		r.ID = model.NewID()
	}
	r.CreatedAt = tick()
	r.UpdatedAt = r.CreatedAt
	m.byID[r.ID] = cloneRole(r)
	return nil
}

func (m *memRoleRepo) Save(_ context.Context, r *model.Role) error {
	r.UpdatedAt = tick()
	m.byID[r.ID] = cloneRole(r)
	return nil
}

func (m *memRoleRepo) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

func (m *memRoleRepo) FindByID(_ context.Context, id string) (*model.Role, error) {
	if r, ok := m.byID[id]; ok {
		return cloneRole(r), nil
	}
	return nil, repository.ErrNotFound
}

func (m *memRoleRepo) FindByNameFold(_ context.Context, name, excludeID string) (*model.Role, error) {
	for _, r := range m.byID {
		if r.ID != excludeID && strings.EqualFold(r.RoleName, name) {
			return cloneRole(r), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRoleRepo) List(_ context.Context, f repository.RoleFilter) ([]model.Role, int64, error) {
	var all []model.Role
	for _, r := range m.byID {
		if f.Search != "" && !strings.Contains(strings.ToLower(r.RoleName), strings.ToLower(f.Search)) {
			continue
		}
		if f.IsActive != nil && r.IsActive != *f.IsActive {
			continue
		}
		all = append(all, *cloneRole(r))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, f.Offset, f.Limit), int64(len(all)), nil
}

func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

type memUserRepo struct {
	byID      map[string]*model.User
	roles     *memRoleRepo
	bulkCalls int
	saves     int
}

func newMemUserRepo(roles *memRoleRepo) *memUserRepo {
	return &memUserRepo{byID: map[string]*model.User{}, roles: roles}
}

func (m *memUserRepo) load(u *model.User) *model.User {
	c := *u
	c.Role = nil
	if r, ok := m.roles.byID[u.RoleID]; ok {
		c.Role = cloneRole(r)
	}
	return &c
}

func (m *memUserRepo) store(u *model.User) {
	c := *u
	c.Role = nil
	m.byID[u.ID] = &c
}

func (m *memUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return apperr.Duplicate("Duplicate entry detected.")
		}
	}
	if u.ID == "" {
		u.ID = model.NewID()
	}
	u.CreatedAt = tick()
	u.UpdatedAt = u.CreatedAt
	m.store(u)
	return nil
}

func (m *memUserRepo) Save(_ context.Context, u *model.User) error {
	m.saves++
	u.UpdatedAt = tick()
	m.store(u)
	return nil
}

func (m *memUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.byID[id]; ok {
		return m.load(u), nil
	}
	return nil, repository.ErrNotFound
}

func (m *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	email = model.NormalizeEmail(email)
	for _, u := range m.byID {
		if u.Email == email {
			return m.load(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUserRepo) List(_ context.Context, f repository.UserFilter) ([]model.User, int64, error) {
	var all []model.User
	q := strings.ToLower(f.Search)
	for _, u := range m.byID {
		if q != "" && !strings.Contains(strings.ToLower(u.FirstName), q) &&
			!strings.Contains(strings.ToLower(u.LastName), q) &&
			!strings.Contains(strings.ToLower(u.Email), q) {
			continue
		}
		if f.IsActive != nil && u.IsActive != *f.IsActive {
			continue
		}
		all = append(all, *m.load(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, f.Offset, f.Limit), int64(len(all)), nil
}

func (m *memUserRepo) CountByRole(_ context.Context, roleID string) (int64, error) {
	var n int64
	for _, u := range m.byID {
		if u.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

func (m *memUserRepo) ReassignRole(_ context.Context, from, to string) (int64, error) {
	var n int64
	for _, u := range m.byID {
		if u.RoleID == from {
			u.RoleID = to
			n++
		}
	}
	return n, nil
}

func (m *memUserRepo) SaveState(_ context.Context, user *model.User) error {
	u, ok := m.byID[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsActive = user.IsActive
	return nil
}

func applyPatch(u *model.User, p repository.UserPatch) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.RoleID != nil {
		u.RoleID = *p.RoleID
	}
}

func (m *memUserRepo) UpdateAllActive(_ context.Context, p repository.UserPatch) (repository.BulkResult, error) {
	m.bulkCalls++
	var res repository.BulkResult
	for _, u := range m.byID {
		if u.IsActive {
			applyPatch(u, p)
			res.MatchedCount++
			res.ModifiedCount++
		}
	}
	return res, nil
}

func (m *memUserRepo) BulkUpdate(_ context.Context, items []repository.BulkItem) (repository.BulkResult, error) {
	m.bulkCalls++
	var res repository.BulkResult
	for _, it := range items {
		if u, ok := m.byID[it.UserID]; ok {
			applyPatch(u, it.Patch)
			res.MatchedCount++
			res.ModifiedCount++
		}
	}
	return res, nil
}

type memTokenRepo struct {
	byUser map[string]*model.Token
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{byUser: map[string]*model.Token{}}
}

func (m *memTokenRepo) Upsert(_ context.Context, t *model.Token) error {
	c := *t
	m.byUser[t.UserID] = &c
	return nil
}

func (m *memTokenRepo) FindByUserAndRefresh(_ context.Context, userID, refresh string) (*model.Token, error) {
	if t, ok := m.byUser[userID]; ok && t.RefreshToken == refresh {
		c := *t
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memTokenRepo) DeleteByRefresh(_ context.Context, refresh string) (int64, error) {
	for id, t := range m.byUser {
		if t.RefreshToken == refresh {
			delete(m.byUser, id)
			return 1, nil
		}
	}
	return 0, nil
}

type memAuditRepo struct {
	logs []model.AuditLog
}

func (m *memAuditRepo) Log(_ context.Context, e *model.AuditLog) error {
	m.logs = append(m.logs, *e)
	return nil
}

func (m *memAuditRepo) List(_ context.Context, f repository.AuditFilter) ([]model.AuditLog, int64, error) {
	var out []model.AuditLog
	for i := len(m.logs) - 1; i >= 0; i-- {
		l := m.logs[i]
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		if f.ActorID != "" && (l.ActorID == nil || *l.ActorID != f.ActorID) {
			continue
		}
		if f.EntityID != "" && l.EntityID != f.EntityID {
			continue
		}
		out = append(out, l)
	}
	return page(out, f.Offset, f.Limit), int64(len(out)), nil
}

type passthroughTx struct {
	calls int
}

func (p *passthroughTx) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	p.calls++
	return fn(ctx)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingPublisher) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Action)
	}
	return out
}

// fixture wires every service over the in-memory repositories.
type fixture struct {
	roles  *memRoleRepo
	users  *memUserRepo
	tokens *memTokenRepo
	tx     *passthroughTx
	events *recordingPublisher
	hasher password.Hasher
	issuer *token.Manager

	userSvc UserService
	roleSvc RoleService
	authSvc AuthService
}

func newFixture() *fixture {
	f := &fixture{
		roles:  newMemRoleRepo(),
		tokens: newMemTokenRepo(),
		tx:     &passthroughTx{},
		events: &recordingPublisher{},
		hasher: password.NewBcrypt(bcrypt.MinCost),
		issuer: token.NewManager(token.Config{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessTTL:     time.Hour,
			RefreshTTL:    24 * time.Hour,
		}),
	}
	f.users = newMemUserRepo(f.roles)
	f.userSvc = NewUserService(f.users, f.roles, f.hasher, f.events)
	f.roleSvc = NewRoleService(f.roles, f.users, f.tx, f.events)
	f.authSvc = NewAuthService(f.userSvc, f.users, f.tokens, f.hasher, f.issuer, f.events)
	return f
}

func (f *fixture) role(name string, active bool, modules ...string) *model.Role {
	r := &model.Role{RoleName: name, AccessModules: model.DedupModules(modules), IsActive: active}
	if err := f.roles.Create(context.Background(), r); err != nil {
		panic(err)
	}
	return r
}

func (f *fixture) user(email string, role *model.Role, active bool) *model.User {
	hash, err := f.hasher.Hash("Secret@1")
	if err != nil {
		panic(err)
	}
	u := &model.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        model.NormalizeEmail(email),
		PasswordHash: hash,
		RoleID:       role.ID,
		IsActive:     active,
	}
	if err := f.users.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func str(s string) *string { return &s }

func paginationFirstPage() pagination.Params { return pagination.New(1, 10) }
