package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes backing the service tests. The fake
// transaction manager serializes RunInTx with a mutex, standing in for the
// row lock the real store takes during decide.

type fakeTxManager struct {
	mu sync.Mutex
	// beforeTx runs after the lock is taken and before fn, standing in
	// for a competing transaction that committed just ahead of this one.
	beforeTx func()
}

func (t *fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.beforeTx != nil {
		t.beforeTx()
	}
	return fn(ctx)
}

type fakeEventBus struct {
	mu     sync.Mutex
	events []string
}

func (b *fakeEventBus) Publish(event string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *fakeEventBus) published() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.events...)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*model.Request
	seq      int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[uuid.UUID]*model.Request)}
}

func (r *fakeRequestRepo) Create(ctx context.Context, req *model.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	r.seq++
	// Monotonic timestamps so creation-order assertions are stable
	req.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *fakeRequestRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req, ok := r.requests[id]; ok {
		cp := *req
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRequestRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeRequestRepo) List(ctx context.Context, filter repository.RequestFilter) ([]model.Request, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []model.Request
	for _, req := range r.requests {
		if filter.CreatedByID != nil && req.CreatedByID != *filter.CreatedByID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		matched = append(matched, *req)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	offset := (filter.Page - 1) * filter.Limit
	if offset >= len(matched) {
		return []model.Request{}, total, nil
	}
	end := offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *fakeRequestRepo) Update(ctx context.Context, req *model.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.requests[req.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	// Mirrors the column-restricted update: status is never written here.
	stored.Title = req.Title
	stored.Description = req.Description
	stored.Amount = req.Amount
	return nil
}

func (r *fakeRequestRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	req.Status = status
	return nil
}

type fakeApprovalRepo struct {
	mu        sync.Mutex
	approvals []model.Approval
}

func newFakeApprovalRepo() *fakeApprovalRepo {
	return &fakeApprovalRepo{}
}

func (r *fakeApprovalRepo) Create(ctx context.Context, approval *model.Approval) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.approvals {
		if a.RequestID == approval.RequestID && a.ApproverID == approval.ApproverID {
			return gorm.ErrDuplicatedKey
		}
	}
	if approval.ID == uuid.Nil {
		approval.ID = uuid.New()
	}
	r.approvals = append(r.approvals, *approval)
	return nil
}

func (r *fakeApprovalRepo) Exists(ctx context.Context, requestID, approverID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.approvals {
		if a.RequestID == requestID && a.ApproverID == approverID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeApprovalRepo) ListByRequestID(ctx context.Context, requestID uuid.UUID) ([]model.Approval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []model.Approval
	for _, a := range r.approvals {
		if a.RequestID == requestID {
			matched = append(matched, a)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].DecidedAt.Before(matched[j].DecidedAt)
	})
	return matched, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []model.AuditLog
	seq     int
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.seq++
	entry.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(ctx context.Context, filter repository.AuditFilter) ([]model.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []model.AuditLog
	for _, e := range r.entries {
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.UserID != nil && (e.UserID == nil || *e.UserID != *filter.UserID) {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	offset := (filter.Page - 1) * filter.Limit
	if offset >= len(matched) {
		return []model.AuditLog{}, total, nil
	}
	end := offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return append([]model.AuditLog(nil), matched[offset:end]...), total, nil
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var actions []string
	for _, e := range r.entries {
		actions = append(actions, e.Action)
	}
	return actions
}
