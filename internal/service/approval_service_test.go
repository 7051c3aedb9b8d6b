package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type approvalServiceFixture struct {
	svc          ApprovalService
	requestRepo  *fakeRequestRepo
	approvalRepo *fakeApprovalRepo
	audit        *fakeAuditRepo
	bus          *fakeEventBus
}

func newApprovalFixture(t *testing.T) *approvalServiceFixture {
	t.Helper()
	requestRepo := newFakeRequestRepo()
	approvalRepo := newFakeApprovalRepo()
	audit := newFakeAuditRepo()
	bus := &fakeEventBus{}
	return &approvalServiceFixture{
		svc:          NewApprovalService(requestRepo, approvalRepo, audit, &fakeTxManager{}, bus),
		requestRepo:  requestRepo,
		approvalRepo: approvalRepo,
		audit:        audit,
		bus:          bus,
	}
}

func (f *approvalServiceFixture) seedRequest(t *testing.T, creatorID uuid.UUID) *model.Request {
	t.Helper()
	req := &model.Request{
		Title:       "Needs decision",
		Status:      model.RequestStatusPending,
		CreatedByID: creatorID,
	}
	require.NoError(t, f.requestRepo.Create(context.Background(), req))
	return req
}

func TestDecideApprovesAndFlipsStatus(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()
	creator := uuid.New()
	approver := uuid.New()
	req := f.seedRequest(t, creator)

	result, err := f.svc.Decide(ctx, req.ID.String(), approver.String(), model.RoleApprover, DecideRequestDTO{
		Decision: model.DecisionApproved,
		Note:     "ok",
	})
	require.NoError(t, err)
	assert.Equal(t, req.ID.String(), result.RequestID)
	assert.Equal(t, model.DecisionApproved, result.Decision)
	assert.Equal(t, model.RequestStatusApproved, result.Status)

	stored, err := f.requestRepo.FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusApproved, stored.Status)

	approvals, err := f.approvalRepo.ListByRequestID(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 1)
	assert.Equal(t, approver, approvals[0].ApproverID)
	assert.Equal(t, "ok", approvals[0].Note)

	assert.Equal(t, []string{model.ActionApproveRequest}, f.audit.actions())
	assert.Equal(t, []string{EventRequestDecided}, f.bus.published())
}

func TestDecideRejectSetsRejectedStatus(t *testing.T) {
	f := newApprovalFixture(t)
	req := f.seedRequest(t, uuid.New())

	result, err := f.svc.Decide(context.Background(), req.ID.String(), uuid.New().String(), model.RoleApprover, DecideRequestDTO{
		Decision: model.DecisionRejected,
		Note:     "not this quarter",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusRejected, result.Status)
	assert.Equal(t, []string{model.ActionRejectRequest}, f.audit.actions())
}

func TestDecideRequiresApproverRole(t *testing.T) {
	f := newApprovalFixture(t)
	req := f.seedRequest(t, uuid.New())

	_, err := f.svc.Decide(context.Background(), req.ID.String(), uuid.New().String(), model.RoleCreator, DecideRequestDTO{
		Decision: model.DecisionApproved,
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestDecideMissingRequestNotFound(t *testing.T) {
	f := newApprovalFixture(t)

	_, err := f.svc.Decide(context.Background(), uuid.New().String(), uuid.New().String(), model.RoleApprover, DecideRequestDTO{
		Decision: model.DecisionApproved,
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestDecideForbidsSelfDecision(t *testing.T) {
	f := newApprovalFixture(t)
	creator := uuid.New()
	req := f.seedRequest(t, creator)

	// Even with the APPROVER role the creator cannot decide their own request
	_, err := f.svc.Decide(context.Background(), req.ID.String(), creator.String(), model.RoleApprover, DecideRequestDTO{
		Decision: model.DecisionApproved,
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestDecideAlreadyDecidedFailsValidation(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()
	req := f.seedRequest(t, uuid.New())
	first := uuid.New().String()
	second := uuid.New().String()

	_, err := f.svc.Decide(ctx, req.ID.String(), first, model.RoleApprover, DecideRequestDTO{Decision: model.DecisionApproved})
	require.NoError(t, err)

	// A different approver, any decision payload: still rejected
	for _, decision := range []string{model.DecisionApproved, model.DecisionRejected} {
		_, err = f.svc.Decide(ctx, req.ID.String(), second, model.RoleApprover, DecideRequestDTO{Decision: decision})
		require.Error(t, err)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	}
}

func TestDecideDuplicatePairConflicts(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()
	req := f.seedRequest(t, uuid.New())
	approver := uuid.New()

	// Pre-existing approval with the request still PENDING simulates the
	// race the composite unique index guards against
	require.NoError(t, f.approvalRepo.Create(ctx, &model.Approval{
		RequestID:  req.ID,
		ApproverID: approver,
		Decision:   model.DecisionApproved,
	}))

	_, err := f.svc.Decide(ctx, req.ID.String(), approver.String(), model.RoleApprover, DecideRequestDTO{
		Decision: model.DecisionApproved,
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestConcurrentDecidesExactlyOneWins(t *testing.T) {
	f := newApprovalFixture(t)
	req := f.seedRequest(t, uuid.New())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Decide(context.Background(), req.ID.String(), uuid.New().String(), model.RoleApprover, DecideRequestDTO{
				Decision: model.DecisionApproved,
			})
		}(i)
	}
	wg.Wait()

	var successes, validationFailures int
	for _, err := range errs {
		if err == nil {
			successes++
		} else if apperror.KindOf(err) == apperror.KindValidation {
			validationFailures++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, validationFailures)

	approvals, err := f.approvalRepo.ListByRequestID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Len(t, approvals, 1)
}

func TestHistoryOrderingAndAccess(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()
	creator := uuid.New()
	req := f.seedRequest(t, creator)

	first := uuid.New().String()
	_, err := f.svc.Decide(ctx, req.ID.String(), first, model.RoleApprover, DecideRequestDTO{
		Decision: model.DecisionApproved,
		Note:     "ok",
	})
	require.NoError(t, err)

	// Non-owner creator cannot see history
	_, err = f.svc.History(ctx, req.ID.String(), uuid.New().String(), model.RoleCreator)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	// Owner can
	history, err := f.svc.History(ctx, req.ID.String(), creator.String(), model.RoleCreator)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.DecisionApproved, history[0].Decision)
	assert.Equal(t, "ok", history[0].Note)

	// Any approver can
	history, err = f.svc.History(ctx, req.ID.String(), uuid.New().String(), model.RoleApprover)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	// Missing request is NotFound
	_, err = f.svc.History(ctx, uuid.New().String(), creator.String(), model.RoleCreator)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestHistoryChronologicalOrder(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()
	req := f.seedRequest(t, uuid.New())

	// Seed approvals out of insertion order to exercise the sort
	base := time.Now()
	for _, offset := range []time.Duration{2 * time.Second, 0, time.Second} {
		require.NoError(t, f.approvalRepo.Create(ctx, &model.Approval{
			RequestID:  req.ID,
			ApproverID: uuid.New(),
			Decision:   model.DecisionApproved,
			DecidedAt:  base.Add(offset),
		}))
	}

	history, err := f.svc.History(ctx, req.ID.String(), uuid.New().String(), model.RoleApprover)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.LessOrEqual(t, history[i-1].DecidedAt, history[i].DecidedAt)
	}
}
