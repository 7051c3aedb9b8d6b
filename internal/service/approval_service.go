package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type DecideRequestDTO struct {
	Decision string `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	Note     string `json:"note"`
}

type DecisionResult struct {
	RequestID string `json:"requestId"`
	Decision  string `json:"decision"`
	Status    string `json:"status"`
}

// ApproverPublic carries the deciding approver's public identity fields,
// never the password hash.
type ApproverPublic struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type ApprovalResponse struct {
	ID        string          `json:"id"`
	RequestID string          `json:"request_id"`
	Decision  string          `json:"decision"`
	Note      string          `json:"note"`
	Approver  *ApproverPublic `json:"approver,omitempty"`
	DecidedAt string          `json:"decided_at"`
}

// --- Interface ---

// ApprovalService enforces the decision state machine: a PENDING request is
// flipped to APPROVED or REJECTED by exactly one qualifying approval, the
// approval insert and the status update committing atomically.
type ApprovalService interface {
	Decide(ctx context.Context, requestID, approverID, approverRole string, dto DecideRequestDTO) (*DecisionResult, error)
	History(ctx context.Context, requestID, callerID, callerRole string) ([]ApprovalResponse, error)
}

type approvalService struct {
	requestRepo  repository.RequestRepository
	approvalRepo repository.ApprovalRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	bus          EventBus
}

func NewApprovalService(requestRepo repository.RequestRepository, approvalRepo repository.ApprovalRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager, bus EventBus) ApprovalService {
	return &approvalService{
		requestRepo:  requestRepo,
		approvalRepo: approvalRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		bus:          bus,
	}
}

// --- Implementation ---

func (s *approvalService) Decide(ctx context.Context, requestID, approverID, approverRole string, dto DecideRequestDTO) (*DecisionResult, error) {
	if approverRole != model.RoleApprover {
		return nil, apperror.Forbidden("Only APPROVER can approve or reject")
	}

	reqID, err := uuid.Parse(requestID)
	if err != nil {
		return nil, apperror.NotFound("Request not found")
	}
	decider, err := uuid.Parse(approverID)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid user identity")
	}
	if dto.Decision != model.DecisionApproved && dto.Decision != model.DecisionRejected {
		return nil, apperror.Validation("Decision must be APPROVED or REJECTED")
	}

	newStatus := model.RequestStatusApproved
	auditAction := model.ActionApproveRequest
	if dto.Decision == model.DecisionRejected {
		newStatus = model.RequestStatusRejected
		auditAction = model.ActionRejectRequest
	}

	// The full check-then-write sequence runs inside one transaction with
	// the request row locked, so two concurrent decisions for the same
	// request cannot both observe PENDING.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, findErr := s.requestRepo.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Request not found")
			}
			return apperror.Internal("Failed to fetch request", findErr)
		}

		if request.CreatedByID == decider {
			return apperror.Forbidden("Cannot approve or reject your own request")
		}
		if request.Status != model.RequestStatusPending {
			return apperror.Validation("Request is already decided")
		}

		exists, existsErr := s.approvalRepo.Exists(txCtx, reqID, decider)
		if existsErr != nil {
			return apperror.Internal("Failed to check existing decision", existsErr)
		}
		if exists {
			return apperror.Conflict("You have already decided this request")
		}

		approval := &model.Approval{
			RequestID:  reqID,
			ApproverID: decider,
			Decision:   dto.Decision,
			Note:       dto.Note,
			DecidedAt:  time.Now(),
		}
		if createErr := s.approvalRepo.Create(txCtx, approval); createErr != nil {
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return apperror.Conflict("You have already decided this request")
			}
			return apperror.Internal("Failed to record decision", createErr)
		}

		if updateErr := s.requestRepo.UpdateStatus(txCtx, reqID, newStatus); updateErr != nil {
			return apperror.Internal("Failed to update request status", updateErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"decision": dto.Decision,
			"note":     dto.Note,
		})
		audit := &model.AuditLog{
			UserID:   &decider,
			Action:   auditAction,
			EntityID: reqID.String(),
			Details:  string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return apperror.Internal("Failed to write audit log", auditErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &DecisionResult{
		RequestID: requestID,
		Decision:  dto.Decision,
		Status:    newStatus,
	}
	publish(s.bus, EventRequestDecided, result)
	return result, nil
}

func (s *approvalService) History(ctx context.Context, requestID, callerID, callerRole string) ([]ApprovalResponse, error) {
	reqID, err := uuid.Parse(requestID)
	if err != nil {
		return nil, apperror.NotFound("Request not found")
	}

	request, err := s.requestRepo.FindByID(ctx, reqID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Request not found")
		}
		return nil, apperror.Internal("Failed to fetch request", err)
	}

	if callerRole == model.RoleCreator && request.CreatedByID.String() != callerID {
		return nil, apperror.Forbidden("Forbidden")
	}

	approvals, err := s.approvalRepo.ListByRequestID(ctx, reqID)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch approvals", err)
	}

	result := make([]ApprovalResponse, 0, len(approvals))
	for i := range approvals {
		result = append(result, toApprovalResponse(&approvals[i]))
	}
	return result, nil
}

// --- Helpers ---

func toApprovalResponse(a *model.Approval) ApprovalResponse {
	resp := ApprovalResponse{
		ID:        a.ID.String(),
		RequestID: a.RequestID.String(),
		Decision:  a.Decision,
		Note:      a.Note,
		DecidedAt: a.DecidedAt.Format(time.RFC3339),
	}
	if a.Approver != nil {
		resp.Approver = &ApproverPublic{
			ID:    a.Approver.ID.String(),
			Email: a.Approver.Email,
			Name:  a.Approver.Name,
		}
	}
	return resp
}
