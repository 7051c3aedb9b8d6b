package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRequestDTO struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
}

// UpdateRequestDTO uses pointers so an omitted field is distinguishable
// from an empty one.
type UpdateRequestDTO struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
}

type RequestListFilter struct {
	Status string // PENDING, APPROVED, REJECTED or empty for all
	Page   int
	Limit  int
}

// CreatorPublic carries the owning creator's public identity fields.
type CreatorPublic struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type RequestResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Status      string           `json:"status"`
	CreatedByID string           `json:"created_by_id"`
	Creator     *CreatorPublic   `json:"creator,omitempty"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
}

type RequestPage struct {
	Items []RequestResponse `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// --- Interface ---

// RequestService orchestrates the request lifecycle: CREATOR users create
// and edit their own PENDING requests; APPROVER users can read all of them.
type RequestService interface {
	Create(ctx context.Context, creatorID string, dto CreateRequestDTO) (*RequestResponse, error)
	List(ctx context.Context, callerID, callerRole string, filter RequestListFilter) (*RequestPage, error)
	Get(ctx context.Context, id, callerID, callerRole string) (*RequestResponse, error)
	Update(ctx context.Context, id, callerID, callerRole string, dto UpdateRequestDTO) (*RequestResponse, error)
}

type requestService struct {
	repo      repository.RequestRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	bus       EventBus
}

func NewRequestService(repo repository.RequestRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager, bus EventBus) RequestService {
	return &requestService{repo: repo, auditRepo: auditRepo, txManager: txManager, bus: bus}
}

// --- Implementation ---

func (s *requestService) Create(ctx context.Context, creatorID string, dto CreateRequestDTO) (*RequestResponse, error) {
	ownerID, err := uuid.Parse(creatorID)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid user identity")
	}

	if strings.TrimSpace(dto.Title) == "" {
		return nil, apperror.Validation("Title must not be empty")
	}
	if dto.Amount != nil && dto.Amount.IsNegative() {
		return nil, apperror.Validation("Amount must not be negative")
	}

	request := &model.Request{
		Title:       dto.Title,
		Description: dto.Description,
		Amount:      dto.Amount,
		Status:      model.RequestStatusPending,
		CreatedByID: ownerID,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.repo.Create(txCtx, request); createErr != nil {
			return apperror.Internal("Failed to create request", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{"title": request.Title})
		audit := &model.AuditLog{
			UserID:   &ownerID,
			Action:   model.ActionCreateRequest,
			EntityID: request.ID.String(),
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

	resp := toRequestResponse(request)
	publish(s.bus, EventRequestCreated, resp)
	return resp, nil
}

func (s *requestService) List(ctx context.Context, callerID, callerRole string, filter RequestListFilter) (*RequestPage, error) {
	if filter.Status != "" && !model.ValidRequestStatus(filter.Status) {
		return nil, apperror.Validation("Status must be PENDING, APPROVED or REJECTED")
	}

	repoFilter := repository.RequestFilter{
		Status: filter.Status,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}

	// CREATOR callers only ever see their own requests
	if callerRole == model.RoleCreator {
		ownerID, err := uuid.Parse(callerID)
		if err != nil {
			return nil, apperror.Unauthorized("Invalid user identity")
		}
		repoFilter.CreatedByID = &ownerID
	}

	requests, total, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch requests", err)
	}

	items := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, *toRequestResponse(&requests[i]))
	}

	return &RequestPage{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *requestService) Get(ctx context.Context, id, callerID, callerRole string) (*RequestResponse, error) {
	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if callerRole == model.RoleCreator && request.CreatedByID.String() != callerID {
		return nil, apperror.Forbidden("Forbidden")
	}

	return toRequestResponse(request), nil
}

func (s *requestService) Update(ctx context.Context, id, callerID, callerRole string, dto UpdateRequestDTO) (*RequestResponse, error) {
	if callerRole != model.RoleCreator {
		return nil, apperror.Forbidden("Only creator can update request")
	}

	reqID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.NotFound("Request not found")
	}
	if dto.Title != nil && strings.TrimSpace(*dto.Title) == "" {
		return nil, apperror.Validation("Title must not be empty")
	}
	if dto.Amount != nil && dto.Amount.IsNegative() {
		return nil, apperror.Validation("Amount must not be negative")
	}

	// Fetch and validate under the row lock so a decision committing
	// concurrently cannot slip between the PENDING check and the write,
	// which would let the update revive an already decided request.
	var request *model.Request
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		found, findErr := s.repo.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Request not found")
			}
			return apperror.Internal("Failed to fetch request", findErr)
		}
		if found.CreatedByID.String() != callerID {
			return apperror.Forbidden("Forbidden")
		}
		if found.Status != model.RequestStatusPending {
			return apperror.Validation("Only PENDING request can be updated")
		}

		if dto.Title != nil {
			found.Title = *dto.Title
		}
		if dto.Description != nil {
			found.Description = *dto.Description
		}
		if dto.Amount != nil {
			found.Amount = dto.Amount
		}

		if saveErr := s.repo.Update(txCtx, found); saveErr != nil {
			return apperror.Internal("Failed to update request", saveErr)
		}

		details, _ := json.Marshal(map[string]interface{}{"title": found.Title})
		audit := &model.AuditLog{
			UserID:   &found.CreatedByID,
			Action:   model.ActionUpdateRequest,
			EntityID: found.ID.String(),
			Details:  string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return apperror.Internal("Failed to write audit log", auditErr)
		}

		request = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Re-read outside the transaction to return the creator preloaded.
	if reloaded, reloadErr := s.repo.FindByID(ctx, reqID); reloadErr == nil {
		request = reloaded
	}

	resp := toRequestResponse(request)
	publish(s.bus, EventRequestUpdated, resp)
	return resp, nil
}

// findRequest resolves an id string to a stored request, collapsing both
// malformed ids and missing rows to NotFound.
func (s *requestService) findRequest(ctx context.Context, id string) (*model.Request, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.NotFound("Request not found")
	}

	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Request not found")
		}
		return nil, apperror.Internal("Failed to fetch request", err)
	}
	return request, nil
}

// --- Helpers ---

func toRequestResponse(r *model.Request) *RequestResponse {
	resp := &RequestResponse{
		ID:          r.ID.String(),
		Title:       r.Title,
		Description: r.Description,
		Amount:      r.Amount,
		Status:      r.Status,
		CreatedByID: r.CreatedByID.String(),
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   r.UpdatedAt.Format(time.RFC3339),
	}
	if r.Creator != nil {
		resp.Creator = &CreatorPublic{
			ID:    r.Creator.ID.String(),
			Email: r.Creator.Email,
			Name:  r.Creator.Name,
			Role:  r.Creator.Role,
		}
	}
	return resp
}
