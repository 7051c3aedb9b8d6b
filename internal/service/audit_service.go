package service

import (
	"context"
	"time"

	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

type AuditLogResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	UserEmail string `json:"user_email"`
	Action    string `json:"action"`
	EntityID  string `json:"entity_id"`
	Details   string `json:"details"`
	CreatedAt string `json:"created_at"`
}

// AuditLogFilter carries the optional query filters for the audit trail.
type AuditLogFilter struct {
	Action string
	UserID string
	Page   int
	Limit  int
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, filter AuditLogFilter) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

// GetAuditLogs retrieves paginated audit records with users pre-loaded,
// optionally narrowed by action or acting user.
func (s *auditService) GetAuditLogs(ctx context.Context, filter AuditLogFilter) ([]AuditLogResponse, int64, error) {
	repoFilter := repository.AuditFilter{
		Action: filter.Action,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.UserID != "" {
		actorID, err := uuid.Parse(filter.UserID)
		if err != nil {
			return nil, 0, apperror.Validation("user_id must be a valid UUID")
		}
		repoFilter.UserID = &actorID
	}

	logs, total, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, apperror.Internal("Failed to fetch audit logs", err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		userEmail := "System"
		userID := ""
		if l.User != nil {
			userEmail = l.User.Email
		}
		if l.UserID != nil {
			userID = l.UserID.String()
		}

		res = append(res, AuditLogResponse{
			ID:        l.ID.String(),
			UserID:    userID,
			UserEmail: userEmail,
			Action:    l.Action,
			EntityID:  l.EntityID,
			Details:   l.Details,
			CreatedAt: l.CreatedAt.Format(time.RFC3339),
		})
	}

	return res, total, nil
}
