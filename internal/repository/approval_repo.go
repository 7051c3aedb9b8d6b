package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApprovalRepository interface {
	Create(ctx context.Context, approval *model.Approval) error
	// Exists reports whether an approval already exists for the
	// (request, approver) pair.
	Exists(ctx context.Context, requestID, approverID uuid.UUID) (bool, error)
	ListByRequestID(ctx context.Context, requestID uuid.UUID) ([]model.Approval, error)
}

type approvalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, approval *model.Approval) error {
	return GetDB(ctx, r.db).Create(approval).Error
}

func (r *approvalRepository) Exists(ctx context.Context, requestID, approverID uuid.UUID) (bool, error) {
	var approval model.Approval
	err := GetDB(ctx, r.db).
		First(&approval, "request_id = ? AND approver_id = ?", requestID, approverID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *approvalRepository) ListByRequestID(ctx context.Context, requestID uuid.UUID) ([]model.Approval, error) {
	var approvals []model.Approval
	if err := GetDB(ctx, r.db).Preload("Approver").
		Where("request_id = ?", requestID).
		Order("decided_at ASC").
		Find(&approvals).Error; err != nil {
		return nil, err
	}
	return approvals, nil
}
