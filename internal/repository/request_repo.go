package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestFilter scopes list queries. CreatedByID narrows to a single
// creator's requests; Status narrows to one lifecycle state.
type RequestFilter struct {
	CreatedByID *uuid.UUID
	Status      string
	Page        int
	Limit       int
}

type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error)
	// FindByIDForUpdate locks the request row for the duration of the
	// surrounding transaction. Must be called inside RunInTx.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Request, error)
	List(ctx context.Context, filter RequestFilter) ([]model.Request, int64, error)
	Update(ctx context.Context, req *model.Request) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var req model.Request
	if err := GetDB(ctx, r.db).Preload("Creator").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var req model.Request
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]model.Request, int64, error) {
	var requests []model.Request
	var total int64

	db := GetDB(ctx, r.db)
	scope := func(q *gorm.DB) *gorm.DB {
		if filter.CreatedByID != nil {
			q = q.Where("created_by_id = ?", *filter.CreatedByID)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		return q
	}

	if err := scope(db.Model(&model.Request{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := scope(db.Preload("Creator")).
		Order("created_at DESC").Offset(offset).Limit(filter.Limit).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *requestRepository) Update(ctx context.Context, req *model.Request) error {
	// Only the creator-editable columns; status changes go through UpdateStatus.
	return GetDB(ctx, r.db).Model(req).Updates(map[string]interface{}{
		"title":       req.Title,
		"description": req.Description,
		"amount":      req.Amount,
	}).Error
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.Request{}).Where("id = ?", id).
		Update("status", status).Error
}
