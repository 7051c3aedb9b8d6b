package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request status enum constants. PENDING is the only initial state;
// APPROVED and REJECTED are terminal.
const (
	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusRejected = "REJECTED"
)

// ValidRequestStatus reports whether status names a lifecycle state.
func ValidRequestStatus(status string) bool {
	return status == RequestStatusPending ||
		status == RequestStatusApproved ||
		status == RequestStatusRejected
}

// Request is a unit of work awaiting a decision. Title and description are
// mutable only while status is PENDING and only by the owning creator.
type Request struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string           `gorm:"type:varchar(255);not null" json:"title"`
	Description string           `gorm:"type:text" json:"description"`
	Amount      *decimal.Decimal `gorm:"type:numeric(18,4)" json:"amount,omitempty"` // Optional monetary value of the request
	Status      string           `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedByID uuid.UUID        `gorm:"type:uuid;not null;index" json:"created_by_id"`
	Creator     *User            `gorm:"foreignKey:CreatedByID" json:"creator,omitempty"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
