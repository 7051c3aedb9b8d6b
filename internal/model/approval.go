package model

import (
	"time"

	"github.com/google/uuid"
)

// Decision enum constants
const (
	DecisionApproved = "APPROVED"
	DecisionRejected = "REJECTED"
)

// Approval is an immutable decision record: at most one per
// (request, approver) pair, enforced by the composite unique index and
// re-checked in application code inside the decide transaction.
type Approval struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_request_approver" json:"request_id"`
	Request    *Request  `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"-"`
	ApproverID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_request_approver" json:"approver_id"`
	Approver   *User     `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
	Decision   string    `gorm:"type:varchar(20);not null" json:"decision"` // APPROVED or REJECTED
	Note       string    `gorm:"type:text" json:"note"`
	DecidedAt  time.Time `gorm:"autoCreateTime;index" json:"decided_at"`
}
