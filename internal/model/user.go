package model

import (
	"time"

	"github.com/google/uuid"
)

// Role enum constants
const (
	RoleCreator  = "CREATOR"
	RoleApprover = "APPROVER"
)

// ValidRole reports whether role is one of the two supported roles.
func ValidRole(role string) bool {
	return role == RoleCreator || role == RoleApprover
}

// User represents the central user entity for logic and database structure
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"` // Omit password hash from JSON responses
	Role      string    `gorm:"type:varchar(20);not null" json:"role"` // CREATOR or APPROVER
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
