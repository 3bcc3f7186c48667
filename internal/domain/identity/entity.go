package identity

import (
	"time"

	"github.com/google/uuid"
)

// Roles carried in access tokens.
const (
	RoleParticipant = "participant"
	RoleAdmin       = "admin"
)

// Admin represents the admins table: a principal allowed to create rooms
// and moderate the questions of rooms it owns. Admins are provisioned
// lazily on first successful magic-link redemption.
type Admin struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email      string    `gorm:"size:255;uniqueIndex;not null"`
	CreatedAt  time.Time
	LastSeenAt time.Time
}

func (Admin) TableName() string { return "admins" }

// MagicLinkToken represents the magic_link_tokens table. Only the SHA-256
// hash of the emailed token is stored; a token is single-use and expires
// after a configured TTL.
type MagicLinkToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"size:255;index;not null"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (MagicLinkToken) TableName() string { return "magic_link_tokens" }
