package room

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// CodePattern is the canonical room code shape: three uppercase letters,
// a hyphen, three digits (e.g. "ABC-123").
var CodePattern = regexp.MustCompile(`^[A-Z]{3}-[0-9]{3}$`)

// MaxNameLength bounds the free-text room label.
const MaxNameLength = 100

// Room represents the rooms table. The primary key is the short
// human-shareable code, globally unique among active rooms.
type Room struct {
	Code       string    `gorm:"primaryKey;size:7" json:"id"`
	RoomName   string    `gorm:"size:100;not null" json:"roomName"`
	AdminID    uuid.UUID `gorm:"type:uuid;index;not null" json:"adminId"`
	AdminEmail string    `gorm:"size:255;index" json:"adminEmail,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Room) TableName() string { return "rooms" }
