package question

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// AnonymousAuthor is the sentinel display name used when a participant
// submits without identifying themselves.
const AnonymousAuthor = "anonymous"

// Question represents the questions table. Votes and VotedBy move together:
// a voter identity appears in VotedBy at most once and Votes always equals
// len(VotedBy).
type Question struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoomCode   string    `gorm:"size:7;index;not null" json:"roomId"`
	Text       string    `gorm:"not null" json:"text"`
	Author     string    `gorm:"size:100;not null" json:"author"`
	Votes      int       `gorm:"not null;default:0" json:"votes"`
	VotedBy    Voters    `gorm:"type:jsonb;serializer:json" json:"votedBy"`
	IsPinned   bool      `gorm:"not null;default:false" json:"isPinned"`
	IsAnswered bool      `gorm:"not null;default:false" json:"isAnswered"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Question) TableName() string { return "questions" }

// Voters is the set of participant identities holding an active upvote.
type Voters []string

func (v Voters) Contains(voterID string) bool {
	return slices.Contains(v, voterID)
}

// Add returns the set with voterID included; no-op when already present.
func (v Voters) Add(voterID string) Voters {
	if v.Contains(voterID) {
		return v
	}
	return append(slices.Clone(v), voterID)
}

// Remove returns the set without voterID; no-op when absent.
func (v Voters) Remove(voterID string) Voters {
	i := slices.Index(v, voterID)
	if i < 0 {
		return v
	}
	out := slices.Clone(v)
	return append(out[:i], out[i+1:]...)
}

// Clone produces a deep copy so snapshots handed to subscribers cannot
// alias repository state.
func (q Question) Clone() Question {
	out := q
	out.VotedBy = slices.Clone(q.VotedBy)
	return out
}
