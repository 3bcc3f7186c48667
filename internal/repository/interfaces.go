package repository

import (
	"context"
	"time"

	"askroom/internal/domain/identity"
	"askroom/internal/domain/question"
	"askroom/internal/domain/room"

	"github.com/google/uuid"
)

type RoomRepository interface {
	// CreateIfAbsent persists the room only when its code is still free.
	// Returns false (and no error) when the code is already taken.
	CreateIfAbsent(ctx context.Context, r *room.Room) (bool, error)
	GetByCode(ctx context.Context, code string) (room.Room, error)
	ListByAdmin(ctx context.Context, adminID uuid.UUID, limit int) ([]room.Room, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, q *question.Question) error
	GetByID(ctx context.Context, roomCode string, id uuid.UUID) (question.Question, error)
	ListByRoom(ctx context.Context, roomCode string) ([]question.Question, error)
	SetPinned(ctx context.Context, roomCode string, id uuid.UUID, pinned bool) error
	SetAnswered(ctx context.Context, roomCode string, id uuid.UUID, answered bool) error
	Delete(ctx context.Context, roomCode string, id uuid.UUID) error

	// AddVote and RemoveVote apply the votes counter and the voter-set
	// change together, under a row lock. The bool reports whether the
	// question actually changed (false for the idempotent no-op case).
	AddVote(ctx context.Context, roomCode string, id uuid.UUID, voterID string) (question.Question, bool, error)
	RemoveVote(ctx context.Context, roomCode string, id uuid.UUID, voterID string) (question.Question, bool, error)
}

type IdentityRepository interface {
	CreateToken(ctx context.Context, t *identity.MagicLinkToken) error
	GetTokenByHash(ctx context.Context, hash string) (identity.MagicLinkToken, error)
	MarkTokenUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	UpsertAdmin(ctx context.Context, email string, now time.Time) (identity.Admin, error)
}
