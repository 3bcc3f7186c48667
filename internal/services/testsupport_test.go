package services

import (
	"context"
	"sync"
	"time"

	"askroom/internal/analytics"
	"askroom/internal/domain/identity"
	"askroom/internal/domain/question"
	"askroom/internal/domain/room"
	"askroom/internal/events"
	askroom_errors "askroom/pkg/errors"

	"github.com/google/uuid"
)

// In-memory repository fakes mirroring the Postgres contracts.

type memRoomRepo struct {
	mu             sync.Mutex
	rooms          map[string]room.Room
	createAttempts int
	alwaysCollide  bool
}

func newMemRoomRepo() *memRoomRepo {
	return &memRoomRepo{rooms: make(map[string]room.Room)}
}

func (r *memRoomRepo) CreateIfAbsent(ctx context.Context, rm *room.Room) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createAttempts++
	if r.alwaysCollide {
		return false, nil
	}
	if _, exists := r.rooms[rm.Code]; exists {
		return false, nil
	}
	r.rooms[rm.Code] = *rm
	return true, nil
}

func (r *memRoomRepo) GetByCode(ctx context.Context, code string) (room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[code]
	if !ok {
		return room.Room{}, askroom_errors.ErrNotFound
	}
	return rm, nil
}

func (r *memRoomRepo) ListByAdmin(ctx context.Context, adminID uuid.UUID, limit int) ([]room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []room.Room
	for _, rm := range r.rooms {
		if rm.AdminID == adminID {
			out = append(out, rm)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memQuestionRepo struct {
	mu        sync.Mutex
	questions map[uuid.UUID]question.Question
}

func newMemQuestionRepo() *memQuestionRepo {
	return &memQuestionRepo{questions: make(map[uuid.UUID]question.Question)}
}

func (r *memQuestionRepo) Create(ctx context.Context, q *question.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions[q.ID] = q.Clone()
	return nil
}

func (r *memQuestionRepo) GetByID(ctx context.Context, roomCode string, id uuid.UUID) (question.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[id]
	if !ok || q.RoomCode != roomCode {
		return question.Question{}, askroom_errors.ErrNotFound
	}
	return q.Clone(), nil
}

func (r *memQuestionRepo) ListByRoom(ctx context.Context, roomCode string) ([]question.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []question.Question
	for _, q := range r.questions {
		if q.RoomCode == roomCode {
			out = append(out, q.Clone())
		}
	}
	return out, nil
}

func (r *memQuestionRepo) SetPinned(ctx context.Context, roomCode string, id uuid.UUID, pinned bool) error {
	return r.update(roomCode, id, func(q *question.Question) { q.IsPinned = pinned })
}

func (r *memQuestionRepo) SetAnswered(ctx context.Context, roomCode string, id uuid.UUID, answered bool) error {
	return r.update(roomCode, id, func(q *question.Question) { q.IsAnswered = answered })
}

func (r *memQuestionRepo) update(roomCode string, id uuid.UUID, fn func(*question.Question)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[id]
	if !ok || q.RoomCode != roomCode {
		return askroom_errors.ErrNotFound
	}
	fn(&q)
	r.questions[id] = q
	return nil
}

func (r *memQuestionRepo) Delete(ctx context.Context, roomCode string, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[id]
	if !ok || q.RoomCode != roomCode {
		return askroom_errors.ErrNotFound
	}
	delete(r.questions, id)
	return nil
}

func (r *memQuestionRepo) AddVote(ctx context.Context, roomCode string, id uuid.UUID, voterID string) (question.Question, bool, error) {
	return r.applyVote(roomCode, id, voterID, true)
}

func (r *memQuestionRepo) RemoveVote(ctx context.Context, roomCode string, id uuid.UUID, voterID string) (question.Question, bool, error) {
	return r.applyVote(roomCode, id, voterID, false)
}

func (r *memQuestionRepo) applyVote(roomCode string, id uuid.UUID, voterID string, add bool) (question.Question, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[id]
	if !ok || q.RoomCode != roomCode {
		return question.Question{}, false, askroom_errors.ErrNotFound
	}
	before := len(q.VotedBy)
	if add {
		q.VotedBy = q.VotedBy.Add(voterID)
	} else {
		q.VotedBy = q.VotedBy.Remove(voterID)
	}
	changed := len(q.VotedBy) != before
	q.Votes = len(q.VotedBy)
	r.questions[id] = q
	return q.Clone(), changed, nil
}

type memIdentityRepo struct {
	mu     sync.Mutex
	tokens map[string]identity.MagicLinkToken // keyed by hash
	admins map[string]identity.Admin          // keyed by email
}

func newMemIdentityRepo() *memIdentityRepo {
	return &memIdentityRepo{
		tokens: make(map[string]identity.MagicLinkToken),
		admins: make(map[string]identity.Admin),
	}
}

func (r *memIdentityRepo) CreateToken(ctx context.Context, t *identity.MagicLinkToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[t.TokenHash] = *t
	return nil
}

func (r *memIdentityRepo) GetTokenByHash(ctx context.Context, hash string) (identity.MagicLinkToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[hash]
	if !ok {
		return identity.MagicLinkToken{}, askroom_errors.ErrNotFound
	}
	return t, nil
}

func (r *memIdentityRepo) MarkTokenUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, t := range r.tokens {
		if t.ID == id {
			if t.UsedAt != nil {
				return askroom_errors.ErrNotFound
			}
			used := at
			t.UsedAt = &used
			r.tokens[hash] = t
			return nil
		}
	}
	return askroom_errors.ErrNotFound
}

func (r *memIdentityRepo) UpsertAdmin(ctx context.Context, email string, now time.Time) (identity.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.admins[email]; ok {
		a.LastSeenAt = now
		r.admins[email] = a
		return a, nil
	}
	a := identity.Admin{ID: uuid.New(), Email: email, CreatedAt: now, LastSeenAt: now}
	r.admins[email] = a
	return a, nil
}

// recordingBus captures published events without Redis.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(ctx context.Context, event events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *recordingBus) Subscribe(events.Handler) {}
func (b *recordingBus) Start() error             { return nil }
func (b *recordingBus) Stop() error              { return nil }

func (b *recordingBus) types() []events.EventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]events.EventType, len(b.events))
	for i, e := range b.events {
		out[i] = e.Type
	}
	return out
}

// recordingSink captures vote analytics events.
type recordingSink struct {
	mu     sync.Mutex
	events []analytics.VoteEvent
}

func (s *recordingSink) Publish(ctx context.Context, ev analytics.VoteEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// capturingMailer remembers the last magic link sent.
type capturingMailer struct {
	mu    sync.Mutex
	email string
	link  string
}

func (m *capturingMailer) SendMagicLink(ctx context.Context, email, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.email = email
	m.link = link
	return nil
}
