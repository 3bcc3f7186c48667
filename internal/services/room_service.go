package services

import (
	"context"
	"strings"

	"askroom/internal/domain/identity"
	"askroom/internal/domain/room"
	"askroom/internal/events"
	"askroom/internal/repository"
	askroom_errors "askroom/pkg/errors"
	"askroom/pkg/logger"

	"github.com/jonboulle/clockwork"
)

// codeAttempts bounds room code generation. With ~17.6M possible codes a
// tenth consecutive collision means the code space is effectively gone.
const codeAttempts = 10

// adminRoomsLimit caps the "my rooms" listing, newest first.
const adminRoomsLimit = 5

// RoomCache is the optional read-through cache in front of room lookups.
type RoomCache interface {
	Get(ctx context.Context, code string) (*room.Room, error)
	Set(ctx context.Context, rm room.Room) error
	Invalidate(ctx context.Context, code string) error
}

type RoomService struct {
	repo  repository.RoomRepository
	cache RoomCache
	bus   events.EventBus
	clock clockwork.Clock
	log   *logger.Logger
}

func NewRoomService(repo repository.RoomRepository, cache RoomCache, bus events.EventBus, clock clockwork.Clock, log *logger.Logger) *RoomService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RoomService{repo: repo, cache: cache, bus: bus, clock: clock, log: log}
}

// Create allocates a fresh code and persists the room. The insert itself is
// the uniqueness check (insert-if-absent), so concurrent creators can never
// both claim a code; on collision a new candidate is drawn, up to
// codeAttempts times.
func (s *RoomService) Create(ctx context.Context, name string, admin Principal, adminEmail string) (room.Room, error) {
	if admin.Role != identity.RoleAdmin {
		return room.Room{}, askroom_errors.ErrUnauthorized
	}

	name = strings.TrimSpace(name)
	if name == "" || len(name) > room.MaxNameLength {
		return room.Room{}, askroom_errors.ErrInvalidInput
	}

	for attempt := 0; attempt < codeAttempts; attempt++ {
		rm := room.Room{
			Code:       room.NewCode(),
			RoomName:   name,
			AdminID:    admin.ID,
			AdminEmail: adminEmail,
			CreatedAt:  s.clock.Now().UTC(),
		}

		created, err := s.repo.CreateIfAbsent(ctx, &rm)
		if err != nil {
			return room.Room{}, err
		}
		if !created {
			continue
		}

		if s.cache != nil {
			if err := s.cache.Set(ctx, rm); err != nil && s.log != nil {
				s.log.Warnf("room cache set failed for %s: %v", rm.Code, err)
			}
		}
		if s.bus != nil {
			_ = s.bus.Publish(ctx, events.Event{
				Type:       events.EventRoomCreated,
				RoomCode:   rm.Code,
				OccurredAt: rm.CreatedAt,
			})
		}
		return rm, nil
	}

	return room.Room{}, askroom_errors.ErrExhaustedIDSpace
}

// Resolve looks a room up by its short code. Input is normalized to
// uppercase; malformed codes fail fast without touching the store.
func (s *RoomService) Resolve(ctx context.Context, code string) (room.Room, error) {
	code = room.NormalizeCode(code)
	if !room.CodePattern.MatchString(code) {
		return room.Room{}, askroom_errors.ErrInvalidInput
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, code)
		if err != nil && s.log != nil {
			s.log.Warnf("room cache get failed for %s: %v", code, err)
		}
		if cached != nil {
			return *cached, nil
		}
	}

	rm, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return room.Room{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, rm); err != nil && s.log != nil {
			s.log.Warnf("room cache set failed for %s: %v", code, err)
		}
	}
	return rm, nil
}

// ListAdminRooms returns the admin's most recent rooms.
func (s *RoomService) ListAdminRooms(ctx context.Context, admin Principal) ([]room.Room, error) {
	if admin.Role != identity.RoleAdmin {
		return nil, askroom_errors.ErrUnauthorized
	}
	return s.repo.ListByAdmin(ctx, admin.ID, adminRoomsLimit)
}
