package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"askroom/internal/domain/identity"
	"askroom/internal/domain/room"
	askroom_errors "askroom/pkg/errors"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

func adminPrincipal() Principal {
	return Principal{ID: uuid.New(), Role: identity.RoleAdmin}
}

func participantPrincipal() Principal {
	return Principal{ID: uuid.New(), Role: identity.RoleParticipant}
}

func TestCreateRoomRoundTrip(t *testing.T) {
	repo := newMemRoomRepo()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := NewRoomService(repo, nil, nil, clock, nil)

	admin := adminPrincipal()
	created, err := svc.Create(context.Background(), "All-hands Q&A", admin, "host@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !room.CodePattern.MatchString(created.Code) {
		t.Errorf("room code %q does not match %s", created.Code, room.CodePattern)
	}

	resolved, err := svc.Resolve(context.Background(), created.Code)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.RoomName != "All-hands Q&A" {
		t.Errorf("roomName = %q, want %q", resolved.RoomName, "All-hands Q&A")
	}
	if resolved.AdminID != admin.ID {
		t.Errorf("adminId = %s, want %s", resolved.AdminID, admin.ID)
	}
	if resolved.AdminEmail != "host@example.com" {
		t.Errorf("adminEmail = %q, want %q", resolved.AdminEmail, "host@example.com")
	}
}

func TestCreateRoomValidation(t *testing.T) {
	repo := newMemRoomRepo()
	svc := NewRoomService(repo, nil, nil, clockwork.NewFakeClock(), nil)

	tests := []struct {
		name    string
		actor   Principal
		room    string
		wantErr error
	}{
		{"participant cannot create", participantPrincipal(), "Town hall", askroom_errors.ErrUnauthorized},
		{"empty name", adminPrincipal(), "   ", askroom_errors.ErrInvalidInput},
		{"name too long", adminPrincipal(), strings.Repeat("x", room.MaxNameLength+1), askroom_errors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.room, tt.actor, "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateRoomExhaustedCodeSpace(t *testing.T) {
	repo := newMemRoomRepo()
	repo.alwaysCollide = true
	svc := NewRoomService(repo, nil, nil, clockwork.NewFakeClock(), nil)

	_, err := svc.Create(context.Background(), "Doomed", adminPrincipal(), "")
	if !errors.Is(err, askroom_errors.ErrExhaustedIDSpace) {
		t.Fatalf("Create error = %v, want ErrExhaustedIDSpace", err)
	}
	if repo.createAttempts != 10 {
		t.Fatalf("create attempts = %d, want exactly 10", repo.createAttempts)
	}
}

func TestResolveNormalizesCase(t *testing.T) {
	repo := newMemRoomRepo()
	svc := NewRoomService(repo, nil, nil, clockwork.NewFakeClock(), nil)

	created, err := svc.Create(context.Background(), "Case test", adminPrincipal(), "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	resolved, err := svc.Resolve(context.Background(), "  "+strings.ToLower(created.Code)+"  ")
	if err != nil {
		t.Fatalf("Resolve with lowercase input failed: %v", err)
	}
	if resolved.Code != created.Code {
		t.Errorf("resolved code = %q, want %q", resolved.Code, created.Code)
	}
}

func TestResolveErrors(t *testing.T) {
	svc := NewRoomService(newMemRoomRepo(), nil, nil, clockwork.NewFakeClock(), nil)

	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{"unknown room", "ZZZ-999", askroom_errors.ErrNotFound},
		{"malformed code", "not-a-code", askroom_errors.ErrInvalidInput},
		{"empty code", "", askroom_errors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Resolve(context.Background(), tt.code)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Resolve(%q) error = %v, want %v", tt.code, err, tt.wantErr)
			}
		})
	}
}

func TestListAdminRooms(t *testing.T) {
	repo := newMemRoomRepo()
	svc := NewRoomService(repo, nil, nil, clockwork.NewFakeClock(), nil)

	admin := adminPrincipal()
	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), "Room", admin, ""); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	// Another admin's room must not show up.
	if _, err := svc.Create(context.Background(), "Other", adminPrincipal(), ""); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rooms, err := svc.ListAdminRooms(context.Background(), admin)
	if err != nil {
		t.Fatalf("ListAdminRooms failed: %v", err)
	}
	if len(rooms) != 3 {
		t.Fatalf("got %d rooms, want 3", len(rooms))
	}

	if _, err := svc.ListAdminRooms(context.Background(), participantPrincipal()); !errors.Is(err, askroom_errors.ErrUnauthorized) {
		t.Fatalf("participant listing error = %v, want ErrUnauthorized", err)
	}
}
