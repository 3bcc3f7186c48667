package feed

import (
	"context"
	"fmt"

	"askroom/internal/events"
	"askroom/internal/ranking"
	"askroom/internal/repository"
	"askroom/pkg/logger"
)

// Frame is the wire shape pushed to websocket clients.
type Frame struct {
	Type     string   `json:"type"`
	Snapshot Snapshot `json:"snapshot"`
}

// Bridge connects the cross-instance event bus to local consumers: on any
// room event it reloads the room's questions, ranks them, and publishes the
// fresh snapshot to the feed. The feed is the single delivery path; every
// local consumer, websocket connections included, drains its own
// subscription.
type Bridge struct {
	questions repository.QuestionRepository
	feed      *SnapshotFeed
	log       *logger.Logger
}

func NewBridge(questions repository.QuestionRepository, f *SnapshotFeed, log *logger.Logger) *Bridge {
	return &Bridge{questions: questions, feed: f, log: log}
}

// Attach registers the bridge on the bus. Call once before bus.Start.
func (b *Bridge) Attach(bus events.EventBus) {
	bus.Subscribe(b.handle)
}

func (b *Bridge) handle(ctx context.Context, ev events.Event) error {
	snap, err := b.Reload(ctx, ev.RoomCode)
	if err != nil {
		return fmt.Errorf("reload room %s after %s: %w", ev.RoomCode, ev.Type, err)
	}
	b.feed.Publish(snap)
	return nil
}

// Reload fetches and ranks the current question set of a room.
func (b *Bridge) Reload(ctx context.Context, roomCode string) (Snapshot, error) {
	qs, err := b.questions.ListByRoom(ctx, roomCode)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{RoomCode: roomCode, Questions: ranking.Rank(qs)}, nil
}
