// Package feed delivers ranked full-room snapshots to local subscribers.
// A subscription is an infinite, cancellable stream: after Close returns,
// no further snapshot is ever delivered on its channel.
package feed

import (
	"sync"

	"askroom/internal/domain/question"
)

// Snapshot is a point-in-time copy of a room's question set, already in
// display order.
type Snapshot struct {
	RoomCode  string              `json:"room"`
	Questions []question.Question `json:"questions"`
}

// SnapshotFeed tracks subscriptions per room and fans snapshots out.
type SnapshotFeed struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func NewSnapshotFeed() *SnapshotFeed {
	return &SnapshotFeed{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers interest in a room. The returned subscription buffers
// a small number of snapshots; when a slow consumer falls behind, older
// snapshots are dropped in favor of the newest since each snapshot is the
// full state.
func (f *SnapshotFeed) Subscribe(roomCode string) *Subscription {
	sub := &Subscription{
		feed:     f,
		roomCode: roomCode,
		ch:       make(chan Snapshot, 8),
	}
	f.mu.Lock()
	if f.subs[roomCode] == nil {
		f.subs[roomCode] = make(map[*Subscription]struct{})
	}
	f.subs[roomCode][sub] = struct{}{}
	f.mu.Unlock()
	return sub
}

// Publish delivers the snapshot to every live subscriber of the room.
func (f *SnapshotFeed) Publish(snap Snapshot) {
	f.mu.RLock()
	subs := make([]*Subscription, 0, len(f.subs[snap.RoomCode]))
	for sub := range f.subs[snap.RoomCode] {
		subs = append(subs, sub)
	}
	f.mu.RUnlock()

	for _, sub := range subs {
		sub.deliver(snap)
	}
}

// SubscriberCount reports live subscriptions for a room.
func (f *SnapshotFeed) SubscriberCount(roomCode string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[roomCode])
}

func (f *SnapshotFeed) remove(sub *Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if set, ok := f.subs[sub.roomCode]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(f.subs, sub.roomCode)
		}
	}
}

// Subscription is one caller's live view of a room.
type Subscription struct {
	feed     *SnapshotFeed
	roomCode string
	ch       chan Snapshot
	mu       sync.Mutex
	closed   bool
}

// Updates returns the snapshot stream. The channel is closed by Close.
func (s *Subscription) Updates() <-chan Snapshot {
	return s.ch
}

// Close cancels the subscription. It is safe to call more than once.
// Delivery and Close serialize on the same mutex, so once Close returns
// nothing further arrives on Updates.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()
	s.feed.remove(s)
}

func (s *Subscription) deliver(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- snap:
			return
		default:
			// Buffer full: evict the oldest snapshot and retry.
			select {
			case <-s.ch:
			default:
			}
		}
	}
}
