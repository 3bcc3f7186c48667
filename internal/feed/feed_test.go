package feed

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"askroom/internal/domain/question"
)

func snap(code string, n int) Snapshot {
	qs := make([]question.Question, n)
	for i := range qs {
		qs[i].Text = fmt.Sprintf("q%d", i)
	}
	return Snapshot{RoomCode: code, Questions: qs}
}

func TestPublishReachesSubscribers(t *testing.T) {
	f := NewSnapshotFeed()
	a := f.Subscribe("QNA-001")
	b := f.Subscribe("QNA-001")
	other := f.Subscribe("QNA-002")
	defer a.Close()
	defer b.Close()
	defer other.Close()

	f.Publish(snap("QNA-001", 2))

	for _, sub := range []*Subscription{a, b} {
		select {
		case got := <-sub.Updates():
			if got.RoomCode != "QNA-001" || len(got.Questions) != 2 {
				t.Fatalf("got snapshot %+v", got)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive snapshot")
		}
	}

	select {
	case got := <-other.Updates():
		t.Fatalf("unrelated room received snapshot %+v", got)
	default:
	}
}

func TestNoDeliveryAfterClose(t *testing.T) {
	f := NewSnapshotFeed()
	sub := f.Subscribe("QNA-001")

	f.Publish(snap("QNA-001", 1))
	sub.Close()
	f.Publish(snap("QNA-001", 2))

	// The buffered pre-close snapshot drains first, then the channel is
	// closed. The post-close publish must never show up.
	got, ok := <-sub.Updates()
	if !ok {
		t.Fatal("channel closed before buffered snapshot drained")
	}
	if len(got.Questions) != 1 {
		t.Fatalf("drained snapshot has %d questions, want 1", len(got.Questions))
	}
	if _, ok := <-sub.Updates(); ok {
		t.Fatal("received snapshot published after Close")
	}

	if f.SubscriberCount("QNA-001") != 0 {
		t.Fatalf("subscriber count = %d after close, want 0", f.SubscriberCount("QNA-001"))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	f := NewSnapshotFeed()
	sub := f.Subscribe("QNA-001")
	sub.Close()
	sub.Close()
}

func TestSlowConsumerKeepsNewest(t *testing.T) {
	f := NewSnapshotFeed()
	sub := f.Subscribe("QNA-001")
	defer sub.Close()

	// Overflow the buffer without reading. Each snapshot is full state, so
	// dropping stale ones is fine as long as the newest survives.
	for i := 1; i <= 50; i++ {
		f.Publish(snap("QNA-001", i))
	}

	var last Snapshot
	drained := false
	for !drained {
		select {
		case s := <-sub.Updates():
			last = s
		default:
			drained = true
		}
	}
	if len(last.Questions) != 50 {
		t.Fatalf("newest snapshot has %d questions, want 50", len(last.Questions))
	}
}

func TestConcurrentPublishAndClose(t *testing.T) {
	f := NewSnapshotFeed()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		sub := f.Subscribe("QNA-001")
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range sub.Updates() {
			}
		}()
		go func() {
			defer wg.Done()
			sub.Close()
		}()
	}
	for i := 0; i < 100; i++ {
		f.Publish(snap("QNA-001", 1))
	}
	wg.Wait()

	if n := f.SubscriberCount("QNA-001"); n != 0 {
		t.Fatalf("subscriber count = %d after all closes, want 0", n)
	}
}
