package events

import "time"

// Event type constants, format: domain.action
type EventType string

const (
	EventQuestionCreated  EventType = "question.created"
	EventQuestionVoted    EventType = "question.voted"
	EventQuestionUnvoted  EventType = "question.unvoted"
	EventQuestionPinned   EventType = "question.pinned"
	EventQuestionAnswered EventType = "question.answered"
	EventQuestionDeleted  EventType = "question.deleted"
	EventRoomCreated      EventType = "room.created"
)

// Event announces that something in a room changed. Subscribers reload the
// room snapshot rather than applying deltas, so the payload stays small.
type Event struct {
	Type       EventType `json:"type"`
	RoomCode   string    `json:"room_code"`
	QuestionID string    `json:"question_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
