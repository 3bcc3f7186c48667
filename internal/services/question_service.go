package services

import (
	"context"
	"strings"

	"askroom/internal/analytics"
	"askroom/internal/domain/identity"
	"askroom/internal/domain/question"
	"askroom/internal/domain/room"
	"askroom/internal/events"
	"askroom/internal/ranking"
	"askroom/internal/repository"
	askroom_errors "askroom/pkg/errors"
	"askroom/pkg/logger"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// QuestionService owns the question lifecycle: submission, the idempotent
// vote toggle, admin moderation, and the ranked snapshot used by the live
// feed. It performs no retries; transient store failures surface to the
// caller.
type QuestionService struct {
	rooms repository.RoomRepository
	repo  repository.QuestionRepository
	bus   events.EventBus
	votes analytics.VoteSink
	clock clockwork.Clock
	log   *logger.Logger
}

func NewQuestionService(rooms repository.RoomRepository, repo repository.QuestionRepository, bus events.EventBus, votes analytics.VoteSink, clock clockwork.Clock, log *logger.Logger) *QuestionService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if votes == nil {
		votes = analytics.Nop{}
	}
	return &QuestionService{rooms: rooms, repo: repo, bus: bus, votes: votes, clock: clock, log: log}
}

// Submit stores a new question with zero votes. Author defaults to the
// anonymous sentinel when the participant gives no name.
func (s *QuestionService) Submit(ctx context.Context, roomCode, text, author string) (question.Question, error) {
	roomCode = room.NormalizeCode(roomCode)
	if _, err := s.rooms.GetByCode(ctx, roomCode); err != nil {
		return question.Question{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return question.Question{}, askroom_errors.ErrInvalidInput
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = question.AnonymousAuthor
	}

	q := question.Question{
		ID:        uuid.New(),
		RoomCode:  roomCode,
		Text:      text,
		Author:    author,
		Votes:     0,
		VotedBy:   question.Voters{},
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.repo.Create(ctx, &q); err != nil {
		return question.Question{}, err
	}

	s.publish(ctx, events.EventQuestionCreated, roomCode, q.ID)
	return q, nil
}

// List returns the room's questions in canonical display order.
func (s *QuestionService) List(ctx context.Context, roomCode string) ([]question.Question, error) {
	roomCode = room.NormalizeCode(roomCode)
	qs, err := s.repo.ListByRoom(ctx, roomCode)
	if err != nil {
		return nil, err
	}
	return ranking.Rank(qs), nil
}

// Vote adds the voter to the question's voter set and bumps the counter in
// one atomic step. Voting twice with the same identity is a no-op.
func (s *QuestionService) Vote(ctx context.Context, roomCode string, questionID uuid.UUID, voter Principal) (question.Question, error) {
	roomCode = room.NormalizeCode(roomCode)
	q, changed, err := s.repo.AddVote(ctx, roomCode, questionID, voter.ID.String())
	if err != nil {
		return question.Question{}, err
	}
	if changed {
		s.publish(ctx, events.EventQuestionVoted, roomCode, questionID)
		s.record(ctx, q, voter, "vote")
	}
	return q, nil
}

// Unvote removes the voter's upvote; a no-op when none is held.
func (s *QuestionService) Unvote(ctx context.Context, roomCode string, questionID uuid.UUID, voter Principal) (question.Question, error) {
	roomCode = room.NormalizeCode(roomCode)
	q, changed, err := s.repo.RemoveVote(ctx, roomCode, questionID, voter.ID.String())
	if err != nil {
		return question.Question{}, err
	}
	if changed {
		s.publish(ctx, events.EventQuestionUnvoted, roomCode, questionID)
		s.record(ctx, q, voter, "unvote")
	}
	return q, nil
}

// SetPinned toggles the pinned flag. Room admin only.
func (s *QuestionService) SetPinned(ctx context.Context, actor Principal, roomCode string, questionID uuid.UUID, pinned bool) error {
	roomCode = room.NormalizeCode(roomCode)
	if err := s.authorize(ctx, actor, roomCode); err != nil {
		return err
	}
	if err := s.repo.SetPinned(ctx, roomCode, questionID, pinned); err != nil {
		return err
	}
	s.publish(ctx, events.EventQuestionPinned, roomCode, questionID)
	return nil
}

// SetAnswered toggles the answered flag. Room admin only.
func (s *QuestionService) SetAnswered(ctx context.Context, actor Principal, roomCode string, questionID uuid.UUID, answered bool) error {
	roomCode = room.NormalizeCode(roomCode)
	if err := s.authorize(ctx, actor, roomCode); err != nil {
		return err
	}
	if err := s.repo.SetAnswered(ctx, roomCode, questionID, answered); err != nil {
		return err
	}
	s.publish(ctx, events.EventQuestionAnswered, roomCode, questionID)
	return nil
}

// Delete removes a question. Room admin only.
func (s *QuestionService) Delete(ctx context.Context, actor Principal, roomCode string, questionID uuid.UUID) error {
	roomCode = room.NormalizeCode(roomCode)
	if err := s.authorize(ctx, actor, roomCode); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, roomCode, questionID); err != nil {
		return err
	}
	s.publish(ctx, events.EventQuestionDeleted, roomCode, questionID)
	return nil
}

// authorize rejects moderation by anyone but the room's owning admin,
// before any state change.
func (s *QuestionService) authorize(ctx context.Context, actor Principal, roomCode string) error {
	if actor.Role != identity.RoleAdmin {
		return askroom_errors.ErrUnauthorized
	}
	rm, err := s.rooms.GetByCode(ctx, roomCode)
	if err != nil {
		return err
	}
	if rm.AdminID != actor.ID {
		return askroom_errors.ErrUnauthorized
	}
	return nil
}

func (s *QuestionService) publish(ctx context.Context, t events.EventType, roomCode string, questionID uuid.UUID) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(ctx, events.Event{
		Type:       t,
		RoomCode:   roomCode,
		QuestionID: questionID.String(),
		OccurredAt: s.clock.Now().UTC(),
	})
	if err != nil && s.log != nil {
		s.log.Errorf("publish %s for room %s failed: %v", t, roomCode, err)
	}
}

func (s *QuestionService) record(ctx context.Context, q question.Question, voter Principal, action string) {
	err := s.votes.Publish(ctx, analytics.VoteEvent{
		RoomCode:   q.RoomCode,
		QuestionID: q.ID.String(),
		VoterID:    voter.ID.String(),
		Action:     action,
		Votes:      q.Votes,
		Timestamp:  s.clock.Now().UTC(),
	})
	if err != nil && s.log != nil {
		s.log.Warnf("vote analytics publish failed: %v", err)
	}
}
