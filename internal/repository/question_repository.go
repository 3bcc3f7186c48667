package repository

import (
	"context"
	"errors"

	"askroom/internal/domain/question"
	askroom_errors "askroom/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresQuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &PostgresQuestionRepository{db: db}
}

func (r *PostgresQuestionRepository) Create(ctx context.Context, q *question.Question) error {
	if err := r.db.WithContext(ctx).Create(q).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *PostgresQuestionRepository) GetByID(ctx context.Context, roomCode string, id uuid.UUID) (question.Question, error) {
	var q question.Question
	err := r.db.WithContext(ctx).
		Where("room_code = ? AND id = ?", roomCode, id).
		First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return question.Question{}, askroom_errors.ErrNotFound
		}
		return question.Question{}, storeErr(err)
	}
	return q, nil
}

func (r *PostgresQuestionRepository) ListByRoom(ctx context.Context, roomCode string) ([]question.Question, error) {
	var qs []question.Question
	err := r.db.WithContext(ctx).
		Where("room_code = ?", roomCode).
		Order("created_at ASC").
		Find(&qs).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return qs, nil
}

func (r *PostgresQuestionRepository) SetPinned(ctx context.Context, roomCode string, id uuid.UUID, pinned bool) error {
	return r.setFlag(ctx, roomCode, id, "is_pinned", pinned)
}

func (r *PostgresQuestionRepository) SetAnswered(ctx context.Context, roomCode string, id uuid.UUID, answered bool) error {
	return r.setFlag(ctx, roomCode, id, "is_answered", answered)
}

func (r *PostgresQuestionRepository) setFlag(ctx context.Context, roomCode string, id uuid.UUID, column string, value bool) error {
	res := r.db.WithContext(ctx).
		Model(&question.Question{}).
		Where("room_code = ? AND id = ?", roomCode, id).
		Update(column, value)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return askroom_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresQuestionRepository) Delete(ctx context.Context, roomCode string, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Delete(&question.Question{}, "room_code = ? AND id = ?", roomCode, id)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return askroom_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresQuestionRepository) AddVote(ctx context.Context, roomCode string, id uuid.UUID, voterID string) (question.Question, bool, error) {
	return r.applyVote(ctx, roomCode, id, voterID, true)
}

func (r *PostgresQuestionRepository) RemoveVote(ctx context.Context, roomCode string, id uuid.UUID, voterID string) (question.Question, bool, error) {
	return r.applyVote(ctx, roomCode, id, voterID, false)
}

// applyVote serializes concurrent voters with a row lock so the counter
// and the voter set always change together. Votes is recomputed from the
// set, never incremented blindly, keeping votes == len(voted_by) even if
// a previous writer raced us to the lock.
func (r *PostgresQuestionRepository) applyVote(ctx context.Context, roomCode string, id uuid.UUID, voterID string, add bool) (question.Question, bool, error) {
	var q question.Question
	changed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("room_code = ? AND id = ?", roomCode, id).
			First(&q).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return askroom_errors.ErrNotFound
			}
			return storeErr(err)
		}

		before := len(q.VotedBy)
		if add {
			q.VotedBy = q.VotedBy.Add(voterID)
		} else {
			q.VotedBy = q.VotedBy.Remove(voterID)
		}
		if len(q.VotedBy) == before {
			return nil
		}
		q.Votes = len(q.VotedBy)
		changed = true

		res := tx.Model(&question.Question{}).
			Where("room_code = ? AND id = ?", roomCode, id).
			Select("votes", "voted_by").
			Updates(q)
		if res.Error != nil {
			return storeErr(res.Error)
		}
		return nil
	})
	if err != nil {
		return question.Question{}, false, err
	}
	return q, changed, nil
}
