package repository

import (
	"context"
	"errors"

	"askroom/internal/domain/room"
	askroom_errors "askroom/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &PostgresRoomRepository{db: db}
}

// CreateIfAbsent relies on ON CONFLICT DO NOTHING so two concurrent
// creators can never both claim the same code; the check and the write
// are a single statement.
func (r *PostgresRoomRepository) CreateIfAbsent(ctx context.Context, rm *room.Room) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(rm)
	if res.Error != nil {
		return false, storeErr(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresRoomRepository) GetByCode(ctx context.Context, code string) (room.Room, error) {
	var rm room.Room
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&rm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return room.Room{}, askroom_errors.ErrNotFound
		}
		return room.Room{}, storeErr(err)
	}
	return rm, nil
}

func (r *PostgresRoomRepository) ListByAdmin(ctx context.Context, adminID uuid.UUID, limit int) ([]room.Room, error) {
	var rooms []room.Room
	err := r.db.WithContext(ctx).
		Where("admin_id = ?", adminID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rooms).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return rooms, nil
}
