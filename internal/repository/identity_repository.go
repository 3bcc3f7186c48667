package repository

import (
	"context"
	"errors"
	"time"

	"askroom/internal/domain/identity"
	askroom_errors "askroom/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresIdentityRepository struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) IdentityRepository {
	return &PostgresIdentityRepository{db: db}
}

func (r *PostgresIdentityRepository) CreateToken(ctx context.Context, t *identity.MagicLinkToken) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *PostgresIdentityRepository) GetTokenByHash(ctx context.Context, hash string) (identity.MagicLinkToken, error) {
	var t identity.MagicLinkToken
	err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return identity.MagicLinkToken{}, askroom_errors.ErrNotFound
		}
		return identity.MagicLinkToken{}, storeErr(err)
	}
	return t, nil
}

// MarkTokenUsed consumes the token; the used_at guard makes redemption
// single-use even when two redeemers race.
func (r *PostgresIdentityRepository) MarkTokenUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&identity.MagicLinkToken{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return askroom_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresIdentityRepository) UpsertAdmin(ctx context.Context, email string, now time.Time) (identity.Admin, error) {
	var a identity.Admin
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&a).Error
	if err == nil {
		if err := r.db.WithContext(ctx).
			Model(&identity.Admin{}).
			Where("id = ?", a.ID).
			Update("last_seen_at", now).Error; err != nil {
			return identity.Admin{}, storeErr(err)
		}
		a.LastSeenAt = now
		return a, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return identity.Admin{}, storeErr(err)
	}

	a = identity.Admin{
		ID:         uuid.New(),
		Email:      email,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
		// Lost a race with a concurrent redemption for the same email.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.UpsertAdmin(ctx, email, now)
		}
		return identity.Admin{}, storeErr(err)
	}
	return a, nil
}
