package repository

import (
	"errors"
	"fmt"

	askroom_errors "askroom/pkg/errors"

	"gorm.io/gorm"
)

// storeErr maps driver and connection failures onto the transient
// store-unavailable sentinel so callers match on one error. Well-known
// gorm errors keep their own sentinel mapping.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return askroom_errors.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return askroom_errors.ErrAlreadyExists
	}
	return fmt.Errorf("%w: %v", askroom_errors.ErrStoreUnavailable, err)
}
