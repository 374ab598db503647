package repositories

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/shipstores/internal/domain"
)

// notFoundOr translates gorm's record-not-found into the domain NotFound
// error for the given entity, wrapping anything else.
func notFoundOr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound(entity)
	}
	return errors.Wrapf(err, "failed to load %s", entity)
}
