package service

import (
	"errors"

	"github.com/cloo-solutions/dupefinder/internal/domain"
)

// isSoft reports whether err is a partial-data condition that callers
// degrade on instead of failing.
func isSoft(err error) bool {
	return errors.Is(err, domain.ErrPricesUnavailable) ||
		errors.Is(err, domain.ErrIngredientsNotFound) ||
		errors.Is(err, domain.ErrPageFetchFailed)
}
