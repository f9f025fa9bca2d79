package httputil

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/vault/internal/errors"
)

// Listing page bounds for the offset and limit query parameters.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// paginationError reports a bad query parameter and matches apperrors.ErrInvalidInput.
type paginationError string

func (e paginationError) Error() string { return string(e) }

func (e paginationError) Unwrap() error { return apperrors.ErrInvalidInput }

const (
	errInvalidOffset paginationError = "invalid offset parameter: must be a non-negative integer"
	errInvalidLimit  paginationError = "invalid limit parameter: must be between 1 and 100"
)

// ParsePagination reads offset (default 0) and limit (default DefaultPageLimit, at most
// MaxPageLimit) from the query string. Both are zero when an error is returned.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return 0, 0, errInvalidOffset
	}

	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageLimit)))
	if err != nil || limit < 1 || limit > MaxPageLimit {
		return 0, 0, errInvalidLimit
	}

	return offset, limit, nil
}

// Paginate returns the window [offset, offset+limit) of items, clamped to its bounds.
func Paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	return items[offset:min(offset+limit, len(items))]
}
