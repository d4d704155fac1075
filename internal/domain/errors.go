package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrInternalError = errors.New("internal error")
	ErrUserNotFound  = errors.New("user not found")
	ErrTeamNotFound  = errors.New("team not found")
	ErrNotTeamMember = errors.New("user is not a member of this team")
	ErrNameRequired  = errors.New("name is required")
	ErrNameTooLong   = errors.New("name exceeds maximum length")
	ErrIconRequired  = errors.New("icon is required")

	ErrInvalidGranularity = errors.New("invalid time granularity")
	ErrInvalidPeriodIndex = errors.New("invalid period index")
	ErrInvalidYear        = errors.New("invalid year")
	ErrInvalidPolarity    = errors.New("invalid polarity")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidDateRange   = errors.New("invalid date range")

	ErrChargeNotFound          = errors.New("charge not found")
	ErrCategoryNotFound        = errors.New("category not found")
	ErrCategoryAlreadyExists   = errors.New("category with this name already exists")
	ErrCategoryLimitReached    = errors.New("custom category limit reached")
	ErrDefaultCategoryReadOnly = errors.New("default categories cannot be deleted")
	ErrCategoryOrderNotFound   = errors.New("category order not found")
	ErrCategoryNotInOrder      = errors.New("category is not part of the order")
)

// Validation constants
const (
	MaxCategoryNameLength = 50
	MaxCustomCategories   = 20
	MaxChargeNoteLength   = 255
)

// PartialFailureError reports a category deletion whose record cascade did not
// complete. The category itself stays deleted.
type PartialFailureError struct {
	CategoryID      int32
	FailedRecordIDs []int32
	Err             error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("category %d deleted but %d charge records could not be updated: %v",
		e.CategoryID, len(e.FailedRecordIDs), e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}
