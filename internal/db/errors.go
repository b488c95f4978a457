package db

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrDuplicate is returned when a write violates a unique constraint
var ErrDuplicate = errors.New("duplicate key")

// translateError maps driver-specific unique violations to ErrDuplicate.
// TranslateError on the gorm config covers both dialects; the message
// checks catch drivers that do not implement translation.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "SQLSTATE 23505") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
