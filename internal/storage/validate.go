package storage

import (
	"fmt"

	"holder-flow/internal/domain"
)

// ValidateSnapshot checks the fields every backend requires before writing a snapshot.
func ValidateSnapshot(s *domain.PositionSnapshot) error {
	switch {
	case s == nil:
		return fmt.Errorf("%w: nil snapshot", ErrInvalidInput)
	case s.HolderID == "":
		return fmt.Errorf("%w: empty holder id", ErrInvalidInput)
	case s.Shares < 0:
		return fmt.Errorf("%w: negative shares for %s on %s", ErrInvalidInput, s.HolderID, s.Date)
	case s.Percentage < 0 || s.Percentage > 100:
		return fmt.Errorf("%w: percentage %v out of range for %s on %s", ErrInvalidInput, s.Percentage, s.HolderID, s.Date)
	}
	return nil
}

// ValidateHolder checks a holder before it is written.
func ValidateHolder(h *domain.Holder) error {
	if h == nil || h.ID == "" || h.Name == "" {
		return fmt.Errorf("%w: holder needs id and name", ErrInvalidInput)
	}
	return nil
}
