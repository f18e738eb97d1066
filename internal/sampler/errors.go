package sampler

import (
	"fmt"

	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/model"
)

// InsufficientKeysError is returned when pairs are requested but fewer than
// two keys are available.
type InsufficientKeysError struct {
	Available int
	Requested int
}

func (e *InsufficientKeysError) Error() string {
	return fmt.Sprintf("insufficient keys: %d pair(s) requested but only %d usable key(s) remain, at least 2 are needed",
		e.Requested, e.Available)
}

// CapacityError is returned when more pairs are requested than the mode allows.
type CapacityError struct {
	Requested int
	Max       int64
	Available int
	Mode      model.Mode
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("request exceeds capacity: %d pair(s) requested but at most %d %s pair(s) can be formed from %d key(s)",
		e.Requested, e.Max, e.Mode, e.Available)
}
