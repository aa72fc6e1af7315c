package seq

import (
	"errors"
	"fmt"

	"github.com/sarchlab/flashdv/flash"
)

// ErrOperationTimeout reports that the blocking wait for operation
// completion never resolved. It is fatal to the run.
var ErrOperationTimeout = errors.New(
	"seq: flash operation did not complete in time")

// A CheckMismatchError reports that the backdoor-verified result of an
// operation disagrees with the expectation. It is the primary failure
// signal of the tool and aborts the run.
type CheckMismatchError struct {
	Op    flash.Operation
	Cause error
}

func (e *CheckMismatchError) Error() string {
	return fmt.Sprintf("seq: check mismatch for %s op %s at 0x%X: %v",
		e.Op.Kind, e.Op.ID, e.Op.Address, e.Cause)
}

func (e *CheckMismatchError) Unwrap() error {
	return e.Cause
}
