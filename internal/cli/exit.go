package cli

import (
	"errors"
	"fmt"

	"github.com/loopgate/loopgate/internal/domain"
)

// Exit codes. Typed failures get distinct codes so scripted callers can
// branch without parsing messages.
const (
	ExitOK            = 0
	ExitError         = 1 // Generic failure
	ExitNotFound      = 2
	ExitClaimConflict = 3
	ExitValidation    = 4
)

// CodeError carries an explicit exit code through Cobra's error return,
// used by run to surface the loop's stop reason to scripted callers.
type CodeError struct {
	Err  error
	Code int
}

func (e *CodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *CodeError) Unwrap() error { return e.Err }

// ExitCode maps an error to its process exit code.
func ExitCode(err error) int {
	var coded *CodeError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &coded):
		return coded.Code
	case errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrGroupNotFound),
		errors.Is(err, domain.ErrApprovalNotFound),
		errors.Is(err, domain.ErrNoPendingItems),
		errors.Is(err, domain.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, domain.ErrClaimConflict),
		errors.Is(err, domain.ErrExecutionInFlight):
		return ExitClaimConflict
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, domain.ErrEmptyNote):
		return ExitValidation
	default:
		return ExitError
	}
}
