package cli

import (
	"errors"
	"fmt"
)

// ExitError carries a process exit code out of a RunE function without
// calling os.Exit, so commands stay testable. Execute turns it into the
// status returned by main.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// IsExitError extracts the code from an *ExitError anywhere in err's chain.
func IsExitError(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
