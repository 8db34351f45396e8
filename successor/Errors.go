package successor

import (
	"errors"
	"fmt"
)

// SFError reports a contract violation detected at the boundary of a
// successor feature operation. The Op field names the operation that
// failed and Err wraps one of the package's sentinel errors.
type SFError struct {
	Op  string
	Err error
}

// Error satisifes the error interface
func (e *SFError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the wrapped error so that errors.Is can be used to
// check the error category
func (e *SFError) Unwrap() error {
	return e.Err
}

var (
	// ErrConfig is reported for invalid construction arguments, such as
	// a non-positive learning rate or a noise initializer which
	// produces matrices of the wrong shape.
	ErrConfig = errors.New("invalid configuration")

	// ErrOutOfRange is reported when a policy index does not refer to
	// a policy in the store
	ErrOutOfRange = errors.New("out of range")

	// ErrInvalidArgument is reported when arguments are inconsistent
	// with each other, such as batch sequences of different lengths
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrShape is reported when a feature vector or action index does
	// not fit the shape of a table
	ErrShape = errors.New("shape mismatch")
)

// newError returns a new *SFError for operation op which wraps the
// sentinel error kind with a formatted description
func newError(op string, kind error, format string, args ...interface{}) error {
	return &SFError{
		Op:  op,
		Err: fmt.Errorf("%w: "+format, append([]interface{}{kind}, args...)...),
	}
}

// IsConfig returns whether an error reports an invalid configuration
func IsConfig(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsOutOfRange returns whether an error reports a policy index outside
// of the range of existing policies
func IsOutOfRange(err error) bool {
	return errors.Is(err, ErrOutOfRange)
}

// IsInvalidArgument returns whether an error reports inconsistent
// arguments
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsShape returns whether an error reports a shape mismatch
func IsShape(err error) bool {
	return errors.Is(err, ErrShape)
}
