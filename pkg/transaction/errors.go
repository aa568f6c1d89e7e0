package transaction

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedShielded is the cause of a ParseError for transactions
	// carrying JoinSplits or Sapling spends/outputs.
	ErrUnsupportedShielded = errors.New("shielded components are not supported")

	// ErrUnsupportedVersion is the cause of a ParseError for headers that no
	// consensus era defines.
	ErrUnsupportedVersion = errors.New("unsupported transaction version")

	// ErrTrailingBytes is the cause of a ParseError when data follows a
	// complete transaction.
	ErrTrailingBytes = errors.New("trailing bytes")

	// ErrTooManyItems is the cause of a ParseError when an input or output
	// count exceeds MaxTxItems.
	ErrTooManyItems = errors.New("too many items")
)

// ParseError is returned when raw transaction bytes cannot be decoded.
type ParseError struct {
	Message string // Human-readable error message
	Cause   error  // Underlying decode error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
