package sighash

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of precondition violation.
type ErrorCode int

// These constants are used to identify a specific Error.
const (
	// ErrNilTransaction indicates no transaction was supplied.
	ErrNilTransaction ErrorCode = iota

	// ErrNilSignature indicates verification was requested without a
	// signature value.
	ErrNilSignature

	// ErrMissingSigHashType indicates a signature that does not carry the
	// signature hash type it was produced with. Verification never assumes
	// one.
	ErrMissingSigHashType

	// ErrInputIndexOutOfRange indicates the input index does not refer to
	// an input of the transaction.
	ErrInputIndexOutOfRange

	// ErrMissingPrevOut indicates a Sapling-era digest was requested for an
	// input whose spent output, and hence its value, is unknown.
	ErrMissingPrevOut

	// ErrNilKey indicates a missing private or public key.
	ErrNilKey

	// ErrInvalidSigHashType indicates a signature hash type that does not
	// fit in the single byte appended to a serialized signature.
	ErrInvalidSigHashType

	// numErrorCodes is the maximum error code number used in tests.
	numErrorCodes
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrNilTransaction:       "ErrNilTransaction",
	ErrNilSignature:         "ErrNilSignature",
	ErrMissingSigHashType:   "ErrMissingSigHashType",
	ErrInputIndexOutOfRange: "ErrInputIndexOutOfRange",
	ErrMissingPrevOut:       "ErrMissingPrevOut",
	ErrNilKey:               "ErrNilKey",
	ErrInvalidSigHashType:   "ErrInvalidSigHashType",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error is returned for malformed calls. It is raised before any hashing,
// so a caller can always tell a malformed call apart from a signature that
// simply does not verify.
type Error struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// precondition creates an Error given a set of arguments.
func precondition(c ErrorCode, format string, args ...interface{}) Error {
	return Error{ErrorCode: c, Description: fmt.Sprintf(format, args...)}
}

// IsErrorCode reports whether err is an Error with the given code.
func IsErrorCode(err error, c ErrorCode) bool {
	var serr Error
	return errors.As(err, &serr) && serr.ErrorCode == c
}
