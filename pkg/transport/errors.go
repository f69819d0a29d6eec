package transport

import (
	"errors"
	"fmt"
)

// Error kinds returned by the transport.
var (
	// ErrSizeUnavailable is returned when a probe cannot determine the
	// byte length of a resource.
	ErrSizeUnavailable = errors.New("resource size unavailable")

	// ErrTransferFailed is returned when a transfer fails at the network
	// or HTTP level.
	ErrTransferFailed = errors.New("transfer failed")
)

// ProbeError reports a failed size probe for a specific identifier.
type ProbeError struct {
	Identifier string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("probe %s: %v", e.Identifier, e.Err)
	}
	return fmt.Sprintf("probe %s: status %d", e.Identifier, e.StatusCode)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ProbeError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches ErrSizeUnavailable.
func (e *ProbeError) Is(target error) bool {
	return target == ErrSizeUnavailable
}

// TransferError reports a failed transfer for a specific identifier.
type TransferError struct {
	Identifier string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *TransferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transfer %s: %v", e.Identifier, e.Err)
	}
	return fmt.Sprintf("transfer %s: status %d", e.Identifier, e.StatusCode)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransferError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches ErrTransferFailed.
func (e *TransferError) Is(target error) bool {
	return target == ErrTransferFailed
}
