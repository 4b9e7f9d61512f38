package flow

import "fmt"

// DeliveryError wraps a failed publish attempt. The submission did not
// reach the channel and the rate-limit record is left untouched.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Code implements the error-code convention used by handler logs.
func (e *DeliveryError) Code() string { return "DELIVERY_ERROR" }

// StorageError wraps a rate-limiter or session-store infrastructure failure.
// It never means "rate limited": callers surface it generically and leave
// the session untouched.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Code implements the error-code convention used by handler logs.
func (e *StorageError) Code() string { return "STORAGE_ERROR" }

// ConsistencyError indicates the contact step was reached without a draft.
// This is a bug, not a user error; the session is force-reset when raised.
type ConsistencyError struct {
	UserID int64
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("awaiting contact without a draft for user %d", e.UserID)
}

// Code implements the error-code convention used by handler logs.
func (e *ConsistencyError) Code() string { return "CONSISTENCY_FAULT" }
