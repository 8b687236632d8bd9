package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPayment   = errors.New("invalid payment information")
	ErrCustomerNotFound = errors.New("customer not found")
)

type ErrorKind string

const (
	KindInvalid  ErrorKind = "invalid"
	KindNotFound ErrorKind = "not_found"
	KindStore    ErrorKind = "store"
)

// ReplyError carries a user-facing reply alongside the underlying cause.
// Reply never contains store error detail.
type ReplyError struct {
	Kind  ErrorKind
	Reply string
	Err   error
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Kind, e.Err)
}

func (e *ReplyError) Unwrap() error { return e.Err }
