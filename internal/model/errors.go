package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrNotValid is returned when a resource or request is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrTransient is returned on transport/timeout failures where the last
	// known state remains usable and the operation may be retried.
	ErrTransient = errors.New("transient failure")
	// ErrRejected is returned when the remote side refuses an operation
	// (e.g. an illegal task transition). Local state must not change.
	ErrRejected = errors.New("rejected by remote")
)
