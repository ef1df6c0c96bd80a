package errors

import "errors"

var (
	ErrAlreadyStarting = errors.New("service is already starting")
	ErrAlreadyStopping = errors.New("service is already stopping")
	ErrStopInFlight    = errors.New("cannot start while a stop is in flight")
)
