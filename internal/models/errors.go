package models

import "errors"

var (
	// ErrValidation marks an out of range command value. The single command is rejected.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks an unknown gear or mode name. Prior state is kept.
	ErrConfiguration = errors.New("configuration error")
	// ErrDevice marks an input device init or read failure.
	ErrDevice = errors.New("device error")
	// ErrTransport marks a failed actuator write. The frame is dropped.
	ErrTransport = errors.New("transport error")
	// ErrFatalInit marks a required resource that could not be acquired at startup.
	ErrFatalInit = errors.New("fatal init error")
)
