package capture

import "errors"

var (
	// ErrCaptureTimeout means no candidate menu response arrived in time
	ErrCaptureTimeout = errors.New("menu capture timed out")
	// ErrCaptureMismatch means candidates arrived but none had the menu shape
	ErrCaptureMismatch = errors.New("no captured response looks like the menu")
)
