package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrMalformedWhisper = fmt.Errorf("malformed whisper")
	ErrConnClosed       = fmt.Errorf("connection closed")
)
