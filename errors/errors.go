package errors

import "fmt"

var (
	ErrWorkerPanic           = fmt.Errorf("worker panic")
	ErrInvalidPayload        = fmt.Errorf("invalid event payload")
	ErrUnknownConversation   = fmt.Errorf("unknown conversation")
	ErrUnknownSection        = fmt.Errorf("unknown section")
	ErrNoEligibleTarget      = fmt.Errorf("no eligible conversation to simulate")
	ErrEmptySeed             = fmt.Errorf("seed contains no conversation")
	ErrDuplicateConversation = fmt.Errorf("duplicate conversation id")
	ErrEmptyPhrases          = fmt.Errorf("no simulated phrase configured")
	ErrToneDevice            = fmt.Errorf("tone device failure")
	ErrUnknownToneDevice     = fmt.Errorf("unknown tone device")
)
