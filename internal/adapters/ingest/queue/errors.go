package queue

import "errors"

// Sentinel errors surfaced to batch submitters.
var (
	// ErrClosed reports an enqueue attempt after Close.
	ErrClosed = errors.New("record queue closed")
	// ErrFull reports enqueue backpressure; the submitter may retry.
	ErrFull = errors.New("record queue full")
)
