package batches

import "errors"

var (
	// ErrEmptyInput indicates a blank job description, question or count.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBatchFailed indicates no candidate produced a usable application.
	ErrBatchFailed = errors.New("batch failed")

	// ErrNotFound indicates an entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates access is not allowed.
	ErrForbidden = errors.New("forbidden")

	// ErrNotReady indicates the batch has not completed yet.
	ErrNotReady = errors.New("batch not completed")
)
