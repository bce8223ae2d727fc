package services

import "fmt"

// GenerationError indicates that tag generation failed because of the
// configuration or the submitted form data: a required field segment has
// no value, a segment list rendered zero parts, a required class could
// not be resolved, or category and class disagree. Nothing is persisted
// when it is returned.
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string {
	return e.Message
}

func generationErrorf(format string, args ...interface{}) *GenerationError {
	return &GenerationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError indicates that a generated tag still collided with an
// existing one after exhausting the retry budget.
type ConflictError struct {
	Tag      string
	Attempts int
	Err      error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("asset tag %q still conflicts after %d attempts: %v", e.Tag, e.Attempts, e.Err)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}
