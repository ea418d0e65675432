package domain

import (
	"errors"
	"fmt"
)

// Domain-level errors
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrSessionNotFound   = errors.New("form session not found")
	ErrBusy              = errors.New("another mutation is in flight")
	ErrInvalidTransition = errors.New("action not allowed in the current state")
)

// UploadError is returned when the object store rejects a file of a batch.
// The remaining files of the batch are not attempted.
type UploadError struct {
	File     string
	Uploaded int // files of the batch stored before the failure
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %q failed: %v", e.File, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// PersistenceError carries the store's answer to a failed create, update or
// delete so it can be shown verbatim.
type PersistenceError struct {
	Op      string
	Status  int
	Message string
}

func (e *PersistenceError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.Status, e.Message)
}

// FetchError wraps a failed product list load.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("unable to load products: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
