package internal

import (
	"errors"
	"fmt"
)

// StoreError represents a failure opening or writing the underlying database.
type StoreError struct {
	Path string
	Op   string // "open", "migrate", "write"
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a referenced canvas, node or edge that does not exist.
type NotFoundError struct {
	Kind string // "canvas", "node", "edge", "setting"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// TxError represents a multi-collection write that failed partway and was
// rolled back.
type TxError struct {
	Op  string
	Err error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("transaction aborted [%s]: %v", e.Op, e.Err)
}

func (e *TxError) Unwrap() error {
	return e.Err
}

// VersionError reports an export payload whose version is unsupported.
type VersionError struct {
	Got  string
	Want string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported export version %q (want %q)", e.Got, e.Want)
}

// UpstreamError represents a non-success answer or network failure from the
// AI collaborator.
type UpstreamError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream error [%s]: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("upstream error [%s]: %v", e.Endpoint, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a NotFoundError anywhere in its chain.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
