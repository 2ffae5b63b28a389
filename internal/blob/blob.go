// Package blob defines the remote store the parts table lives in: a path-addressed
// content API that returns bytes with a version token and accepts conditional overwrites.
package blob

import (
	"context"
	"errors"
	"fmt"
)

// Driver identifies a concrete store implementation.
type Driver string

const (
	// DriverGitHub stores files in a repository through the GitHub contents API.
	DriverGitHub Driver = "github"
	// DriverS3 stores objects in an S3 compatible bucket using ETag preconditions.
	DriverS3 Driver = "s3"
	// DriverFilesystem stores files under a local directory (dev).
	DriverFilesystem Driver = "fs"
	// DriverMemory keeps files in process memory (tests).
	DriverMemory Driver = "memory"
)

// Object is the current content of a key and its version token.
type Object struct {
	Key     string
	Data    []byte
	Version string
}

// PutOptions carries the write precondition and the change description.
type PutOptions struct {
	// IfMatch is the version the caller read. Empty means the caller saw no file,
	// so the write succeeds only if the key still does not exist.
	IfMatch     string
	Message     string
	ContentType string
}

// Store is the minimal contract of a remote versioned blob store.
type Store interface {
	Get(ctx context.Context, key string) (Object, error)
	// Put writes data if the precondition still holds and returns the new version.
	Put(ctx context.Context, key string, data []byte, opts PutOptions) (string, error)
	Driver() Driver
}

var (
	ErrNotFound = errors.New("blob: not found")
	ErrConflict = errors.New("blob: version conflict")
	ErrAuth     = errors.New("blob: missing or invalid write credentials")
)

// ConflictError reports a stale version token.
type ConflictError struct {
	Key      string
	Expected string
	Current  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("blob: version conflict on %s (expected %q, current %q)", e.Key, e.Expected, e.Current)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// TransientError wraps network and service failures that are safe to retry unchanged.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("blob: %s: transient failure: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientError.
func Transient(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

// IsTransient reports whether err (or anything it wraps) is a TransientError.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}
