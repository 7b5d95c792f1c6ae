// Package imagestore provides sinks for generated images.
//
// The generate command writes each rendered image through a Store; the
// default backend is a local directory, with an S3 backend available for
// shared buckets.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Sentinel errors for store operations.
var (
	// ErrAccessDenied indicates insufficient permissions on the destination.
	ErrAccessDenied = errors.New("access denied")

	// ErrStoreUnavailable indicates the destination could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Store persists named image blobs.
type Store interface {
	// Put writes data under name and returns the location the caller can
	// report to the user (a file path or object URL).
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// StoreError wraps a failed store operation with context.
type StoreError struct {
	// Op is the operation that failed (e.g., "Put").
	Op string

	// Backend is the store kind ("file", "s3").
	Backend string

	// Name is the image name, if applicable.
	Name string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %s: %s: %v", e.Backend, e.Op, e.Name, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Destination is a parsed --store value.
type Destination struct {
	// Backend is "file" or "s3".
	Backend string

	// Path is the directory for the file backend.
	Path string

	// Bucket and Prefix locate objects for the s3 backend.
	Bucket string
	Prefix string
}

// ParseDestination parses a store destination string.
//
// Accepted forms:
//
//	images                 local directory (relative or absolute)
//	file://some/dir        local directory, explicit scheme
//	s3://bucket/prefix     S3 bucket with optional key prefix
func ParseDestination(s string) (Destination, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Destination{}, errors.New("store destination is empty")
	}

	switch {
	case strings.HasPrefix(s, "s3://"):
		u, err := url.Parse(s)
		if err != nil {
			return Destination{}, fmt.Errorf("invalid s3 destination: %w", err)
		}
		if u.Host == "" {
			return Destination{}, errors.New("s3 destination is missing a bucket")
		}
		return Destination{
			Backend: "s3",
			Bucket:  u.Host,
			Prefix:  strings.Trim(u.Path, "/"),
		}, nil
	case strings.HasPrefix(s, "file://"):
		return Destination{Backend: "file", Path: strings.TrimPrefix(s, "file://")}, nil
	case strings.Contains(s, "://"):
		return Destination{}, fmt.Errorf("unsupported store scheme in %q", s)
	default:
		return Destination{Backend: "file", Path: s}, nil
	}
}
