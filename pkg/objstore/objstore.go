package objstore

import (
	"context"
	"errors"
	"time"
)

// DefaultScheme is the location prefix identifying object-store URIs when
// Config.Scheme is left empty.
const DefaultScheme = "s3://"

// Classified failures a Session.Get may return. Providers map their own
// transport errors onto these sentinels; anything else is treated as a
// transient failure by the fetch adapter.
var (
	ErrNotFound           = errors.New("object not found")
	ErrAccessDenied       = errors.New("object access denied")
	ErrCredentialsMissing = errors.New("object store credentials missing")
	ErrTooLarge           = errors.New("object too large")
)

// Session is one open connection to an object store. Sessions are scoped to
// a single orchestration call: opened at the start, closed at the end,
// regardless of outcome.
type Session interface {
	// Get retrieves the raw bytes addressed by a full location string
	// (scheme included). Failures should be one of the sentinel errors
	// above where classifiable.
	Get(ctx context.Context, location string) ([]byte, error)
	Close() error
}

// Factory opens sessions. Providers may retry or pool internally; callers
// never retry on top.
type Factory interface {
	Open(ctx context.Context) (Session, error)
}

// Config carries provider settings. Each provider reads the fields it
// understands and ignores the rest.
type Config struct {
	// Endpoint is the base URL of an S3-compatible HTTP gateway.
	Endpoint string
	// Token is an optional bearer token for the http provider.
	Token string
	// Root is the filesystem directory backing the file provider.
	Root string
	// Scheme is the location prefix identifying object-store URIs.
	Scheme string
	// Timeout bounds a single Get request.
	Timeout time.Duration
	// MaxObjectSize is the transfer size ceiling in bytes; objects larger
	// than this fail with ErrTooLarge.
	MaxObjectSize int
}
