// Package file implements a local filesystem object-store provider.
// A location like s3://bucket/key maps to <root>/bucket/key. Intended for
// development and tests; the verdicts it produces are indistinguishable
// from the http provider's.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scour-dev/scour/pkg/objstore"
)

func init() {
	objstore.Register("file", func(cfg objstore.Config) (objstore.Factory, error) {
		return NewFactory(cfg)
	})
}

// Factory builds sessions rooted at a local directory.
type Factory struct {
	cfg objstore.Config
}

// NewFactory validates the root directory configuration.
func NewFactory(cfg objstore.Config) (*Factory, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("file provider requires a root directory")
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "s3://"
	}
	return &Factory{cfg: cfg}, nil
}

// Open verifies the root exists and returns a session over it.
func (f *Factory) Open(ctx context.Context) (objstore.Session, error) {
	info, err := os.Stat(f.cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("object root %s: %w", f.cfg.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("object root %s is not a directory", f.cfg.Root)
	}
	return &session{cfg: f.cfg}, nil
}

type session struct {
	cfg objstore.Config
}

func (s *session) Get(ctx context.Context, location string) ([]byte, error) {
	rel := filepath.FromSlash(strings.TrimPrefix(location, s.cfg.Scheme))
	path := filepath.Join(s.cfg.Root, rel)

	// Joined paths must stay under the root; a location with ".." segments
	// is treated as nonexistent rather than escaping.
	if !strings.HasPrefix(path, filepath.Clean(s.cfg.Root)+string(os.PathSeparator)) {
		return nil, fmt.Errorf("%s: %w", location, objstore.ErrNotFound)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, classify(location, err)
	}
	if s.cfg.MaxObjectSize > 0 && info.Size() > int64(s.cfg.MaxObjectSize) {
		return nil, fmt.Errorf("%s: %w", location, objstore.ErrTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, classify(location, err)
	}
	return data, nil
}

func (s *session) Close() error {
	return nil
}

func classify(location string, err error) error {
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("%s: %w", location, objstore.ErrNotFound)
	case os.IsPermission(err):
		return fmt.Errorf("%s: %w", location, objstore.ErrAccessDenied)
	default:
		return fmt.Errorf("reading %s: %w", location, err)
	}
}
