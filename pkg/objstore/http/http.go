// Package http implements the object-store provider for S3-compatible HTTP
// gateways. A location like s3://bucket/key maps to GET <endpoint>/bucket/key.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/scour-dev/scour/pkg/objstore"
)

const defaultTimeout = 30 * time.Second

func init() {
	objstore.Register("http", func(cfg objstore.Config) (objstore.Factory, error) {
		return NewFactory(cfg)
	})
}

// Factory builds sessions against one gateway endpoint.
type Factory struct {
	cfg objstore.Config
}

// NewFactory validates the gateway configuration.
func NewFactory(cfg objstore.Config) (*Factory, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("http provider requires an endpoint")
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "s3://"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Factory{cfg: cfg}, nil
}

// Open returns a session backed by a fresh HTTP client. The client carries
// the per-request timeout; nothing is dialed until the first Get.
func (f *Factory) Open(ctx context.Context) (objstore.Session, error) {
	return &session{
		cfg:    f.cfg,
		client: &http.Client{Timeout: f.cfg.Timeout},
	}, nil
}

type session struct {
	cfg    objstore.Config
	client *http.Client
}

func (s *session) Get(ctx context.Context, location string) ([]byte, error) {
	path := strings.TrimPrefix(location, s.cfg.Scheme)
	url := strings.TrimSuffix(s.cfg.Endpoint, "/") + "/" + path

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", location, err)
	}
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", location, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", location, objstore.ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized && s.cfg.Token == "":
		return nil, fmt.Errorf("%s: %w", location, objstore.ErrCredentialsMissing)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%s: %w", location, objstore.ErrAccessDenied)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching %s: unexpected status %s", location, resp.Status)
	}

	if s.cfg.MaxObjectSize > 0 {
		// Read one byte past the ceiling so a breach is distinguishable
		// from an exact fit.
		data, err := io.ReadAll(io.LimitReader(resp.Body, int64(s.cfg.MaxObjectSize)+1))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", location, err)
		}
		if len(data) > s.cfg.MaxObjectSize {
			return nil, fmt.Errorf("%s: %w", location, objstore.ErrTooLarge)
		}
		return data, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	return data, nil
}

func (s *session) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
