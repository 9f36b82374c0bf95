package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/scour-dev/scour/pkg/objstore"
)

func newTestRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "bucket"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "bucket", "obj1"), []byte("hello"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "bucket", "huge"), make([]byte, 10_000), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return root
}

func openSession(t *testing.T, cfg objstore.Config) objstore.Session {
	t.Helper()
	factory, err := NewFactory(cfg)
	if err != nil {
		t.Fatalf("new factory: %v", err)
	}
	session, err := factory.Open(context.Background())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return session
}

func TestSessionGet(t *testing.T) {
	root := newTestRoot(t)
	session := openSession(t, objstore.Config{Root: root, Scheme: "s3://", MaxObjectSize: 4096})

	data, err := session.Get(context.Background(), "s3://bucket/obj1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("unexpected content %q", data)
	}

	if _, err := session.Get(context.Background(), "s3://bucket/missing"); !errors.Is(err, objstore.ErrNotFound) {
		t.Errorf("missing object should classify not found, got %v", err)
	}

	if _, err := session.Get(context.Background(), "s3://bucket/huge"); !errors.Is(err, objstore.ErrTooLarge) {
		t.Errorf("oversize object should classify too large, got %v", err)
	}
}

func TestSessionGetEscapeAttempt(t *testing.T) {
	root := newTestRoot(t)
	session := openSession(t, objstore.Config{Root: root, Scheme: "s3://"})

	if _, err := session.Get(context.Background(), "s3://../../etc/passwd"); !errors.Is(err, objstore.ErrNotFound) {
		t.Errorf("path escape should classify not found, got %v", err)
	}
}

func TestFactoryValidation(t *testing.T) {
	if _, err := NewFactory(objstore.Config{}); err == nil {
		t.Fatal("expected error for missing root")
	}

	factory, err := NewFactory(objstore.Config{Root: "/definitely/not/a/real/dir"})
	if err != nil {
		t.Fatalf("new factory: %v", err)
	}
	if _, err := factory.Open(context.Background()); err == nil {
		t.Fatal("expected error opening a session over a missing root")
	}
}
