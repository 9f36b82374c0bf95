// Package decode turns raw fetched bytes into the stringified artifact
// content the search evaluator compares against. Payloads are gzip
// compressed JSON; plaintext that fails to deserialize degrades to its
// literal string form rather than failing the item.
package decode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/scour-dev/scour/pkg/core"
)

// DefaultMaxSize is the artifact size ceiling, in bytes, applied to both
// the raw payload and the decompressed stream.
const DefaultMaxSize = 4096

// Decoder decompresses and deserializes artifact payloads.
type Decoder struct {
	// MaxSize bounds both the compressed payload and the decompressed
	// stream, in bytes. Zero or negative selects DefaultMaxSize.
	MaxSize int
}

// NewDecoder returns a decoder with the given size ceiling.
func NewDecoder(maxSize int) *Decoder {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Decoder{MaxSize: maxSize}
}

// Decode classifies one payload. Oversize payloads and the non-JSON
// fallback are recoverable outcomes carried in the artifact tag; only
// undecodable payloads (corrupt or truncated gzip) return an error, which
// the orchestrator reports and excludes from the fetched set.
func (d *Decoder) Decode(raw []byte) (core.DecodedArtifact, error) {
	maxSize := d.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	if len(raw) > maxSize {
		return core.DecodedArtifact{Kind: core.ArtifactTooLarge}, nil
	}

	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return core.DecodedArtifact{}, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer func() {
		_ = gz.Close()
	}()

	// Read one byte past the ceiling so a breach is distinguishable from
	// an exact fit.
	plain, err := io.ReadAll(io.LimitReader(gz, int64(maxSize)+1))
	if err != nil {
		return core.DecodedArtifact{}, fmt.Errorf("decompressing payload: %w", err)
	}
	if len(plain) > maxSize {
		return core.DecodedArtifact{Kind: core.ArtifactTooLarge}, nil
	}

	return core.Value(stringify(plain)), nil
}

// stringify produces the canonical string form of the decompressed
// plaintext: a JSON string decodes to itself, any other valid JSON value to
// its compact encoding, and invalid JSON falls back to the literal text.
func stringify(plain []byte) string {
	var value any
	if err := json.Unmarshal(plain, &value); err != nil {
		return string(plain)
	}
	if s, ok := value.(string); ok {
		return s
	}
	compact, err := json.Marshal(value)
	if err != nil {
		return string(plain)
	}
	return string(compact)
}
