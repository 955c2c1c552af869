// Package compress holds the request body codec. Statements are gzipped once
// before they are handed to the transport and the request is tagged with
// the Encoding value so the server inflates them.
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Encoding is the Content-Encoding value matching Compress output.
const Encoding = "gzip"

const (
	DefaultLevel = gzip.DefaultCompression
	BestSpeed    = gzip.BestSpeed
	BestSize     = gzip.BestCompression
)

// Compress gzips data with the given level.
func Compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer

	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("gzip.NewWriterLevel: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("w.Write: %w", err)
	}

	// close flushes the footer
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("w.Close: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip.NewReader: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	return out, nil
}
