package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/roach88/provq/internal/provenance"
)

// Source produces a decoded payload. Implementations may block on I/O.
type Source interface {
	// Load fetches and decodes the dataset.
	Load(ctx context.Context) (*provenance.Payload, error)

	// Name identifies the source in logs and errors.
	Name() string
}

// Func adapts a function to Source.
type Func func(ctx context.Context) (*provenance.Payload, error)

// Load calls f.
func (f Func) Load(ctx context.Context) (*provenance.Payload, error) {
	return f(ctx)
}

// Name implements Source.
func (f Func) Name() string {
	return "func"
}

// Format is the on-disk encoding of a dataset file.
type Format string

// Formats.
const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatZstd Format = "zstd"
)

// ParseFormat accepts "", "auto", "json" and "zstd".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatJSON, FormatZstd:
		return f, nil
	default:
		return "", fmt.Errorf("unknown dataset format %q (expected auto, json or zstd)", s)
	}
}

// DetectFormat picks the format from the file extension: ".zst" and ".zstd"
// are zstd, anything else is JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return FormatZstd
	default:
		return FormatJSON
	}
}

// FileSource reads a dataset from a local file, plain or zstd compressed.
type FileSource struct {
	Path   string
	Format Format
}

// NewFileSource creates a file source. FormatAuto (or "") detects the
// format from the extension.
func NewFileSource(path string, format Format) *FileSource {
	if format == "" || format == FormatAuto {
		format = DetectFormat(path)
	}
	return &FileSource{Path: path, Format: format}
}

// Name implements Source.
func (s *FileSource) Name() string {
	return s.Path
}

// Load implements Source.
func (s *FileSource) Load(ctx context.Context) (*provenance.Payload, error) {
	rc, err := s.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	p, err := provenance.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return p, nil
}

// ReadAll returns the decompressed payload bytes.
func (s *FileSource) ReadAll(ctx context.Context) ([]byte, error) {
	rc, err := s.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return data, nil
}

// Open returns a reader over the decompressed payload bytes.
func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}

	if s.Format != FormatZstd {
		return f, nil
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open zstd dataset %s: %w", s.Path, err)
	}
	return &zstdFile{dec: dec, file: f}, nil
}

type zstdFile struct {
	dec  *zstd.Decoder
	file *os.File
}

func (z *zstdFile) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdFile) Close() error {
	z.dec.Close()
	return z.file.Close()
}

// WriteFile encodes p to path in the given format. FormatAuto detects the
// format from the extension.
func WriteFile(path string, p *provenance.Payload, format Format) (err error) {
	if format == "" || format == FormatAuto {
		format = DetectFormat(path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if format != FormatZstd {
		return provenance.Encode(f, p)
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if err := provenance.Encode(enc, p); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
