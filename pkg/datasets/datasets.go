// Package datasets reads and writes the feature and target matrices fed to
// sample selection.
package datasets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/mat"
)

var ErrMalformed = errors.New("malformed dataset")

// Dataset holds samples as rows of X, optional targets Y aligned with X,
// and optional feature names.
type Dataset struct {
	X     *mat.Dense
	Y     *mat.Dense
	Names []string
}

type document struct {
	X     [][]float64 `json:"x"`
	Y     [][]float64 `json:"y,omitempty"`
	Names []string    `json:"names,omitempty"`
}

// Encoding is the compression applied to a saved dataset.
type Encoding int

const (
	Plain Encoding = iota
	Gzip
	Zstd
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Load decodes a JSON dataset. Gzip and zstd compressed input is detected
// by its magic bytes and decompressed.
func Load(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	switch {
	case bytes.HasPrefix(data, zstdMagic):
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("zstd: failed to create reader: %w", err)
		}
		defer zr.Close()

		if data, err = io.ReadAll(zr); err != nil {
			return nil, fmt.Errorf("zstd: failed to decompress dataset: %w", err)
		}
	case bytes.HasPrefix(data, gzipMagic):
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip: failed to create reader: %w", err)
		}
		defer zr.Close()

		if data, err = io.ReadAll(zr); err != nil {
			return nil, fmt.Errorf("gzip: failed to decompress dataset: %w", err)
		}
	}

	var doc document
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return doc.dataset()
}

func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return ds, nil
}

// Save encodes ds as JSON with the given compression.
func Save(w io.Writer, ds *Dataset, enc Encoding) error {
	if ds == nil || ds.X == nil {
		return fmt.Errorf("%w: no samples", ErrMalformed)
	}

	doc := document{X: rows(ds.X), Names: ds.Names}
	if ds.Y != nil {
		doc.Y = rows(ds.Y)
	}

	data, err := sonic.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	var zw io.WriteCloser
	switch enc {
	case Plain:
		_, err = w.Write(data)
		return err
	case Gzip:
		zw = gzip.NewWriter(w)
	case Zstd:
		if zw, err = zstd.NewWriter(w); err != nil {
			return fmt.Errorf("zstd: failed to create writer: %w", err)
		}
	default:
		return fmt.Errorf("unknown encoding %d", enc)
	}

	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return fmt.Errorf("compress dataset: %w", err)
	}
	return zw.Close()
}

func SaveFile(path string, ds *Dataset, enc Encoding) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Save(f, ds, enc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (d document) dataset() (*Dataset, error) {
	x, err := dense(d.X)
	if err != nil {
		return nil, fmt.Errorf("x: %w", err)
	}
	if x == nil {
		return nil, fmt.Errorf("%w: no samples", ErrMalformed)
	}

	ds := &Dataset{X: x, Names: d.Names}
	samples, features := x.Dims()

	if len(d.Names) > 0 && len(d.Names) != features {
		return nil, fmt.Errorf("%w: %d names for %d features", ErrMalformed, len(d.Names), features)
	}

	if len(d.Y) > 0 {
		if len(d.Y) != samples {
			return nil, fmt.Errorf("%w: %d targets for %d samples", ErrMalformed, len(d.Y), samples)
		}
		if ds.Y, err = dense(d.Y); err != nil {
			return nil, fmt.Errorf("y: %w", err)
		}
	}

	return ds, nil
}

func dense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	cols := len(rows[0])
	if cols == 0 {
		return nil, fmt.Errorf("%w: empty row", ErrMalformed)
	}

	m := mat.NewDense(len(rows), cols, nil)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", ErrMalformed, i, len(r), cols)
		}
		m.SetRow(i, r)
	}
	return m, nil
}

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range r {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
