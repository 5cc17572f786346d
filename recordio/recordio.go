// Package recordio reads and writes files of fixed-width records, either as
// raw binary or as one text value per line, optionally zstd-compressed.
package recordio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/multierr"

	"github.com/ChristianF88/recsort/keys"
	"github.com/ChristianF88/recsort/pools"
)

// Format selects how records are laid out in a file.
type Format int

const (
	// Text is one value per line, parsed and printed by a key codec.
	Text Format = iota
	// Binary is records concatenated with no separator.
	Binary
)

func (f Format) String() string {
	if f == Binary {
		return "binary"
	}
	return "text"
}

// ParseFormat accepts "text" (or "") and "binary".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return Text, nil
	case "binary", "bin":
		return Binary, nil
	}
	return Text, fmt.Errorf("unknown record format %q (expected text or binary)", s)
}

// Records is a packed record array.
type Records struct {
	Data  []byte
	Width int
}

// Len returns the number of records.
func (r *Records) Len() int {
	if r.Width < 1 {
		return 0
	}
	return len(r.Data) / r.Width
}

// At returns record i. The slice aliases Data.
func (r *Records) At(i int) []byte {
	return r.Data[i*r.Width : (i+1)*r.Width]
}

// Stdio is the path that reads from stdin or writes to stdout.
const Stdio = "-"

func compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// Read loads all records from path. A ".zst" suffix is decompressed.
func Read(path string, format Format, codec keys.Codec) (*Records, error) {
	if path == Stdio {
		return ReadFrom(os.Stdin, format, codec)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening record file %s: %w", path, err)
	}
	defer file.Close()

	var r io.Reader = file
	if compressed(path) {
		dec, err := zstd.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	recs, err := ReadFrom(r, format, codec)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return recs, nil
}

// ReadFrom loads all records from r.
func ReadFrom(r io.Reader, format Format, codec keys.Codec) (*Records, error) {
	if codec.Width < 1 {
		return nil, fmt.Errorf("codec %q has no record width", codec.Name)
	}
	if format == Binary {
		return readBinary(r, codec.Width)
	}
	return readText(r, codec)
}

func readBinary(r io.Reader, width int) (*Records, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data)%width != 0 {
		return nil, fmt.Errorf("%d bytes is not a whole number of %d-byte records", len(data), width)
	}
	return &Records{Data: data, Width: width}, nil
}

// readText skips blank lines and lines starting with '#'.
func readText(r io.Reader, codec keys.Codec) (*Records, error) {
	recs := &Records{Width: codec.Width}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		off := len(recs.Data)
		recs.Data = append(recs.Data, make([]byte, codec.Width)...)
		if err := codec.Encode(recs.Data[off:], line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
	}
	return recs, nil
}

// Write stores recs at path, replacing any existing file. A ".zst" suffix
// compresses the output.
func Write(path string, format Format, codec keys.Codec, recs *Records) (err error) {
	if path == Stdio {
		return WriteTo(os.Stdout, format, codec, recs)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating record file %s: %w", path, err)
	}
	defer func() {
		err = multierr.Append(err, file.Close())
	}()

	var w io.Writer = file
	if compressed(path) {
		enc, encErr := zstd.NewWriter(file)
		if encErr != nil {
			return fmt.Errorf("opening zstd stream %s: %w", path, encErr)
		}
		defer func() {
			err = multierr.Append(err, enc.Close())
		}()
		w = enc
	}

	if err := WriteTo(w, format, codec, recs); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteTo writes recs to w.
func WriteTo(w io.Writer, format Format, codec keys.Codec, recs *Records) error {
	if format == Binary {
		_, err := w.Write(recs.Data)
		return err
	}

	bw := bufio.NewWriter(w)
	line := pools.GetLineBuffer()
	defer pools.PutLineBuffer(line)

	for i := 0; i < recs.Len(); i++ {
		*line = codec.Decode((*line)[:0], recs.At(i))
		*line = append(*line, '\n')
		if _, err := bw.Write(*line); err != nil {
			return err
		}
	}
	return bw.Flush()
}
