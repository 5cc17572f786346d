package recordio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChristianF88/recsort/keys"
)

func mustCodec(t *testing.T, name string, width int) keys.Codec {
	t.Helper()
	c, err := keys.Lookup(name, width)
	require.NoError(t, err)
	return c
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, Text, f)

	f, err = ParseFormat("BINARY")
	require.NoError(t, err)
	assert.Equal(t, Binary, f)
	assert.Equal(t, "binary", f.String())

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}

func TestReadTextSkipsCommentsAndBlankLines(t *testing.T) {
	input := "# values\n4\n\n  1 \n# more\n8449\n0\n"
	recs, err := ReadFrom(strings.NewReader(input), Text, mustCodec(t, "uint32", 0))
	require.NoError(t, err)

	assert.Equal(t, 4, recs.Len())
	assert.Equal(t, []byte{0, 0, 0, 4}, recs.At(0))
	assert.Equal(t, []byte{0, 0, 0x21, 0x01}, recs.At(2))
}

func TestReadTextReportsLineNumber(t *testing.T) {
	input := "1\n2\nthree\n"
	_, err := ReadFrom(strings.NewReader(input), Text, mustCodec(t, "uint8", 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestReadBinaryRejectsPartialRecord(t *testing.T) {
	_, err := ReadFrom(strings.NewReader("abcde"), Binary, mustCodec(t, "uint16", 0))
	assert.Error(t, err)

	recs, err := ReadFrom(strings.NewReader("abcd"), Binary, mustCodec(t, "uint16", 0))
	require.NoError(t, err)
	assert.Equal(t, 2, recs.Len())
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	codec := mustCodec(t, "ipv4", 0)
	src, err := ReadFrom(strings.NewReader("10.0.0.1\n192.168.1.1\n1.2.3.4\n"), Text, codec)
	require.NoError(t, err)

	for _, name := range []string{"ips.txt", "ips.bin", "ips.txt.zst", "ips.bin.zst"} {
		t.Run(name, func(t *testing.T) {
			format := Text
			if strings.Contains(name, ".bin") {
				format = Binary
			}
			path := filepath.Join(dir, name)

			require.NoError(t, Write(path, format, codec, src))
			got, err := Read(path, format, codec)
			require.NoError(t, err)
			assert.Equal(t, src.Data, got.Data)
			assert.Equal(t, 4, got.Width)
		})
	}
}

func TestWriteTextFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	codec := mustCodec(t, "int8", 0)
	recs := &Records{Data: []byte{0x00, 0x80, 0xFF}, Width: 1}

	require.NoError(t, Write(path, Text, codec, recs))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "-128\n0\n127\n", string(content))
}

func TestCompressedFileIsSmaller(t *testing.T) {
	dir := t.TempDir()
	codec := mustCodec(t, "uint64", 0)
	recs := &Records{Data: make([]byte, 8*10000), Width: 8}

	plain := filepath.Join(dir, "zeros.bin")
	packed := filepath.Join(dir, "zeros.bin.zst")
	require.NoError(t, Write(plain, Binary, codec, recs))
	require.NoError(t, Write(packed, Binary, codec, recs))

	ps, err := os.Stat(plain)
	require.NoError(t, err)
	zs, err := os.Stat(packed)
	require.NoError(t, err)
	assert.Less(t, zs.Size(), ps.Size())
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.txt"), Text, mustCodec(t, "uint8", 0))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
