package testutil

import (
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// WriteTextRecords writes one value per line to a new file in a test temp
// directory and returns its path.
func WriteTextRecords(t testing.TB, name string, values []string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	content := strings.Join(values, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write record file: %v", err)
	}
	return path
}

// RandomUint32Values returns n decimal uint32 values from a seeded source.
func RandomUint32Values(seed int64, n int) []string {
	rng := rand.New(rand.NewSource(seed))
	values := make([]string, n)
	for i := range values {
		values[i] = strconv.FormatUint(uint64(rng.Uint32()), 10)
	}
	return values
}

// RandomRecords returns n packed records of width random bytes.
func RandomRecords(seed int64, n, width int) []byte {
	rng := rand.New(rand.NewSource(seed))
	data := make([]byte, n*width)
	rng.Read(data)
	return data
}

// TempFilePath returns a cross-platform temporary file path
// with the given pattern. Does not create the file.
func TempFilePath(t testing.TB, pattern string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), pattern)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	path := tmpFile.Name()
	tmpFile.Close()
	os.Remove(path) // Remove immediately, just need the path

	return path
}
