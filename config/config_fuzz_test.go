package config

import (
	"testing"
)

func FuzzParse(f *testing.F) {
	// Seed with a full config
	f.Add(`
[sort]
digitWidth = 2
byteOrder = "big"
memoryLimit = "64MiB"
[input]
path = "values.txt"
key = "int32"
[output]
compact = true
`)

	// Seed with empty config
	f.Add("")

	// Seed with wrong value types
	f.Add(`
[sort]
digitWidth = "two"
memoryLimit = 1.5
[input]
width = true
`)

	f.Fuzz(func(t *testing.T, data string) {
		// Should not panic
		config, err := Parse(data)
		if err != nil {
			return
		}
		_, _ = config.RadixConfig()
		_ = config.MemoryLimitBytes()
	})
}
