package gamedata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andybalholm/brotli"
)

// Load reads a dataset from a JSON file. Files with a ".br" suffix are
// decompressed transparently.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".br") {
		r = brotli.NewReader(f)
	}
	return Decode(r)
}

// Decode parses a dataset from an uncompressed JSON stream.
func Decode(r io.Reader) (*Dataset, error) {
	var data Dataset
	dec := json.NewDecoder(r)
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}
	return &data, nil
}
