package model

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Importer produces a structured case from some external source. The
// spreadsheet and CSV importers live outside this module and satisfy it.
type Importer interface {
	Import() (*Case, error)
}

// FileImporter reads a YAML (or JSON) case document from disk.
type FileImporter struct {
	Path string
}

func (f FileImporter) Import() (*Case, error) {
	return Load(f.Path)
}

// Load reads and validates a case document.
func Load(path string) (*Case, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open case: %w", err)
	}
	defer fh.Close()
	return Decode(fh)
}

// Decode parses a case document. JSON documents are accepted as well since
// JSON is a subset of YAML.
func Decode(r io.Reader) (*Case, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read case: %w", err)
	}
	c := &Case{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse case: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
