package speedscope

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputPath derives the JSON output path for a trace file: a trailing .gz
// is stripped, then the final extension becomes .json. An extension-less
// input gets .json appended so the input is never overwritten.
func OutputPath(inputPath string) string {
	p := strings.TrimSuffix(inputPath, ".gz")
	if ext := filepath.Ext(p); ext != "" {
		p = strings.TrimSuffix(p, ext)
	}
	return p + ".json"
}

// WriteFile serializes the document with two-space indentation.
func WriteFile(path string, f *File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode speedscope document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
