package data

import (
	"bytes"
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// seriesFile is the object form of a series file.
type seriesFile struct {
	Values []float64 `json:"values"`
}

// LoadSeries reads a JSON file holding either a bare array of numbers or an
// object with a "values" array.
func LoadSeries(path string) ([]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	values, err := ParseSeries(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

func ParseSeries(raw []byte) ([]float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty series")
	}
	if raw[0] == '[' {
		var values []float64
		if err := json.Unmarshal(raw, &values); err != nil {
			return nil, err
		}
		return values, nil
	}
	var f seriesFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	if f.Values == nil {
		return nil, fmt.Errorf("series object has no values")
	}
	return f.Values, nil
}

// LoadJSON decodes the JSON file at path into v.
func LoadJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// WriteJSON writes v indented to path.
func WriteJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}
