package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/catdiagram/pkg/commute"
	"github.com/matzehuels/catdiagram/pkg/layout"
)

// Encode writes doc to w in the given format.
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	case FormatJSON:
		return writeJSON(w, doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteGrid encodes a layout grid as indented JSON.
// The output can be read back with [ReadGrid].
func WriteGrid(w io.Writer, g *layout.Grid) error {
	return writeJSON(w, g)
}

// ReadGrid decodes a grid written by [WriteGrid].
func ReadGrid(r io.Reader) (*layout.Grid, error) {
	var g layout.Grid
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &g, nil
}

// WriteResult encodes a check result, including its cover, as indented JSON.
func WriteResult(w io.Writer, res *commute.Result) error {
	return writeJSON(w, res)
}

// ReadResult decodes a result written by [WriteResult]. The cover it carries
// is not trusted; pass it to [commute.Verify] before relying on it.
func ReadResult(r io.Reader) (*commute.Result, error) {
	var res commute.Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &res, nil
}

// ExportFile creates path and writes to it with write.
// It is a convenience wrapper for the Write functions:
//
//	err := io.ExportFile("grid.json", func(w io.Writer) error { return io.WriteGrid(w, g) })
func ExportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
