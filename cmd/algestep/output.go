package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/dekarrin/algestep/internal/msgerr"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatCBOR = "cbor"
)

func checkFormat(f string) error {
	switch strings.ToLower(f) {
	case formatText, formatJSON, formatCBOR:
		return nil
	}
	return msgerr.Newf("%q is not an output format; use text, json, or cbor", f)
}

// texter is a result that can describe itself as plain text.
type texter interface {
	Text(width int) string
}

// write prints result to w in the given format.
func write(w io.Writer, format string, width int, result texter) error {
	var data []byte
	var err error

	switch strings.ToLower(format) {
	case formatJSON:
		data, err = json.MarshalIndent(result, "", "  ")
		data = append(data, '\n')
	case formatCBOR:
		data, err = cbor.Marshal(result)
	default:
		data = []byte(result.Text(width))
	}
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
