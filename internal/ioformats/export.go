package ioformats

import (
	"encoding/json"
	"io"
	"os"

	"pagemeta-crawler/internal/models"
)

// WriteJSON writes the full result list as an indented JSON array. HTML
// escaping is disabled so the export stays readable UTF-8.
func WriteJSON(w io.Writer, results []models.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// WriteJSONFile writes the export to path, creating or truncating it.
func WriteJSONFile(path string, results []models.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteNDJSON streams one result object per line.
func WriteNDJSON(w io.Writer, results []models.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
