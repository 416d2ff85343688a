// Package ioformats reads URL batches and writes audit exports.
package ioformats

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ReadURLs loads a URL list from a CSV file (header row with a "url"
// column), an NDJSON file (objects with a "url" key or raw URL lines), or a
// plain text file with one URL per line. Unknown extensions try each format
// in that order.
func ReadURLs(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".ndjson", ".jsonl":
		return readLines(path, true)
	case ".txt":
		return readLines(path, false)
	default:
		if urls, err := readCSV(path); err == nil && len(urls) > 0 {
			return urls, nil
		}
		return readLines(path, true)
	}
}

func readCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv")
	}

	col := -1
	for i, h := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(h), "url") {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, errors.New("csv must contain a 'url' header column")
	}

	var out []string
	for _, row := range rows[1:] {
		if col < len(row) {
			if u := strings.TrimSpace(row[col]); u != "" {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

// readLines treats each non-empty line as a URL. With allowJSON set, a line
// that looks like a JSON object is read as {"url": "..."} first.
func readLines(path string, allowJSON bool) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if allowJSON && strings.HasPrefix(line, "{") {
			var obj map[string]any
			if err := json.Unmarshal([]byte(line), &obj); err == nil {
				if s, ok := obj["url"].(string); ok && s != "" {
					out = append(out, s)
					continue
				}
			}
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no urls found in " + path)
	}
	return out, nil
}
