package ioformats

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagemeta-crawler/internal/models"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadURLsCSV(t *testing.T) {
	path := writeTemp(t, "urls.csv", "name,url\nfoo,https://a.test/\nbar,https://b.test/\n,\n")
	urls, err := ReadURLs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.test/", "https://b.test/"}, urls)
}

func TestReadURLsCSVMissingColumn(t *testing.T) {
	path := writeTemp(t, "urls.csv", "name\nfoo\n")
	_, err := ReadURLs(path)
	require.Error(t, err)
}

func TestReadURLsNDJSON(t *testing.T) {
	path := writeTemp(t, "urls.ndjson", `{"url":"https://a.test/"}
https://b.test/
`)
	urls, err := ReadURLs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.test/", "https://b.test/"}, urls)
}

func TestReadURLsPlainText(t *testing.T) {
	path := writeTemp(t, "urls.txt", "https://a.test/\n\nhttps://b.test/\n")
	urls, err := ReadURLs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.test/", "https://b.test/"}, urls)
}

func TestWriteJSONVariantShapes(t *testing.T) {
	results := []models.Result{
		models.Success("https://a.test/", &models.Metadata{
			Title:       "A",
			OpenGraph:   map[string]string{"og:title": "A"},
			TwitterCard: map[string]string{},
			Headings:    map[string][]string{"h1": {}},
			Links:       []models.Link{},
			Images:      []models.Image{},
			StatusCode:  200,
		}),
		models.Failure("https://b.test/", errors.New("timeout")),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, results))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)

	success := decoded[0]
	assert.Equal(t, "https://a.test/", success["url"])
	assert.Equal(t, "A", success["title"])
	assert.NotContains(t, success, "error")
	assert.Contains(t, success, "scraped_at")
	assert.Contains(t, success, "status_code")

	// the failure variant carries only url, error and scraped_at
	failure := decoded[1]
	assert.Equal(t, "https://b.test/", failure["url"])
	assert.Equal(t, "timeout", failure["error"])
	assert.Contains(t, failure, "scraped_at")
	assert.Len(t, failure, 3)
}

func TestWriteNDJSONOneLinePerResult(t *testing.T) {
	results := []models.Result{
		models.Failure("https://a.test/", errors.New("x")),
		models.Failure("https://b.test/", errors.New("y")),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteNDJSON(&buf, results))
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("\n")))
}
