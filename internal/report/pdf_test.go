package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagemeta-crawler/internal/models"
)

func TestWritePDF(t *testing.T) {
	results := []models.Result{
		successResult("https://a.test/", "Page A"),
		models.Failure("https://b.test/", errors.New("timeout")),
	}
	doc := Build(results, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, WritePDF(doc, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF-", string(data[:5]))
}
