// Package report turns a result list into a paginated audit document: a
// title page, a summary table and one detail section per result. The
// Document is backend-neutral; pdf.go renders it.
package report

import (
	"fmt"
	"strings"
	"time"

	"pagemeta-crawler/internal/models"
)

const (
	urlColumnRunes   = 40  // URL width in the summary table
	titleColumnRunes = 50  // title width in the summary table
	descriptionRunes = 200 // description width in a detail section
	headingsPerLevel = 3   // headings shown per level in a detail section

	missing = "N/A"
)

var headingLevels = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

// Document is the rendered report. Each section starts on a fresh page.
type Document struct {
	Sections []Section
}

// Section is one page of the report. Table is set only on the summary page.
type Section struct {
	Heading string
	Lines   []string
	Table   [][]string
}

// Build constructs the document for a result list. It is deterministic for a
// fixed (results, generatedAt) pair and consumes the list in its given order.
func Build(results []models.Result, generatedAt time.Time) *Document {
	doc := &Document{}

	doc.Sections = append(doc.Sections, Section{
		Heading: "Web Crawler Report",
		Lines: []string{
			"Generated: " + generatedAt.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("Total Sites Scraped: %d", len(results)),
		},
	})

	doc.Sections = append(doc.Sections, summarySection(results))

	for i, r := range results {
		doc.Sections = append(doc.Sections, detailSection(r, i+1))
	}
	return doc
}

func summarySection(results []models.Result) Section {
	rows := [][]string{{"#", "URL", "Title", "Status"}}
	for i, r := range results {
		title := missing
		if r.Metadata != nil {
			title = r.Title
		}
		status := "Success"
		if r.Failed() {
			status = "Failed"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			truncate(r.URL, urlColumnRunes),
			truncate(title, titleColumnRunes),
			status,
		})
	}
	return Section{Heading: "Summary Overview", Table: rows}
}

func detailSection(r models.Result, index int) Section {
	sec := Section{Heading: fmt.Sprintf("Site #%d: %s", index, r.URL)}

	if r.Failed() {
		sec.Lines = []string{"Error: " + r.Error}
		return sec
	}

	sec.Lines = []string{
		"Title: " + r.Title,
		"Description: " + truncate(r.Description, descriptionRunes),
		"Author: " + r.Author,
		"Publish Date: " + r.PublishDate,
		"Language: " + r.Language,
		"Canonical URL: " + r.CanonicalURL,
		fmt.Sprintf("Status Code: %d", r.StatusCode),
	}
	for _, level := range headingLevels {
		hs := r.Headings[level]
		if len(hs) == 0 {
			continue
		}
		if len(hs) > headingsPerLevel {
			hs = hs[:headingsPerLevel]
		}
		sec.Lines = append(sec.Lines, strings.ToUpper(level)+": "+strings.Join(hs, ", "))
	}
	sec.Lines = append(sec.Lines,
		fmt.Sprintf("Links Found: %d", len(r.Links)),
		fmt.Sprintf("Images Found: %d", len(r.Images)),
	)
	return sec
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
