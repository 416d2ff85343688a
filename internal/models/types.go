// Package models defines the per-URL audit records shared by the crawler,
// the report renderer and the exporters.
package models

import "time"

// Link is one anchor found on a page, href resolved against the page URL.
type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Image is one image found on a page, src resolved against the page URL.
type Image struct {
	Src   string `json:"src"`
	Alt   string `json:"alt"`
	Title string `json:"title"`
}

// Metadata is the success payload of an audit: everything extracted from a
// single fetched page.
type Metadata struct {
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Keywords       string              `json:"keywords"`
	Author         string              `json:"author"`
	PublishDate    string              `json:"publish_date"`
	OpenGraph      map[string]string   `json:"og_data"`
	TwitterCard    map[string]string   `json:"twitter_data"`
	CanonicalURL   string              `json:"canonical_url"`
	Language       string              `json:"language"`
	Headings       map[string][]string `json:"headings"`
	Links          []Link              `json:"links"`
	Images         []Image             `json:"images"`
	StructuredData []any               `json:"schema_org"`
	StatusCode     int                 `json:"status_code"`
	ContentType    string              `json:"content_type"`
}

// Result is the outcome for one input URL. Exactly one of Metadata or Error
// is set: a success carries the flattened metadata fields, a failure carries
// only the URL and the error description. Error is the discriminant.
type Result struct {
	URL string `json:"url"`
	*Metadata
	Error     string `json:"error,omitempty"`
	ScrapedAt string `json:"scraped_at"`
}

// Failed reports whether the result is the failure variant.
func (r Result) Failed() bool { return r.Error != "" }

// Success wraps extracted metadata into a result, stamping completion time.
func Success(url string, m *Metadata) Result {
	return Result{URL: url, Metadata: m, ScrapedAt: now()}
}

// Failure records an unrecoverable attempt for a URL.
func Failure(url string, err error) Result {
	return Result{URL: url, Error: err.Error(), ScrapedAt: now()}
}

func now() string { return time.Now().Format(time.RFC3339) }
