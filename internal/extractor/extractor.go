// Package extractor maps one fetched page to a metadata record. It is a pure
// function of the page body, its URL and the response descriptor: no I/O, no
// shared state. Malformed or incomplete HTML degrades to documented defaults;
// the only error it surfaces is a body that cannot be decoded to UTF-8.
package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"pagemeta-crawler/internal/models"
)

const (
	maxLinks  = 50
	maxImages = 20

	defaultTitle       = "No title found"
	defaultDescription = "No description found"
)

type Extractor struct{}

func New() *Extractor { return &Extractor{} }

// rule is one step of a first-match-wins fallback chain. An empty attr means
// the element's text. The first selector that matches anything wins, even if
// its trimmed value is empty.
type rule struct {
	selector string
	attr     string
}

var (
	titleRules = []rule{
		{selector: "title"},
		{selector: `meta[property="og:title"]`, attr: "content"},
	}
	descriptionRules = []rule{
		{selector: `meta[name="description"]`, attr: "content"},
		{selector: `meta[property="og:description"]`, attr: "content"},
	}
	authorRules = []rule{
		{selector: `meta[name="author"]`, attr: "content"},
		{selector: `meta[property="article:author"]`, attr: "content"},
	}
	publishDateRules = []rule{
		{selector: `meta[property="article:published_time"]`, attr: "content"},
		{selector: `meta[name="pubdate"]`, attr: "content"},
		{selector: `meta[name="publishdate"]`, attr: "content"},
		{selector: `meta[itemprop="datePublished"]`, attr: "content"},
	}
)

// Extract reads and decodes the whole body, parses it, and fills every field
// of the metadata record for the page at pageURL.
func (e *Extractor) Extract(r io.Reader, pageURL, contentType string, statusCode int) (*models.Metadata, error) {
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	data := buf.Bytes()

	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		// fallback: if already utf-8, continue
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		utf8data = data
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	m := &models.Metadata{
		Title:          firstMatch(doc, titleRules, defaultTitle),
		Description:    firstMatch(doc, descriptionRules, defaultDescription),
		Keywords:       firstMatch(doc, []rule{{selector: `meta[name="keywords"]`, attr: "content"}}, ""),
		Author:         firstMatch(doc, authorRules, ""),
		PublishDate:    firstMatch(doc, publishDateRules, ""),
		OpenGraph:      metaMap(doc, `meta[property^="og:"]`, "property"),
		TwitterCard:    metaMap(doc, `meta[name^="twitter:"]`, "name"),
		CanonicalURL:   strings.TrimSpace(doc.Find(`link[rel="canonical"]`).AttrOr("href", "")),
		Language:       strings.TrimSpace(doc.Find("html").AttrOr("lang", "")),
		Headings:       headings(doc),
		Links:          links(doc, base),
		Images:         images(doc, base),
		StructuredData: structuredData(doc),
		StatusCode:     statusCode,
		ContentType:    contentType,
	}
	return m, nil
}

func firstMatch(doc *goquery.Document, rules []rule, fallback string) string {
	for _, ru := range rules {
		sel := doc.Find(ru.selector).First()
		if sel.Length() == 0 {
			continue
		}
		if ru.attr == "" {
			return strings.TrimSpace(sel.Text())
		}
		v, _ := sel.Attr(ru.attr)
		return strings.TrimSpace(v)
	}
	return fallback
}

// metaMap collects every matching meta tag with non-empty key and content
// into a map. Later duplicates overwrite earlier ones.
func metaMap(doc *goquery.Document, selector, keyAttr string) map[string]string {
	out := map[string]string{}
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		key, _ := s.Attr(keyAttr)
		content, _ := s.Attr("content")
		if key != "" && content != "" {
			out[key] = content
		}
	})
	return out
}

// headings returns h1..h6 text in document order per level, dropping entries
// that trim to empty. Every level is present, empty or not.
func headings(doc *goquery.Document) map[string][]string {
	out := make(map[string][]string, 6)
	for i := 1; i <= 6; i++ {
		tag := fmt.Sprintf("h%d", i)
		texts := []string{}
		doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
			if t := strings.TrimSpace(s.Text()); t != "" {
				texts = append(texts, t)
			}
		})
		out[tag] = texts
	}
	return out
}

func links(doc *goquery.Document, base *url.URL) []models.Link {
	out := []models.Link{}
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(out) >= maxLinks {
			return false
		}
		href, _ := s.Attr("href")
		out = append(out, models.Link{
			Text: strings.TrimSpace(s.Text()),
			URL:  resolve(base, href),
		})
		return true
	})
	return out
}

func images(doc *goquery.Document, base *url.URL) []models.Image {
	out := []models.Image{}
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(out) >= maxImages {
			return false
		}
		src, _ := s.Attr("src")
		if src == "" {
			return true
		}
		out = append(out, models.Image{
			Src:   resolve(base, src),
			Alt:   s.AttrOr("alt", ""),
			Title: s.AttrOr("title", ""),
		})
		return true
	})
	return out
}

// structuredData parses each JSON-LD script block independently; a block that
// fails to parse is dropped without affecting the others.
func structuredData(doc *goquery.Document) []any {
	out := []any{}
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var v any
		if err := json.Unmarshal([]byte(s.Text()), &v); err == nil {
			out = append(out, v)
		}
	})
	return out
}

// resolve makes ref absolute against base. A ref that does not parse is
// returned as-is rather than dropped.
func resolve(base *url.URL, ref string) string {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil || base == nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
