package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagemeta-crawler/internal/models"
)

// stubFetcher serves canned responses keyed by URL. A nil entry panics to
// exercise task isolation.
type stubFetcher struct {
	mu       sync.Mutex
	inFlight int32
	maxSeen  int32
	fail     map[string]error
	panics   map[string]bool
}

func (s *stubFetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	cur := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	s.mu.Lock()
	if cur > s.maxSeen {
		s.maxSeen = cur
	}
	s.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	if s.panics[rawURL] {
		panic("stub blew up for " + rawURL)
	}
	if err, ok := s.fail[rawURL]; ok {
		return nil, err
	}
	return &Response{
		StatusCode:  200,
		ContentType: "text/html",
		FinalURL:    rawURL,
		Body:        io.NopCloser(strings.NewReader("<html><title>ok</title></html>")),
	}, nil
}

type stubExtractor struct {
	fail map[string]error
}

func (s *stubExtractor) Extract(r io.Reader, pageURL, contentType string, statusCode int) (*models.Metadata, error) {
	if err, ok := s.fail[pageURL]; ok {
		return nil, err
	}
	return &models.Metadata{Title: "ok", StatusCode: statusCode, ContentType: contentType}, nil
}

func urlSet(results []models.Result) map[string]int {
	out := map[string]int{}
	for _, r := range results {
		out[r.URL]++
	}
	return out
}

func TestCrawlOneResultPerURL(t *testing.T) {
	urls := make([]string, 25)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://site-%d.test/", i)
	}

	f := &stubFetcher{}
	orc := NewOrchestrator(f, &stubExtractor{}, Options{Workers: 4, Timeout: time.Second})
	results := orc.Crawl(context.Background(), urls)

	require.Len(t, results, len(urls))
	set := urlSet(results)
	for _, u := range urls {
		assert.Equal(t, 1, set[u], "url %s", u)
	}
	for _, r := range results {
		assert.False(t, r.Failed())
		assert.NotEmpty(t, r.ScrapedAt)
	}
	assert.LessOrEqual(t, f.maxSeen, int32(4), "worker bound exceeded")
}

func TestCrawlMixedFailures(t *testing.T) {
	urls := []string{"https://ok.test/", "https://down.test/", "https://bad-body.test/"}
	f := &stubFetcher{fail: map[string]error{
		"https://down.test/": errors.New("connection refused"),
	}}
	e := &stubExtractor{fail: map[string]error{
		"https://bad-body.test/": errors.New("decode body: bad charset"),
	}}

	orc := NewOrchestrator(f, e, Options{Workers: 2, Timeout: time.Second})
	results := orc.Crawl(context.Background(), urls)

	require.Len(t, results, 3)
	byURL := map[string]models.Result{}
	for _, r := range results {
		byURL[r.URL] = r
	}

	ok := byURL["https://ok.test/"]
	require.False(t, ok.Failed())
	assert.Equal(t, "ok", ok.Title)

	down := byURL["https://down.test/"]
	require.True(t, down.Failed())
	assert.Equal(t, "connection refused", down.Error)
	assert.Nil(t, down.Metadata)

	bad := byURL["https://bad-body.test/"]
	require.True(t, bad.Failed())
	assert.Contains(t, bad.Error, "decode body")
}

func TestCrawlRecoversPanicPerURL(t *testing.T) {
	urls := []string{"https://a.test/", "https://boom.test/", "https://b.test/"}
	f := &stubFetcher{panics: map[string]bool{"https://boom.test/": true}}

	orc := NewOrchestrator(f, &stubExtractor{}, Options{Workers: 2, Timeout: time.Second})
	results := orc.Crawl(context.Background(), urls)

	require.Len(t, results, 3)
	set := urlSet(results)
	for _, u := range urls {
		assert.Equal(t, 1, set[u])
	}
	for _, r := range results {
		if r.URL == "https://boom.test/" {
			require.True(t, r.Failed())
			assert.Contains(t, r.Error, "unexpected failure")
		} else {
			assert.False(t, r.Failed())
		}
	}
}

func TestCrawlEmptyInput(t *testing.T) {
	orc := NewOrchestrator(&stubFetcher{}, &stubExtractor{}, Options{Workers: 2, Timeout: time.Second})
	results := orc.Crawl(context.Background(), nil)
	assert.Empty(t, results)
}

func TestDefaultOptionsApplied(t *testing.T) {
	orc := NewOrchestrator(&stubFetcher{}, &stubExtractor{}, Options{})
	assert.Equal(t, 10, orc.opts.Workers)
	assert.Equal(t, 30*time.Second, orc.opts.Timeout)
	assert.Equal(t, time.Duration(0), orc.opts.Delay)
}

func TestDelayPacesWorkerSlot(t *testing.T) {
	urls := []string{"https://a.test/", "https://b.test/", "https://c.test/"}
	orc := NewOrchestrator(&stubFetcher{}, &stubExtractor{}, Options{
		Workers: 1,
		Timeout: time.Second,
		Delay:   30 * time.Millisecond,
	})

	start := time.Now()
	results := orc.Crawl(context.Background(), urls)
	elapsed := time.Since(start)

	require.Len(t, results, 3)
	// one worker, a pause after each of the three completions
	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
}
