package crawler

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"pagemeta-crawler/internal/models"
)

// Fetcher retrieves one URL. Implemented by HTTPClient.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Response, error)
}

// Extractor turns one fetched body into a metadata record.
type Extractor interface {
	Extract(r io.Reader, pageURL, contentType string, statusCode int) (*models.Metadata, error)
}

// Options bound the pool. Zero values fall back to the defaults.
type Options struct {
	Workers int           // concurrent fetch+extract slots
	Timeout time.Duration // per-attempt deadline
	Delay   time.Duration // pause per slot after each completed attempt
}

func DefaultOptions() Options {
	return Options{
		Workers: 10,
		Timeout: 30 * time.Second,
		Delay:   time.Second,
	}
}

// Orchestrator runs a URL list through a fixed worker pool and returns one
// result per input URL.
type Orchestrator struct {
	fetcher   Fetcher
	extractor Extractor
	opts      Options
}

func NewOrchestrator(f Fetcher, e Extractor, opts Options) *Orchestrator {
	def := DefaultOptions()
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	return &Orchestrator{fetcher: f, extractor: e, opts: opts}
}

// Crawl audits every URL and returns exactly one result each, in completion
// order. A failure for one URL never aborts the rest; there are no retries.
// After finishing an attempt a worker sleeps the configured delay before
// taking another URL.
func (o *Orchestrator) Crawl(ctx context.Context, urls []string) []models.Result {
	jobs := make(chan string)
	out := make(chan models.Result)

	var wg sync.WaitGroup
	for i := 0; i < o.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				out <- o.attempt(ctx, u)
				if o.opts.Delay > 0 {
					time.Sleep(o.opts.Delay)
				}
			}
		}()
	}

	go func() {
		for _, u := range urls {
			jobs <- u
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	results := make([]models.Result, 0, len(urls))
	for r := range out {
		results = append(results, r)
	}
	return results
}

// attempt runs one fetch+extract. Any panic inside the attempt is folded
// into a failure result for that URL only.
func (o *Orchestrator) attempt(ctx context.Context, rawURL string) (res models.Result) {
	defer func() {
		if p := recover(); p != nil {
			logrus.Errorf("unexpected failure for %s: %v", rawURL, p)
			res = models.Failure(rawURL, fmt.Errorf("unexpected failure: %v", p))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, o.opts.Timeout)
	defer cancel()

	resp, err := o.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		logrus.Errorf("error scraping %s: %v", rawURL, err)
		return models.Failure(rawURL, err)
	}
	defer resp.Body.Close()

	meta, err := o.extractor.Extract(resp.Body, rawURL, resp.ContentType, resp.StatusCode)
	if err != nil {
		logrus.Errorf("error scraping %s: %v", rawURL, err)
		return models.Failure(rawURL, err)
	}

	logrus.Infof("successfully scraped: %s", rawURL)
	return models.Success(rawURL, meta)
}
