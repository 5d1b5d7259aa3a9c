// Copyright 2025 Quarry Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/quarrylabs/corpus/core"
)

const defaultPoolSize = 4

// Crawler performs a breadth-first traversal of one web domain. Each Crawl
// call owns its own frontier and visited set, so one Crawler may serve
// concurrent crawls of different sites.
type Crawler struct {
	fetcher Fetcher
	pool    *ants.Pool
	logger  *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler) error

// WithFetcher sets a custom page fetcher.
// Default is NewHTTPFetcher().
func WithFetcher(fetcher Fetcher) Option {
	return func(c *Crawler) error {
		if fetcher == nil {
			return fmt.Errorf("fetcher required")
		}
		c.fetcher = fetcher
		return nil
	}
}

// WithPoolSize sets the number of concurrent page fetches.
// Default is 4.
func WithPoolSize(size int) Option {
	return func(c *Crawler) error {
		if size < 1 {
			size = 1
		}

		if c.pool != nil {
			c.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		c.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCrawler creates a new crawler.
func NewCrawler(opts ...Option) (*Crawler, error) {
	pool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, err
	}

	c := &Crawler{
		fetcher: NewHTTPFetcher(),
		pool:    pool,
		logger:  slog.Default().With("component", "crawler"),
	}

	for _, opt := range opts {
		if optErr := opt(c); optErr != nil {
			c.Release()
			return nil, optErr
		}
	}

	return c, nil
}

// Release releases the worker pool.
// The crawler should not be used after calling Release.
func (c *Crawler) Release() {
	if c.pool != nil {
		c.pool.Release()
	}
}

// fetched is the outcome of one concurrent page fetch.
type fetched struct {
	url  string
	page *page
	err  error
}

// Crawl visits up to maxPages pages of the start URL's domain breadth-first
// and returns their extracted text. Only links on the exact same hostname are
// followed; no URL is visited twice. Per-page failures are logged and
// skipped. Cancelling the context stops the traversal and returns the pages
// collected so far.
func (c *Crawler) Crawl(ctx context.Context, startURL string, maxPages int) ([]*core.CrawledPage, error) {
	if maxPages <= 0 {
		return []*core.CrawledPage{}, nil
	}

	base, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Hostname() == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, startURL)
	}
	start := normalizeURL(base)

	c.logger.Info("starting crawl", "url", start, "max_pages", maxPages)

	// A URL is marked visited when it enters the frontier, so a link
	// discovered by two pages is only ever enqueued once. URLs are
	// normalized first, so aliases of one page share a single entry.
	visited := map[string]bool{start: true}
	frontier := []string{start}
	var pages []*core.CrawledPage

	// The frontier is drained wave by wave: each wave fetches its URLs
	// concurrently, then results are folded back in frontier order so the
	// traversal stays breadth-first and the visited set deterministic.
	for len(frontier) > 0 && len(pages) < maxPages {
		if ctx.Err() != nil {
			c.logger.Warn("crawl cancelled", "pages_collected", len(pages))
			return pages, nil
		}

		wave := frontier[:min(len(frontier), maxPages-len(pages))]
		frontier = frontier[len(wave):]

		results := c.fetchWave(ctx, wave)

		for _, res := range results {
			if res.err != nil {
				c.logger.Warn("failed to crawl page", "url", res.url, "err", res.err)
				continue
			}
			if len(pages) >= maxPages {
				break
			}

			title := res.page.title
			if title == "" {
				title = res.url
			}
			pages = append(pages, &core.CrawledPage{
				URL:     res.url,
				Title:   title,
				Content: res.page.text,
			})

			for _, link := range res.page.links {
				linkURL, err := url.Parse(link)
				if err != nil || linkURL.Hostname() != base.Hostname() {
					continue
				}
				if visited[link] {
					continue
				}
				visited[link] = true
				frontier = append(frontier, link)
			}
		}
	}

	c.logger.Info("crawl finished", "pages", len(pages))
	return pages, nil
}

// fetchWave fetches a batch of URLs through the worker pool, preserving
// input order in the results.
func (c *Crawler) fetchWave(ctx context.Context, wave []string) []fetched {
	results := make([]fetched, len(wave))

	var wg sync.WaitGroup
	for i, pageURL := range wave {
		wg.Add(1)
		err := c.pool.Submit(func() {
			defer wg.Done()
			results[i] = c.fetchPage(ctx, pageURL)
		})
		if err != nil {
			results[i] = fetched{url: pageURL, err: err}
			wg.Done()
		}
	}
	wg.Wait()

	return results
}

// fetchPage fetches and parses one page.
func (c *Crawler) fetchPage(ctx context.Context, pageURL string) fetched {
	body, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return fetched{url: pageURL, err: err}
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return fetched{url: pageURL, err: err}
	}

	p, err := parsePage(body, parsed)
	if err != nil {
		return fetched{url: pageURL, err: err}
	}

	return fetched{url: pageURL, page: p}
}
