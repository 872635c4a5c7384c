package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gocolly/colly/v2"

	"github.com/akolanti/DocsChat/internal/customHttpClient"
	"github.com/akolanti/DocsChat/pkg/logger_i"
)

// Page is one raw fetched page with its provenance.
type Page struct {
	URL   string
	Depth int
	Body  []byte
}

// Crawler walks a documentation site breadth-bounded from a seed URL.
// Traversal stays on the seed's host, never descends past maxDepth, skips the
// excluded path prefixes and fetches every URL at most once per run.
type Crawler struct {
	maxDepth     int
	excludePaths []string
	logger       *logger_i.Logger
}

func New(maxDepth int, excludePaths []string) *Crawler {
	return &Crawler{
		maxDepth:     maxDepth,
		excludePaths: excludePaths,
		logger:       logger_i.NewLogger("Crawler"),
	}
}

// Crawl fetches the seed and everything linked under it, in visit order.
// A single failed page is logged and skipped, it never aborts the run; the
// crawl only errors out when not even the seed could be fetched.
func (c *Crawler) Crawl(ctx context.Context, seedURL string) ([]Page, error) {
	log := c.logger.WithTrace(ctx)

	seed, err := url.Parse(seedURL)
	if err != nil || seed.Host == "" {
		return nil, fmt.Errorf("invalid seed url %q: %w", seedURL, err)
	}

	collector := colly.NewCollector(
		colly.MaxDepth(c.maxDepth),
		colly.AllowedDomains(seed.Hostname()),
	)
	collector.WithTransport(customHttpClient.Transport())

	var pages []Page

	collector.OnRequest(func(r *colly.Request) {
		//client went away, stop scheduling fetches
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		if c.excluded(r.URL.Path) {
			r.Abort()
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		contentType := strings.ToLower(r.Headers.Get("Content-Type"))
		if !strings.Contains(contentType, "text/html") {
			return
		}
		pages = append(pages, Page{
			URL:   r.Request.URL.String(),
			Depth: r.Request.Depth,
			Body:  r.Body,
		})
	})

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" {
			return
		}
		//anchors point at the same document
		if i := strings.IndexByte(link, '#'); i >= 0 {
			link = link[:i]
		}
		//Visit enforces domain, depth and the visited set; scope errors here
		//are the normal outcome for out-of-scope links, not failures
		_ = e.Request.Visit(link)
	})

	collector.OnError(func(r *colly.Response, err error) {
		log.Warn("Page fetch failed, skipping", "url", r.Request.URL.String(), "error", err)
	})

	if err := collector.Visit(seedURL); err != nil && len(pages) == 0 {
		return nil, fmt.Errorf("crawl of %s failed: %w", seedURL, err)
	}
	collector.Wait()

	if len(pages) == 0 {
		return nil, fmt.Errorf("crawl of %s fetched no pages", seedURL)
	}

	log.Debug("Crawl finished", "pages", len(pages))
	return pages, nil
}

func (c *Crawler) excluded(path string) bool {
	for _, prefix := range c.excludePaths {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
