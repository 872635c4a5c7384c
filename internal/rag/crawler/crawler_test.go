package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func docsSite(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32

	mux := http.NewServeMux()
	serve := func(path string, body string) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, body)
		})
	}

	serve("/docs/intro", `<html><body>
		<p>Welcome to the docs.</p>
		<a href="/docs/auth">auth</a>
		<a href="/docs/auth#tokens">auth anchor</a>
		<a href="/api/reference">api ref</a>
		<a href="/docs/broken">broken</a>
		<a href="https://elsewhere.example.com/page">external</a>
	</body></html>`)
	serve("/docs/auth", `<html><body>
		<p>Bearer tokens everywhere.</p>
		<a href="/docs/intro">back</a>
		<a href="/docs/deep">deeper</a>
	</body></html>`)
	serve("/docs/deep", `<html><body><p>Deep page.</p><a href="/docs/deeper">more</a></body></html>`)
	serve("/docs/deeper", `<html><body><p>Deeper page.</p></body></html>`)
	serve("/api/reference", `<html><body><p>Should never be fetched.</p></body></html>`)
	mux.HandleFunc("/docs/broken", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	return httptest.NewServer(mux), &hits
}

func TestCrawl_WalksSiteWithinScope(t *testing.T) {
	site, _ := docsSite(t)
	defer site.Close()

	c := New(20, []string{"/api"})
	pages, err := c.Crawl(context.Background(), site.URL+"/docs/intro")
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	got := map[string]int{}
	for _, p := range pages {
		got[p.URL]++
	}

	for _, want := range []string{"/docs/intro", "/docs/auth", "/docs/deep", "/docs/deeper"} {
		if got[site.URL+want] != 1 {
			t.Errorf("page %s fetched %d times, want exactly once", want, got[site.URL+want])
		}
	}
	if got[site.URL+"/api/reference"] != 0 {
		t.Error("excluded /api path was fetched")
	}
}

func TestCrawl_SkipsFailedPages(t *testing.T) {
	site, _ := docsSite(t)
	defer site.Close()

	c := New(20, []string{"/api"})
	pages, err := c.Crawl(context.Background(), site.URL+"/docs/intro")
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	// the 500 page is dropped, the rest of the crawl still happens
	for _, p := range pages {
		if p.URL == site.URL+"/docs/broken" {
			t.Error("failed page ended up in the results")
		}
	}
	if len(pages) != 4 {
		t.Errorf("got %d pages, want 4", len(pages))
	}
}

func TestCrawl_DepthBound(t *testing.T) {
	site, _ := docsSite(t)
	defer site.Close()

	// depth 2 reaches intro and its direct links only
	c := New(2, nil)
	pages, err := c.Crawl(context.Background(), site.URL+"/docs/intro")
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	for _, p := range pages {
		if p.URL == site.URL+"/docs/deep" || p.URL == site.URL+"/docs/deeper" {
			t.Errorf("page %s is beyond the depth bound", p.URL)
		}
	}
}

func TestCrawl_SeedUnreachable(t *testing.T) {
	site, _ := docsSite(t)
	site.Close() //nothing listening anymore

	c := New(20, nil)
	if _, err := c.Crawl(context.Background(), site.URL+"/docs/intro"); err == nil {
		t.Fatal("expected an error when the seed cannot be fetched")
	}
}

func TestCrawl_InvalidSeed(t *testing.T) {
	c := New(20, nil)
	if _, err := c.Crawl(context.Background(), "not a url"); err == nil {
		t.Fatal("expected an error for a bad seed url")
	}
}

func TestCrawl_CancelledContext(t *testing.T) {
	site, hits := docsSite(t)
	defer site.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(20, nil)
	if _, err := c.Crawl(ctx, site.URL+"/docs/intro"); err == nil {
		t.Fatal("expected an error for a cancelled crawl")
	}
	if hits.Load() != 0 {
		t.Errorf("cancelled crawl still hit the site %d times", hits.Load())
	}
}
