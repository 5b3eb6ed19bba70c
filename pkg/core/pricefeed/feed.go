// Package pricefeed polls an external quote endpoint and exposes the
// latest ticker -> price map. The core treats this package as the
// external collaborator that owns all retry, timeout, and backoff
// behavior; everything downstream just consumes the snapshot.
package pricefeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

const (
	fetchRetries   = 3
	initialBackoff = 2 * time.Second
	requestTimeout = 15 * time.Second
)

// Feed polls a quote URL and caches the latest prices. On a failed
// poll the previous snapshot is kept; a stale price beats no price.
type Feed struct {
	url     string
	client  *http.Client
	retries int
	backoff time.Duration

	mu      sync.RWMutex
	prices  map[string]float64
	asOf    time.Time
	lastErr error
}

// NewFeed creates a feed for the given quote URL. The endpoint may
// serve either CSV ("TICKER,price" lines, header optional) or an HTML
// page with a quote table.
func NewFeed(url string) *Feed {
	return &Feed{
		url:     url,
		client:  &http.Client{Timeout: requestTimeout},
		retries: fetchRetries,
		backoff: initialBackoff,
		prices:  make(map[string]float64),
	}
}

// Snapshot returns a copy of the current price map.
func (f *Feed) Snapshot() map[string]float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make(map[string]float64, len(f.prices))
	for t, p := range f.prices {
		out[t] = p
	}
	return out
}

// Lookup returns the live price for a ticker, if the feed has one.
func (f *Feed) Lookup(ticker string) (float64, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	p, ok := f.prices[strings.ToUpper(strings.TrimSpace(ticker))]
	return p, ok
}

// AsOf reports when the current snapshot was fetched.
func (f *Feed) AsOf() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.asOf
}

// FetchOnce performs a single poll with retries and replaces the
// snapshot on success. The previous snapshot survives a total failure.
func (f *Feed) FetchOnce(ctx context.Context) error {
	var lastErr error
	backoff := f.backoff
	for attempt := 1; attempt <= f.retries; attempt++ {
		prices, err := f.fetch(ctx)
		if err == nil {
			f.mu.Lock()
			f.prices = prices
			f.asOf = time.Now()
			f.lastErr = nil
			f.mu.Unlock()
			return nil
		}
		lastErr = err
		fmt.Printf("[PRICEFEED] Attempt %d/%d failed: %v\n", attempt, f.retries, err)
		if attempt < f.retries {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}
	}

	f.mu.Lock()
	f.lastErr = lastErr
	f.mu.Unlock()
	return fmt.Errorf("price fetch failed after %d attempts: %w", f.retries, lastErr)
}

// Poll runs FetchOnce on the given interval until the context is
// cancelled. Intended to run in its own goroutine.
func (f *Feed) Poll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := f.FetchOnce(ctx); err != nil {
		fmt.Printf("[PRICEFEED] Initial fetch: %v\n", err)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.FetchOnce(ctx); err != nil {
				fmt.Printf("[PRICEFEED] Poll: %v\n", err)
			}
		}
	}
}

func (f *Feed) fetch(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", f.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv, text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "html") {
		return parseHTMLQuotes(body)
	}
	prices, err := parseCSVQuotes(string(body))
	if err != nil {
		// Some endpoints serve HTML with a generic content type.
		if htmlPrices, htmlErr := parseHTMLQuotes(body); htmlErr == nil && len(htmlPrices) > 0 {
			return htmlPrices, nil
		}
		return nil, err
	}
	return prices, nil
}

// parseCSVQuotes reads "TICKER,price" lines. A header row and blank
// lines are tolerated; decimal parsing avoids float artifacts from
// exchange feeds that quote sub-cent precision.
func parseCSVQuotes(body string) (map[string]float64, error) {
	prices := make(map[string]float64)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			continue
		}
		ticker := strings.ToUpper(strings.TrimSpace(parts[0]))
		d, err := decimal.NewFromString(strings.TrimSpace(strings.TrimPrefix(parts[1], "$")))
		if err != nil {
			continue // header or junk row
		}
		price, _ := d.Float64()
		if ticker != "" && price > 0 {
			prices[ticker] = price
		}
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("no parsable quote rows")
	}
	return prices, nil
}

// parseHTMLQuotes extracts ticker/price pairs from the first table
// whose rows have the ticker in the first cell and a price in the
// second.
func parseHTMLQuotes(body []byte) (map[string]float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse quote HTML: %w", err)
	}

	prices := make(map[string]float64)
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		ticker := strings.ToUpper(strings.TrimSpace(cells.Eq(0).Text()))
		raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(cells.Eq(1).Text()), "$"))
		d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
		if err != nil {
			return
		}
		price, _ := d.Float64()
		if ticker != "" && price > 0 {
			prices[ticker] = price
		}
	})
	if len(prices) == 0 {
		return nil, fmt.Errorf("no quote table found")
	}
	return prices, nil
}
