// Package catalog owns the in-memory collection of reconciled company
// records and its load/refresh lifecycle.
package catalog

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"portfolio_dashboard/pkg/core/markdown"
	"portfolio_dashboard/pkg/core/merge"
	"portfolio_dashboard/pkg/core/normalize"
	"portfolio_dashboard/pkg/core/utils"
	"portfolio_dashboard/pkg/models"
)

// RawCompanyDocs is one entity's unparsed source material as handed
// over by a Loader. Any of the three blobs may be nil.
type RawCompanyDocs struct {
	Ticker        string
	JSON          []byte
	SecondaryJSON []byte
	Markdown      []byte
}

// Loader supplies the raw documents for a full catalog rebuild. The
// reports scanner is the production implementation; tests inject
// in-memory fakes.
type Loader interface {
	LoadDocs() ([]RawCompanyDocs, error)
}

// Entry pairs the unified record with the markdown-side artifacts
// callers want alongside it.
type Entry struct {
	Record      *models.CompanyRecord
	Analysis    *markdown.AnalysisRecord
	RawMarkdown string
}

// Store is the owned cache. Loads build a complete snapshot locally
// and swap it in under the lock, so readers see either the old or the
// new catalog in full, never a partial rebuild. Records handed out are
// shared snapshot state and must not be mutated; overlay operations
// clone.
type Store struct {
	mu       sync.RWMutex
	loader   Loader
	entries  map[string]*Entry // canonical uppercase ticker
	order    []string          // sorted tickers
	loadID   string
	lastLoad time.Time
}

// NewStore creates an empty catalog. Call LoadAll to populate it.
func NewStore(loader Loader) *Store {
	return &Store{
		loader:  loader,
		entries: make(map[string]*Entry),
	}
}

// LoadAll rebuilds the catalog from the loader. One entity failing to
// parse never aborts the batch; it is logged and skipped. A systemic
// loader failure yields an empty catalog rather than an error so the
// server keeps serving.
func (s *Store) LoadAll() error {
	started := time.Now()
	docs, err := s.loader.LoadDocs()
	if err != nil {
		log.Printf("[CATALOG] Load failed, serving empty catalog: %v", err)
		s.swap(make(map[string]*Entry), nil)
		return fmt.Errorf("load catalog: %w", err)
	}

	entries := make(map[string]*Entry, len(docs))
	var order []string
	for _, d := range docs {
		entry, err := buildEntry(d)
		if err != nil {
			log.Printf("[CATALOG] Skipping %s: %v", d.Ticker, err)
			continue
		}
		key := entry.Record.Ticker
		if _, dup := entries[key]; dup {
			log.Printf("[CATALOG] Duplicate ticker %s, keeping first", key)
			continue
		}
		entries[key] = entry
		order = append(order, key)
	}
	sort.Strings(order)

	s.swap(entries, order)
	log.Printf("[CATALOG] Loaded %d companies in %v", len(order), time.Since(started).Round(time.Millisecond))
	return nil
}

// Refresh clears and reloads synchronously. Callers needing a
// non-blocking refresh wrap this in a goroutine.
func (s *Store) Refresh() error {
	return s.LoadAll()
}

// GetAll returns the full catalog sorted by ticker.
func (s *Store) GetAll() []*models.CompanyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.CompanyRecord, 0, len(s.order))
	for _, t := range s.order {
		out = append(out, s.entries[t].Record)
	}
	return out
}

// GetByTicker looks up a single entry, case-insensitively.
func (s *Store) GetByTicker(ticker string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[strings.ToUpper(strings.TrimSpace(ticker))]
	return e, ok
}

// Count returns the number of cached companies.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// LastLoadTime is the completion time of the most recent load as an
// ISO-8601 string, or "" before the first load.
func (s *Store) LastLoadTime() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastLoad.IsZero() {
		return ""
	}
	return s.lastLoad.UTC().Format(time.RFC3339)
}

// LoadID identifies the current snapshot; it changes on every load.
func (s *Store) LoadID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadID
}

func (s *Store) swap(entries map[string]*Entry, order []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.order = order
	s.loadID = uuid.NewString()
	s.lastLoad = time.Now()
}

// buildEntry runs one entity through the parse, normalize, reconcile
// and backfill pipeline. Either source alone is enough; the entity is
// rejected only when neither parsed.
func buildEntry(d RawCompanyDocs) (*Entry, error) {
	var jsonRec *models.CompanyRecord
	if len(d.JSON) > 0 {
		doc, err := utils.SmartParseDocument(d.JSON)
		if err != nil {
			log.Printf("[CATALOG] %s: unparsable report JSON: %v", d.Ticker, err)
		} else {
			jsonRec = normalize.Normalize(doc, d.Ticker)
		}
	}

	var mdRec *markdown.AnalysisRecord
	rawMd := string(d.Markdown)
	if strings.TrimSpace(rawMd) != "" {
		mdRec = markdown.ExtractAnalysis(rawMd, d.Ticker)
	}

	rec := merge.Reconcile(jsonRec, mdRec)
	if rec == nil {
		return nil, fmt.Errorf("no usable source document")
	}
	if rec.Ticker == "" {
		return nil, fmt.Errorf("no ticker in any source")
	}

	if len(d.SecondaryJSON) > 0 {
		// Enhancement only; a broken secondary document is ignored.
		if doc, err := utils.SmartParseDocument(d.SecondaryJSON); err == nil {
			merge.BackfillQuarterEnds(rec, doc)
		}
	}

	return &Entry{Record: rec, Analysis: mdRec, RawMarkdown: rawMd}, nil
}
