// Package reports reads raw research documents off disk. Each company
// has its own directory under the reports root:
//
//	reports/
//	  ECOM/
//	    ecom_2025-10-12.json        primary report (newest wins)
//	    ecom_secondary.json         legacy document with quarter-end dates
//	    deep_dive_2024.json         also treated as secondary
//	    analysis.md                 research note
//
// The scanner only reads files into memory; parsing and normalization
// happen downstream.
package reports

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"portfolio_dashboard/pkg/core/catalog"
)

// Scanner implements catalog.Loader over a reports directory.
type Scanner struct {
	Root string
}

// NewScanner creates a scanner rooted at dir.
func NewScanner(dir string) *Scanner {
	return &Scanner{Root: dir}
}

// LoadDocs walks the reports root and returns one RawCompanyDocs per
// ticker directory. A missing root is a systemic failure; unreadable
// individual files are logged and the ticker proceeds with whatever
// did read.
func (s *Scanner) LoadDocs() ([]catalog.RawCompanyDocs, error) {
	dirents, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("read reports root %s: %w", s.Root, err)
	}

	var docs []catalog.RawCompanyDocs
	for _, de := range dirents {
		if !de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		docs = append(docs, s.loadTickerDir(de.Name()))
	}
	return docs, nil
}

func (s *Scanner) loadTickerDir(ticker string) catalog.RawCompanyDocs {
	dir := filepath.Join(s.Root, ticker)
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("[REPORTS] Cannot read %s: %v", dir, err)
		return catalog.RawCompanyDocs{Ticker: strings.ToUpper(ticker)}
	}

	var primary, secondary, md string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch {
		case isSecondaryJSON(name):
			secondary = newer(dir, secondary, name)
		case strings.EqualFold(filepath.Ext(name), ".json"):
			primary = newer(dir, primary, name)
		case strings.EqualFold(filepath.Ext(name), ".md"):
			md = newer(dir, md, name)
		}
	}

	return catalog.RawCompanyDocs{
		Ticker:        strings.ToUpper(ticker),
		JSON:          readOptional(dir, primary),
		SecondaryJSON: readOptional(dir, secondary),
		Markdown:      readOptional(dir, md),
	}
}

// isSecondaryJSON matches the legacy document naming conventions.
func isSecondaryJSON(name string) bool {
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, ".json") {
		return false
	}
	return strings.HasSuffix(strings.TrimSuffix(lower, ".json"), "_secondary") ||
		strings.HasPrefix(lower, "deep_dive")
}

// newer keeps whichever of the two filenames has the later mtime.
// Ties and stat failures fall back to lexical order so the choice is
// still deterministic.
func newer(dir, current, candidate string) string {
	if current == "" {
		return candidate
	}
	ci, errC := os.Stat(filepath.Join(dir, current))
	ni, errN := os.Stat(filepath.Join(dir, candidate))
	if errC != nil || errN != nil || ci.ModTime().Equal(ni.ModTime()) {
		if candidate > current {
			return candidate
		}
		return current
	}
	if ni.ModTime().After(ci.ModTime()) {
		return candidate
	}
	return current
}

func readOptional(dir, name string) []byte {
	if name == "" {
		return nil
	}
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		log.Printf("[REPORTS] Cannot read %s: %v", filepath.Join(dir, name), err)
		return nil
	}
	return b
}
