// inspect_reports runs the full load pipeline over a reports directory
// and dumps what each ticker resolved to. Useful for checking which
// schema family a new report landed in and whether the merge filled
// the expected fields.
//
// Usage: inspect_reports [-dir reports] [-ticker ECOM] [-json]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"portfolio_dashboard/pkg/core/catalog"
	"portfolio_dashboard/pkg/core/coerce"
	"portfolio_dashboard/pkg/core/config"
	"portfolio_dashboard/pkg/core/reports"
	"portfolio_dashboard/pkg/core/saul"
)

func main() {
	godotenv.Load()

	dir := flag.String("dir", "", "reports directory (default from config)")
	ticker := flag.String("ticker", "", "inspect a single ticker")
	asJSON := flag.Bool("json", false, "dump full records as JSON")
	flag.Parse()

	cfgPath := os.Getenv("DASHBOARD_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/dashboard.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[WARNING] Config load: %v\n", err)
	}
	coerce.SetRawDollarThreshold(cfg.RawDollarThreshold)
	if *dir == "" {
		*dir = cfg.ReportsDir
	}

	store := catalog.NewStore(reports.NewScanner(*dir))
	if err := store.LoadAll(); err != nil {
		fmt.Printf("[FATAL] Load failed: %v\n", err)
		os.Exit(1)
	}

	records := store.GetAll()
	if *ticker != "" {
		entry, ok := store.GetByTicker(*ticker)
		if !ok {
			fmt.Printf("[FATAL] Ticker not found: %s\n", *ticker)
			os.Exit(1)
		}
		records = records[:0]
		records = append(records, entry.Record)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		for _, rec := range records {
			if err := enc.Encode(rec); err != nil {
				fmt.Printf("[FATAL] Encode %s: %v\n", rec.Ticker, err)
				os.Exit(1)
			}
		}
		return
	}

	fmt.Printf("Loaded %d companies from %s\n\n", len(records), *dir)
	for _, rec := range records {
		src := "json"
		if rec.MarkdownOnly {
			src = "markdown-only"
		}
		fmt.Printf("%-6s %-14s price=%s mcap=%s verdict=%s quarters=%d score=%s\n",
			rec.Ticker, src,
			fmtFloat(rec.Price), fmtFloat(rec.MarketCapMil),
			fmtString(rec.Verdict), len(rec.QuarterlyHistory),
			fmtScore(rec.SaulSummary))
	}
}

func fmtFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func fmtString(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

func fmtScore(s *saul.Summary) string {
	if s == nil {
		return "-"
	}
	return fmt.Sprintf("%d", s.Score)
}
