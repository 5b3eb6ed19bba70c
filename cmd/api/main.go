package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"portfolio_dashboard/pkg/api/dashboard"
	"portfolio_dashboard/pkg/core/catalog"
	"portfolio_dashboard/pkg/core/coerce"
	"portfolio_dashboard/pkg/core/config"
	"portfolio_dashboard/pkg/core/pricefeed"
	"portfolio_dashboard/pkg/core/reports"
)

func main() {
	// Load environment variables
	godotenv.Load()

	cfgPath := os.Getenv("DASHBOARD_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/dashboard.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[WARNING] Config load: %v\n", err)
		fmt.Println("  Falling back to defaults")
	}
	coerce.SetRawDollarThreshold(cfg.RawDollarThreshold)

	// Build the catalog from the reports directory
	scanner := reports.NewScanner(cfg.ReportsDir)
	store := catalog.NewStore(scanner)
	if err := store.LoadAll(); err != nil {
		fmt.Printf("[WARNING] Initial load: %v\n", err)
	}
	fmt.Printf("[CATALOG] %d companies from %s\n", store.Count(), cfg.ReportsDir)

	// Live price poller (optional)
	var feed *pricefeed.Feed
	if cfg.QuoteURL != "" {
		feed = pricefeed.NewFeed(cfg.QuoteURL)
		go feed.Poll(context.Background(), time.Duration(cfg.PollIntervalSec)*time.Second)
		fmt.Printf("[PRICEFEED] Polling %s every %ds\n", cfg.QuoteURL, cfg.PollIntervalSec)
	} else {
		fmt.Println("[PRICEFEED] No quote URL configured, serving report prices")
	}

	// Dashboard endpoints
	dashboard.InitHandler(store, feed, cfg.Holdings)
	http.HandleFunc("/api/companies", dashboard.HandleCompanies)
	http.HandleFunc("/api/company", dashboard.HandleCompany)
	http.HandleFunc("/api/refresh", dashboard.HandleRefresh)
	http.HandleFunc("/api/prices", dashboard.HandlePrices)

	addr := fmt.Sprintf(":%d", cfg.Port)
	fmt.Printf("API server starting on %s...\n", addr)
	fmt.Println("  - GET  /api/companies")
	fmt.Println("  - GET  /api/company?ticker=X")
	fmt.Println("  - POST /api/refresh")
	fmt.Println("  - GET  /api/prices")

	// Exit with code 1 if it fails (e.g. port in use)
	if err := http.ListenAndServe(addr, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
