package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"portfolio_dashboard/pkg/core/catalog"
	"portfolio_dashboard/pkg/core/overlay"
	"portfolio_dashboard/pkg/core/pricefeed"
	"portfolio_dashboard/pkg/core/utils"
	"portfolio_dashboard/pkg/models"
)

var store *catalog.Store
var feed *pricefeed.Feed
var holdings []string

// InitHandler wires the dashboard endpoints to their collaborators.
// feed may be nil when no quote URL is configured; records are then
// served at their report prices.
func InitHandler(s *catalog.Store, f *pricefeed.Feed, holdingsFilter []string) {
	store = s
	feed = f
	holdings = holdingsFilter
}

type CompaniesResponse struct {
	Companies    []*models.CompanyRecord `json:"companies"`
	Count        int                     `json:"count"`
	LastLoadTime string                  `json:"last_load_time,omitempty"`
	LoadID       string                  `json:"load_id,omitempty"`
	Holdings     []string                `json:"holdings,omitempty"`
}

type CompanyResponse struct {
	Record       *models.CompanyRecord `json:"record"`
	Analysis     interface{}           `json:"analysis,omitempty"`
	Markdown     string                `json:"markdown,omitempty"`
	MarkdownHTML string                `json:"markdown_html,omitempty"`
}

// HandleCompanies serves the full catalog with live prices overlaid at
// request time, so the cache itself stays at report prices.
func HandleCompanies(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records := store.GetAll()
	out := make([]*models.CompanyRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, withLivePrice(rec))
	}

	writeJSON(w, CompaniesResponse{
		Companies:    out,
		Count:        len(out),
		LastLoadTime: store.LastLoadTime(),
		LoadID:       store.LoadID(),
		Holdings:     holdings,
	})
}

// HandleCompany serves one entity with its analysis artifacts and the
// research note rendered to HTML.
func HandleCompany(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ticker := strings.TrimSpace(r.URL.Query().Get("ticker"))
	if ticker == "" {
		http.Error(w, "Missing ticker parameter", http.StatusBadRequest)
		return
	}

	entry, ok := store.GetByTicker(ticker)
	if !ok {
		http.Error(w, fmt.Sprintf("Ticker not found: %s", strings.ToUpper(ticker)), http.StatusNotFound)
		return
	}

	resp := CompanyResponse{Record: withLivePrice(entry.Record)}
	if entry.Analysis != nil {
		resp.Analysis = entry.Analysis
	}
	if entry.RawMarkdown != "" {
		resp.Markdown = entry.RawMarkdown
		resp.MarkdownHTML = utils.RenderMarkdown(entry.RawMarkdown)
	}
	writeJSON(w, resp)
}

// HandleRefresh rebuilds the catalog synchronously.
func HandleRefresh(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	fmt.Println("[DASHBOARD] Refresh requested")
	if err := store.Refresh(); err != nil {
		// The store already swapped in an empty catalog; report the
		// condition but keep serving.
		http.Error(w, fmt.Sprintf("Refresh failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"status":  "ok",
		"count":   store.Count(),
		"load_id": store.LoadID(),
	})
}

// HandlePrices exposes the raw live-price snapshot.
func HandlePrices(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	resp := map[string]interface{}{"prices": map[string]float64{}}
	if feed != nil {
		resp["prices"] = feed.Snapshot()
		if asOf := feed.AsOf(); !asOf.IsZero() {
			resp["as_of"] = asOf.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
	}
	writeJSON(w, resp)
}

// withLivePrice overlays the feed quote when one exists; otherwise the
// record is returned untouched at its report price.
func withLivePrice(rec *models.CompanyRecord) *models.CompanyRecord {
	if feed == nil {
		return rec
	}
	price, ok := feed.Lookup(rec.Ticker)
	if !ok {
		return rec
	}
	return overlay.OverlayPrice(rec, price)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Printf("[DASHBOARD] Response encoding failed: %v\n", err)
	}
}
