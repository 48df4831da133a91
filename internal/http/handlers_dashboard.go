package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"tabungan/internal/core"
)

const (
	summaryCacheKey    = "summary"
	statisticsCacheKey = "statistics"
)

type totalsResponse struct {
	Jenis  string `json:"jenis,omitempty"`
	Label  string `json:"label,omitempty"`
	Sum    int64  `json:"sum"`
	SumFmt string `json:"sum_fmt"`
	Count  int    `json:"count"`
}

type summaryResponse struct {
	Categories []totalsResponse `json:"categories"`
	GrandTotal totalsResponse   `json:"grand_total"`
}

type monthBucketResponse struct {
	Month   string `json:"month"`
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
}

type shareEntryResponse struct {
	Jenis   string  `json:"jenis"`
	Label   string  `json:"label"`
	Sum     int64   `json:"sum"`
	Color   string  `json:"color"`
	Percent float64 `json:"percent"`
}

type flowResponse struct {
	Income     int64  `json:"income"`
	IncomeFmt  string `json:"income_fmt"`
	Expense    int64  `json:"expense"`
	ExpenseFmt string `json:"expense_fmt"`
	Net        int64  `json:"net"`
	NetFmt     string `json:"net_fmt"`
	Count      int    `json:"count"`
}

type statisticsResponse struct {
	Flow    flowResponse          `json:"flow"`
	Monthly []monthBucketResponse `json:"monthly"`
	Share   []shareEntryResponse  `json:"share"`
}

// handleSummary serves per-category totals plus the grand total over the
// active snapshot.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if body, found := s.summaryCache.Get(summaryCacheKey); found {
		slog.DebugContext(r.Context(), "Summary cache hit")
		writeJSONBytes(w, http.StatusOK, body)
		return
	}

	txs, err := s.svc.ListAll(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary fetch failed", "error", err)
		writeDomainError(w, err)
		return
	}

	resp := summaryResponse{
		Categories: make([]totalsResponse, 0, len(core.Categories())),
	}
	for _, c := range core.Categories() {
		t := core.CategoryTotal(txs, c)
		resp.Categories = append(resp.Categories, totalsResponse{
			Jenis:  string(c),
			Label:  c.Label(),
			Sum:    t.Sum,
			SumFmt: core.FormatRupiah(t.Sum),
			Count:  t.Count,
		})
	}
	grand := core.GrandTotal(txs)
	resp.GrandTotal = totalsResponse{
		Sum:    grand.Sum,
		SumFmt: core.FormatRupiah(grand.Sum),
		Count:  grand.Count,
	}

	s.renderAndCache(w, r, s.summaryCache, summaryCacheKey, resp)
}

// handleStatistics serves the monthly flow series and the category share for
// the charts.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if body, found := s.statsCache.Get(statisticsCacheKey); found {
		slog.DebugContext(r.Context(), "Statistics cache hit")
		writeJSONBytes(w, http.StatusOK, body)
		return
	}

	txs, err := s.svc.ListAll(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Statistics fetch failed", "error", err)
		writeDomainError(w, err)
		return
	}

	flow := core.FlowTotal(txs)
	resp := statisticsResponse{
		Flow: flowResponse{
			Income:     flow.Income,
			IncomeFmt:  core.FormatRupiah(flow.Income),
			Expense:    flow.Expense,
			ExpenseFmt: core.FormatRupiah(flow.Expense),
			Net:        flow.Net,
			NetFmt:     core.FormatRupiah(flow.Net),
			Count:      flow.Count,
		},
		Monthly: make([]monthBucketResponse, 0),
		Share:   make([]shareEntryResponse, 0),
	}
	for _, b := range core.MonthlyBuckets(txs, s.maxChartMonths) {
		resp.Monthly = append(resp.Monthly, monthBucketResponse{
			Month:   b.Month,
			Income:  b.Positive,
			Expense: b.Negative,
		})
	}
	for _, e := range core.CategoryShare(txs) {
		resp.Share = append(resp.Share, shareEntryResponse{
			Jenis:   string(e.Category),
			Label:   e.Category.Label(),
			Sum:     e.Sum,
			Color:   e.Color,
			Percent: e.Percent,
		})
	}

	s.renderAndCache(w, r, s.statsCache, statisticsCacheKey, resp)
}

// renderAndCache marshals the payload once, caches the bytes, and writes them.
func (s *Server) renderAndCache(w http.ResponseWriter, r *http.Request, c interface {
	Set(key string, data []byte)
}, key string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to marshal dashboard payload", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	c.Set(key, body)
	writeJSONBytes(w, http.StatusOK, body)
}
