package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"dca-dashboard/internal/datasource"
	"dca-dashboard/internal/logger"
	"dca-dashboard/internal/portfolio"
	"dca-dashboard/internal/theme"
)

func (s *Server) page(r *http.Request, title, subtitle, active string) *pageData {
	return &pageData{
		Title:    title,
		Subtitle: subtitle,
		Active:   active,
		Theme:    theme.Load(r, theme.Theme(s.cfg.Theme.Default)),
		Return:   r.URL.RequestURI(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	p := s.page(r, "Not found", "There is nothing at "+r.URL.Path, "")
	s.views.render(w, r, http.StatusNotFound, "notfound", p)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	v := s.app.Dashboard(r.Context())
	p := s.page(r, "Dashboard", "Portfolio overview and current positions", PageDashboard)

	switch {
	case v.Err != nil:
		p.Error = newErrorPanel("Failed to load dashboard data", PageDashboard, v.Err)
	case v.Loading:
		p.Loading = true
		p.AutoRefresh = loadingRefreshSeconds
	}

	body := dashboardBody{
		KPIs:          v.KPIs,
		Positions:     v.Positions,
		BaseCurrency:  "USDC",
		SnapshotCount: v.SnapshotCount,
	}
	if v.KPIs != nil {
		if v.KPIs.BaseCurrency != "" {
			body.BaseCurrency = v.KPIs.BaseCurrency
		}
		body.LastUpdated = portfolio.FormatTimestamp(v.KPIs.LastUpdated, portfolio.DashboardTimeLayout)
		body.UpdatedAgo = portfolio.RelativeTime(v.KPIs.LastUpdated, time.Now())
	}
	p.Body = body
	s.views.render(w, r, http.StatusOK, PageDashboard, p)
}

func (s *Server) chartQuery(r *http.Request) chartQuery {
	q := r.URL.Query()
	cq := chartQuery{
		Range:   portfolio.LookupTimeRange(firstNonEmpty(q.Get("range"), s.cfg.Charts.DefaultRange)).Value,
		View:    q.Get("view"),
		Symbols: splitSymbols(q["symbol"]),
	}
	if cq.View != "symbols" {
		cq.View = "portfolio"
	}
	return cq
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	cq := s.chartQuery(r)
	v := s.app.Charts(r.Context(), portfolio.LookupTimeRange(cq.Range), cq.Symbols)
	p := s.page(r, "Charts", "Portfolio performance over time", PageCharts)

	switch {
	case v.Err != nil:
		p.Error = newErrorPanel("Failed to load chart data", PageCharts, v.Err)
	case v.Loading:
		p.Loading = true
		p.AutoRefresh = loadingRefreshSeconds
	default:
		p.Body = newChartsBody(v, cq)
	}
	s.views.render(w, r, http.StatusOK, PageCharts, p)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	v := s.app.Transactions(r.Context(), symbol)
	p := s.page(r, "Transactions", "Complete transaction history", PageTransactions)

	switch {
	case v.Err != nil:
		p.Error = newErrorPanel("Failed to load transaction data", PageTransactions, v.Err)
	case v.Loading:
		p.Loading = true
		p.AutoRefresh = loadingRefreshSeconds
	default:
		p.Body = transactionsBody{
			Count:        len(v.Transactions),
			Symbol:       v.Symbol,
			Symbols:      v.Symbols,
			Transactions: v.Transactions,
			Summary:      v.Summary,
			Empty:        len(v.Transactions) == 0,
		}
	}
	s.views.render(w, r, http.StatusOK, PageTransactions, p)
}

var pagePaths = map[string]string{
	PageDashboard:    "/",
	PageCharts:       "/charts",
	PageTransactions: "/transactions",
	PagePrices:       "/api/prices",
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")
	if !s.app.Retry(r.Context(), page) {
		http.NotFound(w, r)
		return
	}
	target := safeReturn(r.FormValue("return"), pagePaths[page])
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	current := theme.Load(r, theme.Theme(s.cfg.Theme.Default))
	next := current.Toggle()
	if t, ok := theme.Parse(r.FormValue("theme")); ok {
		next = t
	}
	theme.Save(w, next)
	logger.Debug(r.Context(), "Theme changed", "from", current, "to", next)
	http.Redirect(w, r, safeReturn(firstNonEmpty(r.FormValue("return"), r.Referer()), "/"), http.StatusSeeOther)
}

// apiResponse wraps every JSON API payload with the tri-state.
type apiResponse struct {
	Loading bool      `json:"loading"`
	Error   *apiError `json:"error,omitempty"`
	Data    any       `json:"data,omitempty"`
}

type apiError struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeState(w http.ResponseWriter, loading bool, err error, data any) {
	switch {
	case err != nil:
		e := &apiError{Message: err.Error()}
		var de *datasource.DataError
		if errors.As(err, &de) {
			e = &apiError{Kind: string(de.Kind), Message: de.Message, Details: de.Details}
		}
		writeJSON(w, http.StatusBadGateway, apiResponse{Error: e})
	case loading:
		writeJSON(w, http.StatusAccepted, apiResponse{Loading: true})
	default:
		writeJSON(w, http.StatusOK, apiResponse{Data: data})
	}
}

func (s *Server) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	v := s.app.Dashboard(r.Context())
	writeState(w, v.Loading, v.Err, map[string]any{
		"kpis":          v.KPIs,
		"positions":     v.Positions,
		"snapshotCount": v.SnapshotCount,
	})
}

func (s *Server) handleAPICharts(w http.ResponseWriter, r *http.Request) {
	cq := s.chartQuery(r)
	tr := portfolio.LookupTimeRange(cq.Range)
	v := s.app.Charts(r.Context(), tr, cq.Symbols)
	writeState(w, v.Loading, v.Err, map[string]any{
		"timeRange":     tr,
		"portfolioData": v.Series.Portfolio,
		"symbolData":    v.Series.Symbols,
		"symbols":       v.Symbols,
		"breakdown":     v.Breakdown,
	})
}

func (s *Server) handleAPISymbols(w http.ResponseWriter, r *http.Request) {
	v := s.app.Charts(r.Context(), portfolio.LookupTimeRange("all"), nil)
	writeState(w, v.Loading, v.Err, v.Symbols)
}

func (s *Server) handleAPITransactions(w http.ResponseWriter, r *http.Request) {
	v := s.app.Transactions(r.Context(), strings.TrimSpace(r.URL.Query().Get("symbol")))
	writeState(w, v.Loading, v.Err, map[string]any{
		"transactions": nonNil(v.Transactions),
		"summary":      nonNil(v.Summary),
		"symbols":      nonNil(v.Symbols),
	})
}

func (s *Server) handleAPITransactionsCSV(w http.ResponseWriter, r *http.Request) {
	v := s.app.Transactions(r.Context(), strings.TrimSpace(r.URL.Query().Get("symbol")))
	if v.Err != nil || v.Loading {
		writeState(w, v.Loading, v.Err, nil)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions-summary.csv"`)
	if err := portfolio.WriteLedgerCSV(w, v.Summary); err != nil {
		logger.ErrorWithErr(r.Context(), "Failed to write ledger CSV", err)
	}
}

func (s *Server) handleAPIPrices(w http.ResponseWriter, r *http.Request) {
	v := s.app.Prices(r.Context(), strings.TrimSpace(r.URL.Query().Get("symbol")))
	writeState(w, v.Loading, v.Err, nonNil(v.Prices))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// splitSymbols accepts both repeated and comma-separated symbol params.
func splitSymbols(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, s := range strings.Split(r, ",") {
			if s = strings.TrimSpace(s); s != "" && !containsString(out, s) {
				out = append(out, s)
			}
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
