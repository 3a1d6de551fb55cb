package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"dca-dashboard/internal/datasource"
	"dca-dashboard/internal/logger"
	"dca-dashboard/internal/portfolio"
	"dca-dashboard/internal/theme"
	"dca-dashboard/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// loadingRefreshSeconds is the meta refresh delay of a loading page.
const loadingRefreshSeconds = 2

var funcs = template.FuncMap{
	"currency": func(v types.Float, currency string) string {
		return portfolio.FormatCurrency(float64(v), currency)
	},
	"optCurrency": func(o types.OptFloat, currency string) string {
		if !o.Valid {
			return portfolio.Placeholder
		}
		return portfolio.FormatCurrency(float64(o.Value), currency)
	},
	"decCurrency": func(d types.Decimal, currency string) string {
		return portfolio.FormatCurrency(d.Float(), currency)
	},
	"percent": func(v types.Float) string {
		return portfolio.FormatPercent(float64(v))
	},
	"optPercent": func(o types.OptFloat) string {
		if !o.Valid {
			return portfolio.Placeholder
		}
		return portfolio.FormatPercent(float64(o.Value))
	},
	"qty": func(v types.Float) string {
		return portfolio.FormatQuantity(float64(v))
	},
	"decQty":   portfolio.FormatDecimalQuantity,
	"plClass":  func(v types.Float) string { return plClass(float64(v), v.Finite()) },
	"optClass": func(o types.OptFloat) string { return plClass(float64(o.Value), o.Valid && o.Value.Finite()) },
	"dashTime": func(ts string) string {
		return portfolio.FormatTimestamp(ts, portfolio.DashboardTimeLayout)
	},
	"ledgerTime": func(ts string) string {
		return portfolio.FormatTimestamp(ts, portfolio.LedgerTimeLayout)
	},
	"list":           func(v ...string) []string { return v },
	"initials":       initials,
	"iteration":      iteration,
	"orderTypeClass": orderTypeClass,
	"sideClass": func(side string) string {
		if side == types.SideBuy {
			return "badge-buy"
		}
		return "badge-sell"
	},
}

func plClass(v float64, ok bool) string {
	switch {
	case !ok || v == 0:
		return "pl-flat"
	case v > 0:
		return "pl-up"
	default:
		return "pl-down"
	}
}

func initials(symbol string) string {
	r := []rune(symbol)
	if len(r) <= 2 {
		return symbol
	}
	return string(r[:2])
}

// iteration shows the run counter of an iteration id "<run>#<n>" as "#n".
func iteration(id string) string {
	if _, n, ok := strings.Cut(id, "#"); ok {
		return "#" + n
	}
	return id
}

func orderTypeClass(orderType string) string {
	if strings.Contains(orderType, "MOCK") {
		return "badge-mock"
	}
	return "badge-live"
}

// renderer holds one parsed template set per page.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	r := &renderer{pages: map[string]*template.Template{}}
	for _, page := range []string{PageDashboard, PageCharts, PageTransactions, "notfound"} {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

func (r *renderer) render(w http.ResponseWriter, req *http.Request, status int, name string, p *pageData) {
	t, ok := r.pages[name]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		logger.ErrorWithErr(req.Context(), "Failed to render page", err, "page", name)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	theme.Advertise(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func staticFiles() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// pageData is what the layout renders.
type pageData struct {
	Title       string
	Subtitle    string
	Active      string
	Theme       theme.Theme
	Return      string
	Loading     bool
	AutoRefresh int
	Error       *errorPanel
	Body        any
}

type errorPanel struct {
	Title   string
	Message string
	Details string
	Kind    string
	Retry   string
}

func newErrorPanel(title, page string, err error) *errorPanel {
	p := &errorPanel{Title: title, Message: err.Error(), Retry: "/refresh/" + page}
	var de *datasource.DataError
	if errors.As(err, &de) {
		p.Message = de.Message
		p.Details = de.Details
		p.Kind = string(de.Kind)
	}
	return p
}

type dashboardBody struct {
	KPIs          *types.KPISummary
	Positions     []types.EnhancedPosition
	BaseCurrency  string
	SnapshotCount int
	LastUpdated   string
	UpdatedAgo    string
}

type linkOption struct {
	Label  string
	Href   string
	Active bool
}

type chartsBody struct {
	Ranges       []linkOption
	Views        []linkOption
	Symbols      []linkOption
	ClearSymbols string
	SymbolView   bool
	Portfolio    svgChart
	SymbolCharts []svgChart
	Breakdown    []types.EnhancedPosition
	LatestTs     string
	BaseCurrency string
	Empty        bool
}

type transactionsBody struct {
	Count        int
	Symbol       string
	Symbols      []string
	Transactions []types.TransactionLine
	Summary      []types.LedgerRow
	Empty        bool
}

// chartQuery is the charts page state carried in its URL.
type chartQuery struct {
	Range   string
	View    string
	Symbols []string
}

func (q chartQuery) href() string {
	v := url.Values{}
	v.Set("range", q.Range)
	v.Set("view", q.View)
	for _, s := range q.Symbols {
		v.Add("symbol", s)
	}
	return "/charts?" + v.Encode()
}

func (q chartQuery) withRange(r string) chartQuery {
	q.Range = r
	return q
}

func (q chartQuery) withView(view string) chartQuery {
	q.View = view
	return q
}

// toggle adds or removes a symbol from the selection.
func (q chartQuery) toggle(symbol string) chartQuery {
	out := make([]string, 0, len(q.Symbols)+1)
	found := false
	for _, s := range q.Symbols {
		if s == symbol {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, symbol)
	}
	q.Symbols = out
	return q
}

func newChartsBody(v chartsView, q chartQuery) chartsBody {
	b := chartsBody{
		SymbolView:   q.View == "symbols",
		BaseCurrency: v.BaseCurrency,
		Breakdown:    v.Breakdown,
		Empty:        !v.HasSnapshots,
		ClearSymbols: chartQuery{Range: q.Range, View: q.View}.href(),
	}
	for _, tr := range portfolio.TimeRanges {
		b.Ranges = append(b.Ranges, linkOption{Label: tr.Label, Href: q.withRange(tr.Value).href(), Active: tr.Value == v.Range.Value})
	}
	b.Views = []linkOption{
		{Label: "Portfolio", Href: q.withView("portfolio").href(), Active: !b.SymbolView},
		{Label: "By Symbol", Href: q.withView("symbols").href(), Active: b.SymbolView},
	}
	for _, s := range v.Symbols {
		b.Symbols = append(b.Symbols, linkOption{Label: s, Href: q.toggle(s).href(), Active: slices.Contains(q.Symbols, s)})
	}
	if v.Latest != nil {
		b.LatestTs = v.Latest.Ts
	}

	b.Portfolio = buildChart("Portfolio Value", v.Series.Portfolio, v.Range, v.BaseCurrency, investedLine, marketLine, plLine)
	for _, s := range v.Series.Symbols {
		b.SymbolCharts = append(b.SymbolCharts, buildChart(s.Symbol, s.Data, v.Range, v.BaseCurrency, investedLine, marketLine))
	}
	return b
}

// safeReturn keeps a redirect target on this site.
func safeReturn(raw, fallback string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return fallback
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
