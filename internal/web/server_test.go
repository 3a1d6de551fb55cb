package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dca-dashboard/internal/api"
	"dca-dashboard/internal/datasource"
	"dca-dashboard/internal/fixtures"
	"dca-dashboard/internal/store"
	"dca-dashboard/internal/theme"
	"dca-dashboard/internal/types"
)

func writeBotDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	now := time.Now().UTC()
	ts := func(ago time.Duration) string { return now.Add(-ago).Format(time.RFC3339) }

	fixtures.Must(t, fixtures.WriteJSON(dir, datasource.FilePositionsCurrent, types.CurrentPositionSet{
		UpdatedAt:          ts(time.Minute),
		BaseCurrency:       "USDC",
		TotalQuoteInvested: "1000.00",
		Positions: []types.CurrentPosition{
			{Symbol: "BTCUSDC", OpenQuantity: "0.01", TotalCost: "500.00", Price: "55000", MarketValue: "550.00"},
			{Symbol: "ETHUSDC", OpenQuantity: "1", TotalCost: "500.00"},
		},
	}))
	fixtures.Must(t, fixtures.AppendNDJSON(dir, datasource.FileSnapshots,
		types.Snapshot{Ts: ts(2 * time.Hour), BaseCurrency: "USDC", TotalQuoteInvested: "500", TotalMarketValue: "510", TotalUnrealizedPl: "10",
			Positions: []types.SnapshotPosition{{Symbol: "BTCUSDC", OpenQty: "0.01", TotalCost: "500", Price: "51000", MarketValue: "510", UnrealizedPl: "10"}}},
		types.Snapshot{Ts: ts(time.Hour), BaseCurrency: "USDC", TotalQuoteInvested: "1000", TotalMarketValue: "1050", TotalUnrealizedPl: "50",
			Positions: []types.SnapshotPosition{
				{Symbol: "BTCUSDC", OpenQty: "0.01", TotalCost: "500", Price: "55000", MarketValue: "550", UnrealizedPl: "50"},
				{Symbol: "ETHUSDC", OpenQty: "1", TotalCost: "500", Price: "500", MarketValue: "500", UnrealizedPl: "0"},
			}},
	))
	fixtures.Must(t, fixtures.AppendNDJSON(dir, datasource.FileTransactions,
		types.TransactionLine{Ts: ts(2 * time.Hour), Symbol: "BTCUSDC", Side: types.SideBuy, Price: "50000", Qty: "0.01", QuoteSpent: "500", OrderType: "MARKET_MOCK", IterationID: "run-1#1"},
		types.TransactionLine{Ts: ts(time.Hour), Symbol: "ETHUSDC", Side: types.SideBuy, Price: "500", Qty: "1", QuoteSpent: "500", OrderType: "MARKET", IterationID: "run-1#2"},
	))
	fixtures.Must(t, fixtures.AppendNDJSON(dir, datasource.FilePrices,
		types.PriceLine{Ts: ts(time.Hour), Symbol: "BTCUSDC", Price: "55000", Source: "ticker"},
		types.PriceLine{Ts: ts(time.Hour), Symbol: "ETHUSDC", Price: "500", Source: "ticker"},
	))
	return dir
}

func newTestServer(t *testing.T, dir string) *Server {
	t.Helper()
	files := fixtures.Serve(t, dir)

	cfg := store.Default()
	cfg.Refresh.PageWait = 2 * time.Second
	cfg.Refresh.StaleAfter = time.Hour

	reader := datasource.NewReader(api.NewClient(api.WithBaseURL(files.URL + "/")))
	app := NewApp(datasource.NewBotData(reader), cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(app.Stop)
	require.NoError(t, app.Ready(ctx))

	s, err := New(app, cfg)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, s *Server, target string) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	rec := do(t, s, httptest.NewRequest(http.MethodGet, target, nil))
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return rec, doc
}

func TestRendererParsesEveryPage(t *testing.T) {
	r, err := newRenderer()
	require.NoError(t, err)
	for _, page := range []string{PageDashboard, PageCharts, PageTransactions, "notfound"} {
		assert.Contains(t, r.pages, page)
	}
}

func TestDashboardPage(t *testing.T) {
	s := newTestServer(t, writeBotDir(t))

	rec, doc := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "Dashboard", doc.Find(".page-header h1").Text())
	values := doc.Find(".kpi-value").Map(func(_ int, sel *goquery.Selection) string {
		return strings.TrimSpace(sel.Text())
	})
	assert.Equal(t, []string{"$1,000.00", "$550.00", "-$450.00", "2"}, values)
	assert.Equal(t, "-45.00%", strings.TrimSpace(doc.Find(".kpi-sub").Text()))
	assert.True(t, doc.Find(".kpi-sub").HasClass("pl-down"))

	rows := doc.Find("#positions tbody tr")
	require.Equal(t, 2, rows.Length())
	eth := doc.Find(`#positions tr[data-symbol="ETHUSDC"] td`)
	assert.Equal(t, "—", strings.TrimSpace(eth.Eq(3).Text()))
	assert.Equal(t, "—", strings.TrimSpace(eth.Eq(6).Text()))

	assert.Contains(t, doc.Find(".summary").Text(), "2 snapshots")
	assert.Contains(t, doc.Find(".last-updated").Text(), "ago")
	assert.Equal(t, "active", doc.Find(`.nav a[href="/"]`).AttrOr("class", ""))
}

func TestDashboardErrorPanel(t *testing.T) {
	s := newTestServer(t, t.TempDir())

	rec, doc := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	panel := doc.Find(".error-panel")
	require.Equal(t, 1, panel.Length())
	assert.Equal(t, "Failed to load dashboard data", panel.Find("h2").Text())
	assert.Equal(t, "/refresh/dashboard", panel.Find("form").AttrOr("action", ""))
	assert.Equal(t, 0, doc.Find("#positions").Length())
}

func TestRefreshRedirects(t *testing.T) {
	s := newTestServer(t, writeBotDir(t))

	form := url.Values{"return": {"/charts?range=7d"}}
	req := httptest.NewRequest(http.MethodPost, "/refresh/charts", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(t, s, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/charts?range=7d", rec.Header().Get("Location"))

	form = url.Values{"return": {"https://evil.example/"}}
	req = httptest.NewRequest(http.MethodPost, "/refresh/transactions", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = do(t, s, req)
	assert.Equal(t, "/transactions", rec.Header().Get("Location"))

	rec = do(t, s, httptest.NewRequest(http.MethodPost, "/refresh/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestThemeToggle(t *testing.T) {
	s := newTestServer(t, writeBotDir(t))

	_, doc := get(t, s, "/")
	assert.True(t, doc.Find("html").HasClass("theme-light"))

	form := url.Values{"return": {"/transactions"}}
	req := httptest.NewRequest(http.MethodPost, "/theme", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(t, s, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/transactions", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, theme.CookieName, cookies[0].Name)
	assert.Equal(t, "dark", cookies[0].Value)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = do(t, s, req)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.True(t, doc.Find("html").HasClass("theme-dark"))
}

func TestChartsPage(t *testing.T) {
	s := newTestServer(t, writeBotDir(t))

	rec, doc := get(t, s, "/charts")
	require.Equal(t, http.StatusOK, rec.Code)

	ranges := doc.Find("#ranges a")
	require.Equal(t, 4, ranges.Length())
	assert.Equal(t, "30d", strings.TrimSpace(doc.Find("#ranges a.active").Text()))
	href, _ := ranges.Eq(0).Attr("href")
	assert.Contains(t, href, "range=24h")

	require.Equal(t, 1, doc.Find("figure.chart").Length())
	assert.Equal(t, 3, doc.Find("figure.chart polyline").Length())
	assert.Equal(t, 2, doc.Find("#breakdown tbody tr").Length())

	_, doc = get(t, s, "/charts?view=symbols&symbol=ETHUSDC")
	assert.Equal(t, 1, doc.Find("figure.chart").Length())
	assert.Equal(t, "ETHUSDC", doc.Find("figure.chart figcaption").Text())
	assert.Equal(t, "ETHUSDC", strings.TrimSpace(doc.Find("#symbols a.active").Text()))
}

func TestChartsEmpty(t *testing.T) {
	dir := t.TempDir()
	fixtures.Must(t, fixtures.WriteJSON(dir, datasource.FilePositionsCurrent, types.CurrentPositionSet{BaseCurrency: "USDC"}))
	s := newTestServer(t, dir)

	_, doc := get(t, s, "/charts")
	assert.Equal(t, "No chart data available", doc.Find(".empty-state h2").Text())
}

func TestTransactionsPage(t *testing.T) {
	s := newTestServer(t, writeBotDir(t))

	rec, doc := get(t, s, "/transactions")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2 transactions", doc.Find("#tx-count").Text())

	rows := doc.Find("#transactions tbody tr")
	require.Equal(t, 2, rows.Length())
	first := rows.Eq(0).Find("td")
	assert.True(t, first.Eq(2).Find(".badge").HasClass("badge-buy"))
	assert.True(t, first.Eq(6).Find(".badge").HasClass("badge-mock"))
	assert.Equal(t, "#1", first.Eq(7).Text())

	options := doc.Find("#symbol option").Map(func(_ int, sel *goquery.Selection) string { return sel.Text() })
	assert.Equal(t, []string{"All Symbols", "BTCUSDC", "ETHUSDC"}, options)
	assert.Equal(t, 2, doc.Find("#summary tbody tr").Length())

	_, doc = get(t, s, "/transactions?symbol=ETHUSDC")
	assert.Equal(t, "1 transactions", doc.Find("#tx-count").Text())
	assert.Equal(t, "ETHUSDC", doc.Find("#symbol option[selected]").Text())
	assert.Equal(t, 3, doc.Find("#symbol option").Length())
}

func TestTransactionsEmpty(t *testing.T) {
	s := newTestServer(t, t.TempDir())

	_, doc := get(t, s, "/transactions")
	assert.Equal(t, "0 transactions", doc.Find("#tx-count").Text())
	assert.Equal(t, "No transactions yet", doc.Find(".empty-state h2").Text())
}

func TestTransactionsCSV(t *testing.T) {
	s := newTestServer(t, writeBotDir(t))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/transactions.csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[3], "TOTAL,2,"))
}

func TestAPIDashboard(t *testing.T) {
	s := newTestServer(t, writeBotDir(t))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Loading bool `json:"loading"`
		Data    struct {
			KPIs          types.KPISummary `json:"kpis"`
			SnapshotCount int              `json:"snapshotCount"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Loading)
	assert.InDelta(t, 1000, float64(body.Data.KPIs.TotalInvested), 1e-9)
	assert.InDelta(t, -45, float64(body.Data.KPIs.TotalUnrealizedPlPercent), 1e-9)
	assert.Equal(t, 2, body.Data.SnapshotCount)
}

func TestAPIErrorEnvelope(t *testing.T) {
	s := newTestServer(t, t.TempDir())

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body apiResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotNil(t, body.Error)
	assert.Equal(t, string(datasource.KindNotFound), body.Error.Kind)
}

func TestAPIPricesBySymbol(t *testing.T) {
	s := newTestServer(t, writeBotDir(t))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/prices?symbol=ETHUSDC", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []types.PriceLine `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "ETHUSDC", body.Data[0].Symbol)
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, writeBotDir(t))

	rec, doc := get(t, s, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Page not found", doc.Find(".empty-state h2").Text())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, writeBotDir(t))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
