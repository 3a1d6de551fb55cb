package web

import (
	"context"
	"errors"
	"sync"
	"time"

	"dca-dashboard/internal/interfaces"
	"dca-dashboard/internal/logger"
	"dca-dashboard/internal/portfolio"
	"dca-dashboard/internal/refresh"
	"dca-dashboard/internal/store"
	"dca-dashboard/internal/types"
)

// Page names, also used as the {page} of POST /refresh/{page}.
const (
	PageDashboard    = "dashboard"
	PageCharts       = "charts"
	PageTransactions = "transactions"
	PagePrices       = "prices"
)

type none = struct{}

// App owns the refresh coordinators behind every page. All page state lives
// here and is handed to handlers explicitly.
type App struct {
	cfg *store.Config

	positions      *refresh.Coordinator[none, *types.CurrentPositionSet]
	dashSnapshots  *refresh.Coordinator[none, []types.Snapshot]
	chartSnapshots *refresh.Coordinator[none, []types.Snapshot]
	transactions   *refresh.Coordinator[string, []types.TransactionLine]
	prices         *refresh.Coordinator[string, []types.PriceLine]

	dashboard *refresh.Group
	all       *refresh.Group

	mu          sync.Mutex
	txSymbols   []string
	mounted     map[string]time.Time
	unsubscribe func()

	now func() time.Time
}

func NewApp(data interfaces.BotData, cfg *store.Config) *App {
	timeout := refresh.WithTimeout(cfg.Refresh.FetchTimeout)

	a := &App{
		cfg:     cfg,
		mounted: map[string]time.Time{},
		now:     time.Now,
	}

	a.positions = refresh.New("positions", func(ctx context.Context, _ none) (*types.CurrentPositionSet, error) {
		return data.PositionsCurrent(ctx)
	}, none{}, timeout, refresh.WithInterval(cfg.Refresh.PositionsInterval))

	a.dashSnapshots = refresh.New("dashboard_snapshots", func(ctx context.Context, _ none) ([]types.Snapshot, error) {
		return data.Snapshots(ctx, types.StreamOptions{Limit: cfg.Limits.DashboardSnapshots})
	}, none{}, timeout)

	a.chartSnapshots = refresh.New("chart_snapshots", func(ctx context.Context, _ none) ([]types.Snapshot, error) {
		return data.Snapshots(ctx, types.StreamOptions{Limit: cfg.Limits.ChartSnapshots})
	}, none{}, timeout)

	a.transactions = refresh.New("transactions", func(ctx context.Context, symbol string) ([]types.TransactionLine, error) {
		return data.Transactions(ctx, symbol, types.StreamOptions{Limit: cfg.Limits.Transactions})
	}, "", timeout)

	a.prices = refresh.New("prices", func(ctx context.Context, symbol string) ([]types.PriceLine, error) {
		return data.Prices(ctx, symbol, types.StreamOptions{Limit: cfg.Limits.Prices})
	}, "", timeout)

	a.dashboard = refresh.NewGroup(PageDashboard, a.positions, a.dashSnapshots)
	a.all = refresh.NewGroup("all", a.dashboard, a.chartSnapshots, a.transactions, a.prices)

	// The symbol filter lists every traded symbol, so it is only refreshed
	// from unfiltered loads.
	a.unsubscribe = a.transactions.Subscribe(func(st refresh.State[string, []types.TransactionLine]) {
		if st.Loading || !st.HasData || st.Key != "" {
			return
		}
		symbols := portfolio.UniqueTransactionSymbols(st.Data)
		a.mu.Lock()
		a.txSymbols = symbols
		a.mu.Unlock()
	})

	return a
}

// Start issues the first fetch of every coordinator and starts the
// positions schedule.
func (a *App) Start(ctx context.Context) error {
	now := a.now()
	a.mu.Lock()
	for _, page := range []string{PageDashboard, PageCharts, PageTransactions, PagePrices} {
		a.mounted[page] = now
	}
	a.mu.Unlock()
	return a.all.Start(ctx)
}

// Stop tears down every schedule and waits for in-flight fetches.
func (a *App) Stop() {
	a.all.Stop()
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// Ready waits until every coordinator has settled once.
func (a *App) Ready(ctx context.Context) error {
	return a.all.Wait(ctx)
}

// member returns the coordinator behind a page.
func (a *App) member(page string) (refresh.Member, bool) {
	switch page {
	case PageDashboard:
		return a.dashboard, true
	case PageCharts:
		return a.chartSnapshots, true
	case PageTransactions:
		return a.transactions, true
	case PagePrices:
		return a.prices, true
	}
	return nil, false
}

// mount re-fetches a page's data when it was last fetched more than
// StaleAfter ago and nothing is in flight.
func (a *App) mount(page string) {
	m, ok := a.member(page)
	if !ok || m.Loading() {
		return
	}
	now := a.now()
	a.mu.Lock()
	last := a.mounted[page]
	stale := now.Sub(last) >= a.cfg.Refresh.StaleAfter
	if stale {
		a.mounted[page] = now
	}
	a.mu.Unlock()
	if stale {
		m.Refetch()
	}
}

// Retry re-fetches a page's data immediately.
func (a *App) Retry(ctx context.Context, page string) bool {
	m, ok := a.member(page)
	if !ok {
		return false
	}
	logger.Info(ctx, "Manual refresh requested", "page", page)
	a.mu.Lock()
	a.mounted[page] = a.now()
	a.mu.Unlock()
	m.Refetch()
	return true
}

// settle waits up to PageWait for m; a timeout leaves the page loading.
func (a *App) settle(ctx context.Context, m refresh.Member) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Refresh.PageWait)
	defer cancel()
	if err := m.Wait(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Debug(ctx, "Page wait ended", "member", m.Name(), "error", err)
	}
}

// dashboardView is the derived state of the dashboard page.
type dashboardView struct {
	Loading       bool
	Err           error
	KPIs          *types.KPISummary
	Positions     []types.EnhancedPosition
	SnapshotCount int
}

func (a *App) Dashboard(ctx context.Context) dashboardView {
	a.mount(PageDashboard)
	a.settle(ctx, a.dashboard)

	pos := a.positions.State()
	snaps := a.dashSnapshots.State()
	return dashboardView{
		Loading:       a.dashboard.Loading(),
		Err:           a.dashboard.Err(),
		KPIs:          portfolio.ComputeDashboardKPIs(pos.Data),
		Positions:     portfolio.ComputeEnhancedPositions(pos.Data),
		SnapshotCount: len(snaps.Data),
	}
}

// chartsView is the derived state of the charts page.
type chartsView struct {
	Loading      bool
	Err          error
	HasSnapshots bool
	Range        types.TimeRange
	Selected     []string
	Symbols      []string
	Series       types.ChartSeries
	Latest       *types.Snapshot
	Breakdown    []types.EnhancedPosition
	BaseCurrency string
}

func (a *App) Charts(ctx context.Context, tr types.TimeRange, selected []string) chartsView {
	a.mount(PageCharts)
	a.settle(ctx, a.chartSnapshots)

	st := a.chartSnapshots.State()
	v := chartsView{
		Loading:      st.Loading,
		Err:          st.Err,
		HasSnapshots: len(st.Data) > 0,
		Range:        tr,
		Selected:     selected,
		Symbols:      portfolio.ExtractUniqueSymbols(st.Data),
		BaseCurrency: "USDC",
	}
	if len(st.Data) > 0 && st.Data[0].BaseCurrency != "" {
		v.BaseCurrency = st.Data[0].BaseCurrency
	}
	series := portfolio.BuildChartSeries(st.Data, tr, selected, a.now())
	v.Series = portfolio.DownsampleSeries(series, a.cfg.Charts.MaxPoints)
	if latest := portfolio.LatestSnapshot(st.Data); latest != nil {
		v.Latest = latest
		set := portfolio.SnapshotAsCurrent(*latest)
		v.Breakdown = portfolio.ComputeEnhancedPositions(&set)
	}
	return v
}

// transactionsView is the derived state of the transactions page.
type transactionsView struct {
	Loading      bool
	Err          error
	Symbol       string
	Symbols      []string
	Transactions []types.TransactionLine
	Summary      []types.LedgerRow
}

func (a *App) Transactions(ctx context.Context, symbol string) transactionsView {
	if a.transactions.Key() == symbol {
		a.mount(PageTransactions)
	} else {
		a.transactions.SetKey(symbol)
	}
	a.settle(ctx, a.transactions)

	st := a.transactions.State()
	v := transactionsView{
		Loading: st.Loading || a.transactions.Key() != symbol,
		Err:     st.Err,
		Symbol:  symbol,
	}
	if !v.Loading && st.HasData {
		v.Transactions = st.Data
		v.Summary = portfolio.SummarizeLedger(st.Data)
	}

	a.mu.Lock()
	v.Symbols = append([]string(nil), a.txSymbols...)
	a.mu.Unlock()
	if len(v.Symbols) == 0 && len(v.Transactions) > 0 {
		v.Symbols = portfolio.UniqueTransactionSymbols(v.Transactions)
	}
	return v
}

// pricesView is the state behind /api/prices.
type pricesView struct {
	Loading bool
	Err     error
	Symbol  string
	Prices  []types.PriceLine
}

func (a *App) Prices(ctx context.Context, symbol string) pricesView {
	if a.prices.Key() == symbol {
		a.mount(PagePrices)
	} else {
		a.prices.SetKey(symbol)
	}
	a.settle(ctx, a.prices)

	st := a.prices.State()
	v := pricesView{
		Loading: st.Loading || a.prices.Key() != symbol,
		Err:     st.Err,
		Symbol:  symbol,
	}
	if !v.Loading && st.HasData {
		v.Prices = st.Data
	}
	return v
}
