package portfolio

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dca-dashboard/internal/types"
)

func ledgerFixture() []types.TransactionLine {
	return []types.TransactionLine{
		{Symbol: "ETHUSDC", Side: types.SideBuy, Price: "2000", Qty: "0.5", QuoteSpent: "1000"},
		{Symbol: "BTCUSDC", Side: types.SideBuy, Price: "30000", Qty: "0.01", QuoteSpent: "300"},
		{Symbol: "BTCUSDC", Side: types.SideBuy, Price: "20000", Qty: "0.01"},
		{Symbol: "BTCUSDC", Side: types.SideSell, Price: "40000", Qty: "0.01", QuoteSpent: "400"},
	}
}

func TestSummarizeLedger(t *testing.T) {
	rows := SummarizeLedger(ledgerFixture())
	require.Len(t, rows, 2)

	btc := rows[0]
	assert.Equal(t, "BTCUSDC", btc.Symbol)
	assert.Equal(t, 3, btc.Trades)
	assert.InDelta(t, 0.02, float64(btc.BuyQty), 1e-12)
	assert.InDelta(t, 500, float64(btc.BuyQuote), 1e-9)
	assert.InDelta(t, 25000, float64(btc.AvgBuyPrice), 1e-6)
	assert.InDelta(t, 40000, float64(btc.AvgSellPrice), 1e-6)
	assert.InDelta(t, 150, float64(btc.RealizedPl), 1e-6)

	eth := rows[1]
	assert.Equal(t, "ETHUSDC", eth.Symbol)
	assert.Zero(t, float64(eth.RealizedPl))
	assert.Zero(t, float64(eth.AvgSellPrice))
}

func TestWriteLedgerCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLedgerCSV(&buf, SummarizeLedger(ledgerFixture())))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, "symbol", recs[0][0])
	assert.Equal(t, "BTCUSDC", recs[1][0])
	assert.Equal(t, []string{"TOTAL", "4", "", "", "", "", "150.00", "1500.00", "400.00"}, recs[3])
}

func TestUniqueTransactionSymbols(t *testing.T) {
	assert.Equal(t, []string{"BTCUSDC", "ETHUSDC"}, UniqueTransactionSymbols(ledgerFixture()))
}
