package portfolio

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"dca-dashboard/internal/types"
)

// SummarizeLedger aggregates transactions per symbol, sorted by symbol.
// Realized P/L is matched quantity times the spread of average sell over
// average buy price.
func SummarizeLedger(txs []types.TransactionLine) []types.LedgerRow {
	aggs := map[string]*types.LedgerRow{}
	for _, tx := range txs {
		row := aggs[tx.Symbol]
		if row == nil {
			row = &types.LedgerRow{Symbol: tx.Symbol}
			aggs[tx.Symbol] = row
		}
		row.Trades++
		qty := tx.Qty.Float()
		quote := tradeQuote(tx)
		switch tx.Side {
		case types.SideBuy:
			row.BuyQty += types.Float(qty)
			row.BuyQuote += types.Float(quote)
		case types.SideSell:
			row.SellQty += types.Float(qty)
			row.SellQuote += types.Float(quote)
		}
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]types.LedgerRow, 0, len(keys))
	for _, k := range keys {
		r := aggs[k]
		if r.BuyQty > 0 {
			r.AvgBuyPrice = r.BuyQuote / r.BuyQty
		}
		if r.SellQty > 0 {
			r.AvgSellPrice = r.SellQuote / r.SellQty
		}
		matched := min(r.BuyQty, r.SellQty)
		if matched > 0 {
			r.RealizedPl = matched * (r.AvgSellPrice - r.AvgBuyPrice)
		}
		rows = append(rows, *r)
	}
	return rows
}

// tradeQuote is quote_spent when recorded, else price*qty.
func tradeQuote(tx types.TransactionLine) float64 {
	if tx.QuoteSpent.IsSet() {
		return tx.QuoteSpent.Float()
	}
	return tx.Price.Float() * tx.Qty.Float()
}

// WriteLedgerCSV writes rows as CSV followed by a TOTAL row.
func WriteLedgerCSV(out io.Writer, rows []types.LedgerRow) error {
	w := csv.NewWriter(out)
	headers := []string{"symbol", "trades", "buy_qty", "buy_avg", "sell_qty", "sell_avg", "realized_pl", "gross_buy_value", "gross_sell_value"}
	if err := w.Write(headers); err != nil {
		return err
	}

	var trades int
	var totalBuy, totalSell, totalPl float64
	for _, r := range rows {
		rec := []string{
			r.Symbol,
			strconv.Itoa(r.Trades),
			fmt.Sprintf("%.8f", float64(r.BuyQty)),
			fmt.Sprintf("%.4f", float64(r.AvgBuyPrice)),
			fmt.Sprintf("%.8f", float64(r.SellQty)),
			fmt.Sprintf("%.4f", float64(r.AvgSellPrice)),
			fmt.Sprintf("%.2f", float64(r.RealizedPl)),
			fmt.Sprintf("%.2f", float64(r.BuyQuote)),
			fmt.Sprintf("%.2f", float64(r.SellQuote)),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
		trades += r.Trades
		totalBuy += float64(r.BuyQuote)
		totalSell += float64(r.SellQuote)
		totalPl += float64(r.RealizedPl)
	}
	total := []string{"TOTAL", strconv.Itoa(trades), "", "", "", "", fmt.Sprintf("%.2f", totalPl), fmt.Sprintf("%.2f", totalBuy), fmt.Sprintf("%.2f", totalSell)}
	if err := w.Write(total); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
