package portfolio

import (
	"sort"

	"dca-dashboard/internal/types"
)

// ExtractUniqueSymbols returns every symbol held in any snapshot, sorted.
func ExtractUniqueSymbols(snapshots []types.Snapshot) []string {
	set := map[string]struct{}{}
	for _, s := range snapshots {
		for _, pos := range s.Positions {
			set[pos.Symbol] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// UniqueTransactionSymbols returns the distinct symbols of a ledger, sorted.
func UniqueTransactionSymbols(txs []types.TransactionLine) []string {
	set := map[string]struct{}{}
	for _, tx := range txs {
		set[tx.Symbol] = struct{}{}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
