package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bonesdao/onboarding/internal/domain"
	"github.com/bonesdao/onboarding/internal/store"
)

const dayLayout = "2006-01-02"

// DailyTotal is the amount disbursed per asset on one UTC day
type DailyTotal struct {
	Date   string          `json:"date"`
	Native decimal.Decimal `json:"native"`
	Token  decimal.Decimal `json:"token"`
}

// Stats aggregates the ledger over a time range
type Stats struct {
	From        *time.Time      `json:"from,omitempty"`
	To          *time.Time      `json:"to,omitempty"`
	Count       int             `json:"count"`
	NativeTotal decimal.Decimal `json:"native_total"`
	TokenTotal  decimal.Decimal `json:"token_total"`
	// Daily is ordered by date ascending and only holds days with transfers
	Daily []DailyTotal `json:"daily"`
}

// Stats aggregates disbursements transferred in [from, to)
func (l *ledger) Stats(ctx context.Context, from, to *time.Time) (*Stats, error) {
	if from != nil && to != nil && !from.Before(*to) {
		return nil, validationError("from must be before to")
	}

	records, err := l.store.ListTransactionRecords(ctx, store.TransactionRecordFilter{
		Since: from,
		Until: to,
	})
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		From:        from,
		To:          to,
		Count:       len(records),
		NativeTotal: decimal.Zero,
		TokenTotal:  decimal.Zero,
		Daily:       []DailyTotal{},
	}

	days := make(map[string]*DailyTotal)
	for _, record := range records {
		key := record.TransferredAt.UTC().Format(dayLayout)
		day, ok := days[key]
		if !ok {
			day = &DailyTotal{Date: key, Native: decimal.Zero, Token: decimal.Zero}
			days[key] = day
		}

		switch record.AssetKind {
		case domain.AssetNative:
			stats.NativeTotal = stats.NativeTotal.Add(record.Amount)
			day.Native = day.Native.Add(record.Amount)
		case domain.AssetToken:
			stats.TokenTotal = stats.TokenTotal.Add(record.Amount)
			day.Token = day.Token.Add(record.Amount)
		}
	}

	for _, day := range days {
		stats.Daily = append(stats.Daily, *day)
	}
	sort.Slice(stats.Daily, func(i, j int) bool {
		return stats.Daily[i].Date < stats.Daily[j].Date
	})

	return stats, nil
}
