package services

import (
	"slices"
	"strings"
	"time"

	"ecom-dashboard/internal/errors"
	"ecom-dashboard/internal/models"
)

// StatusDelivered is the order status that counts toward revenue and RFM.
const StatusDelivered = "delivered"

// Scores of 4 and 5 count as satisfied.
const satisfactionThreshold = 4

const (
	LabelSatisfied    = "satisfied"
	LabelNotSatisfied = "not satisfied"
)

// dateOf drops the time-of-day, keeping the calendar date in UTC.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// monthEnd returns the last day of t's month. Month buckets are anchored to
// the end of the period, so a month is ordered by its closing date.
func monthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

// filterByDate keeps rows whose timestamp falls in [start, end], inclusive
// on both bounds and compared on the calendar date. An inverted range
// selects nothing rather than failing, and rows with a missing (zero)
// timestamp are excluded.
func filterByDate[T any](rows []T, ts func(T) time.Time, start, end time.Time) []T {
	out := make([]T, 0, len(rows))
	if start.After(end) {
		return out
	}
	lo, hi := dateOf(start), dateOf(end)
	for _, row := range rows {
		t := ts(row)
		if t.IsZero() {
			continue
		}
		d := dateOf(t)
		if d.Before(lo) || d.After(hi) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// monthlyOrders buckets delivered orders by purchase month. Per bucket:
// distinct order count and summed payment value. Only months present in the
// data appear; there is no zero-fill.
func monthlyOrders(orders []models.OrderRecord) []models.MonthlyOrders {
	type bucket struct {
		anchor  time.Time
		orders  map[string]struct{}
		revenue float64
	}
	buckets := make(map[string]*bucket)
	for _, o := range orders {
		if o.OrderStatus != StatusDelivered {
			continue
		}
		label := o.PurchaseTimestamp.Format("2006-01")
		b := buckets[label]
		if b == nil {
			b = &bucket{anchor: monthEnd(o.PurchaseTimestamp), orders: make(map[string]struct{})}
			buckets[label] = b
		}
		b.orders[o.OrderID] = struct{}{}
		b.revenue += o.PaymentValue
	}

	type row struct {
		anchor time.Time
		out    models.MonthlyOrders
	}
	rows := make([]row, 0, len(buckets))
	for label, b := range buckets {
		rows = append(rows, row{anchor: b.anchor, out: models.MonthlyOrders{
			Month:      label,
			OrderCount: len(b.orders),
			Revenue:    b.revenue,
		}})
	}
	slices.SortFunc(rows, func(a, b row) int {
		return a.anchor.Compare(b.anchor)
	})

	out := make([]models.MonthlyOrders, len(rows))
	for i, r := range rows {
		out[i] = r.out
	}
	return out
}

// categoryPerformance groups item rows by category: distinct product count
// plus summed price, descending by product count. Ties keep input order.
func categoryPerformance(items []models.OrderItemRecord) []models.CategoryPerformance {
	type bucket struct {
		products map[string]struct{}
		revenue  float64
	}
	buckets := make(map[string]*bucket)
	var seen []string
	for _, it := range items {
		b := buckets[it.ProductCategory]
		if b == nil {
			b = &bucket{products: make(map[string]struct{})}
			buckets[it.ProductCategory] = b
			seen = append(seen, it.ProductCategory)
		}
		b.products[it.ProductID] = struct{}{}
		b.revenue += it.Price
	}

	out := make([]models.CategoryPerformance, 0, len(seen))
	for _, cat := range seen {
		b := buckets[cat]
		out = append(out, models.CategoryPerformance{
			Category: cat,
			Count:    len(b.products),
			Revenue:  b.revenue,
		})
	}
	slices.SortStableFunc(out, func(a, b models.CategoryPerformance) int {
		return b.Count - a.Count
	})
	return out
}

// paymentTypeCounts counts payment rows per type. An order with N
// installment rows contributes N, so this is deliberately a row count.
func paymentTypeCounts(orders []models.OrderRecord) []models.PaymentTypeCount {
	counts := make(map[string]int)
	var seen []string
	for _, o := range orders {
		if _, ok := counts[o.PaymentType]; !ok {
			seen = append(seen, o.PaymentType)
		}
		counts[o.PaymentType]++
	}

	out := make([]models.PaymentTypeCount, 0, len(seen))
	for _, pt := range seen {
		out = append(out, models.PaymentTypeCount{PaymentType: pt, Count: counts[pt]})
	}
	slices.SortStableFunc(out, func(a, b models.PaymentTypeCount) int {
		return b.Count - a.Count
	})
	return out
}

// installmentUsage counts rows per installment value first and then rolls
// the values up into the two usage buckets. Only buckets that occur are
// emitted: with no multi-installment rows the true bucket is simply absent.
func installmentUsage(orders []models.OrderRecord) []models.InstallmentUsage {
	perValue := make(map[int]int)
	for _, o := range orders {
		perValue[o.PaymentInstallments]++
	}

	totals := make(map[bool]int)
	for installments, n := range perValue {
		totals[installments > 1] += n
	}

	out := make([]models.InstallmentUsage, 0, 2)
	for _, uses := range []bool{false, true} {
		if n, ok := totals[uses]; ok {
			out = append(out, models.InstallmentUsage{UsesInstallment: uses, Count: n})
		}
	}
	slices.SortStableFunc(out, func(a, b models.InstallmentUsage) int {
		return b.Count - a.Count
	})
	return out
}

type rollupRow struct {
	key        string
	orderCount int
	revenue    float64
}

// rollupOrders groups orders by an arbitrary key: distinct order count plus
// summed payment value, descending by order count. Callers wanting the
// revenue ordering re-sort a copy instead of recomputing.
func rollupOrders(orders []models.OrderRecord, key func(models.OrderRecord) string) []rollupRow {
	type bucket struct {
		orders  map[string]struct{}
		revenue float64
	}
	buckets := make(map[string]*bucket)
	var seen []string
	for _, o := range orders {
		k := key(o)
		b := buckets[k]
		if b == nil {
			b = &bucket{orders: make(map[string]struct{})}
			buckets[k] = b
			seen = append(seen, k)
		}
		b.orders[o.OrderID] = struct{}{}
		b.revenue += o.PaymentValue
	}

	out := make([]rollupRow, 0, len(seen))
	for _, k := range seen {
		b := buckets[k]
		out = append(out, rollupRow{key: k, orderCount: len(b.orders), revenue: b.revenue})
	}
	slices.SortStableFunc(out, func(a, b rollupRow) int {
		return b.orderCount - a.orderCount
	})
	return out
}

func cityRollup(orders []models.OrderRecord) []models.CityRollup {
	rows := rollupOrders(orders, func(o models.OrderRecord) string { return o.CustomerCity })
	out := make([]models.CityRollup, len(rows))
	for i, r := range rows {
		out[i] = models.CityRollup{City: r.key, OrderCount: r.orderCount, Revenue: r.revenue}
	}
	return out
}

func stateRollup(orders []models.OrderRecord) []models.StateRollup {
	rows := rollupOrders(orders, func(o models.OrderRecord) string { return o.CustomerState })
	out := make([]models.StateRollup, len(rows))
	for i, r := range rows {
		out[i] = models.StateRollup{State: r.key, OrderCount: r.orderCount, Revenue: r.revenue}
	}
	return out
}

// CitiesByRevenue returns a copy of the rollup sorted descending by revenue.
func CitiesByRevenue(rows []models.CityRollup) []models.CityRollup {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b models.CityRollup) int {
		switch {
		case a.Revenue > b.Revenue:
			return -1
		case a.Revenue < b.Revenue:
			return 1
		}
		return 0
	})
	return out
}

// StatesByRevenue returns a copy of the rollup sorted descending by revenue.
func StatesByRevenue(rows []models.StateRollup) []models.StateRollup {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b models.StateRollup) int {
		switch {
		case a.Revenue > b.Revenue:
			return -1
		case a.Revenue < b.Revenue:
			return 1
		}
		return 0
	})
	return out
}

func satisfactionLabel(score int) string {
	if score >= satisfactionThreshold {
		return LabelSatisfied
	}
	return LabelNotSatisfied
}

// reviewScoreCounts counts reviews per score and labels each score bucket,
// ascending by score.
func reviewScoreCounts(reviews []models.ReviewRecord) []models.ReviewScoreCount {
	counts := make(map[int]int)
	for _, r := range reviews {
		counts[r.Score]++
	}

	out := make([]models.ReviewScoreCount, 0, len(counts))
	for score, n := range counts {
		out = append(out, models.ReviewScoreCount{
			Score:        score,
			Count:        n,
			Satisfaction: satisfactionLabel(score),
		})
	}
	slices.SortFunc(out, func(a, b models.ReviewScoreCount) int {
		return a.Score - b.Score
	})
	return out
}

// satisfactionSplit re-aggregates the score-count table by its satisfaction
// label. It is derived from that table, never computed independently, so the
// two always agree on totals.
func satisfactionSplit(scores []models.ReviewScoreCount) []models.SatisfactionCount {
	totals := make(map[string]int)
	var seen []string
	for _, s := range scores {
		if _, ok := totals[s.Satisfaction]; !ok {
			seen = append(seen, s.Satisfaction)
		}
		totals[s.Satisfaction] += s.Count
	}

	out := make([]models.SatisfactionCount, 0, len(seen))
	for _, label := range seen {
		out = append(out, models.SatisfactionCount{Satisfaction: label, Count: totals[label]})
	}
	slices.SortStableFunc(out, func(a, b models.SatisfactionCount) int {
		return b.Count - a.Count
	})
	return out
}

// SplitFromScores re-aggregates an already computed score-count table into
// the satisfaction split, for callers that hold the table.
func SplitFromScores(scores []models.ReviewScoreCount) []models.SatisfactionCount {
	return satisfactionSplit(scores)
}

// rfmScores groups delivered orders by customer. The recency reference is
// the latest purchase date across the whole delivered selection, so every
// recency is non-negative. An empty delivered selection has no reference
// date and is reported as insufficient data instead of being defaulted.
func rfmScores(orders []models.OrderRecord) ([]models.RFMEntry, error) {
	type bucket struct {
		lastPurchase time.Time
		orders       map[string]struct{}
		monetary     float64
	}
	buckets := make(map[string]*bucket)
	var seen []string
	var reference time.Time
	for _, o := range orders {
		if o.OrderStatus != StatusDelivered {
			continue
		}
		d := dateOf(o.PurchaseTimestamp)
		if d.After(reference) {
			reference = d
		}
		b := buckets[o.CustomerUniqueID]
		if b == nil {
			b = &bucket{orders: make(map[string]struct{})}
			buckets[o.CustomerUniqueID] = b
			seen = append(seen, o.CustomerUniqueID)
		}
		if d.After(b.lastPurchase) {
			b.lastPurchase = d
		}
		b.orders[o.OrderID] = struct{}{}
		b.monetary += o.PaymentValue
	}

	if len(buckets) == 0 {
		return nil, errors.InsufficientData("no delivered orders in the selected range")
	}

	out := make([]models.RFMEntry, 0, len(seen))
	for _, id := range seen {
		b := buckets[id]
		out = append(out, models.RFMEntry{
			CustomerID:  id,
			Frequency:   len(b.orders),
			Monetary:    b.monetary,
			RecencyDays: int(reference.Sub(b.lastPurchase).Hours() / 24),
		})
	}
	return out, nil
}

// recentReviews lists reviews carrying a comment message, newest first.
func recentReviews(reviews []models.ReviewRecord, limit int) []models.RecentReview {
	out := make([]models.RecentReview, 0, len(reviews))
	for _, r := range reviews {
		if strings.TrimSpace(r.CommentMessage) == "" {
			continue
		}
		out = append(out, models.RecentReview{
			CreationDate:   r.CreationDate,
			Score:          r.Score,
			CommentTitle:   r.CommentTitle,
			CommentMessage: r.CommentMessage,
		})
	}
	slices.SortStableFunc(out, func(a, b models.RecentReview) int {
		return b.CreationDate.Compare(a.CreationDate)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
