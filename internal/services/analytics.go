package services

import (
	"log/slog"
	"time"

	"ecom-dashboard/internal/models"
)

const defaultRecentReviews = 50

// Analytics holds the raw record store and answers every dashboard query by
// filtering and re-aggregating it. The raw slices are set once at startup
// and shared read-only across requests; every derived table is freshly
// allocated per call, so no locking is needed.
type Analytics struct {
	logger  *slog.Logger
	orders  []models.OrderRecord
	items   []models.OrderItemRecord
	reviews []models.ReviewRecord
	spanMin time.Time
	spanMax time.Time
}

func NewAnalytics() *Analytics {
	return &Analytics{logger: slog.Default()}
}

// SetData installs the raw record store and derives the selectable date span
// from the order purchase timestamps.
func (a *Analytics) SetData(orders []models.OrderRecord, items []models.OrderItemRecord, reviews []models.ReviewRecord) {
	a.orders = orders
	a.items = items
	a.reviews = reviews

	a.spanMin, a.spanMax = time.Time{}, time.Time{}
	for _, o := range orders {
		if o.PurchaseTimestamp.IsZero() {
			continue
		}
		d := dateOf(o.PurchaseTimestamp)
		if a.spanMin.IsZero() || d.Before(a.spanMin) {
			a.spanMin = d
		}
		if d.After(a.spanMax) {
			a.spanMax = d
		}
	}
}

// Span reports the [min, max] purchase dates of the loaded orders, the
// default selection of the date picker.
func (a *Analytics) Span() (time.Time, time.Time) {
	return a.spanMin, a.spanMax
}

func (a *Analytics) filteredOrders(start, end time.Time) []models.OrderRecord {
	return filterByDate(a.orders, func(o models.OrderRecord) time.Time { return o.PurchaseTimestamp }, start, end)
}

func (a *Analytics) filteredItems(start, end time.Time) []models.OrderItemRecord {
	return filterByDate(a.items, func(it models.OrderItemRecord) time.Time { return it.PurchaseTimestamp }, start, end)
}

func (a *Analytics) filteredReviews(start, end time.Time) []models.ReviewRecord {
	return filterByDate(a.reviews, func(r models.ReviewRecord) time.Time { return r.CreationDate }, start, end)
}

func (a *Analytics) MonthlyOrders(start, end time.Time) []models.MonthlyOrders {
	return monthlyOrders(a.filteredOrders(start, end))
}

func (a *Analytics) CategoryPerformance(start, end time.Time) []models.CategoryPerformance {
	return categoryPerformance(a.filteredItems(start, end))
}

func (a *Analytics) PaymentTypeCounts(start, end time.Time) []models.PaymentTypeCount {
	return paymentTypeCounts(a.filteredOrders(start, end))
}

func (a *Analytics) InstallmentUsage(start, end time.Time) []models.InstallmentUsage {
	return installmentUsage(a.filteredOrders(start, end))
}

func (a *Analytics) CityRollup(start, end time.Time) []models.CityRollup {
	return cityRollup(a.filteredOrders(start, end))
}

func (a *Analytics) StateRollup(start, end time.Time) []models.StateRollup {
	return stateRollup(a.filteredOrders(start, end))
}

func (a *Analytics) ReviewScoreCounts(start, end time.Time) []models.ReviewScoreCount {
	return reviewScoreCounts(a.filteredReviews(start, end))
}

func (a *Analytics) SatisfactionSplit(start, end time.Time) []models.SatisfactionCount {
	return satisfactionSplit(a.ReviewScoreCounts(start, end))
}

// RFM scores every customer with delivered orders in range. It fails with
// an insufficient-data error when the range holds none.
func (a *Analytics) RFM(start, end time.Time) ([]models.RFMEntry, error) {
	return rfmScores(a.filteredOrders(start, end))
}

func (a *Analytics) RecentReviews(start, end time.Time, limit int) []models.RecentReview {
	if limit <= 0 {
		limit = defaultRecentReviews
	}
	return recentReviews(a.filteredReviews(start, end), limit)
}

// Snapshot recomputes every derived table for the range in one pass. The
// returned snapshot is complete before it is exposed. When the range holds
// no delivered orders the RFM table stays empty and the insufficient-data
// error is returned alongside the otherwise valid snapshot.
func (a *Analytics) Snapshot(start, end time.Time) (*models.DashboardData, error) {
	orders := a.filteredOrders(start, end)
	items := a.filteredItems(start, end)
	reviews := a.filteredReviews(start, end)

	data := &models.DashboardData{
		MonthlyOrders:       monthlyOrders(orders),
		CategoryPerformance: categoryPerformance(items),
		PaymentTypes:        paymentTypeCounts(orders),
		Installments:        installmentUsage(orders),
		Cities:              cityRollup(orders),
		States:              stateRollup(orders),
		RecentReviews:       recentReviews(reviews, defaultRecentReviews),
	}
	data.ReviewScores = reviewScoreCounts(reviews)
	data.Satisfaction = satisfactionSplit(data.ReviewScores)

	rfm, err := rfmScores(orders)
	if err == nil {
		data.RFM = rfm
	} else {
		data.RFM = []models.RFMEntry{}
	}

	data.Summary = summarize(orders, data)
	return data, err
}

// Stats reports record counts and the dataset span for monitoring.
func (a *Analytics) Stats() map[string]any {
	return map[string]any{
		"order_rows":  len(a.orders),
		"item_rows":   len(a.items),
		"review_rows": len(a.reviews),
		"span_start":  a.spanMin.Format("2006-01-02"),
		"span_end":    a.spanMax.Format("2006-01-02"),
	}
}
