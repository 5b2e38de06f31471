package services

import (
	"ecom-dashboard/internal/models"
)

// maxBy returns the first row with the maximal value, scanning forward so
// ties resolve to the earliest occurrence in input order.
func maxBy[T any, N int | float64](rows []T, value func(T) N) (T, bool) {
	var best T
	if len(rows) == 0 {
		return best, false
	}
	best = rows[0]
	bestVal := value(best)
	for _, row := range rows[1:] {
		if v := value(row); v > bestVal {
			best, bestVal = row, v
		}
	}
	return best, true
}

// summarize reduces the derived tables plus the filtered order rows into the
// headline scalars. Totals come from the full filtered set, not just the
// delivered subset.
func summarize(orders []models.OrderRecord, data *models.DashboardData) models.Summary {
	var s models.Summary

	distinct := make(map[string]struct{})
	for _, o := range orders {
		distinct[o.OrderID] = struct{}{}
		s.TotalRevenue += o.PaymentValue
	}
	s.TotalOrders = len(distinct)

	if city, ok := maxBy(data.Cities, func(c models.CityRollup) int { return c.OrderCount }); ok {
		s.TopCityByOrders = city.City
		s.TopCityOrderCount = city.OrderCount
	}
	if city, ok := maxBy(data.Cities, func(c models.CityRollup) float64 { return c.Revenue }); ok {
		s.TopCityByRevenue = city.City
		s.TopCityRevenue = city.Revenue
	}
	if state, ok := maxBy(data.States, func(st models.StateRollup) int { return st.OrderCount }); ok {
		s.TopStateByOrders = state.State
		s.TopStateOrderCount = state.OrderCount
	}
	if state, ok := maxBy(data.States, func(st models.StateRollup) float64 { return st.Revenue }); ok {
		s.TopStateByRevenue = state.State
		s.TopStateRevenue = state.Revenue
	}
	if cat, ok := maxBy(data.CategoryPerformance, func(c models.CategoryPerformance) int { return c.Count }); ok {
		s.TopCategoryByCount = cat.Category
		s.TopCategoryCount = cat.Count
	}
	if cat, ok := maxBy(data.CategoryPerformance, func(c models.CategoryPerformance) float64 { return c.Revenue }); ok {
		s.TopCategoryByRevenue = cat.Category
		s.TopCategoryRevenue = cat.Revenue
	}
	if pt, ok := maxBy(data.PaymentTypes, func(p models.PaymentTypeCount) int { return p.Count }); ok {
		s.TopPaymentType = pt.PaymentType
	}

	// An absent installment bucket counts as zero.
	var withInstallments, totalPayments int
	for _, b := range data.Installments {
		totalPayments += b.Count
		if b.UsesInstallment {
			withInstallments = b.Count
		}
	}
	if totalPayments > 0 {
		s.InstallmentShare = float64(withInstallments) / float64(totalPayments)
	}

	var satisfied, totalReviews int
	for _, b := range data.Satisfaction {
		totalReviews += b.Count
		if b.Satisfaction == LabelSatisfied {
			satisfied = b.Count
		}
	}
	if totalReviews > 0 {
		s.SatisfiedShare = float64(satisfied) / float64(totalReviews)
		s.NotSatisfiedShare = float64(totalReviews-satisfied) / float64(totalReviews)
	}

	if len(data.RFM) > 0 {
		var recency, frequency, monetary float64
		for _, e := range data.RFM {
			recency += float64(e.RecencyDays)
			frequency += float64(e.Frequency)
			monetary += e.Monetary
		}
		n := float64(len(data.RFM))
		s.AvgRecencyDays = recency / n
		s.AvgFrequency = frequency / n
		s.AvgMonetary = monetary / n
	}

	return s
}
