package models

import "time"

// Derived tables. Each is rebuilt in full from the filtered raw records on
// every date-range change and has no identity beyond that computation.

// MonthlyOrders is one month bucket of delivered orders. Month is the
// "YYYY-MM" label of the bucket, which is anchored to the last day of the
// month for ordering.
type MonthlyOrders struct {
	Month      string  `json:"order_month"`
	OrderCount int     `json:"order_count"`
	Revenue    float64 `json:"revenue"`
}

// CategoryPerformance aggregates item rows per product category. Count is
// the number of distinct products in the category, not the row count.
type CategoryPerformance struct {
	Category string  `json:"product_category"`
	Count    int     `json:"count"`
	Revenue  float64 `json:"revenue"`
}

// PaymentTypeCount is a plain row count per payment type. Unlike the order
// rollups this intentionally counts installment rows individually.
type PaymentTypeCount struct {
	PaymentType string `json:"payment_type"`
	Count       int    `json:"count"`
}

type InstallmentUsage struct {
	UsesInstallment bool `json:"use_installment"`
	Count           int  `json:"count"`
}

type CityRollup struct {
	City       string  `json:"customer_city"`
	OrderCount int     `json:"order_count"`
	Revenue    float64 `json:"revenue"`
}

type StateRollup struct {
	State      string  `json:"customer_state"`
	OrderCount int     `json:"order_count"`
	Revenue    float64 `json:"revenue"`
}

// ReviewScoreCount is one score bucket (1-5). The satisfaction label is
// attached per bucket; the satisfaction split is a re-aggregation of these
// rows grouped by that label.
type ReviewScoreCount struct {
	Score        int    `json:"review_score"`
	Count        int    `json:"count"`
	Satisfaction string `json:"satisfaction"`
}

type SatisfactionCount struct {
	Satisfaction string `json:"satisfaction"`
	Count        int    `json:"count"`
}

// RFMEntry scores one customer over the delivered orders in range.
type RFMEntry struct {
	CustomerID  string  `json:"customer_id"`
	Frequency   int     `json:"frequency"`
	Monetary    float64 `json:"monetary"`
	RecencyDays int     `json:"recency"`
}

// RecentReview is a review with a non-empty comment message, used for the
// newest-messages listing.
type RecentReview struct {
	CreationDate   time.Time `json:"review_creation_date"`
	Score          int       `json:"review_score"`
	CommentTitle   string    `json:"review_comment_title,omitempty"`
	CommentMessage string    `json:"review_comment_message"`
}

// Summary carries the headline scalars the metric widgets show. All values
// are reductions over the derived tables for the same range.
type Summary struct {
	TotalOrders          int     `json:"total_orders"`
	TotalRevenue         float64 `json:"total_revenue"`
	TopCityByOrders      string  `json:"top_city_by_orders"`
	TopCityOrderCount    int     `json:"top_city_order_count"`
	TopCityByRevenue     string  `json:"top_city_by_revenue"`
	TopCityRevenue       float64 `json:"top_city_revenue"`
	TopStateByOrders     string  `json:"top_state_by_orders"`
	TopStateOrderCount   int     `json:"top_state_order_count"`
	TopStateByRevenue    string  `json:"top_state_by_revenue"`
	TopStateRevenue      float64 `json:"top_state_revenue"`
	TopCategoryByCount   string  `json:"top_category_by_count"`
	TopCategoryCount     int     `json:"top_category_count"`
	TopCategoryByRevenue string  `json:"top_category_by_revenue"`
	TopCategoryRevenue   float64 `json:"top_category_revenue"`
	TopPaymentType       string  `json:"top_payment_type"`
	InstallmentShare     float64 `json:"installment_share"`
	SatisfiedShare       float64 `json:"satisfied_share"`
	NotSatisfiedShare    float64 `json:"not_satisfied_share"`
	AvgRecencyDays       float64 `json:"avg_recency_days"`
	AvgFrequency         float64 `json:"avg_frequency"`
	AvgMonetary          float64 `json:"avg_monetary"`
}

// DashboardData bundles every derived table for one date range. A snapshot
// is built entirely before being handed to the presentation layer.
type DashboardData struct {
	MonthlyOrders       []MonthlyOrders       `json:"monthly_orders"`
	CategoryPerformance []CategoryPerformance `json:"category_performance"`
	PaymentTypes        []PaymentTypeCount    `json:"payment_types"`
	Installments        []InstallmentUsage    `json:"installments"`
	Cities              []CityRollup          `json:"cities"`
	States              []StateRollup         `json:"states"`
	ReviewScores        []ReviewScoreCount    `json:"review_scores"`
	Satisfaction        []SatisfactionCount   `json:"satisfaction"`
	RFM                 []RFMEntry            `json:"rfm"`
	RecentReviews       []RecentReview        `json:"recent_reviews"`
	Summary             Summary               `json:"summary"`
}
