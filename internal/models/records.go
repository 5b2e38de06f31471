package models

import "time"

// Raw records mirror the three flat extracts produced by the export job.
// They are loaded once at startup and treated as read-only afterwards; the
// aggregation layer builds fresh derived tables from them on every query.

// OrderRecord is one row of the order/customer/payment extract. An order
// paid in N installments appears as N rows, so order counts must always
// deduplicate on OrderID.
type OrderRecord struct {
	OrderID               string
	CustomerUniqueID      string
	OrderStatus           string
	PurchaseTimestamp     time.Time
	ApprovedAt            time.Time
	DeliveredCarrierDate  time.Time
	DeliveredCustomerDate time.Time
	EstimatedDeliveryDate time.Time
	PaymentValue          float64
	PaymentType           string
	PaymentInstallments   int
	CustomerCity          string
	CustomerState         string
}

// OrderItemRecord is one row of the order-item/product extract. One order
// may carry several item rows; product counts deduplicate on ProductID.
type OrderItemRecord struct {
	OrderID           string
	PurchaseTimestamp time.Time
	ShippingLimitDate time.Time
	ProductID         string
	ProductCategory   string
	Price             float64
}

// ReviewRecord is one row of the review extract. Comment title and message
// may be empty.
type ReviewRecord struct {
	CreationDate    time.Time
	AnswerTimestamp time.Time
	Score           int
	CommentTitle    string
	CommentMessage  string
}
