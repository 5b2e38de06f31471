package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"ecom-dashboard/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	batchSize  = 5000
	maxWorkers = 8
)

// Column names are the wire contract with the export job; positions are not.
var (
	orderColumns  = []string{"order_id", "customer_unique_id", "order_status", "order_purchase_timestamp", "payment_value", "payment_type", "payment_installments", "customer_city", "customer_state"}
	itemColumns   = []string{"order_id", "order_purchase_timestamp", "product_id", "product_category_name_english", "price"}
	reviewColumns = []string{"review_creation_date", "review_score"}
)

var timeLayouts = []string{"2006-01-02 15:04:05", "2006-01-02"}

type columnIndex map[string]int

func indexHeader(header, required []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return idx, nil
}

func (c columnIndex) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// parseTime returns the zero time for blank or unparsable cells; the date
// filter excludes such rows later.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseInt tolerates the float formatting pandas-style exports use for
// integer columns ("3.0").
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// loadRecords streams one extract: the header is resolved by column name,
// then record batches are parsed on an errgroup worker pool. Rows whose
// required fields fail to parse are skipped and counted, mirroring how the
// dashboard always rendered whatever rows were usable.
func loadRecords[T any](ctx context.Context, logger *slog.Logger, path string, required []string, parse func(columnIndex, []string) (T, bool)) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := indexHeader(header, required)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	// Batches are parsed concurrently but reassembled by sequence number, so
	// the output keeps file order and loads are reproducible.
	var (
		mu      sync.Mutex
		parsed  = make(map[int][]T)
		skipped int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	flush := func(seq int, rows [][]string) {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			local := make([]T, 0, len(rows))
			bad := 0
			for _, rec := range rows {
				v, ok := parse(idx, rec)
				if !ok {
					bad++
					continue
				}
				local = append(local, v)
			}

			mu.Lock()
			parsed[seq] = local
			skipped += bad
			mu.Unlock()
			return nil
		})
	}

	batches := 0
	batch := make([][]string, 0, batchSize)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		batch = append(batch, rec)
		if len(batch) >= batchSize {
			flush(batches, batch)
			batches++
			batch = make([][]string, 0, batchSize)
		}
	}
	if len(batch) > 0 {
		flush(batches, batch)
		batches++
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if skipped > 0 {
		logger.Warn("skipped malformed rows", "file", path, "rows", skipped)
	}

	var out []T
	for seq := 0; seq < batches; seq++ {
		out = append(out, parsed[seq]...)
	}
	return out, nil
}

func parseOrder(idx columnIndex, rec []string) (models.OrderRecord, bool) {
	id := idx.get(rec, "order_id")
	if id == "" {
		return models.OrderRecord{}, false
	}
	value, err := strconv.ParseFloat(idx.get(rec, "payment_value"), 64)
	if err != nil {
		return models.OrderRecord{}, false
	}
	installments, err := parseInt(idx.get(rec, "payment_installments"))
	if err != nil {
		return models.OrderRecord{}, false
	}
	return models.OrderRecord{
		OrderID:               id,
		CustomerUniqueID:      idx.get(rec, "customer_unique_id"),
		OrderStatus:           idx.get(rec, "order_status"),
		PurchaseTimestamp:     parseTime(idx.get(rec, "order_purchase_timestamp")),
		ApprovedAt:            parseTime(idx.get(rec, "order_approved_at")),
		DeliveredCarrierDate:  parseTime(idx.get(rec, "order_delivered_carrier_date")),
		DeliveredCustomerDate: parseTime(idx.get(rec, "order_delivered_customer_date")),
		EstimatedDeliveryDate: parseTime(idx.get(rec, "order_estimated_delivery_date")),
		PaymentValue:          value,
		PaymentType:           idx.get(rec, "payment_type"),
		PaymentInstallments:   installments,
		CustomerCity:          idx.get(rec, "customer_city"),
		CustomerState:         idx.get(rec, "customer_state"),
	}, true
}

func parseItem(idx columnIndex, rec []string) (models.OrderItemRecord, bool) {
	id := idx.get(rec, "order_id")
	if id == "" {
		return models.OrderItemRecord{}, false
	}
	price, err := strconv.ParseFloat(idx.get(rec, "price"), 64)
	if err != nil {
		return models.OrderItemRecord{}, false
	}
	return models.OrderItemRecord{
		OrderID:           id,
		PurchaseTimestamp: parseTime(idx.get(rec, "order_purchase_timestamp")),
		ShippingLimitDate: parseTime(idx.get(rec, "shipping_limit_date")),
		ProductID:         idx.get(rec, "product_id"),
		ProductCategory:   idx.get(rec, "product_category_name_english"),
		Price:             price,
	}, true
}

func parseReview(idx columnIndex, rec []string) (models.ReviewRecord, bool) {
	score, err := parseInt(idx.get(rec, "review_score"))
	if err != nil {
		return models.ReviewRecord{}, false
	}
	return models.ReviewRecord{
		CreationDate:    parseTime(idx.get(rec, "review_creation_date")),
		AnswerTimestamp: parseTime(idx.get(rec, "review_answer_timestamp")),
		Score:           score,
		CommentTitle:    idx.get(rec, "review_comment_title"),
		CommentMessage:  idx.get(rec, "review_comment_message"),
	}, true
}

// LoadOrders reads the order/customer/payment extract.
func LoadOrders(ctx context.Context, logger *slog.Logger, path string) ([]models.OrderRecord, error) {
	return loadRecords(ctx, logger, path, orderColumns, parseOrder)
}

// LoadItems reads the order-item/product extract.
func LoadItems(ctx context.Context, logger *slog.Logger, path string) ([]models.OrderItemRecord, error) {
	return loadRecords(ctx, logger, path, itemColumns, parseItem)
}

// LoadReviews reads the review extract.
func LoadReviews(ctx context.Context, logger *slog.Logger, path string) ([]models.ReviewRecord, error) {
	return loadRecords(ctx, logger, path, reviewColumns, parseReview)
}
