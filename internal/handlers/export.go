package handlers

import (
	"fmt"
	"net/http"
	"time"

	"ecom-dashboard/internal/errors"
	"ecom-dashboard/internal/models"
	"ecom-dashboard/internal/observability"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HandleExport downloads the full snapshot as a workbook, one sheet per
// derived table. A range without delivered orders exports an empty RFM
// sheet rather than failing the download.
func (h *APIHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	start, end := queryRange(h.analytics, r)

	data, err := h.analytics.Snapshot(start, end)
	if err != nil {
		h.logger.Warn("export without RFM", "error", err)
	}

	workbook, err := buildWorkbook(data)
	if err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "failed to build workbook"),
			observability.GetRequestID(r.Context()))
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("dashboard_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := workbook.Write(w); err != nil {
		h.logger.Error("write workbook", "error", err)
	}
}

func buildWorkbook(data *models.DashboardData) (*excelize.File, error) {
	f := excelize.NewFile()
	first := true

	addSheet := func(name string, headers []string, rows [][]any) error {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return err
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}

		for col, header := range headers {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, header); err != nil {
				return err
			}
		}
		for i, row := range rows {
			for j, value := range row {
				cell, err := excelize.CoordinatesToCellName(j+1, i+2)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(name, cell, value); err != nil {
					return err
				}
			}
		}
		return nil
	}

	monthly := make([][]any, len(data.MonthlyOrders))
	for i, row := range data.MonthlyOrders {
		monthly[i] = []any{row.Month, row.OrderCount, row.Revenue}
	}
	if err := addSheet("monthly_orders", []string{"order_month", "order_count", "revenue"}, monthly); err != nil {
		return nil, err
	}

	categories := make([][]any, len(data.CategoryPerformance))
	for i, row := range data.CategoryPerformance {
		categories[i] = []any{row.Category, row.Count, row.Revenue}
	}
	if err := addSheet("category_performance", []string{"product_category", "count", "revenue"}, categories); err != nil {
		return nil, err
	}

	payments := make([][]any, len(data.PaymentTypes))
	for i, row := range data.PaymentTypes {
		payments[i] = []any{row.PaymentType, row.Count}
	}
	if err := addSheet("payment_types", []string{"payment_type", "count"}, payments); err != nil {
		return nil, err
	}

	installments := make([][]any, len(data.Installments))
	for i, row := range data.Installments {
		installments[i] = []any{row.UsesInstallment, row.Count}
	}
	if err := addSheet("installments", []string{"use_installment", "count"}, installments); err != nil {
		return nil, err
	}

	cities := make([][]any, len(data.Cities))
	for i, row := range data.Cities {
		cities[i] = []any{row.City, row.OrderCount, row.Revenue}
	}
	if err := addSheet("cities", []string{"customer_city", "order_count", "revenue"}, cities); err != nil {
		return nil, err
	}

	states := make([][]any, len(data.States))
	for i, row := range data.States {
		states[i] = []any{row.State, row.OrderCount, row.Revenue}
	}
	if err := addSheet("states", []string{"customer_state", "order_count", "revenue"}, states); err != nil {
		return nil, err
	}

	scores := make([][]any, len(data.ReviewScores))
	for i, row := range data.ReviewScores {
		scores[i] = []any{row.Score, row.Count, row.Satisfaction}
	}
	if err := addSheet("review_scores", []string{"review_score", "count", "satisfaction"}, scores); err != nil {
		return nil, err
	}

	satisfaction := make([][]any, len(data.Satisfaction))
	for i, row := range data.Satisfaction {
		satisfaction[i] = []any{row.Satisfaction, row.Count}
	}
	if err := addSheet("satisfaction", []string{"satisfaction", "count"}, satisfaction); err != nil {
		return nil, err
	}

	rfm := make([][]any, len(data.RFM))
	for i, row := range data.RFM {
		rfm[i] = []any{row.CustomerID, row.Frequency, row.Monetary, row.RecencyDays}
	}
	if err := addSheet("rfm", []string{"customer_id", "frequency", "monetary", "recency"}, rfm); err != nil {
		return nil, err
	}

	return f, nil
}
