package models

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultTopProductsLimit = 5

// SalesRow is one product's sales on one local calendar date.
type SalesRow struct {
	Date        string          `json:"date"`
	ProductName string          `json:"product"`
	QuantitySum int64           `json:"quantity"`
	RevenueSum  decimal.Decimal `json:"revenue"`
}

// ProductSales is one product's sales over a whole window.
type ProductSales struct {
	ProductName string          `json:"product"`
	QuantitySum int64           `json:"quantity"`
	RevenueSum  decimal.Decimal `json:"revenue"`
}

// Summary is the dashboard header of the sales report.
type Summary struct {
	Revenue      decimal.Decimal `json:"revenue"`
	Orders       int64           `json:"orders"`
	AverageOrder decimal.Decimal `json:"average_order"`
}

// ReportsRepository aggregates committed orders. Item figures come from the
// order_items snapshots, never from the live catalog.
type ReportsRepository struct {
	db    *gorm.DB
	clock Clock
}

func NewReportsRepository(db *gorm.DB, clock Clock) *ReportsRepository {
	return &ReportsRepository{db: db, clock: clock}
}

func (r *ReportsRepository) windowed(ctx context.Context, model any, w Window) *gorm.DB {
	query := r.db.WithContext(ctx).Model(model)
	if since, ok := r.clock.since(w); ok {
		query = query.Where("created_at >= ?", since)
	}
	return query
}

func (r *ReportsRepository) TotalRevenue(ctx context.Context, w Window) (decimal.Decimal, error) {
	var totals []decimal.Decimal
	if err := r.windowed(ctx, &Order{}, w).Pluck("total", &totals).Error; err != nil {
		return decimal.Zero, storageErr("sum revenue", err)
	}
	return decimal.Sum(decimal.Zero, totals...), nil
}

func (r *ReportsRepository) TotalOrders(ctx context.Context, w Window) (int64, error) {
	var count int64
	if err := r.windowed(ctx, &Order{}, w).Count(&count).Error; err != nil {
		return 0, storageErr("count orders", err)
	}
	return count, nil
}

func (r *ReportsRepository) Summary(ctx context.Context, w Window) (Summary, error) {
	revenue, err := r.TotalRevenue(ctx, w)
	if err != nil {
		return Summary{}, err
	}
	orders, err := r.TotalOrders(ctx, w)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{Revenue: revenue, Orders: orders, AverageOrder: decimal.Zero}
	if orders > 0 {
		s.AverageOrder = revenue.Div(decimal.NewFromInt(orders))
	}
	return s, nil
}

// SalesReport groups item sales by local calendar date and product name,
// newest date first and highest revenue first within a date.
func (r *ReportsRepository) SalesReport(ctx context.Context, w Window) ([]SalesRow, error) {
	var items []OrderItem
	if err := r.windowed(ctx, &OrderItem{}, w).
		Select("product_name", "quantity", "price", "created_at").
		Find(&items).Error; err != nil {
		return nil, storageErr("sales report", err)
	}

	type key struct{ date, name string }
	loc := r.clock.location()
	index := map[key]int{}
	rows := []SalesRow{}
	for _, it := range items {
		k := key{date: it.CreatedAt.In(loc).Format("2006-01-02"), name: it.ProductName}
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, SalesRow{Date: k.date, ProductName: k.name, RevenueSum: decimal.Zero})
		}
		rows[i].QuantitySum += int64(it.Quantity)
		rows[i].RevenueSum = rows[i].RevenueSum.Add(it.LineTotal())
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date > rows[j].Date
		}
		if c := rows[i].RevenueSum.Cmp(rows[j].RevenueSum); c != 0 {
			return c > 0
		}
		return rows[i].ProductName < rows[j].ProductName
	})
	return rows, nil
}

// TopProducts ranks products by revenue over the window. limit below 1 means 5.
func (r *ReportsRepository) TopProducts(ctx context.Context, limit int, w Window) ([]ProductSales, error) {
	if limit < 1 {
		limit = defaultTopProductsLimit
	}
	var items []OrderItem
	if err := r.windowed(ctx, &OrderItem{}, w).
		Select("product_name", "quantity", "price").
		Find(&items).Error; err != nil {
		return nil, storageErr("top products", err)
	}

	index := map[string]int{}
	out := []ProductSales{}
	for _, it := range items {
		i, ok := index[it.ProductName]
		if !ok {
			i = len(out)
			index[it.ProductName] = i
			out = append(out, ProductSales{ProductName: it.ProductName, RevenueSum: decimal.Zero})
		}
		out[i].QuantitySum += int64(it.Quantity)
		out[i].RevenueSum = out[i].RevenueSum.Add(it.LineTotal())
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].RevenueSum.Cmp(out[j].RevenueSum); c != 0 {
			return c > 0
		}
		return out[i].ProductName < out[j].ProductName
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
