package models

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/juicebar/pos-backend/database"
)

// refNow is a fixed instant used as "now" across repository tests.
var refNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pos.db")
	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(path)), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	_, err = Migrate(context.Background(), db)
	require.NoError(t, err)
	return db
}

func clockAt(now time.Time) Clock {
	return Clock{Now: func() time.Time { return now }, Location: time.UTC}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, label string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "%s: want %s, got %s", label, want, got)
}

func mustCreateProduct(t *testing.T, db *gorm.DB, id, title, category, price string) *Product {
	t.Helper()
	p := &Product{ID: id, Title: title, CategoryID: category, Price: dec(price)}
	require.NoError(t, NewProductsRepository(db).CreateProduct(context.Background(), p))
	return p
}

// singleLineOrder builds a consistent NewOrder for qty units of one product.
func singleLineOrder(productID, name string, qty int, price string) NewOrder {
	p := dec(price)
	subtotal := p.Mul(decimal.NewFromInt(int64(qty)))
	return NewOrder{
		Subtotal:      subtotal,
		Discount:      decimal.Zero,
		Tax:           decimal.Zero,
		Total:         subtotal,
		PaymentMethod: PaymentCash,
		Items: []NewOrderItem{
			{ProductID: productID, ProductName: name, Quantity: qty, Price: p},
		},
	}
}

func mustCommitAt(t *testing.T, db *gorm.DB, at time.Time, in NewOrder) *Order {
	t.Helper()
	order, err := NewOrdersRepository(db, clockAt(at)).CommitOrder(context.Background(), in)
	require.NoError(t, err)
	return order
}
