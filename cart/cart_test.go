package cart

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, label ...string) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "%s want %s, got %s", strings.Join(label, " "), want, got)
}

type add struct {
	p   Product
	qty int
}

var (
	greenDetox = Product{ID: "1", Title: "Green Detox", Price: d("5.50")}
	berryBlast = Product{ID: "2", Title: "Berry Blast", Price: d("6.00")}
	gingerShot = Product{ID: "3", Title: "Ginger Shot", Price: d("3.00")}
)

func TestAddItem(t *testing.T) {
	testCases := []struct {
		name      string
		adds      []add
		wantLines []LineItem
	}{
		{
			name: "New product appends a line",
			adds: []add{{greenDetox, 2}},
			wantLines: []LineItem{
				{ProductID: "1", ProductName: "Green Detox", UnitPrice: d("5.50"), Quantity: 2},
			},
		},
		{
			name: "Same product merges quantities",
			adds: []add{{greenDetox, 1}, {berryBlast, 1}, {greenDetox, 3}},
			wantLines: []LineItem{
				{ProductID: "1", ProductName: "Green Detox", UnitPrice: d("5.50"), Quantity: 4},
				{ProductID: "2", ProductName: "Berry Blast", UnitPrice: d("6.00"), Quantity: 1},
			},
		},
		{
			name: "Quantity below one is clamped to one",
			adds: []add{{gingerShot, 0}, {berryBlast, -4}},
			wantLines: []LineItem{
				{ProductID: "3", ProductName: "Ginger Shot", UnitPrice: d("3.00"), Quantity: 1},
				{ProductID: "2", ProductName: "Berry Blast", UnitPrice: d("6.00"), Quantity: 1},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			for _, a := range tc.adds {
				c.AddItem(a.p, a.qty)
			}

			lines := c.Lines()
			require.Len(t, lines, len(tc.wantLines))
			for i, want := range tc.wantLines {
				assert.Equal(t, want.ProductID, lines[i].ProductID)
				assert.Equal(t, want.ProductName, lines[i].ProductName)
				assert.Equal(t, want.Quantity, lines[i].Quantity)
				assertDecimal(t, want.UnitPrice.String(), lines[i].UnitPrice)
			}
		})
	}
}

func TestAddItemCapturesPriceAtAddTime(t *testing.T) {
	c := New()
	p := greenDetox
	c.AddItem(p, 1)

	p.Price = d("9.99")
	p.Title = "Renamed"
	c.AddItem(p, 1)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Green Detox", lines[0].ProductName)
	assertDecimal(t, "5.50", lines[0].UnitPrice)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestChangeQuantityFloorsAtZero(t *testing.T) {
	c := New()
	c.AddItem(berryBlast, 2)
	c.AddItem(gingerShot, 1)

	c.ChangeQuantity("2", -5)
	c.ChangeQuantity("3", 2)
	c.ChangeQuantity("missing", 3)

	lines := c.Lines()
	require.Len(t, lines, 2, "zero-quantity lines are kept")
	assert.Equal(t, 0, lines[0].Quantity)
	assert.Equal(t, 3, lines[1].Quantity)

	totals := c.ComputeTotals()
	assertDecimal(t, "9.00", totals.Subtotal, "zero-quantity line contributes nothing")
	assert.False(t, c.IsEmpty())

	c.Purge()
	lines = c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "3", lines[0].ProductID)
}

func TestRemoveItem(t *testing.T) {
	c := New()
	c.AddItem(greenDetox, 1)
	c.AddItem(berryBlast, 1)

	c.RemoveItem("1")
	c.RemoveItem("unknown")

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "2", lines[0].ProductID)
}

func TestSubtotalIgnoresInsertionOrder(t *testing.T) {
	products := []Product{greenDetox, berryBlast, gingerShot}
	qtys := []int{3, 1, 7}

	forward := New()
	for i := range products {
		forward.AddItem(products[i], qtys[i])
	}
	backward := New()
	for i := len(products) - 1; i >= 0; i-- {
		backward.AddItem(products[i], qtys[i])
	}

	// 3*5.50 + 1*6.00 + 7*3.00
	assertDecimal(t, "43.50", forward.ComputeTotals().Subtotal)
	assert.True(t, forward.ComputeTotals().Subtotal.Equal(backward.ComputeTotals().Subtotal))
}

func TestComputeTotalsIsIdempotent(t *testing.T) {
	c := New()
	c.AddItem(berryBlast, 3)
	c.SetDiscount(DiscountPercent, d("33.3"))
	c.SetTax(d("1.25"))

	first := c.ComputeTotals()
	second := c.ComputeTotals()

	assert.Equal(t, first, second)
	assert.Len(t, c.Lines(), 1)
}

func TestDiscountAndTax(t *testing.T) {
	testCases := []struct {
		name         string
		setup        func(c *Cart)
		wantSubtotal string
		wantDiscount string
		wantTax      string
		wantTotal    string
	}{
		{
			name: "Percent discount on Berry Blast",
			setup: func(c *Cart) {
				c.AddItem(berryBlast, 1)
				c.SetDiscount(DiscountPercent, d("10"))
				c.SetTax(decimal.Zero)
			},
			wantSubtotal: "6.00", wantDiscount: "0.60", wantTax: "0", wantTotal: "5.40",
		},
		{
			name: "Percent above 100 is clamped",
			setup: func(c *Cart) {
				c.AddItem(berryBlast, 2)
				c.SetDiscount(DiscountPercent, d("250"))
			},
			wantSubtotal: "12.00", wantDiscount: "12.00", wantTax: "0", wantTotal: "0",
		},
		{
			name: "Negative percent is clamped to zero",
			setup: func(c *Cart) {
				c.AddItem(berryBlast, 1)
				c.SetDiscount(DiscountPercent, d("-5"))
			},
			wantSubtotal: "6.00", wantDiscount: "0", wantTax: "0", wantTotal: "6.00",
		},
		{
			name: "Fixed discount above subtotal is capped",
			setup: func(c *Cart) {
				c.AddItem(gingerShot, 1)
				c.SetDiscount(DiscountFixed, d("10"))
				c.SetTax(d("0.50"))
			},
			wantSubtotal: "3.00", wantDiscount: "3.00", wantTax: "0.50", wantTotal: "0.50",
		},
		{
			name: "Fixed discount re-caps when subtotal drops",
			setup: func(c *Cart) {
				c.AddItem(berryBlast, 2)
				c.SetDiscount(DiscountFixed, d("10"))
				c.ChangeQuantity("2", -1)
			},
			wantSubtotal: "6.00", wantDiscount: "6.00", wantTax: "0", wantTotal: "0",
		},
		{
			name: "Negative tax is clamped to zero",
			setup: func(c *Cart) {
				c.AddItem(greenDetox, 2)
				c.SetDiscount(DiscountFixed, d("1"))
				c.SetTax(d("-3"))
			},
			wantSubtotal: "11.00", wantDiscount: "1", wantTax: "0", wantTotal: "10.00",
		},
		{
			name: "Unknown discount type behaves as fixed",
			setup: func(c *Cart) {
				c.AddItem(greenDetox, 1)
				c.SetDiscount(DiscountType("coupon"), d("2"))
			},
			wantSubtotal: "5.50", wantDiscount: "2", wantTax: "0", wantTotal: "3.50",
		},
		{
			name:         "Empty cart",
			setup:        func(c *Cart) { c.SetTax(d("2")) },
			wantSubtotal: "0", wantDiscount: "0", wantTax: "2", wantTotal: "2",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			tc.setup(c)

			totals := c.ComputeTotals()

			assertDecimal(t, tc.wantSubtotal, totals.Subtotal, "subtotal")
			assertDecimal(t, tc.wantDiscount, totals.DiscountAmount, "discount")
			assertDecimal(t, tc.wantTax, totals.Tax, "tax")
			assertDecimal(t, tc.wantTotal, totals.Total, "total")
			assert.False(t, totals.Total.IsNegative())
		})
	}
}

func TestSnapshotSkipsZeroQuantityLines(t *testing.T) {
	c := New()
	c.AddItem(greenDetox, 2)
	c.AddItem(gingerShot, 1)
	c.ChangeQuantity("3", -1)
	c.SetDiscount(DiscountFixed, d("2"))
	c.SetTax(d("1"))

	snap := c.Snapshot()

	require.Len(t, snap.Lines, 1)
	assert.Equal(t, "1", snap.Lines[0].ProductID)
	assertDecimal(t, "11.00", snap.Subtotal)
	assertDecimal(t, "2", snap.DiscountAmount)
	assertDecimal(t, "10.00", snap.Total)
	assert.Len(t, c.Lines(), 2, "snapshot must not mutate the cart")
}

func TestClear(t *testing.T) {
	c := New()
	c.AddItem(greenDetox, 2)
	c.SetDiscount(DiscountPercent, d("50"))
	c.SetTax(d("4"))

	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Empty(t, c.Lines())
	assert.Equal(t, DiscountFixed, c.Discount().Type)
	assert.True(t, c.Tax().IsZero())
	assert.True(t, c.ComputeTotals().Total.IsZero())
}
