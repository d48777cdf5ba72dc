package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketcat/storefront-api/internal/catalog"
)

func testProduct(id, name, price, vendorName, contact string) catalog.Product {
	return catalog.Product{
		ID:    id,
		Name:  name,
		Price: decimal.RequireFromString(price),
		Vendor: &catalog.Vendor{
			Name:            vendorName,
			WhatsAppContact: contact,
		},
	}
}

func TestAddLineMergesSameProduct(t *testing.T) {
	var st State
	p := testProduct("p1", "Auriculares Bluetooth", "89.99", "TechGadgets", "+5491111111111")

	st.AddLine(p)
	st.AddLine(p)

	require.Len(t, st.Items, 1)
	assert.Equal(t, 2, st.Items[0].Quantity)
	assert.Equal(t, 2, st.ItemCount())
	assert.True(t, st.TotalPrice().Equal(decimal.RequireFromString("179.98")),
		"got total %s", st.TotalPrice())
}

func TestAddLineSnapshotsProduct(t *testing.T) {
	var st State
	p := testProduct("p1", "Mate Imperial", "45.50", "Almacen Sur", "+5492222222222")
	st.AddLine(p)

	// catalog price changes must not touch the existing line
	p.Price = decimal.RequireFromString("99.99")

	require.Len(t, st.Items, 1)
	ln := st.Items[0]
	assert.True(t, ln.UnitPrice.Equal(decimal.RequireFromString("45.50")))
	assert.Equal(t, "Mate Imperial", ln.ProductName)
	assert.Equal(t, "Almacen Sur", ln.VendorName)
	assert.Equal(t, "+5492222222222", ln.VendorContact)
}

func TestTotalsRecomputedAcrossMutations(t *testing.T) {
	var st State
	a := testProduct("a", "A", "10.00", "V", "+111")
	b := testProduct("b", "B", "3.25", "V", "+111")

	st.AddLine(a)
	st.AddLine(b)
	st.AddLine(a)
	st.SetQuantity("b", 4)
	st.RemoveLine("a")

	// invariant: totals always equal the sum over surviving lines
	expTotal := decimal.Zero
	expQty := 0
	for _, ln := range st.Items {
		expTotal = expTotal.Add(ln.Subtotal())
		expQty += ln.Quantity
	}
	assert.True(t, st.TotalPrice().Equal(expTotal))
	assert.Equal(t, expQty, st.ItemCount())
	assert.True(t, st.TotalPrice().Equal(decimal.RequireFromString("13.00")))
	assert.Equal(t, 4, st.ItemCount())
}

func TestSetQuantityBelowOneRemovesLine(t *testing.T) {
	for _, qty := range []int{0, -1} {
		var st State
		st.AddLine(testProduct("p1", "A", "5.00", "V", "+111"))
		st.SetQuantity("p1", qty)

		assert.Empty(t, st.Items, "qty=%d", qty)
		assert.Equal(t, 0, st.ItemCount())
		assert.True(t, st.TotalPrice().IsZero())
	}
}

func TestSetQuantityUnknownProductNoop(t *testing.T) {
	var st State
	st.AddLine(testProduct("p1", "A", "5.00", "V", "+111"))
	st.SetQuantity("nope", 3)

	require.Len(t, st.Items, 1)
	assert.Equal(t, 1, st.Items[0].Quantity)
}

func TestRemoveLineAbsentNoop(t *testing.T) {
	var st State
	st.AddLine(testProduct("p1", "A", "5.00", "V", "+111"))
	st.RemoveLine("nope")

	require.Len(t, st.Items, 1)
	assert.Equal(t, 1, st.ItemCount())
}

func TestClearResetsTotals(t *testing.T) {
	var st State
	st.AddLine(testProduct("p1", "A", "5.00", "V", "+111"))
	st.AddLine(testProduct("p2", "B", "7.00", "V", "+111"))
	st.Clear()

	assert.Empty(t, st.Items)
	assert.Equal(t, 0, st.ItemCount())
	assert.True(t, st.TotalPrice().IsZero())
}
