package cart

import (
	"github.com/shopspring/decimal"

	"github.com/marketcat/storefront-api/internal/catalog"
)

// Line is one product inside the cart. Price, name and vendor fields are
// snapshots taken when the product was added; later catalog changes do not
// touch existing lines.
type Line struct {
	ProductID     string          `json:"product_id"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	ProductName   string          `json:"product_name"`
	VendorName    string          `json:"vendor_name"`
	VendorContact string          `json:"vendor_contact"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// State is the cart document. Total and TotalQuantity are derived and are
// recomputed after every mutation, never set directly.
type State struct {
	Items         []Line          `json:"items"`
	Total         decimal.Decimal `json:"total"`
	TotalQuantity int             `json:"total_quantity"`
}

func (s *State) recompute() {
	total := decimal.Zero
	qty := 0
	for _, it := range s.Items {
		total = total.Add(it.Subtotal())
		qty += it.Quantity
	}
	s.Total = total
	s.TotalQuantity = qty
}

// AddLine merges into an existing line for the same product or appends a new
// one with quantity 1, snapshotting price and vendor details.
func (s *State) AddLine(p catalog.Product) {
	for i := range s.Items {
		if s.Items[i].ProductID == p.ID {
			s.Items[i].Quantity++
			s.recompute()
			return
		}
	}
	ln := Line{
		ProductID:   p.ID,
		Quantity:    1,
		UnitPrice:   p.Price,
		ProductName: p.Name,
	}
	if p.Vendor != nil {
		ln.VendorName = p.Vendor.Name
		ln.VendorContact = p.Vendor.WhatsAppContact
	}
	s.Items = append(s.Items, ln)
	s.recompute()
}

// RemoveLine deletes the line for productID; absent lines are a no-op.
func (s *State) RemoveLine(productID string) {
	kept := s.Items[:0]
	for _, it := range s.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	s.Items = kept
	s.recompute()
}

// SetQuantity replaces a line's quantity. Anything below 1 removes the line.
func (s *State) SetQuantity(productID string, qty int) {
	if qty < 1 {
		s.RemoveLine(productID)
		return
	}
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			s.Items[i].Quantity = qty
			break
		}
	}
	s.recompute()
}

func (s *State) Clear() {
	s.Items = nil
	s.recompute()
}

func (s *State) ItemCount() int { return s.TotalQuantity }

func (s *State) TotalPrice() decimal.Decimal { return s.Total }

// Clone returns an independent copy; the items slice is not shared and is
// never nil, so the document always renders with an items array.
func (s State) Clone() State {
	out := s
	out.Items = make([]Line, 0, len(s.Items))
	out.Items = append(out.Items, s.Items...)
	return out
}
