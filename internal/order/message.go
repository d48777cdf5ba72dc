package order

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marketcat/storefront-api/internal/cart"
)

// ErrEmptyOrder is returned when there is nothing to compose for the vendor.
var ErrEmptyOrder = errors.New("no products for this vendor")

// VendorGroup is one vendor's slice of the cart, in cart order.
type VendorGroup struct {
	Name    string
	Contact string
	Lines   []cart.Line
}

func (g VendorGroup) Key() string { return g.Name + "|" + g.Contact }

// GroupByVendor partitions lines by vendor name+contact. Group order follows
// first appearance; lines keep their relative order within a group. Vendors
// are told apart by the contact number, so a name+contact collision folds
// two vendors into one group.
func GroupByVendor(lines []cart.Line) []VendorGroup {
	var groups []VendorGroup
	index := map[string]int{}
	for _, ln := range lines {
		key := ln.VendorName + "|" + ln.VendorContact
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, VendorGroup{Name: ln.VendorName, Contact: ln.VendorContact})
		}
		groups[i].Lines = append(groups[i].Lines, ln)
	}
	return groups
}

// ComposeResult carries the rendered request: the plain message for preview
// and the deep link that opens the chat pre-filled with it.
type ComposeResult struct {
	Message   string
	URL       string
	Reference string
}

// Composer renders order-request messages. The wording, emoji markers and
// section order below are the contract vendors already receive; do not
// reword them casually.
type Composer struct {
	BaseURL string           // e.g. https://wa.me
	Now     func() time.Time // injectable clock
}

func NewComposer(baseURL string) *Composer {
	return &Composer{BaseURL: baseURL, Now: time.Now}
}

// Compose builds the order-request message and deep link for one vendor.
// Lines are re-filtered on the exact (name, contact) pair even though
// callers pass pre-grouped lines.
func (c *Composer) Compose(lines []cart.Line, vendorName, vendorContact string) (ComposeResult, error) {
	var grouped []cart.Line
	for _, ln := range lines {
		if ln.VendorName == vendorName && ln.VendorContact == vendorContact {
			grouped = append(grouped, ln)
		}
	}
	if len(grouped) == 0 {
		return ComposeResult{}, ErrEmptyOrder
	}

	total := decimal.Zero
	totalItems := 0
	for _, ln := range grouped {
		total = total.Add(ln.Subtotal())
		totalItems += ln.Quantity
	}

	now := c.Now()
	ref := fmt.Sprintf("%06d", now.UnixMilli()%1_000_000)

	var b strings.Builder
	b.WriteString("🛒 *Hola, quisiera hacer un pedido*\n")
	fmt.Fprintf(&b, "📅 %s %s\n", now.Format("02/01/2006"), now.Format("15:04"))
	fmt.Fprintf(&b, "📋 Referencia: %s\n\n", ref)
	b.WriteString("📦 *PRODUCTOS:*\n\n")
	for i, ln := range grouped {
		fmt.Fprintf(&b, "%d. *%s*\n", i+1, ln.ProductName)
		fmt.Fprintf(&b, "   Cantidad: %d\n", ln.Quantity)
		fmt.Fprintf(&b, "   Precio unitario: Bs.%s\n", ln.UnitPrice.StringFixed(2))
		fmt.Fprintf(&b, "   Subtotal: Bs.%s\n\n", ln.Subtotal().StringFixed(2))
	}
	b.WriteString("💰 *RESUMEN:*\n\n")
	fmt.Fprintf(&b, "Total de productos: %d\n", totalItems)
	fmt.Fprintf(&b, "Importe estimado: *Bs.%s*\n\n", total.StringFixed(2))
	b.WriteString("⚠️ *IMPORTANTE:*\n")
	b.WriteString("• Los precios y disponibilidad están sujetos a confirmación\n")
	b.WriteString("• Este mensaje es una *solicitud de pedido*, no una venta final\n")
	b.WriteString("• El precio definitivo será confirmado por WhatsApp antes del pago\n\n")
	b.WriteString("✅ *¿Podrías confirmarme precios y disponibilidad, por favor?*")

	msg := b.String()
	link := fmt.Sprintf("%s/%s?text=%s",
		strings.TrimRight(c.BaseURL, "/"), digitsOnly(vendorContact), url.QueryEscape(msg))

	return ComposeResult{Message: msg, URL: link, Reference: ref}, nil
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
