package order

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/marketcat/storefront-api/internal/cart"
	kafkax "github.com/marketcat/storefront-api/internal/kafka"
)

// publisher is the slice of kafkax.Producer the checkout needs.
type publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// CheckoutService turns a cart into a vendor order request. Multi-vendor
// carts are handled one vendor at a time: only the first group in cart order
// is composed per checkout, matching the storefront's longstanding behavior.
type CheckoutService struct {
	Composer    *Composer
	Store       cart.Store
	Producer    publisher // nil disables event publishing
	ServiceName string
	ClearDelay  time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func NewCheckoutService(composer *Composer, store cart.Store, producer *kafkax.Producer, serviceName string, clearDelay time.Duration) *CheckoutService {
	svc := &CheckoutService{
		Composer:    composer,
		Store:       store,
		ServiceName: serviceName,
		ClearDelay:  clearDelay,
		timers:      make(map[string]*time.Timer),
	}
	if producer != nil {
		svc.Producer = producer
	}
	return svc
}

type DispatchResult struct {
	VendorName    string `json:"vendor_name"`
	VendorContact string `json:"vendor_contact"`
	Message       string `json:"message"`
	URL           string `json:"url"`
	Reference     string `json:"reference"`
}

// Preview renders the message for the first vendor group without dispatching.
func (s *CheckoutService) Preview(st cart.State) (DispatchResult, error) {
	g, err := firstGroup(st)
	if err != nil {
		return DispatchResult{}, err
	}
	res, err := s.Composer.Compose(g.Lines, g.Name, g.Contact)
	if err != nil {
		return DispatchResult{}, err
	}
	return DispatchResult{
		VendorName:    g.Name,
		VendorContact: g.Contact,
		Message:       res.Message,
		URL:           res.URL,
		Reference:     res.Reference,
	}, nil
}

// Dispatch composes the first vendor group's request, publishes the audit
// event and schedules the deferred clear of the whole cart, including lines
// of vendors that were not part of this dispatch.
func (s *CheckoutService) Dispatch(ctx context.Context, sessionID string, st cart.State, traceID string) (DispatchResult, error) {
	g, err := firstGroup(st)
	if err != nil {
		return DispatchResult{}, err
	}
	res, err := s.Composer.Compose(g.Lines, g.Name, g.Contact)
	if err != nil {
		return DispatchResult{}, err
	}

	s.publishRequested(sessionID, g, res, traceID)
	s.scheduleClear(sessionID)

	return DispatchResult{
		VendorName:    g.Name,
		VendorContact: g.Contact,
		Message:       res.Message,
		URL:           res.URL,
		Reference:     res.Reference,
	}, nil
}

// Close cancels every pending deferred clear. Carts whose clear was cancelled
// simply survive until the next checkout.
func (s *CheckoutService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for sid, t := range s.timers {
		t.Stop()
		delete(s.timers, sid)
	}
}

func firstGroup(st cart.State) (VendorGroup, error) {
	groups := GroupByVendor(st.Items)
	if len(groups) == 0 {
		return VendorGroup{}, ErrEmptyOrder
	}
	return groups[0], nil
}

func (s *CheckoutService) publishRequested(sessionID string, g VendorGroup, res ComposeResult, traceID string) {
	if s.Producer == nil {
		return
	}
	items := make([]RequestedItem, 0, len(g.Lines))
	total := decimal.Zero
	totalItems := 0
	for _, ln := range g.Lines {
		items = append(items, RequestedItem{
			ProductID:   ln.ProductID,
			ProductName: ln.ProductName,
			Qty:         ln.Quantity,
			UnitPrice:   ln.UnitPrice,
		})
		total = total.Add(ln.Subtotal())
		totalItems += ln.Quantity
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderRequested,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       traceID,
		CorrelationID: sessionID,
		Payload: kafkax.MustMarshal(OrderRequestedPayload{
			SessionID:     sessionID,
			VendorName:    g.Name,
			VendorContact: g.Contact,
			Reference:     res.Reference,
			Items:         items,
			TotalItems:    totalItems,
			Total:         total,
		}),
	}
	s.Producer.Publish(PartitionKey(sessionID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderRequested)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// scheduleClear arms (or re-arms) the post-checkout cart wipe. The timer is
// tracked so Close can cancel it before it fires.
func (s *CheckoutService) scheduleClear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
	}
	s.timers[sessionID] = time.AfterFunc(s.ClearDelay, func() {
		s.mu.Lock()
		delete(s.timers, sessionID)
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.Store.Delete(ctx, sessionID); err != nil {
			logrus.WithField("session", sessionID).WithError(err).Warn("post-checkout cart clear failed")
		}
	})
}
