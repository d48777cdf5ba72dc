package cart

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/marketcat/storefront-api/internal/catalog"
)

// Manager owns the cart of a single session. Until Hydrate has run the
// manager is inert: mutators do nothing and reads see an empty cart. After
// hydration every successful mutation writes the full document back to the
// store; write failures never surface to the caller, a shopping session must
// survive a flaky store.
type Manager struct {
	store     Store
	sessionID string
	state     State
	hydrated  bool
}

func NewManager(store Store, sessionID string) *Manager {
	return &Manager{store: store, sessionID: sessionID}
}

// Hydrate loads the stored document. A missing key or an unreadable payload
// resets to an empty cart; neither is an error.
func (m *Manager) Hydrate(ctx context.Context) {
	st, err := m.store.Load(ctx, m.sessionID)
	if err != nil {
		if err != ErrNotFound {
			logrus.WithField("session", m.sessionID).WithError(err).Debug("cart load failed, starting empty")
		}
		st = State{}
		st.recompute()
	}
	m.state = st
	m.hydrated = true
}

func (m *Manager) Hydrated() bool { return m.hydrated }

func (m *Manager) AddProduct(ctx context.Context, p catalog.Product) {
	if !m.hydrated {
		return
	}
	m.state.AddLine(p)
	m.persist(ctx)
}

func (m *Manager) RemoveProduct(ctx context.Context, productID string) {
	if !m.hydrated {
		return
	}
	m.state.RemoveLine(productID)
	m.persist(ctx)
}

func (m *Manager) SetQuantity(ctx context.Context, productID string, qty int) {
	if !m.hydrated {
		return
	}
	m.state.SetQuantity(productID, qty)
	m.persist(ctx)
}

func (m *Manager) Clear(ctx context.Context) {
	if !m.hydrated {
		return
	}
	m.state.Clear()
	m.persist(ctx)
}

func (m *Manager) State() State {
	if !m.hydrated {
		return State{}
	}
	return m.state.Clone()
}

func (m *Manager) ItemCount() int {
	if !m.hydrated {
		return 0
	}
	return m.state.ItemCount()
}

func (m *Manager) persist(ctx context.Context) {
	if err := m.store.Save(ctx, m.sessionID, m.state); err != nil {
		logrus.WithField("session", m.sessionID).WithError(err).Debug("cart save failed")
	}
}
