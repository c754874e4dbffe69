package order

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cafefusion/backend/internal/domain/menu"
)

// --- Mock implementations ---

type mockCatalog struct {
	byID    map[int64]menu.Item
	err     error
	lookups []int64
}

func newCatalog(items ...menu.Item) *mockCatalog {
	byID := make(map[int64]menu.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	return &mockCatalog{byID: byID}
}

func (m *mockCatalog) Resolve(_ context.Context, id int64) (*menu.Item, error) {
	m.lookups = append(m.lookups, id)
	if m.err != nil {
		return nil, m.err
	}
	it, ok := m.byID[id]
	if !ok {
		return nil, menu.ErrNotFound
	}
	return &it, nil
}

// memStore is an in-memory Store with the same locking contract as the
// postgres implementation.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]Order
	saves  int
	err    error
}

func newMemStore() *memStore {
	return &memStore{orders: make(map[int64]Order)}
}

func (m *memStore) Save(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.err != nil {
		return m.err
	}
	m.nextID++
	o.ID = m.nextID
	m.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (m *memStore) FindByID(_ context.Context, id int64) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (m *memStore) sorted(asc bool, keep func(Order) bool) []Order {
	var out []Order
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	slices.SortFunc(out, func(a, b Order) int {
		c := a.CreatedAt.Compare(b.CreatedAt)
		if c == 0 {
			c = int(a.ID - b.ID)
		}
		if !asc {
			c = -c
		}
		return c
	})
	return out
}

func (m *memStore) page(all []Order, p PageRequest) *Page {
	res := &Page{Number: p.Number, Size: p.Size, Total: int64(len(all))}
	from := min(p.Offset(), len(all))
	to := min(from+p.Size, len(all))
	res.Orders = all[from:to]
	return res
}

func (m *memStore) FindByOwner(_ context.Context, userID int64) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(false, func(o Order) bool { return o.OwnerID == userID }), nil
}

func (m *memStore) FindAll(_ context.Context, p PageRequest) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.page(m.sorted(p.Ascending, func(Order) bool { return true }), p), nil
}

func (m *memStore) FindByStatusIn(_ context.Context, statuses []Status, p PageRequest) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.page(m.sorted(p.Ascending, func(o Order) bool {
		return slices.Contains(statuses, o.Status)
	}), p), nil
}

func (m *memStore) CountByStatus(_ context.Context, status Status) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, o := range m.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CountByStatusInRange(_ context.Context, status Status, start, end time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, o := range m.orders {
		if o.Status == status && !o.CreatedAt.Before(start) && o.CreatedAt.Before(end) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ExistsByID(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.orders[id]
	return ok, nil
}

func (m *memStore) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *memStore) UpdateStatus(_ context.Context, id int64, next func(Status) (Status, error)) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	st, err := next(o.Status)
	if err != nil {
		return nil, err
	}
	o.Status = st
	m.orders[id] = o
	o = cloneOrder(o)
	return &o, nil
}

func (m *memStore) put(o Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID == 0 {
		m.nextID++
		o.ID = m.nextID
	}
	m.orders[o.ID] = o
}

func cloneOrder(o Order) Order {
	o.Items = slices.Clone(o.Items)
	return o
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []StatusChange
	err     error
}

func (r *recordingNotifier) OrderStatusChanged(_ context.Context, c StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
	return r.err
}

// --- Helpers ---

var (
	latte     = menu.Item{ID: 1, Name: "Latte", Price: decimal.RequireFromString("3.50")}
	croissant = menu.Item{ID: 2, Name: "Croissant", Price: decimal.RequireFromString("2.25")}
	espresso  = menu.Item{ID: 3, Name: "Espresso", Price: decimal.RequireFromString("2.00")}
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
