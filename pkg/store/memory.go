package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/outfitly/storefront-api/pkg/models"
)

// Memory implements every store contract in process memory. Cart writes
// take a per-user mutex, the same serialization point the Mongo store gets
// from its version-token CAS, so both implementations honor the same
// concurrency contract.
type Memory struct {
	mu       sync.RWMutex
	products map[bson.ObjectID]*models.Product
	users    map[bson.ObjectID]*models.User
	emails   map[string]bson.ObjectID
	carts    map[bson.ObjectID]*models.Cart
	orders   map[bson.ObjectID]*models.Order

	userLocks sync.Map // user ID hex -> *sync.Mutex
}

func NewMemory() *Memory {
	return &Memory{
		products: make(map[bson.ObjectID]*models.Product),
		users:    make(map[bson.ObjectID]*models.User),
		emails:   make(map[string]bson.ObjectID),
		carts:    make(map[bson.ObjectID]*models.Cart),
		orders:   make(map[bson.ObjectID]*models.Order),
	}
}

// All returns the four contracts backed by this instance.
func (m *Memory) All() Stores {
	return Stores{Catalog: m, Carts: m, Orders: m, Users: m}
}

func (m *Memory) lockUser(userID bson.ObjectID) func() {
	v, _ := m.userLocks.LoadOrStore(userID.Hex(), &sync.Mutex{})
	mtx := v.(*sync.Mutex)
	mtx.Lock()
	return mtx.Unlock
}

// Catalog

func (m *Memory) CreateProducts(_ context.Context, products []*models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range products {
		if p.ID.IsZero() {
			p.ID = bson.NewObjectID()
		}
		p.SetTimestamps()
		cp := *p
		m.products[p.ID] = &cp
	}
	return nil
}

func (m *Memory) ListProducts(_ context.Context, filter models.ProductFilter, page, pageSize int) ([]models.Product, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := time.Now().Add(-models.NewArrivalWindow)
	matched := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		if filter.Category != "" && !p.HasCategory(filter.Category) {
			continue
		}
		if filter.NewArrivals && p.CreatedAt.Before(cutoff) {
			continue
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID.Hex() < matched[j].ID.Hex()
	})

	total := int64(len(matched))
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return []models.Product{}, total, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *Memory) GetProduct(_ context.Context, id bson.ObjectID) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) ListCategories(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, p := range m.products {
		for _, c := range p.Categories {
			seen[c] = struct{}{}
		}
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}

// Users

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, ok := m.emails[email]; ok {
		return models.ErrDuplicateEmail
	}
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	user.SetTimestamps()
	cp := *user
	m.users[user.ID] = &cp
	m.emails[email] = user.ID
	return nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emails[strings.ToLower(email)]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *m.users[id]
	return &cp, nil
}

func (m *Memory) GetUserByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// Carts

func (m *Memory) CreateCart(ctx context.Context, userID bson.ObjectID, items []models.CartItem) (*models.Cart, error) {
	normalized, err := models.NormalizeItems(items)
	if err != nil {
		return nil, err
	}
	defer m.lockUser(userID)()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.carts[userID]; ok {
		return nil, models.ErrDuplicateCart
	}
	cart := &models.Cart{
		ID:     bson.NewObjectID(),
		UserID: userID,
		Items:  normalized,
	}
	cart.SetTimestamps()
	m.carts[userID] = cart
	return copyCart(cart), nil
}

func (m *Memory) GetCart(_ context.Context, userID bson.ObjectID) (*models.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cart, ok := m.carts[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyCart(cart), nil
}

func (m *Memory) ReplaceItems(_ context.Context, userID bson.ObjectID, items []models.CartItem) (*models.Cart, error) {
	normalized, err := models.NormalizeItems(items)
	if err != nil {
		return nil, err
	}
	defer m.lockUser(userID)()
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cart.Items = normalized
	cart.Version++
	cart.UpdatedAt = time.Now()
	return copyCart(cart), nil
}

func (m *Memory) PatchItem(_ context.Context, userID bson.ObjectID, productID bson.ObjectID, quantity int) (*models.Cart, error) {
	defer m.lockUser(userID)()
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	patched, err := models.PatchItems(cart.Items, productID, quantity)
	if err != nil {
		return nil, err
	}
	cart.Items = patched
	cart.Version++
	cart.UpdatedAt = time.Now()
	return copyCart(cart), nil
}

func (m *Memory) ClearCart(_ context.Context, userID bson.ObjectID) (*models.Cart, error) {
	defer m.lockUser(userID)()
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cart.Items = []models.CartItem{}
	cart.Version++
	cart.UpdatedAt = time.Now()
	return copyCart(cart), nil
}

// Orders

func (m *Memory) CreateFromCart(_ context.Context, userID bson.ObjectID, amount float64, address string) (*models.Order, error) {
	defer m.lockUser(userID)()
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, ok := m.carts[userID]
	if !ok || cart.IsEmpty() {
		return nil, models.ErrEmptyCart
	}

	products := make(map[bson.ObjectID]*models.Product, len(cart.Items))
	for _, item := range cart.Items {
		if p, ok := m.products[item.ProductID]; ok {
			products[item.ProductID] = p
		}
	}
	snapshot, err := models.SnapshotItems(cart.Items, products)
	if err != nil {
		return nil, err
	}
	total := models.OrderTotal(snapshot)
	if !models.AmountMatches(total, amount) {
		return nil, models.ErrAmountMismatch
	}

	order := &models.Order{
		ID:        bson.NewObjectID(),
		Number:    models.GenerateOrderNumber(),
		UserID:    userID,
		Items:     snapshot,
		Amount:    total.InexactFloat64(),
		Address:   address,
		Status:    models.OrderStatusCreated,
		CreatedAt: time.Now(),
	}

	// Both writes happen under the same lock: callers never observe the
	// order without the cleared cart or vice versa.
	m.orders[order.ID] = order
	cart.Items = []models.CartItem{}
	cart.Version++
	cart.UpdatedAt = order.CreatedAt

	cp := *order
	return &cp, nil
}

func (m *Memory) GetOrder(_ context.Context, orderID, requestingUserID bson.ObjectID) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if order.UserID != requestingUserID {
		return nil, models.ErrForbidden
	}
	cp := *order
	return &cp, nil
}

func (m *Memory) ListOrders(_ context.Context, userID bson.ObjectID) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	orders := make([]models.Order, 0)
	for _, o := range m.orders {
		if o.UserID == userID {
			orders = append(orders, *o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID.Hex() > orders[j].ID.Hex()
	})
	return orders, nil
}

func copyCart(cart *models.Cart) *models.Cart {
	cp := *cart
	cp.Items = make([]models.CartItem, len(cart.Items))
	copy(cp.Items, cart.Items)
	return &cp
}
