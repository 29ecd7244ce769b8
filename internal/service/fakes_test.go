package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"retail-service/internal/models"
	"retail-service/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory stand-in for the PostgreSQL repositories.
// WithTx serializes transactions and restores a snapshot on error.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users    map[uuid.UUID]models.User
	products map[uuid.UUID]models.Product
	statuses map[uuid.UUID]models.OrderStatus
	orders   map[uuid.UUID]models.Order
	lines    map[uuid.UUID][]models.OrderLine

	// failOrderCreates makes the next n order inserts fail as if another
	// writer committed the same number first.
	failOrderCreates int
	orderCreates     int
	statusInserts    int
	updateCalls      int

	lastProductFilter repository.ProductListFilter
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[uuid.UUID]models.User{},
		products: map[uuid.UUID]models.Product{},
		statuses: map[uuid.UUID]models.OrderStatus{},
		orders:   map[uuid.UUID]models.Order{},
		lines:    map[uuid.UUID][]models.OrderLine{},
	}
}

func (m *memStore) repo() *repository.Repository {
	return &repository.Repository{
		Users:      memUsers{m},
		Products:   memProducts{m},
		References: memRefs{},
		Statuses:   memStatuses{m},
		Orders:     memOrders{m},
		OrderLines: memLines{m},
	}
}

type memSnapshot struct {
	products map[uuid.UUID]models.Product
	orders   map[uuid.UUID]models.Order
	lines    map[uuid.UUID][]models.OrderLine
}

func (m *memStore) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := memSnapshot{
		products: make(map[uuid.UUID]models.Product, len(m.products)),
		orders:   make(map[uuid.UUID]models.Order, len(m.orders)),
		lines:    make(map[uuid.UUID][]models.OrderLine, len(m.lines)),
	}
	for k, v := range m.products {
		if v.StockQuantity != nil {
			q := *v.StockQuantity
			v.StockQuantity = &q
		}
		s.products[k] = v
	}
	for k, v := range m.orders {
		s.orders[k] = v
	}
	for k, v := range m.lines {
		s.lines[k] = append([]models.OrderLine(nil), v...)
	}
	return s
}

func (m *memStore) restore(s memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = s.products
	m.orders = s.orders
	m.lines = s.lines
}

func (m *memStore) WithTx(_ context.Context, fn func(tx *repository.Repository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	snap := m.snapshot()
	if err := fn(m.repo()); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *memStore) seedUser(login, fullName, role string) models.User {
	u := models.User{
		ID:       uuid.New(),
		Login:    login,
		FullName: fullName,
		Password: "secret",
		Role:     models.Role{ID: uuid.New(), Name: role},
	}
	u.RoleID = u.Role.ID
	m.mu.Lock()
	m.users[u.ID] = u
	m.mu.Unlock()
	return u
}

func (m *memStore) seedProduct(article, price string, discount int, stock *int) models.Product {
	p := models.Product{
		ID:            uuid.New(),
		Article:       article,
		Name:          "Product " + article,
		Unit:          "шт.",
		Price:         decimal.RequireFromString(price),
		Discount:      discount,
		StockQuantity: stock,
	}
	m.mu.Lock()
	m.products[p.ID] = p
	m.mu.Unlock()
	return p
}

func (m *memStore) seedStatus(name string) models.OrderStatus {
	st := models.OrderStatus{ID: uuid.New(), Name: name}
	m.mu.Lock()
	m.statuses[st.ID] = st
	m.mu.Unlock()
	return st
}

func (m *memStore) seedOrder(number string, user models.User, at time.Time) models.Order {
	o := models.Order{ID: uuid.New(), OrderNumber: number, OrderDate: at, UserID: user.ID}
	m.mu.Lock()
	m.orders[o.ID] = o
	m.mu.Unlock()
	return o
}

func (m *memStore) stockOf(id uuid.UUID) *int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].StockQuantity
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *memStore) lineCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ls := range m.lines {
		n += len(ls)
	}
	return n
}

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, other := range r.m.users {
		if other.Login == u.Login {
			return repository.ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.m.users[u.ID] = *u
	return nil
}

func (r memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUsers) GetByLogin(_ context.Context, login string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Login == login {
			return &u, nil
		}
	}
	return nil, nil
}

type memProducts struct{ m *memStore }

func (r memProducts) Create(_ context.Context, p *models.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, other := range r.m.products {
		if other.Article == p.Article {
			return repository.ErrDuplicate
		}
	}
	r.m.products[p.ID] = *p
	return nil
}

func (r memProducts) Update(_ context.Context, p *models.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.products[p.ID] = *p
	return nil
}

func (r memProducts) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.products[id]; !ok {
		return false, nil
	}
	for _, ls := range r.m.lines {
		for _, l := range ls {
			if l.ProductID == id {
				return false, repository.ErrForeignKey
			}
		}
	}
	delete(r.m.products, id)
	return true, nil
}

func (r memProducts) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memProducts) GetByArticle(_ context.Context, article string) (*models.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, p := range r.m.products {
		if p.Article == article {
			return &p, nil
		}
	}
	return nil, nil
}

func (r memProducts) GetByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.Product
	for _, id := range ids {
		if p, ok := r.m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProducts) List(_ context.Context, f repository.ProductListFilter) ([]models.Product, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.lastProductFilter = f
	out := make([]models.Product, 0, len(r.m.products))
	for _, p := range r.m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

// memRefs serves fixed lookup tables.
type memRefs struct{ err error }

var (
	refShoes = models.Category{ID: uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000001"), Name: "Shoes"}
	refKari  = models.Manufacturer{ID: uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000002"), Name: "Kari"}
	refObuv  = models.Supplier{ID: uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000003"), Name: "Obuv Ltd"}
)

func (r memRefs) Categories(context.Context) ([]models.Category, error) {
	return []models.Category{refShoes}, r.err
}

func (r memRefs) Manufacturers(context.Context) ([]models.Manufacturer, error) {
	return []models.Manufacturer{refKari}, r.err
}

func (r memRefs) Suppliers(context.Context) ([]models.Supplier, error) {
	return []models.Supplier{refObuv}, r.err
}

func (r memRefs) Units(context.Context) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	return nil, nil
}

func (r memProducts) DecrementStock(_ context.Context, id uuid.UUID, qty int) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok {
		return false, nil
	}
	if p.StockQuantity == nil {
		return true, nil
	}
	if *p.StockQuantity < qty {
		return false, nil
	}
	left := *p.StockQuantity - qty
	p.StockQuantity = &left
	r.m.products[id] = p
	return true, nil
}

type memStatuses struct{ m *memStore }

func (r memStatuses) GetByID(_ context.Context, id uuid.UUID) (*models.OrderStatus, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st, ok := r.m.statuses[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (r memStatuses) GetByName(_ context.Context, name string) (*models.OrderStatus, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, st := range r.m.statuses {
		if st.Name == name {
			return &st, nil
		}
	}
	return nil, nil
}

func (r memStatuses) EnsureByName(_ context.Context, name string) (*models.OrderStatus, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, st := range r.m.statuses {
		if st.Name == name {
			return &st, nil
		}
	}
	st := models.OrderStatus{ID: uuid.New(), Name: name}
	r.m.statuses[st.ID] = st
	r.m.statusInserts++
	return &st, nil
}

func (r memStatuses) List(_ context.Context) ([]models.OrderStatus, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]models.OrderStatus, 0, len(r.m.statuses))
	for _, st := range r.m.statuses {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memOrders struct{ m *memStore }

func (r memOrders) Create(_ context.Context, o *models.Order) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.orderCreates++
	if r.m.failOrderCreates > 0 {
		r.m.failOrderCreates--
		return repository.ErrDuplicate
	}
	for _, other := range r.m.orders {
		if other.OrderNumber == o.OrderNumber {
			return repository.ErrDuplicate
		}
	}
	stored := *o
	stored.Status, stored.User, stored.Lines = models.OrderStatus{}, models.User{}, nil
	r.m.orders[o.ID] = stored
	return nil
}

func (r memOrders) ExistsByNumber(_ context.Context, number string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, o := range r.m.orders {
		if o.OrderNumber == number {
			return true, nil
		}
	}
	return false, nil
}

// populate must be called with mu held.
func (r memOrders) populate(o models.Order) models.Order {
	o.Status = r.m.statuses[o.StatusID]
	o.User = r.m.users[o.UserID]
	o.Lines = nil
	for _, l := range r.m.lines[o.ID] {
		l.Product = r.m.products[l.ProductID]
		o.Lines = append(o.Lines, l)
	}
	return o
}

func (r memOrders) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.orders[id]
	if !ok {
		return nil, nil
	}
	o = r.populate(o)
	return &o, nil
}

func (r memOrders) GetByNumber(_ context.Context, number string) (*models.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, o := range r.m.orders {
		if o.OrderNumber == number {
			o = r.populate(o)
			return &o, nil
		}
	}
	return nil, nil
}

func (r memOrders) List(_ context.Context, f repository.OrderListFilter) ([]models.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.Order
	for _, o := range r.m.orders {
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		out = append(out, r.populate(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].OrderNumber > out[j].OrderNumber
	})
	return out, nil
}

func (r memOrders) UpdateStatusAndDelivery(_ context.Context, id, statusID uuid.UUID, delivery *time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.updateCalls++
	o := r.m.orders[id]
	o.StatusID = statusID
	if delivery != nil {
		d := *delivery
		o.DeliveryDate = &d
	}
	r.m.orders[id] = o
	return nil
}

type memLines struct{ m *memStore }

func (r memLines) BulkCreate(_ context.Context, lines []models.OrderLine) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, l := range lines {
		l.Product = models.Product{}
		r.m.lines[l.OrderID] = append(r.m.lines[l.OrderID], l)
	}
	return nil
}

func (r memLines) GetByOrderID(_ context.Context, orderID uuid.UUID) ([]models.OrderLine, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return append([]models.OrderLine(nil), r.m.lines[orderID]...), nil
}

// seqRand replays fixed draws, repeating the last one when exhausted.
type seqRand struct {
	mu    sync.Mutex
	draws []int
}

func (r *seqRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.draws[0]
	if len(r.draws) > 1 {
		r.draws = r.draws[1:]
	}
	return v % n
}

type recordingBus struct {
	mu      sync.Mutex
	created []OrderCreatedEvent
	changed []OrderStatusChangedEvent
	err     error
}

func (b *recordingBus) PublishOrderCreated(_ context.Context, e OrderCreatedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, e)
	return b.err
}

func (b *recordingBus) PublishOrderStatusChanged(_ context.Context, e OrderStatusChangedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changed = append(b.changed, e)
	return b.err
}
