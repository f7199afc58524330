package api

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"eshopperz/ent"
	"eshopperz/store"
)

// memStore is an in-memory Store and identity.Users with the same sentinel
// errors and reference checks as the PostgreSQL store.
type memStore struct {
	mu    sync.Mutex
	seq   int64
	calls int
	fail  error

	products   map[int64]ent.Product
	categories map[int64]ent.Category
	customers  map[int64]ent.Customer
	carts      map[int64]ent.Cart
	orders     map[int64]ent.Order
	items      map[ent.OrderItemKey]ent.OrderItem
	contacts   []ent.ContactMessage

	users     map[int64]ent.User
	roles     map[int64]ent.Role
	userRoles map[int64]map[int64]bool
}

func newMemStore() *memStore {
	return &memStore{
		products:   map[int64]ent.Product{},
		categories: map[int64]ent.Category{},
		customers:  map[int64]ent.Customer{},
		carts:      map[int64]ent.Cart{},
		orders:     map[int64]ent.Order{},
		items:      map[ent.OrderItemKey]ent.OrderItem{},
		users:      map[int64]ent.User{},
		roles:      map[int64]ent.Role{},
		userRoles:  map[int64]map[int64]bool{},
	}
}

// enter locks the store and counts the call. It returns the injected
// failure, if any.
func (m *memStore) enter() error {
	m.mu.Lock()
	m.calls++
	return m.fail
}

func (m *memStore) next() int64 {
	m.seq++
	return m.seq
}

func (m *memStore) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func sortedKeys[V any](rows map[int64]V) []int64 {
	ids := make([]int64, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *memStore) ListProducts(_ context.Context, f store.ProductFilter) ([]ent.Product, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	ps := []ent.Product{}
	for _, id := range sortedKeys(m.products) {
		p := m.products[id]
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
			continue
		}
		ps = append(ps, m.withCategory(p))
	}
	return ps, nil
}

func (m *memStore) GetProduct(_ context.Context, id int64) (ent.Product, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return ent.Product{}, err
	}
	p, ok := m.products[id]
	if !ok {
		return p, store.ErrNotFound
	}
	return m.withCategory(p), nil
}

func (m *memStore) withCategory(p ent.Product) ent.Product {
	if c, ok := m.categories[p.CategoryID]; ok {
		name := c.Name
		p.CategoryName = &name
	}
	return p
}

func (m *memStore) FindProductByName(_ context.Context, name string) (ent.Product, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return ent.Product{}, err
	}
	for _, p := range m.products {
		if p.Name == name {
			return p, nil
		}
	}
	return ent.Product{}, store.ErrNotFound
}

func (m *memStore) CreateProduct(_ context.Context, p *ent.Product) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	p.ID = m.next()
	stored := *p
	stored.CategoryName = nil
	m.products[p.ID] = stored
	return nil
}

func (m *memStore) UpdateProduct(_ context.Context, p ent.Product) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.products[p.ID]; !ok {
		return store.ErrNotFound
	}
	p.CategoryName = nil
	m.products[p.ID] = p
	return nil
}

func (m *memStore) DeleteProduct(_ context.Context, id int64) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memStore) ProductInUse(_ context.Context, id int64) (bool, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return false, err
	}
	for k := range m.items {
		if k.ProductID == id {
			return true, nil
		}
	}
	for _, o := range m.orders {
		for _, pid := range o.ProductIDs {
			if pid == id {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *memStore) ListCategories(context.Context) ([]ent.Category, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	cs := []ent.Category{}
	for _, id := range sortedKeys(m.categories) {
		cs = append(cs, m.categories[id])
	}
	return cs, nil
}

func (m *memStore) GetCategory(_ context.Context, id int64) (ent.Category, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return ent.Category{}, err
	}
	c, ok := m.categories[id]
	if !ok {
		return c, store.ErrNotFound
	}
	return c, nil
}

func (m *memStore) FindCategoryByName(_ context.Context, name string) (ent.Category, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return ent.Category{}, err
	}
	for _, c := range m.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return ent.Category{}, store.ErrNotFound
}

func (m *memStore) CreateCategory(_ context.Context, c *ent.Category) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	c.ID = m.next()
	m.categories[c.ID] = *c
	return nil
}

func (m *memStore) UpdateCategory(_ context.Context, c ent.Category) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.categories[c.ID]; !ok {
		return store.ErrNotFound
	}
	m.categories[c.ID] = c
	return nil
}

func (m *memStore) DeleteCategory(_ context.Context, id int64) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.categories[id]; !ok {
		return store.ErrNotFound
	}
	for _, p := range m.products {
		if p.CategoryID == id {
			return store.ErrConflict
		}
	}
	delete(m.categories, id)
	return nil
}

func (m *memStore) CategoryInUse(_ context.Context, id int64) (bool, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return false, err
	}
	for _, p := range m.products {
		if p.CategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListCustomers(context.Context) ([]ent.Customer, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	cs := []ent.Customer{}
	for _, id := range sortedKeys(m.customers) {
		cs = append(cs, m.customers[id])
	}
	return cs, nil
}

func (m *memStore) GetCustomer(_ context.Context, id int64) (ent.Customer, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return ent.Customer{}, err
	}
	c, ok := m.customers[id]
	if !ok {
		return c, store.ErrNotFound
	}
	return c, nil
}

func (m *memStore) CreateCustomer(_ context.Context, c *ent.Customer) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	c.ID = m.next()
	m.customers[c.ID] = *c
	return nil
}

func (m *memStore) UpdateCustomer(_ context.Context, c ent.Customer) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.customers[c.ID]; !ok {
		return store.ErrNotFound
	}
	m.customers[c.ID] = c
	return nil
}

func (m *memStore) DeleteCustomer(_ context.Context, id int64) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.customers[id]; !ok {
		return store.ErrNotFound
	}
	for _, c := range m.carts {
		if c.CustomerID == id {
			return store.ErrConflict
		}
	}
	for _, o := range m.orders {
		if o.CustomerID == id {
			return store.ErrConflict
		}
	}
	delete(m.customers, id)
	return nil
}

func (m *memStore) ListCarts(context.Context) ([]ent.Cart, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	cs := []ent.Cart{}
	for _, id := range sortedKeys(m.carts) {
		cs = append(cs, m.carts[id])
	}
	return cs, nil
}

func (m *memStore) GetCart(_ context.Context, id int64) (ent.Cart, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return ent.Cart{}, err
	}
	c, ok := m.carts[id]
	if !ok {
		return c, store.ErrNotFound
	}
	return c, nil
}

func (m *memStore) CreateCart(_ context.Context, c *ent.Cart) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	c.ID = m.next()
	m.carts[c.ID] = *c
	return nil
}

func (m *memStore) UpdateCart(_ context.Context, c ent.Cart) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.carts[c.ID]; !ok {
		return store.ErrNotFound
	}
	m.carts[c.ID] = c
	return nil
}

func (m *memStore) DeleteCart(_ context.Context, id int64) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.carts[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.carts, id)
	return nil
}

func (m *memStore) ListOrders(context.Context) ([]ent.Order, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	orders := []ent.Order{}
	for _, id := range sortedKeys(m.orders) {
		orders = append(orders, m.orders[id])
	}
	return orders, nil
}

func (m *memStore) GetOrder(_ context.Context, id int64) (ent.Order, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return ent.Order{}, err
	}
	o, ok := m.orders[id]
	if !ok {
		return o, store.ErrNotFound
	}
	o.Products = []ent.Product{}
	for _, pid := range o.ProductIDs {
		o.Products = append(o.Products, m.products[pid])
	}
	return o, nil
}

func (m *memStore) CreateOrder(_ context.Context, o *ent.Order) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	o.ID = m.next()
	stored := *o
	stored.ProductIDs = append([]int64{}, o.ProductIDs...)
	m.orders[o.ID] = stored
	return nil
}

func (m *memStore) UpdateOrder(_ context.Context, o ent.Order) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.orders[o.ID]; !ok {
		return store.ErrNotFound
	}
	o.ProductIDs = append([]int64{}, o.ProductIDs...)
	m.orders[o.ID] = o
	return nil
}

func (m *memStore) DeleteOrder(_ context.Context, id int64) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.orders[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *memStore) ListOrderItems(context.Context) ([]ent.OrderItem, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	items := []ent.OrderItem{}
	for _, item := range m.items {
		items = append(items, item)
	}
	return items, nil
}

// memItemKey normalises the date so map lookups ignore the location.
func memItemKey(k ent.OrderItemKey) ent.OrderItemKey {
	y, mo, d := k.DateOfOrder.Date()
	k.DateOfOrder = ent.NewDate(y, mo, d)
	return k
}

func (m *memStore) GetOrderItem(_ context.Context, k ent.OrderItemKey) (ent.OrderItem, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return ent.OrderItem{}, err
	}
	item, ok := m.items[memItemKey(k)]
	if !ok {
		return item, store.ErrNotFound
	}
	return item, nil
}

func (m *memStore) CreateOrderItem(_ context.Context, item ent.OrderItem) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	k := memItemKey(item.Key())
	if _, ok := m.items[k]; ok {
		return store.ErrConflict
	}
	m.items[k] = item
	return nil
}

func (m *memStore) UpdateOrderItem(_ context.Context, item ent.OrderItem) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	k := memItemKey(item.Key())
	if _, ok := m.items[k]; !ok {
		return store.ErrNotFound
	}
	m.items[k] = item
	return nil
}

func (m *memStore) DeleteOrderItem(_ context.Context, k ent.OrderItemKey) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	k = memItemKey(k)
	if _, ok := m.items[k]; !ok {
		return store.ErrNotFound
	}
	delete(m.items, k)
	return nil
}

func (m *memStore) CreateContactMessage(_ context.Context, msg *ent.ContactMessage) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	msg.ID = m.next()
	msg.CreatedAt = time.Now()
	m.contacts = append(m.contacts, *msg)
	return nil
}

func (m *memStore) ListContactMessages(context.Context) ([]ent.ContactMessage, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	return append([]ent.ContactMessage{}, m.contacts...), nil
}

func (m *memStore) CountUsers(context.Context) (int, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return 0, err
	}
	return len(m.users), nil
}

func (m *memStore) createUser(u *ent.User) error {
	for _, x := range m.users {
		if strings.EqualFold(x.Email, u.Email) || x.Username == u.Username {
			return store.ErrConflict
		}
	}
	u.ID = m.next()
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) CreateUser(_ context.Context, u *ent.User) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	return m.createUser(u)
}

func (m *memStore) CreateUserWithRoles(_ context.Context, u *ent.User, roles []string) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if err := m.createUser(u); err != nil {
		return err
	}
	for _, name := range roles {
		r, ok := m.roleByName(name)
		if !ok {
			r = ent.Role{ID: m.next(), Name: name}
			m.roles[r.ID] = r
		}
		m.addUserRole(u.ID, r.ID)
	}
	u.Roles = m.rolesOf(u.ID)
	return nil
}

func (m *memStore) rolesOf(userID int64) []string {
	names := []string{}
	for rid := range m.userRoles[userID] {
		names = append(names, m.roles[rid].Name)
	}
	sort.Strings(names)
	return names
}

func (m *memStore) roleByName(name string) (ent.Role, bool) {
	for _, r := range m.roles {
		if r.Name == name {
			return r, true
		}
	}
	return ent.Role{}, false
}

func (m *memStore) addUserRole(userID, roleID int64) {
	if m.userRoles[userID] == nil {
		m.userRoles[userID] = map[int64]bool{}
	}
	m.userRoles[userID][roleID] = true
}

func (m *memStore) GetUser(_ context.Context, id int64) (ent.User, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return ent.User{}, err
	}
	u, ok := m.users[id]
	if !ok {
		return u, store.ErrNotFound
	}
	u.Roles = m.rolesOf(id)
	return u, nil
}

func (m *memStore) FindUserByEmail(_ context.Context, email string) (ent.User, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return ent.User{}, err
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			u.Roles = m.rolesOf(u.ID)
			return u, nil
		}
	}
	return ent.User{}, store.ErrNotFound
}

func (m *memStore) MarkEmailVerified(_ context.Context, id int64) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	u, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.EmailVerified = true
	m.users[id] = u
	return nil
}

func (m *memStore) DeleteUser(_ context.Context, id int64) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, id)
	delete(m.userRoles, id)
	return nil
}

func (m *memStore) AddUserRole(_ context.Context, userID, roleID int64) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	m.addUserRole(userID, roleID)
	return nil
}

func (m *memStore) ListRoles(context.Context) ([]ent.Role, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	rs := []ent.Role{}
	for _, id := range sortedKeys(m.roles) {
		rs = append(rs, m.roles[id])
	}
	return rs, nil
}

func (m *memStore) GetRole(_ context.Context, id int64) (ent.Role, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return ent.Role{}, err
	}
	r, ok := m.roles[id]
	if !ok {
		return r, store.ErrNotFound
	}
	return r, nil
}

func (m *memStore) FindRoleByName(_ context.Context, name string) (ent.Role, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return ent.Role{}, err
	}
	r, ok := m.roleByName(name)
	if !ok {
		return r, store.ErrNotFound
	}
	return r, nil
}

func (m *memStore) CreateRole(_ context.Context, r *ent.Role) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.roleByName(r.Name); ok {
		return store.ErrConflict
	}
	r.ID = m.next()
	m.roles[r.ID] = *r
	return nil
}

func (m *memStore) UpdateRole(_ context.Context, r ent.Role) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.roles[r.ID]; !ok {
		return store.ErrNotFound
	}
	if other, ok := m.roleByName(r.Name); ok && other.ID != r.ID {
		return store.ErrConflict
	}
	m.roles[r.ID] = r
	return nil
}

func (m *memStore) DeleteRole(_ context.Context, id int64) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.roles[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.roles, id)
	for _, rs := range m.userRoles {
		delete(rs, id)
	}
	return nil
}
