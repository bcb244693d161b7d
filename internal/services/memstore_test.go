package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memLine struct {
	id       int64
	orderID  int64
	userID   string
	bookID   int64
	quantity int
	ordered  bool
}

type memState struct {
	books      map[int64]models.Book
	categories []models.Category
	bookCats   map[int64][]string
	orders     map[int64]models.Order
	lines      []memLine
	addresses  []models.Address
	payments   []models.Payment
	images     []models.ExtraImage
	users      map[string]models.User
	seq        int64
	clock      time.Time
}

func (s memState) clone() memState {
	c := s
	c.books = make(map[int64]models.Book, len(s.books))
	for k, v := range s.books {
		c.books[k] = v
	}
	c.orders = make(map[int64]models.Order, len(s.orders))
	for k, v := range s.orders {
		c.orders[k] = v
	}
	c.users = make(map[string]models.User, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	c.lines = append([]memLine(nil), s.lines...)
	c.addresses = append([]models.Address(nil), s.addresses...)
	c.payments = append([]models.Payment(nil), s.payments...)
	c.images = append([]models.ExtraImage(nil), s.images...)
	return c
}

// memStore is an in-memory stand-in for repository.Store. InTx serializes
// transactions and rolls the whole state back when fn fails.
type memStore struct {
	mu sync.Mutex
	memState
}

func newMemStore() *memStore {
	return &memStore{memState: memState{
		books:    map[int64]models.Book{},
		bookCats: map[int64][]string{},
		orders:   map[int64]models.Order{},
		users:    map[string]models.User{},
		clock:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}}
}

func (s *memState) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *memState) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) addBook(title string, price string, stock int, categories ...string) models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := models.Book{ID: s.nextID(), Title: title, Author: "Autor", Price: decimal.RequireFromString(price), Stock: stock}
	b.RefreshSlug()
	s.books[b.ID] = b
	s.bookCats[b.ID] = categories
	return b
}

func (s *memStore) addCategory(name string) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.Category{ID: s.nextID(), Name: name}
	c.RefreshSlug()
	s.categories = append(s.categories, c)
	return c
}

func (s *memStore) addUser(email string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := models.User{ID: uuid.NewString(), Username: strings.Split(email, "@")[0], Email: email, Role: models.UserRoleCustomer}
	s.users[u.ID] = u
	return u
}

func (s *memStore) InTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.memState.clone()
	if err := fn(memTx{&s.memState}); err != nil {
		s.memState = snapshot
		return err
	}
	return nil
}

func (s *memState) materialize(o models.Order) models.Order {
	o.Items = []models.OrderBook{}
	for _, l := range s.lines {
		if l.orderID == o.ID {
			o.Items = append(o.Items, models.OrderBook{
				ID: l.id, OrderID: l.orderID, UserID: l.userID, Book: s.books[l.bookID],
				Quantity: l.quantity, Ordered: l.ordered,
			})
		}
	}
	return o
}

func (s *memState) openOrder(userID string) (models.Order, error) {
	for _, o := range s.orders {
		if o.UserID == userID && o.State.Open() {
			return s.materialize(o), nil
		}
	}
	return models.Order{}, models.ErrNoActiveOrder
}

func (s *memState) bookBySlug(slug string) (models.Book, error) {
	for _, b := range s.books {
		if b.Slug == slug {
			return b, nil
		}
	}
	return models.Book{}, models.ErrNotFound
}

// readers

func (s *memStore) BookBySlug(ctx context.Context, slug string) (models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookBySlug(slug)
}

func (s *memStore) ImagesForBook(ctx context.Context, bookID int64) ([]models.ExtraImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	images := []models.ExtraImage{}
	for _, img := range s.images {
		if img.BookID == bookID {
			images = append(images, img)
		}
	}
	return images, nil
}

func (s *memStore) BooksByIDs(ctx context.Context, ids []int64) ([]models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	books := []models.Book{}
	for _, id := range ids {
		if b, ok := s.books[id]; ok {
			books = append(books, b)
		}
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	return books, nil
}

func (s *memStore) sortedBooks() []models.Book {
	books := make([]models.Book, 0, len(s.books))
	for _, b := range s.books {
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID > books[j].ID })
	return books
}

func (s *memStore) LatestBooks(ctx context.Context, limit int) ([]models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	books := s.sortedBooks()
	if len(books) > limit {
		books = books[:limit]
	}
	return books, nil
}

func (s *memStore) SearchBooks(ctx context.Context, term string, limit int) ([]models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	term = strings.ToLower(term)
	found := []models.Book{}
	for _, b := range s.sortedBooks() {
		if strings.Contains(strings.ToLower(b.Title), term) || strings.Contains(strings.ToLower(b.Author), term) {
			found = append(found, b)
		}
	}
	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

func (s *memStore) BooksByCategory(ctx context.Context, categorySlug string, limit, offset int) ([]models.Book, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := []models.Book{}
	for _, b := range s.sortedBooks() {
		for _, c := range s.bookCats[b.ID] {
			if c == categorySlug {
				all = append(all, b)
			}
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if offset >= total {
		return []models.Book{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *memStore) Categories(ctx context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Category{}, s.categories...), nil
}

func (s *memStore) CategoryBySlug(ctx context.Context, slug string) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return models.Category{}, models.ErrNotFound
}

func (s *memStore) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := []models.CategoryCount{}
	for _, c := range s.categories {
		n := 0
		for _, cats := range s.bookCats {
			for _, slug := range cats {
				if slug == c.Slug {
					n++
				}
			}
		}
		counts = append(counts, models.CategoryCount{Category: c, Count: n})
	}
	return counts, nil
}

func (s *memStore) OpenOrder(ctx context.Context, userID string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openOrder(userID)
}

func (s *memStore) OrderByRef(ctx context.Context, refCode string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.RefCode == refCode {
			return s.materialize(o), nil
		}
	}
	return models.Order{}, models.ErrNotFound
}

func (s *memStore) ClosedOrders(ctx context.Context, userID string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := []models.Order{}
	for _, o := range s.orders {
		if o.UserID == userID && !o.State.Open() {
			orders = append(orders, s.materialize(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderedDate.After(orders[j].OrderedDate) })
	return orders, nil
}

func (s *memStore) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []models.Address{}
	for i := len(s.addresses) - 1; i >= 0; i-- {
		if s.addresses[i].UserID == userID {
			list = append(list, s.addresses[i])
		}
	}
	return list, nil
}

func (s *memStore) DefaultAddress(ctx context.Context, userID string, typ models.AddressType) (models.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.addresses) - 1; i >= 0; i-- {
		a := s.addresses[i]
		if a.UserID == userID && a.Type == typ && a.Default {
			return a, nil
		}
	}
	return models.Address{}, models.ErrNotFound
}

func (s *memStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return models.User{}, fmt.Errorf("%w: users_email_key", repository.ErrConflict)
		}
		if existing.Username == u.Username {
			return models.User{}, fmt.Errorf("%w: users_username_key", repository.ErrConflict)
		}
	}
	u.ID = uuid.NewString()
	if u.Role == "" {
		u.Role = models.UserRoleCustomer
	}
	u.CreatedAt = s.tick()
	s.users[u.ID] = u
	return u, nil
}

func (s *memStore) UserByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

func (s *memStore) UserByID(ctx context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return models.User{}, models.ErrNotFound
}

// memTx runs with the store mutex already held.
type memTx struct {
	s *memState
}

var _ repository.Tx = memTx{}

func (t memTx) LockOpenOrder(ctx context.Context, userID string) (models.Order, error) {
	return t.s.openOrder(userID)
}

func (t memTx) CreateOpenOrder(ctx context.Context, userID, refCode string, now time.Time) (models.Order, error) {
	if _, err := t.s.openOrder(userID); err != nil {
		id := t.s.nextID()
		t.s.orders[id] = models.Order{
			ID: id, UserID: userID, RefCode: refCode, State: models.StateCart,
			StartDate: now, OrderedDate: now,
		}
	}
	return t.s.openOrder(userID)
}

func (t memTx) LockOrderByRef(ctx context.Context, refCode string) (models.Order, error) {
	for _, o := range t.s.orders {
		if o.RefCode == refCode {
			return t.s.materialize(o), nil
		}
	}
	return models.Order{}, models.ErrNotFound
}

func (t memTx) InsertLine(ctx context.Context, orderID int64, userID string, bookID int64, quantity int) error {
	for _, l := range t.s.lines {
		if l.orderID == orderID && l.bookID == bookID {
			return fmt.Errorf("%w: order_books_order_id_book_id_key", repository.ErrConflict)
		}
	}
	t.s.lines = append(t.s.lines, memLine{
		id: t.s.nextID(), orderID: orderID, userID: userID, bookID: bookID, quantity: quantity,
	})
	return nil
}

func (t memTx) UpdateLineQuantity(ctx context.Context, lineID int64, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity %d violates check constraint", quantity)
	}
	for i := range t.s.lines {
		if t.s.lines[i].id == lineID {
			t.s.lines[i].quantity = quantity
			return nil
		}
	}
	return models.ErrNotInCart
}

func (t memTx) DeleteLine(ctx context.Context, lineID int64) error {
	for i, l := range t.s.lines {
		if l.id == lineID {
			t.s.lines = append(t.s.lines[:i], t.s.lines[i+1:]...)
			return nil
		}
	}
	return models.ErrNotInCart
}

func (t memTx) MarkLinesOrdered(ctx context.Context, orderID int64) error {
	for i := range t.s.lines {
		if t.s.lines[i].orderID == orderID {
			t.s.lines[i].ordered = true
		}
	}
	return nil
}

func (t memTx) UpdateOrder(ctx context.Context, o models.Order) error {
	if _, ok := t.s.orders[o.ID]; !ok {
		return models.ErrNotFound
	}
	o.Items = nil
	t.s.orders[o.ID] = o
	return nil
}

func (t memTx) CreateAddress(ctx context.Context, a models.Address) (models.Address, error) {
	a.ID = t.s.nextID()
	a.CreatedAt = t.s.tick()
	t.s.addresses = append(t.s.addresses, a)
	return a, nil
}

func (t memTx) SetDefaultAddress(ctx context.Context, userID string, addressID int64) (models.Address, error) {
	idx := -1
	for i, a := range t.s.addresses {
		if a.ID == addressID && a.UserID == userID {
			idx = i
		}
	}
	if idx < 0 {
		return models.Address{}, models.ErrNotFound
	}
	typ := t.s.addresses[idx].Type
	for i := range t.s.addresses {
		if t.s.addresses[i].UserID == userID && t.s.addresses[i].Type == typ {
			t.s.addresses[i].Default = i == idx
		}
	}
	return t.s.addresses[idx], nil
}

func (t memTx) CreatePayment(ctx context.Context, p models.Payment) (models.Payment, error) {
	for _, existing := range t.s.payments {
		if existing.ChargeID == p.ChargeID {
			return models.Payment{}, fmt.Errorf("%w: payments_charge_id_key", repository.ErrConflict)
		}
	}
	p.ID = t.s.nextID()
	t.s.payments = append(t.s.payments, p)
	return p, nil
}

func (t memTx) DecrementStock(ctx context.Context, bookID int64, quantity int) error {
	b := t.s.books[bookID]
	b.Stock -= quantity
	if b.Stock < 0 {
		b.Stock = 0
	}
	t.s.books[bookID] = b
	return nil
}

func (t memTx) SaveBook(ctx context.Context, b models.Book) (models.Book, error) {
	b.RefreshSlug()
	if b.ID == 0 {
		b.ID = t.s.nextID()
		b.CreatedAt = t.s.tick()
	} else if _, ok := t.s.books[b.ID]; !ok {
		return models.Book{}, models.ErrNotFound
	}
	t.s.books[b.ID] = b
	return b, nil
}

func (t memTx) CreateImage(ctx context.Context, img models.ExtraImage) (models.ExtraImage, error) {
	img.ID = t.s.nextID()
	img.CreatedAt = t.s.tick()
	t.s.images = append(t.s.images, img)
	return img, nil
}

var (
	_ CartStore     = (*memStore)(nil)
	_ CheckoutStore = (*memStore)(nil)
	_ PaymentStore  = (*memStore)(nil)
	_ CatalogStore  = (*memStore)(nil)
	_ ImageStore    = (*memStore)(nil)
	_ AddressStore  = (*memStore)(nil)
	_ UserStore     = (*memStore)(nil)
)
