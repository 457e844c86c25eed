package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
	"github.com/shopspring/decimal"
)

// fakeStore 以記憶體實作 repository 介面，語義比照 db 套件
// service 層測試不依賴外部 Postgres
type fakeStore struct {
	mu sync.Mutex

	products  map[uint]*model.Product
	cartItems map[uint]*model.CartItem
	users     map[int]*model.User
	guests    map[int]*model.GuestUser
	orders    map[string]*model.Order
	payments  map[uint]*model.Payment

	nextCartItemID uint
	nextGuestID    int
	nextPaymentID  uint
	nextCategoryID uint
	nextProductID  uint
	categories     map[string]*model.Category
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:   make(map[uint]*model.Product),
		cartItems:  make(map[uint]*model.CartItem),
		users:      make(map[int]*model.User),
		guests:     make(map[int]*model.GuestUser),
		orders:     make(map[string]*model.Order),
		payments:   make(map[uint]*model.Payment),
		categories: make(map[string]*model.Category),
	}
}

func (f *fakeStore) putProduct(id uint, price decimal.Decimal, stock uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[id] = &model.Product{ProductID: id, Name: "p", Price: price, Stock: stock, CategoryID: 1}
}

func (f *fakeStore) putUser(id int, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = &model.User{UserID: id, Email: email}
}

func (f *fakeStore) stockOf(id uint) uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].Stock
}

// 測試調整訂單時間，模擬逾期
func (f *fakeStore) ageOrder(orderID string, age time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order, ok := f.orders[orderID]; ok {
		order.CreatedAt = time.Now().UTC().Add(-age)
	}
}

// --- ICartRepository ---

func (f *fakeStore) AddItem(ctx context.Context, cartKey string, productID uint, quantity int) (*model.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	product, ok := f.products[productID]
	if !ok {
		return nil, db.ErrProductNotFound
	}
	if product.Stock < uint(quantity) {
		return nil, db.ErrProductStockNotEnough
	}

	var item *model.CartItem
	for _, existing := range f.cartItems {
		if existing.CartKey == cartKey && existing.ProductID == productID && existing.OrderID == nil {
			item = existing
			break
		}
	}
	if item != nil {
		item.Quantity += quantity
		item.RecalcLineTotal()
	} else {
		f.nextCartItemID++
		item = &model.CartItem{
			CartItemID: f.nextCartItemID,
			CartKey:    cartKey,
			ProductID:  productID,
			Quantity:   quantity,
			Price:      product.Price,
		}
		item.RecalcLineTotal()
		f.cartItems[item.CartItemID] = item
	}

	product.Stock -= uint(quantity)
	return item, nil
}

func (f *fakeStore) RemoveItem(ctx context.Context, cartKey string, cartItemID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.cartItems[cartItemID]
	if !ok || item.CartKey != cartKey || item.OrderID != nil {
		return db.ErrCartItemNotFound
	}

	delete(f.cartItems, cartItemID)
	f.products[item.ProductID].Stock += uint(item.Quantity)
	return nil
}

func (f *fakeStore) ListByCartKey(ctx context.Context, cartKey string) ([]model.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var items []model.CartItem
	for _, item := range f.cartItems {
		if item.CartKey == cartKey && item.OrderID == nil {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (f *fakeStore) GetUnattachedByIDs(ctx context.Context, cartItemIDs []uint) ([]model.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unattachedByIDsLocked(cartItemIDs)
}

func (f *fakeStore) unattachedByIDsLocked(cartItemIDs []uint) ([]model.CartItem, error) {
	items := make([]model.CartItem, 0, len(cartItemIDs))
	for _, id := range cartItemIDs {
		item, ok := f.cartItems[id]
		if !ok || item.OrderID != nil {
			return nil, db.ErrCartItemNotFound
		}
		items = append(items, *item)
	}
	return items, nil
}

// --- IOrderRepository ---

func (f *fakeStore) CreateOrderWithItems(ctx context.Context, order *model.Order, cartItemIDs []uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.unattachedByIDsLocked(cartItemIDs)
	if err != nil {
		return err
	}

	// 總額以掛單當下的明細為準算出後凍結
	total := order.ShippingCost.Add(order.Tax)
	for _, item := range items {
		total = total.Add(item.LineTotal)
	}
	order.TotalPrice = total
	order.TotalComputed = true

	for _, id := range cartItemIDs {
		orderID := order.OrderID
		f.cartItems[id].OrderID = &orderID
	}
	for i := range items {
		orderID := order.OrderID
		items[i].OrderID = &orderID
	}
	order.Items = items
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	stored := *order
	f.orders[order.OrderID] = &stored
	return nil
}

func (f *fakeStore) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[id]
	if !ok {
		return nil, db.ErrOrderNotFound
	}
	found := *order
	return &found, nil
}

func (f *fakeStore) GetOrdersByCustomer(ctx context.Context, customer model.CustomerRef) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	userID, guestUserID := customer.Columns()
	var orders []model.Order
	for _, order := range f.orders {
		switch {
		case userID != nil && order.UserID != nil && *order.UserID == *userID:
			orders = append(orders, *order)
		case guestUserID != nil && order.GuestUserID != nil && *order.GuestUserID == *guestUserID:
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (f *fakeStore) GetStalePendingOrders(ctx context.Context, before time.Time) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var stale []model.Order
	for _, order := range f.orders {
		if order.Status == model.OrderStatusPending && !order.CreatedAt.After(before) {
			stale = append(stale, *order)
		}
	}
	return stale, nil
}

func (f *fakeStore) RollbackOrder(ctx context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok || order.Status != model.OrderStatusPending {
		return db.ErrOrderNotFound
	}

	for _, item := range order.Items {
		f.products[item.ProductID].Stock += uint(item.Quantity)
	}
	for id, item := range f.cartItems {
		if item.OrderID != nil && *item.OrderID == orderID {
			delete(f.cartItems, id)
		}
	}
	for id, payment := range f.payments {
		if payment.OrderID == orderID {
			delete(f.payments, id)
		}
	}
	delete(f.orders, orderID)
	return nil
}

func (f *fakeStore) TrackingIDExists(ctx context.Context, trackingID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, order := range f.orders {
		if order.TrackingID == trackingID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpdateOrderStatus(ctx context.Context, id string, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[id]
	if !ok {
		return db.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

// --- ICustomerRepository ---

func (f *fakeStore) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.UserID] = user
	return user, nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, userID int) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[userID]
	if !ok {
		return nil, db.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeStore) GetGuestUserByID(ctx context.Context, guestUserID int) (*model.GuestUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	guest, ok := f.guests[guestUserID]
	if !ok {
		return nil, db.ErrGuestUserNotFound
	}
	return guest, nil
}

func (f *fakeStore) GetOrCreateGuestByEmail(ctx context.Context, guest *model.GuestUser) (*model.GuestUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.guests {
		if existing.Email == guest.Email {
			return existing, nil
		}
	}

	f.nextGuestID++
	stored := *guest
	stored.GuestUserID = f.nextGuestID
	f.guests[stored.GuestUserID] = &stored
	return &stored, nil
}

// --- IPaymentRepository ---

func (f *fakeStore) CreatePayment(ctx context.Context, payment *model.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextPaymentID++
	payment.PaymentID = f.nextPaymentID
	stored := *payment
	f.payments[payment.PaymentID] = &stored
	return nil
}

func (f *fakeStore) GetPaymentsByOrderID(ctx context.Context, orderID string) ([]model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var payments []model.Payment
	for _, payment := range f.payments {
		if payment.OrderID == orderID {
			payments = append(payments, *payment)
		}
	}
	return payments, nil
}

func (f *fakeStore) UpdatePaymentStatus(ctx context.Context, paymentID uint, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if payment, ok := f.payments[paymentID]; ok {
		payment.Status = status
	}
	return nil
}

// --- IProductRepository ---

func (f *fakeStore) CreateProduct(ctx context.Context, product *model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextProductID++
	product.ProductID = f.nextProductID
	stored := *product
	f.products[product.ProductID] = &stored
	return nil
}

func (f *fakeStore) GetProductByID(ctx context.Context, productID uint) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	product, ok := f.products[productID]
	if !ok {
		return nil, db.ErrProductNotFound
	}
	found := *product
	return &found, nil
}

func (f *fakeStore) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var products []model.Product
	for _, product := range f.products {
		products = append(products, *product)
	}
	return products, nil
}

func (f *fakeStore) GetProductsInStock(ctx context.Context) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var products []model.Product
	for _, product := range f.products {
		if product.Stock > 0 {
			products = append(products, *product)
		}
	}
	return products, nil
}

func (f *fakeStore) GetProductStock(ctx context.Context, productID uint) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	product, ok := f.products[productID]
	if !ok {
		return 0, db.ErrProductNotFound
	}
	return int(product.Stock), nil
}

func (f *fakeStore) AddProductStock(ctx context.Context, productID uint, quantity uint) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	product, ok := f.products[productID]
	if !ok {
		return 0, db.ErrProductNotFound
	}
	product.Stock += quantity
	return int(product.Stock), nil
}

func (f *fakeStore) DeductProductStock(ctx context.Context, productID uint, quantity uint) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	product, ok := f.products[productID]
	if !ok {
		return 0, db.ErrProductNotFound
	}
	if product.Stock < quantity {
		return 0, db.ErrProductStockNotEnough
	}
	product.Stock -= quantity
	return int(product.Stock), nil
}

func (f *fakeStore) UpdateProduct(ctx context.Context, product *model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := *product
	f.products[product.ProductID] = &stored
	return nil
}

func (f *fakeStore) HardDeleteProduct(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
	return nil
}

func (f *fakeStore) GetProductsPaginated(ctx context.Context, page, pageSize int) ([]model.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	all := make([]model.Product, 0, len(f.products))
	for _, product := range f.products {
		all = append(all, *product)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ProductID < all[j].ProductID })

	total := int64(len(all))
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (f *fakeStore) GetOrCreateCategory(ctx context.Context, name, description string) (*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if existing, ok := f.categories[name]; ok {
		return existing, nil
	}
	f.nextCategoryID++
	category := &model.Category{CategoryID: f.nextCategoryID, Name: name, Description: description}
	f.categories[name] = category
	return category, nil
}

func (f *fakeStore) CreateProductsBatch(ctx context.Context, products []model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range products {
		f.nextProductID++
		products[i].ProductID = f.nextProductID
		stored := products[i]
		f.products[stored.ProductID] = &stored
	}
	return nil
}

var (
	_ db.ICartRepository     = (*fakeStore)(nil)
	_ db.IOrderRepository    = (*fakeStore)(nil)
	_ db.ICustomerRepository = (*fakeStore)(nil)
	_ db.IPaymentRepository  = (*fakeStore)(nil)
	_ db.IProductRepository  = (*fakeStore)(nil)
)
