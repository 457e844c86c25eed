package db

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"gorm.io/gorm"
)

// UnifiedDB 統一的資料庫介面
type UnifiedDB interface {
	// 基礎操作
	GetDB() *gorm.DB
	Begin(ctx context.Context) *gorm.DB
	InitMigrate() error

	// Product 相關操作
	IProductRepository

	// CartItem 相關操作
	ICartRepository

	// Order 相關操作
	IOrderRepository

	// Customer 相關操作
	ICustomerRepository

	// Payment 相關操作
	IPaymentRepository
}

// IProductRepository Product 相關操作介面
type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, productID uint) (*model.Product, error)
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	GetProductsInStock(ctx context.Context) ([]model.Product, error)
	GetProductStock(ctx context.Context, productID uint) (int, error)
	AddProductStock(ctx context.Context, productID uint, quantity uint) (int, error)
	DeductProductStock(ctx context.Context, productID uint, quantity uint) (int, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	HardDeleteProduct(ctx context.Context, id uint) error
	GetProductsPaginated(ctx context.Context, page, pageSize int) ([]model.Product, int64, error)
	GetOrCreateCategory(ctx context.Context, name, description string) (*model.Category, error)
	CreateProductsBatch(ctx context.Context, products []model.Product) error
}

// ICartRepository CartItem 相關操作介面
type ICartRepository interface {
	AddItem(ctx context.Context, cartKey string, productID uint, quantity int) (*model.CartItem, error)
	RemoveItem(ctx context.Context, cartKey string, cartItemID uint) error
	ListByCartKey(ctx context.Context, cartKey string) ([]model.CartItem, error)
	GetUnattachedByIDs(ctx context.Context, cartItemIDs []uint) ([]model.CartItem, error)
}

// IOrderRepository Order 相關操作介面
type IOrderRepository interface {
	CreateOrderWithItems(ctx context.Context, order *model.Order, cartItemIDs []uint) error
	GetOrderByID(ctx context.Context, id string) (*model.Order, error)
	GetOrdersByCustomer(ctx context.Context, customer model.CustomerRef) ([]model.Order, error)
	GetStalePendingOrders(ctx context.Context, before time.Time) ([]model.Order, error)
	RollbackOrder(ctx context.Context, orderID string) error
	TrackingIDExists(ctx context.Context, trackingID string) (bool, error)
	UpdateOrderStatus(ctx context.Context, id string, status string) error
}

// ICustomerRepository Customer 相關操作介面
type ICustomerRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByID(ctx context.Context, userID int) (*model.User, error)
	GetGuestUserByID(ctx context.Context, guestUserID int) (*model.GuestUser, error)
	GetOrCreateGuestByEmail(ctx context.Context, guest *model.GuestUser) (*model.GuestUser, error)
}

// IPaymentRepository Payment 相關操作介面
type IPaymentRepository interface {
	CreatePayment(ctx context.Context, payment *model.Payment) error
	GetPaymentsByOrderID(ctx context.Context, orderID string) ([]model.Payment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID uint, status string) error
}

// UnifiedDBImpl 統一資料庫實現
type UnifiedDBImpl struct {
	db    *gorm.DB
	dbDao *DbDao
	*ProductRepo
	*CartRepo
	*OrderRepo
	*CustomerRepo
	*PaymentRepo
}

// NewUnifiedDB 創建新的統一資料庫實例
func NewUnifiedDB(db *gorm.DB) *UnifiedDBImpl {
	dbDao := NewDbDao(db)
	return &UnifiedDBImpl{
		db:           db,
		dbDao:        dbDao,
		ProductRepo:  NewProductRepo(dbDao),
		CartRepo:     NewCartRepo(dbDao),
		OrderRepo:    NewOrderRepo(dbDao),
		CustomerRepo: NewCustomerRepo(dbDao),
		PaymentRepo:  NewPaymentRepo(dbDao),
	}
}

func (u *UnifiedDBImpl) InitMigrate() error {
	return u.dbDao.InitMigrate()
}

// GetDB 獲取資料庫連接
func (u *UnifiedDBImpl) GetDB() *gorm.DB {
	return u.db
}

// Begin 開始事務
func (u *UnifiedDBImpl) Begin(ctx context.Context) *gorm.DB {
	return u.db.WithContext(ctx).Begin()
}

var (
	_ UnifiedDB           = (*UnifiedDBImpl)(nil)
	_ IProductRepository  = (*UnifiedDBImpl)(nil)
	_ ICartRepository     = (*UnifiedDBImpl)(nil)
	_ IOrderRepository    = (*UnifiedDBImpl)(nil)
	_ ICustomerRepository = (*UnifiedDBImpl)(nil)
	_ IPaymentRepository  = (*UnifiedDBImpl)(nil)
)
