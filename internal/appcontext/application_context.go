package appcontext

import (
	"github.com/RoyceAzure/lab/shop/internal/config"
	"github.com/RoyceAzure/lab/shop/internal/infra/notifier"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/redis_decorator"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/shop/internal/service"
	"github.com/RoyceAzure/lab/shop/internal/token"
	"github.com/redis/go-redis/v9"
)

// ApplicationContext 集中建構所有依賴
// 外層 transport（HTTP/gRPC）掛在這上面，不在本專案範圍
type ApplicationContext struct {
	Cf    *config.Config
	Store db.UnifiedDB

	ProductService   *service.ProductService
	CartService      *service.CartService
	CustomerService  *service.CustomerService
	OrderService     *service.OrderService
	PaymentService   *service.PaymentService
	ReconcileService *service.ReconcileService

	Notifier notifier.Notifier
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	conn, err := db.GetDbConn(cf.DbName, cf.DbHost, cf.DbPort, cf.DbUser, cf.DbPas)
	if err != nil {
		return nil, err
	}

	store := db.NewUnifiedDB(conn)
	if err := store.InitMigrate(); err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cf.RedisAddr})
	stockCache := redis_repo.NewProductStockRepo(redisClient, cf.StockCacheTTL)
	productRepo := redis_decorator.NewCacheAsideProductRepo(store, stockCache)

	orderNotifier := notifier.NewKafkaNotifier(cf.KafkaBrokers, cf.OrderConfirmationTopic)

	tokenMaker, err := token.NewJWTMaker(cf.AuthTokenKey)
	if err != nil {
		return nil, err
	}

	return &ApplicationContext{
		Cf:               cf,
		Store:            store,
		ProductService:   service.NewProductService(productRepo),
		CartService:      service.NewCartService(store),
		CustomerService:  service.NewCustomerService(store, tokenMaker),
		OrderService:     service.NewOrderService(store, orderNotifier),
		PaymentService:   service.NewPaymentService(store, store, store),
		ReconcileService: service.NewReconcileService(store),
		Notifier:         orderNotifier,
	}, nil
}

func (app *ApplicationContext) Close() error {
	return app.Notifier.Close()
}
