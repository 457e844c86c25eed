package redis_repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// IProductStockCache 定義 Redis 商品庫存快取的介面
type IProductStockCache interface {
	// SetProductStock 寫入商品庫存快取
	SetProductStock(ctx context.Context, productID uint, stock int) error

	// GetProductStock 取得商品庫存快取
	GetProductStock(ctx context.Context, productID uint) (int, error)

	// DeleteProductStock 作廢商品庫存快取
	DeleteProductStock(ctx context.Context, productID uint) error
}

type ProductCacheError error

var (
	// ErrStockCacheMiss 快取不存在或已過期
	ErrStockCacheMiss ProductCacheError = errors.New("product stock cache miss")
)

/*
redis 只做商品庫存的讀取加速
DB 是唯一真相來源，快取帶 TTL，過期後回源重建
*/
type ProductStockRepo struct {
	productCache *redis.Client
	ttl          time.Duration
}

func NewProductStockRepo(productCache *redis.Client, ttl time.Duration) *ProductStockRepo {
	return &ProductStockRepo{productCache: productCache, ttl: ttl}
}

func generateProductStockKey(productID uint) string {
	return fmt.Sprintf("product:%d:stock", productID)
}

func (s *ProductStockRepo) SetProductStock(ctx context.Context, productID uint, stock int) error {
	redisKey := generateProductStockKey(productID)
	return s.productCache.Set(ctx, redisKey, stock, s.ttl).Err()
}

// 取得庫存商品數量
// 錯誤:
//   - ErrStockCacheMiss: 快取不存在
//   - err: 其他錯誤
func (s *ProductStockRepo) GetProductStock(ctx context.Context, productID uint) (int, error) {
	redisKey := generateProductStockKey(productID)
	stock, err := s.productCache.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrStockCacheMiss
	}
	if err != nil {
		return 0, err
	}

	stockInt, err := strconv.ParseInt(stock, 10, 64)
	if err != nil {
		return 0, err
	}

	return int(stockInt), nil
}

func (s *ProductStockRepo) DeleteProductStock(ctx context.Context, productID uint) error {
	redisKey := generateProductStockKey(productID)
	return s.productCache.Del(ctx, redisKey).Err()
}

var _ IProductStockCache = (*ProductStockRepo)(nil)
