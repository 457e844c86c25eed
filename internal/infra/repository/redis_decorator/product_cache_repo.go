package redis_decorator

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/redis_repo"
	"github.com/rs/zerolog/log"
)

/*
redis 只做商品庫存讀取加速，所以只有跟庫存有關的操作才需要連動 redis
購物車/回滾走 DB 事務直接動庫存，不經過這層，靠 TTL 收斂
快取失敗一律只記 log，不影響 DB 結果
*/
type CacheAsideProductRepo struct {
	db.IProductRepository
	cache redis_repo.IProductStockCache
}

func NewCacheAsideProductRepo(dbRepo db.IProductRepository, cache redis_repo.IProductStockCache) db.IProductRepository {
	return &CacheAsideProductRepo{IProductRepository: dbRepo, cache: cache}
}

// GetProductStock 先查快取，miss 回源DB並回填
func (p *CacheAsideProductRepo) GetProductStock(ctx context.Context, productID uint) (int, error) {
	stock, err := p.cache.GetProductStock(ctx, productID)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, redis_repo.ErrStockCacheMiss) {
		log.Warn().Err(err).Uint("product_id", productID).Msg("read product stock cache failed")
	}

	stock, err = p.IProductRepository.GetProductStock(ctx, productID)
	if err != nil {
		return 0, err
	}

	if err := p.cache.SetProductStock(ctx, productID, stock); err != nil {
		log.Warn().Err(err).Uint("product_id", productID).Msg("backfill product stock cache failed")
	}
	return stock, nil
}

func (p *CacheAsideProductRepo) AddProductStock(ctx context.Context, productID uint, quantity uint) (int, error) {
	stock, err := p.IProductRepository.AddProductStock(ctx, productID, quantity)
	if err != nil {
		return 0, err
	}
	p.invalidate(ctx, productID)
	return stock, nil
}

func (p *CacheAsideProductRepo) DeductProductStock(ctx context.Context, productID uint, quantity uint) (int, error) {
	stock, err := p.IProductRepository.DeductProductStock(ctx, productID, quantity)
	if err != nil {
		return 0, err
	}
	p.invalidate(ctx, productID)
	return stock, nil
}

func (p *CacheAsideProductRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	if err := p.IProductRepository.UpdateProduct(ctx, product); err != nil {
		return err
	}
	p.invalidate(ctx, product.ProductID)
	return nil
}

func (p *CacheAsideProductRepo) HardDeleteProduct(ctx context.Context, id uint) error {
	if err := p.IProductRepository.HardDeleteProduct(ctx, id); err != nil {
		return err
	}
	p.invalidate(ctx, id)
	return nil
}

func (p *CacheAsideProductRepo) invalidate(ctx context.Context, productID uint) {
	if err := p.cache.DeleteProductStock(ctx, productID); err != nil {
		log.Warn().Err(err).Uint("product_id", productID).Msg("invalidate product stock cache failed")
	}
}
