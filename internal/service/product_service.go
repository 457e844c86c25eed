package service

import (
	"context"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type IProductService interface {
	GetProduct(ctx context.Context, productID uint) (*model.Product, error)
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	GetProductsPaginated(ctx context.Context, page, pageSize int) ([]model.Product, int64, error)
	CheckProductStockEnough(ctx context.Context, productID uint, quantity uint) (bool, error)
	SeedCatalog(ctx context.Context) error
}

// 商品目錄的讀取面，實際庫存異動都走購物車/回滾事務
type ProductService struct {
	productRepo db.IProductRepository
}

func NewProductService(productRepo db.IProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

func (s *ProductService) GetProduct(ctx context.Context, productID uint) (*model.Product, error) {
	return s.productRepo.GetProductByID(ctx, productID)
}

func (s *ProductService) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.GetAllProducts(ctx)
}

// GetProductsPaginated 商品目錄分頁瀏覽
func (s *ProductService) GetProductsPaginated(ctx context.Context, page, pageSize int) ([]model.Product, int64, error) {
	return s.productRepo.GetProductsPaginated(ctx, page, pageSize)
}

// 檢查庫存是否足夠
// 錯誤:
//   - db.ErrProductNotFound: 商品不存在
func (s *ProductService) CheckProductStockEnough(ctx context.Context, productID uint, quantity uint) (bool, error) {
	stock, err := s.productRepo.GetProductStock(ctx, productID)
	if err != nil {
		return false, err
	}

	if stock < int(quantity) {
		return false, nil
	}

	return true, nil
}

// SeedCatalog 塞入示範分類與商品，冪等
// 只在本地開發環境用（SEED_ON_START）
func (s *ProductService) SeedCatalog(ctx context.Context) error {
	categories := []struct {
		name        string
		description string
	}{
		{"Electronics", "Consumer electronics"},
		{"Books", "Printed and digital books"},
		{"Clothing", "Apparel"},
		{"Home & Kitchen", "Household goods"},
		{"Sports & Outdoors", "Sporting goods"},
	}

	created := make(map[string]uint, len(categories))
	for _, c := range categories {
		category, err := s.productRepo.GetOrCreateCategory(ctx, c.name, c.description)
		if err != nil {
			return err
		}
		created[c.name] = category.CategoryID
	}

	seedProducts := []model.Product{
		{Name: "Smartphone", Description: "Seed product", Price: decimal.NewFromFloat(699.99), Stock: 50, CategoryID: created["Electronics"]},
		{Name: "Laptop", Description: "Seed product", Price: decimal.NewFromFloat(999.99), Stock: 30, CategoryID: created["Electronics"]},
		{Name: "T-Shirt", Description: "Seed product", Price: decimal.NewFromFloat(19.99), Stock: 100, CategoryID: created["Clothing"]},
		{Name: "Fiction Book", Description: "Seed product", Price: decimal.NewFromFloat(14.99), Stock: 200, CategoryID: created["Books"]},
		{Name: "Kitchen Knife Set", Description: "Seed product", Price: decimal.NewFromFloat(49.99), Stock: 20, CategoryID: created["Home & Kitchen"]},
	}

	existing, err := s.productRepo.GetAllProducts(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info().Msg("catalog already seeded, skip")
		return nil
	}

	return s.productRepo.CreateProductsBatch(ctx, seedProducts)
}

var _ IProductService = (*ProductService)(nil)
