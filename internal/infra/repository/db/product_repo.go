package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrProductStockNotEnough 商品庫存不足
	ErrProductStockNotEnough = errors.New("product stock not enough")
)

// 庫存以DB為唯一真相來源
// 任何扣減都在加鎖的事務內完成，stock恆 >= 0
type ProductRepo struct {
	db *DbDao
}

func NewProductRepo(db *DbDao) *ProductRepo {
	return &ProductRepo{db: db}
}

func (s *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *ProductRepo) GetProductByID(ctx context.Context, productID uint) (*model.Product, error) {
	var productFromDB model.Product
	err := s.db.WithContext(ctx).First(&productFromDB, "product_id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &productFromDB, nil
}

func (s *ProductRepo) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).Find(&products).Error
	return products, err
}

// Read - 查詢有庫存的商品
func (s *ProductRepo) GetProductsInStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).Where("stock > 0").Find(&products).Error
	return products, err
}

func (s *ProductRepo) GetProductStock(ctx context.Context, productID uint) (int, error) {
	product, err := s.GetProductByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	return int(product.Stock), nil
}

// AddProductStock 還原庫存（回滾預留）
// 錯誤:
//   - ErrProductNotFound: 商品不存在
func (s *ProductRepo) AddProductStock(ctx context.Context, productID uint, quantity uint) (int, error) {
	var currentStock int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 先鎖定記錄
		var product model.Product
		if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ?", productID).
			First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		// 更新庫存
		if err := tx.WithContext(ctx).Model(&model.Product{}).
			Where("product_id = ?", productID).
			Update("stock", gorm.Expr("stock + ?", quantity)).Error; err != nil {
			return err
		}

		currentStock = int(product.Stock) + int(quantity)
		return nil
	})

	if err != nil {
		return 0, err
	}
	return currentStock, nil
}

// DeductProductStock 扣減庫存（預留）
// 錯誤:
//   - ErrProductNotFound: 商品不存在
//   - ErrProductStockNotEnough: 庫存不足
func (s *ProductRepo) DeductProductStock(ctx context.Context, productID uint, quantity uint) (int, error) {
	var currentStock int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 先鎖定記錄
		var product model.Product
		if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ?", productID).
			First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		// 檢查庫存是否足夠
		if product.Stock < quantity {
			return ErrProductStockNotEnough
		}

		// 更新庫存，stock >= quantity 條件保證欄位不會被扣成負數
		res := tx.WithContext(ctx).Model(&model.Product{}).
			Where("product_id = ? AND stock >= ?", productID, quantity).
			Update("stock", gorm.Expr("stock - ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductStockNotEnough
		}

		currentStock = int(product.Stock) - int(quantity)
		return nil
	})

	if err != nil {
		return 0, err
	}
	return currentStock, nil
}

// Update - 更新商品
func (s *ProductRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Save(product).Error
}

// Delete - 硬刪除商品
func (s *ProductRepo) HardDeleteProduct(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Unscoped().Delete(&model.Product{}, "product_id = ?", id).Error
}

const defaultPageSize = 20

// GetProductsPaginated 商品目錄分頁查詢，依 product_id 排序
// page 從 1 起算，非法的 page/pageSize 回退到預設值
func (s *ProductRepo) GetProductsPaginated(ctx context.Context, page, pageSize int) ([]model.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []model.Product
	err := s.db.WithContext(ctx).
		Order("product_id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&products).Error
	return products, total, err
}

// GetOrCreateCategory 以名稱取得分類，不存在則建立
// 重複建立以 unique 約束吸收，冪等
func (s *ProductRepo) GetOrCreateCategory(ctx context.Context, name, description string) (*model.Category, error) {
	category := model.Category{Name: name, Description: description}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&category).Error
	if err != nil {
		return nil, err
	}

	var found model.Category
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&found).Error; err != nil {
		return nil, err
	}
	return &found, nil
}

// 批量創建商品
func (s *ProductRepo) CreateProductsBatch(ctx context.Context, products []model.Product) error {
	return s.db.WithContext(ctx).Create(&products).Error
}
