package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCartItemNotFound 購物車明細不存在
	ErrCartItemNotFound = errors.New("cart item not found")
)

// 購物車明細與庫存異動在同一個事務內完成
// 加入購物車即預留庫存，移除購物車即還原，兩邊必定對稱
type CartRepo struct {
	db *DbDao
}

func NewCartRepo(db *DbDao) *CartRepo {
	return &CartRepo{db: db}
}

// AddItem 加入購物車
// 同一個 cartKey 對同一商品的未成單明細只會有一筆，重複加入做數量累加
// 單價維持第一次加入時的快照，小計重算
// 錯誤:
//   - ErrProductNotFound: 商品不存在
//   - ErrProductStockNotEnough: 庫存不足
func (s *CartRepo) AddItem(ctx context.Context, cartKey string, productID uint, quantity int) (*model.CartItem, error) {
	var item model.CartItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// SELECT FOR UPDATE 鎖定商品，序列化同商品的並發加入
		var product model.Product
		if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ?", productID).
			First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		if product.Stock < uint(quantity) {
			return ErrProductStockNotEnough
		}

		// 未成單明細已存在則累加數量
		err := tx.WithContext(ctx).
			Where("cart_key = ? AND product_id = ? AND order_id IS NULL", cartKey, productID).
			First(&item).Error
		switch {
		case err == nil:
			item.Quantity += quantity
			item.RecalcLineTotal()
			if err := tx.WithContext(ctx).Save(&item).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = model.CartItem{
				CartKey:   cartKey,
				ProductID: productID,
				Quantity:  quantity,
				Price:     product.Price,
			}
			item.RecalcLineTotal()
			if err := tx.WithContext(ctx).Create(&item).Error; err != nil {
				return err
			}
		default:
			return err
		}

		// 扣庫存（預留），stock >= quantity 條件保證欄位不會被扣成負數
		res := tx.WithContext(ctx).Model(&model.Product{}).
			Where("product_id = ? AND stock >= ?", productID, quantity).
			Update("stock", gorm.Expr("stock - ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductStockNotEnough
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveItem 移除購物車明細並還原庫存
// 只能移除未成單的明細
// 錯誤:
//   - ErrCartItemNotFound: 明細不存在或已成單
func (s *CartRepo) RemoveItem(ctx context.Context, cartKey string, cartItemID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var item model.CartItem
		if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("cart_item_id = ? AND cart_key = ? AND order_id IS NULL", cartItemID, cartKey).
			First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartItemNotFound
			}
			return err
		}

		if err := tx.WithContext(ctx).Delete(&item).Error; err != nil {
			return err
		}

		// 還原預留庫存
		return tx.WithContext(ctx).Model(&model.Product{}).
			Where("product_id = ?", item.ProductID).
			Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error
	})
}

// ListByCartKey 查詢該購物車所有未成單明細
func (s *CartRepo) ListByCartKey(ctx context.Context, cartKey string) ([]model.CartItem, error) {
	var items []model.CartItem
	err := s.db.WithContext(ctx).
		Where("cart_key = ? AND order_id IS NULL", cartKey).
		Order("cart_item_id").
		Find(&items).Error
	return items, err
}

// GetUnattachedByIDs 依ID取未成單明細
// 有任何一筆缺漏即回傳 ErrCartItemNotFound，不做部分成單
func (s *CartRepo) GetUnattachedByIDs(ctx context.Context, cartItemIDs []uint) ([]model.CartItem, error) {
	var items []model.CartItem
	err := s.db.WithContext(ctx).
		Where("cart_item_id IN ? AND order_id IS NULL", cartItemIDs).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) != len(cartItemIDs) {
		return nil, ErrCartItemNotFound
	}
	return items, nil
}
