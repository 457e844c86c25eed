package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

type ICartService interface {
	AddToCart(ctx context.Context, cartKey string, productID uint, quantity int) (*model.CartItem, error)
	RemoveFromCart(ctx context.Context, cartKey string, cartItemID uint) ([]model.CartItem, error)
	ListCart(ctx context.Context, cartKey string) ([]model.CartItem, error)
}

// 購物車階段即預留庫存
// 每一筆扣減必有一筆對應的還原（移除購物車或訂單回滾）
type CartService struct {
	cartRepo db.ICartRepository
}

func NewCartService(cartRepo db.ICartRepository) *CartService {
	return &CartService{cartRepo: cartRepo}
}

// AddToCart 加入購物車並預留庫存
// quantity 未帶（0）視為 1
// 同商品重複加入會併入既有未成單明細，單價維持第一次加入的快照
// 錯誤:
//   - ErrInvalidQuantity: 數量為負
//   - db.ErrProductNotFound: 商品不存在
//   - db.ErrProductStockNotEnough: 庫存不足
func (s *CartService) AddToCart(ctx context.Context, cartKey string, productID uint, quantity int) (*model.CartItem, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	return s.cartRepo.AddItem(ctx, cartKey, productID, quantity)
}

// RemoveFromCart 移除明細並還原預留庫存，回傳購物車剩餘明細
// 錯誤:
//   - db.ErrCartItemNotFound: 明細不存在或已成單
func (s *CartService) RemoveFromCart(ctx context.Context, cartKey string, cartItemID uint) ([]model.CartItem, error) {
	if err := s.cartRepo.RemoveItem(ctx, cartKey, cartItemID); err != nil {
		return nil, err
	}
	return s.cartRepo.ListByCartKey(ctx, cartKey)
}

// ListCart 查詢所有未成單明細
func (s *CartService) ListCart(ctx context.Context, cartKey string) ([]model.CartItem, error) {
	return s.cartRepo.ListByCartKey(ctx, cartKey)
}

var _ ICartService = (*CartService)(nil)
