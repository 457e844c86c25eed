package db

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrOrderNotFound 訂單不存在
	ErrOrderNotFound = errors.New("order not found")
)

type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// CreateOrderWithItems 建立訂單並掛上購物車明細
// 整個操作在單一事務內：出貨地址、訂單、明細歸屬更新，任一步失敗全部回滾
// 明細已在購物車階段預留庫存，這裡不再碰庫存
// TotalPrice 從鎖定後的明細算出（Σ 小計 + 運費 + 稅），併發的數量異動
// 不會讓凍結總額跟掛上的明細對不起來
// 錯誤:
//   - ErrCartItemNotFound: 任一明細ID不存在或已成單
func (s *OrderRepo) CreateOrderWithItems(ctx context.Context, order *model.Order, cartItemIDs []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		// SELECT FOR UPDATE 鎖定明細，防止同一批明細被兩張訂單搶走
		var items []model.CartItem
		if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("cart_item_id IN ? AND order_id IS NULL", cartItemIDs).
			Find(&items).Error; err != nil {
			return err
		}
		if len(items) != len(cartItemIDs) {
			return ErrCartItemNotFound
		}

		// 總額以鎖定當下的明細為準，算一次後凍結
		total := order.ShippingCost.Add(order.Tax)
		for _, item := range items {
			total = total.Add(item.LineTotal)
		}
		order.TotalPrice = total
		order.TotalComputed = true

		// 先建立地址與訂單本體，明細另外掛
		if err := tx.WithContext(ctx).Omit("Items").Create(order).Error; err != nil {
			return err
		}

		// 明細改掛到訂單上，數量與單價維持購物車當下快照
		if err := tx.WithContext(ctx).Model(&model.CartItem{}).
			Where("cart_item_id IN ?", cartItemIDs).
			Update("order_id", order.OrderID).Error; err != nil {
			return err
		}

		order.Items = items
		for i := range order.Items {
			order.Items[i].OrderID = &order.OrderID
		}
		return nil
	})
}

// Read - 根據ID查詢訂單
// 錯誤:
//   - ErrOrderNotFound: 訂單不存在
func (s *OrderRepo) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("ShippingAddress").
		First(&order, "order_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Read - 根據用戶查詢訂單
func (s *OrderRepo) GetOrdersByCustomer(ctx context.Context, customer model.CustomerRef) ([]model.Order, error) {
	var orders []model.Order
	query := s.db.WithContext(ctx).Preload("Items").Preload("ShippingAddress")
	userID, guestUserID := customer.Columns()
	switch {
	case userID != nil:
		query = query.Where("user_id = ?", *userID)
	case guestUserID != nil:
		query = query.Where("guest_user_id = ?", *guestUserID)
	default:
		return nil, nil
	}
	err := query.Find(&orders).Error
	return orders, err
}

// GetStalePendingOrders 查詢逾期未付款訂單
// created_at <= before 且狀態為 Pending
func (s *OrderRepo) GetStalePendingOrders(ctx context.Context, before time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("status = ? AND created_at <= ?", model.OrderStatusPending, before).
		Find(&orders).Error
	return orders, err
}

// RollbackOrder 回滾單一逾期訂單
// 單一事務內：每筆明細還原庫存，硬刪除訂單（明細、付款由FK級聯帶走）與其出貨地址
// 只回滾仍為 Pending 的訂單，已付款或已被其他批次處理的訂單跳過
// 錯誤:
//   - ErrOrderNotFound: 訂單不存在或已非 Pending
func (s *OrderRepo) RollbackOrder(ctx context.Context, orderID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "orders"}}).
			Preload("Items").
			Where("order_id = ? AND status = ?", orderID, model.OrderStatusPending).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		// 還原每筆明細的預留庫存
		for _, item := range order.Items {
			if err := tx.WithContext(ctx).Model(&model.Product{}).
				Where("product_id = ?", item.ProductID).
				Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}

		// 硬刪除，明細與付款由級聯刪除帶走
		if err := tx.WithContext(ctx).Unscoped().
			Delete(&model.Order{}, "order_id = ?", orderID).Error; err != nil {
			return err
		}

		// 出貨地址是訂單專屬的，一併清掉
		return tx.WithContext(ctx).Unscoped().
			Delete(&model.ShippingAddress{}, "shipping_address_id = ?", order.ShippingAddressID).Error
	})
}

// TrackingIDExists 供 tracking id 產生時的 generate-check-retry 使用
// unique 約束是最後防線
func (s *OrderRepo) TrackingIDExists(ctx context.Context, trackingID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("tracking_id = ?", trackingID).
		Count(&count).Error
	return count > 0, err
}

// Update - 更新訂單狀態
func (s *OrderRepo) UpdateOrderStatus(ctx context.Context, id string, status string) error {
	return s.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", id).
		Update("status", status).Error
}
