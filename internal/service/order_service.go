package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/RoyceAzure/lab/shop/internal/infra/notifier"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/shop/internal/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyOrderItems = errors.New("order must contain at least one cart item")
	ErrOrderNotExist   = errors.New("order is not exist")
)

// tracking id 撞號重抽上限，空間 36^11 實務上撞不到
const maxTrackingIDAttempts = 5

// ShippingInput 建立訂單帶入的出貨地址欄位
type ShippingInput struct {
	StreetAddress string
	City          string
	State         string
	ZipCode       string
	Country       string
}

type IOrderService interface {
	CreateOrder(ctx context.Context, customer model.CustomerRef, shipping ShippingInput, cartItemIDs []uint, shippingCost, tax decimal.Decimal) (*model.Order, error)
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	GetOrdersByCustomer(ctx context.Context, customer model.CustomerRef) ([]model.Order, error)
}

// 訂單組裝
// 庫存早在購物車階段預留，這裡只消費既有明細，不再碰庫存
type OrderService struct {
	orderRepo db.IOrderRepository
	notifier  notifier.Notifier
}

func NewOrderService(orderRepo db.IOrderRepository, orderNotifier notifier.Notifier) *OrderService {
	return &OrderService{orderRepo: orderRepo, notifier: orderNotifier}
}

// CreateOrder 從浮動購物車明細組裝訂單
// 總額 = Σ 明細小計 + 運費 + 稅，由 repo 在鎖定明細的事務內算一次後凍結，
// 這裡不預先讀明細，避免讀取與成單之間的數量異動讓總額對不上
// 任一明細ID無效則整筆拒絕，不做部分成單
// 訂單確認通知為 fire-and-forget，失敗只記 log
// 錯誤:
//   - ErrEmptyOrderItems: 沒帶明細
//   - ErrCustomerUnresolved: 身份未解析
//   - db.ErrCartItemNotFound: 任一明細ID不存在或已成單
func (o *OrderService) CreateOrder(ctx context.Context, customer model.CustomerRef, shipping ShippingInput, cartItemIDs []uint, shippingCost, tax decimal.Decimal) (*model.Order, error) {
	if len(cartItemIDs) == 0 {
		return nil, ErrEmptyOrderItems
	}
	if !customer.IsResolved() {
		return nil, ErrCustomerUnresolved
	}

	trackingID, err := o.generateUniqueTrackingID(ctx)
	if err != nil {
		return nil, err
	}

	userID, guestUserID := customer.Columns()
	order := &model.Order{
		OrderID:     util.GenerateOrderIDByUUID(),
		UserID:      userID,
		GuestUserID: guestUserID,
		ShippingAddress: model.ShippingAddress{
			UserID:        userID,
			GuestUserID:   guestUserID,
			StreetAddress: shipping.StreetAddress,
			City:          shipping.City,
			State:         shipping.State,
			ZipCode:       shipping.ZipCode,
			Country:       shipping.Country,
		},
		ShippingCost: shippingCost,
		Tax:          tax,
		Status:       model.OrderStatusPending,
		TrackingID:   trackingID,
	}

	if err := o.orderRepo.CreateOrderWithItems(ctx, order, cartItemIDs); err != nil {
		return nil, err
	}

	// 通知跟訂單成立解耦，失敗不回滾訂單
	if o.notifier != nil {
		go func(confirmed model.Order) {
			notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := o.notifier.SendOrderConfirmation(notifyCtx, &confirmed); err != nil {
				log.Warn().Err(err).Str("order_id", confirmed.OrderID).Msg("send order confirmation failed")
			}
		}(*order)
	}

	return order, nil
}

// generate-check-retry，DB 的 unique 約束是最後防線
func (o *OrderService) generateUniqueTrackingID(ctx context.Context) (string, error) {
	for i := 0; i < maxTrackingIDAttempts; i++ {
		trackingID := util.GenerateTrackingID()
		exists, err := o.orderRepo.TrackingIDExists(ctx, trackingID)
		if err != nil {
			return "", err
		}
		if !exists {
			return trackingID, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique tracking id after %d attempts", maxTrackingIDAttempts)
}

// GetOrder 查詢訂單（含明細與出貨地址）
// 錯誤:
//   - ErrOrderNotExist: 訂單不存在
func (o *OrderService) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := o.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, db.ErrOrderNotFound) {
			return nil, ErrOrderNotExist
		}
		return nil, err
	}
	return order, nil
}

func (o *OrderService) GetOrdersByCustomer(ctx context.Context, customer model.CustomerRef) ([]model.Order, error) {
	return o.orderRepo.GetOrdersByCustomer(ctx, customer)
}

var _ IOrderService = (*OrderService)(nil)
