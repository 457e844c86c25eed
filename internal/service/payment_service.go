package service

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
)

var (
	// ErrPaymentCustomerMissing 訂單身份解析不出會員或訪客，不能收款
	ErrPaymentCustomerMissing = errors.New("payment order has no resolvable customer")
)

type IPaymentService interface {
	CreatePayment(ctx context.Context, orderID string, method string, status string) (*model.Payment, error)
	GetPaymentsByOrderID(ctx context.Context, orderID string) ([]model.Payment, error)
	CompletePayment(ctx context.Context, paymentID uint) error
}

// 付款紀錄
// 只記錄，不推動訂單狀態（Pending -> Paid 由外部 trigger 負責）
type PaymentService struct {
	paymentRepo  db.IPaymentRepository
	orderRepo    db.IOrderRepository
	customerRepo db.ICustomerRepository
}

func NewPaymentService(paymentRepo db.IPaymentRepository, orderRepo db.IOrderRepository, customerRepo db.ICustomerRepository) *PaymentService {
	return &PaymentService{paymentRepo: paymentRepo, orderRepo: orderRepo, customerRepo: customerRepo}
}

// CreatePayment 為既有訂單建立付款紀錄
// method 未帶用 Card，status 未帶用 Pending
// 金額取訂單當下的 TotalPrice，不重新推導
// 錯誤:
//   - ErrOrderNotExist: 訂單不存在
//   - ErrPaymentCustomerMissing: 訂單身份無法解析為會員或訪客
func (s *PaymentService) CreatePayment(ctx context.Context, orderID string, method string, status string) (*model.Payment, error) {
	if method == "" {
		method = model.PaymentMethodCard
	}
	if status == "" {
		status = model.PaymentStatusPending
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, db.ErrOrderNotFound) {
			return nil, ErrOrderNotExist
		}
		return nil, err
	}

	if err := s.verifyOrderCustomer(ctx, order); err != nil {
		return nil, err
	}

	payment := &model.Payment{
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		GuestUserID: order.GuestUserID,
		Method:      method,
		Amount:      order.TotalPrice,
		Status:      status,
		PaymentDate: time.Now().UTC(),
	}
	if err := s.paymentRepo.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// 訂單必須綁定實際存在的會員或訪客其中一方
func (s *PaymentService) verifyOrderCustomer(ctx context.Context, order *model.Order) error {
	customer := order.Customer()
	if !customer.IsResolved() {
		return ErrPaymentCustomerMissing
	}

	userID, guestUserID := customer.Columns()
	switch {
	case userID != nil:
		if _, err := s.customerRepo.GetUserByID(ctx, *userID); err != nil {
			if errors.Is(err, db.ErrUserNotFound) {
				return ErrPaymentCustomerMissing
			}
			return err
		}
	case guestUserID != nil:
		if _, err := s.customerRepo.GetGuestUserByID(ctx, *guestUserID); err != nil {
			if errors.Is(err, db.ErrGuestUserNotFound) {
				return ErrPaymentCustomerMissing
			}
			return err
		}
	}
	return nil
}

func (s *PaymentService) GetPaymentsByOrderID(ctx context.Context, orderID string) ([]model.Payment, error) {
	return s.paymentRepo.GetPaymentsByOrderID(ctx, orderID)
}

// CompletePayment 付款處理完成後標記為 Completed
// 訂單狀態的 Pending -> Paid 仍由外部 trigger 推動
func (s *PaymentService) CompletePayment(ctx context.Context, paymentID uint) error {
	return s.paymentRepo.UpdatePaymentStatus(ctx, paymentID, model.PaymentStatusCompleted)
}

var _ IPaymentService = (*PaymentService)(nil)
