package db

import (
	"context"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
)

type PaymentRepo struct {
	db *DbDao
}

func NewPaymentRepo(db *DbDao) *PaymentRepo {
	return &PaymentRepo{db: db}
}

func (s *PaymentRepo) CreatePayment(ctx context.Context, payment *model.Payment) error {
	return s.db.WithContext(ctx).Create(payment).Error
}

func (s *PaymentRepo) GetPaymentsByOrderID(ctx context.Context, orderID string) ([]model.Payment, error) {
	var payments []model.Payment
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&payments).Error
	return payments, err
}

// Update - 更新付款狀態
func (s *PaymentRepo) UpdatePaymentStatus(ctx context.Context, paymentID uint, status string) error {
	return s.db.WithContext(ctx).Model(&model.Payment{}).
		Where("payment_id = ?", paymentID).
		Update("status", status).Error
}
