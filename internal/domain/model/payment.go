package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusPending   = "Pending"
	PaymentStatusCompleted = "Completed"

	PaymentMethodCard = "Card"
)

// Payment 付款紀錄
// Amount 取建立當下的 order.TotalPrice，不重新推導
// 身份欄位從訂單複製，必須可解析為會員或訪客其中一方
type Payment struct {
	PaymentID   uint            `gorm:"primaryKey" json:"payment_id"`
	OrderID     string          `gorm:"not null;type:varchar(255);index" json:"order_id"` // 外鍵，關聯到 Order
	UserID      *int            `json:"user_id"`
	GuestUserID *int            `json:"guest_user_id"`
	Method      string          `gorm:"not null;type:varchar(100);default:'Card'" json:"method"`
	Amount      decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"amount"`
	Status      string          `gorm:"not null;type:varchar(50)" json:"status"`
	PaymentDate time.Time       `gorm:"not null" json:"payment_date"`
	BaseModel
}
