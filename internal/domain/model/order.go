package model

import (
	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending = "Pending" // 待付款，逾期會被回收
	OrderStatusPaid    = "Paid"    // 已付款
)

// ShippingAddress 每張訂單建立一筆，綁定會員或訪客其中一方
type ShippingAddress struct {
	ShippingAddressID uint   `gorm:"primaryKey" json:"shipping_address_id"`
	UserID            *int   `json:"user_id"`       // 外鍵，關聯到 User
	GuestUserID       *int   `json:"guest_user_id"` // 外鍵，關聯到 GuestUser
	StreetAddress     string `gorm:"not null;type:varchar(255)" json:"street_address"`
	City              string `gorm:"not null;type:varchar(100)" json:"city"`
	State             string `gorm:"not null;type:varchar(100)" json:"state"`
	ZipCode           string `gorm:"not null;type:varchar(10)" json:"zip_code"`
	Country           string `gorm:"not null;type:varchar(100)" json:"country"`
	BaseModel
}

// Order 訂單聚合
// TotalPrice 建立當下算一次後凍結，TotalComputed 標記已計算
// （免費訂單合法為零，不能用零值判斷未計算）
type Order struct {
	OrderID           string          `gorm:"primaryKey;type:varchar(255)" json:"order_id"`
	UserID            *int            `json:"user_id"`       // 外鍵，關聯到 User
	GuestUserID       *int            `json:"guest_user_id"` // 外鍵，關聯到 GuestUser
	ShippingAddressID uint            `gorm:"not null" json:"shipping_address_id"`
	ShippingAddress   ShippingAddress `gorm:"foreignKey:ShippingAddressID;constraint:OnDelete:CASCADE" json:"shipping_address"`
	Items             []CartItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"` // 一對多，級聯刪除
	TotalPrice        decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"total_price"`
	ShippingCost      decimal.Decimal `gorm:"not null;type:decimal(10,2);default:0" json:"shipping_cost"`
	Tax               decimal.Decimal `gorm:"not null;type:decimal(10,2);default:0" json:"tax"`
	TotalComputed     bool            `gorm:"not null;default:false" json:"total_computed"`
	Status            string          `gorm:"not null;type:varchar(50);default:'Pending'" json:"status"`
	TrackingID        string          `gorm:"unique;not null;type:varchar(20)" json:"tracking_id"`
	Payments          []Payment       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
	BaseModel
}

// Customer 還原訂單綁定的身份標記
func (o *Order) Customer() CustomerRef {
	return CustomerRefFromColumns(o.UserID, o.GuestUserID)
}
