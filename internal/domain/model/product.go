package model

import (
	"github.com/shopspring/decimal"
)

type Category struct {
	CategoryID  uint      `gorm:"primaryKey" json:"category_id"`
	Name        string    `gorm:"not null;type:varchar(100);unique" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Products    []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"` // 一對多，級聯刪除
	BaseModel
}

// Product 庫存為保留後的可售數量
// 加入購物車即扣庫存，stock 欄位恆 >= 0
type Product struct {
	ProductID   uint            `gorm:"primaryKey" json:"product_id"`
	Name        string          `gorm:"not null;type:varchar(100)" json:"name"`
	Description string          `gorm:"not null;type:text" json:"description"`
	Image       string          `gorm:"type:varchar(500)" json:"image"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Stock       uint            `gorm:"not null;type:int" json:"stock"`
	CategoryID  uint            `gorm:"not null" json:"category_id"` // 外鍵，關聯到 Category
	CartItems   []CartItem      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	BaseModel
}
