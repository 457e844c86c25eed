package model

import (
	"github.com/shopspring/decimal"
)

// CartItem 購物車明細
// OrderID 為 nil 表示尚未成單的浮動明細，成單後掛到 Order 上凍結
// Price 為第一次加入購物車時的單價快照，之後商品改價不影響
type CartItem struct {
	CartItemID uint            `gorm:"primaryKey" json:"cart_item_id"`
	CartKey    string          `gorm:"not null;type:varchar(100);index" json:"cart_key"` // 購物車歸屬（customer/session 識別）
	ProductID  uint            `gorm:"not null;index" json:"product_id"`                 // 外鍵，關聯到 Product
	Quantity   int             `gorm:"not null" json:"quantity"`
	Price      decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	LineTotal  decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"line_total"`
	OrderID    *string         `gorm:"type:varchar(255);index" json:"order_id"` // 外鍵，關聯到 Order，成單前為 nil
	BaseModel
}

// RecalcLineTotal 數量異動後重算小計，單價快照不變
func (c *CartItem) RecalcLineTotal() {
	c.LineTotal = c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
