package model

// User 註冊會員
type User struct {
	UserID    int     `gorm:"primaryKey" json:"user_id"`
	FirstName string  `gorm:"not null;type:varchar(50)" json:"first_name"`
	LastName  string  `gorm:"not null;type:varchar(50)" json:"last_name"`
	Email     string  `gorm:"unique;not null;type:varchar(254)" json:"email"`
	Phone     string  `gorm:"type:varchar(20)" json:"phone"`
	Orders    []Order `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"` // 一對多，級聯刪除
	BaseModel
}

// GuestUser 訪客結帳身份，以 email 去重
type GuestUser struct {
	GuestUserID int     `gorm:"primaryKey" json:"guest_user_id"`
	FirstName   string  `gorm:"type:varchar(50)" json:"first_name"`
	LastName    string  `gorm:"type:varchar(50)" json:"last_name"`
	Email       string  `gorm:"unique;not null;type:varchar(254)" json:"email"`
	Phone       string  `gorm:"type:varchar(20)" json:"phone"`
	Orders      []Order `gorm:"foreignKey:GuestUserID;constraint:OnDelete:CASCADE" json:"-"`
	BaseModel
}

type customerKind uint8

const (
	customerNone customerKind = iota
	customerRegistered
	customerGuest
)

// CustomerRef 會員/訪客二擇一的身份標記
// 只能透過建構子綁定其中一種，零值視為未解析
type CustomerRef struct {
	kind        customerKind
	userID      int
	guestUserID int
}

func NewRegisteredCustomer(userID int) CustomerRef {
	return CustomerRef{kind: customerRegistered, userID: userID}
}

func NewGuestCustomer(guestUserID int) CustomerRef {
	return CustomerRef{kind: customerGuest, guestUserID: guestUserID}
}

func (c CustomerRef) IsResolved() bool {
	return c.kind != customerNone
}

func (c CustomerRef) IsRegistered() bool {
	return c.kind == customerRegistered
}

func (c CustomerRef) IsGuest() bool {
	return c.kind == customerGuest
}

// Columns 轉換為資料表的 user_id / guest_user_id 欄位值
// 恰好一個非 nil，未解析時兩者皆 nil
func (c CustomerRef) Columns() (userID *int, guestUserID *int) {
	switch c.kind {
	case customerRegistered:
		id := c.userID
		return &id, nil
	case customerGuest:
		id := c.guestUserID
		return nil, &id
	}
	return nil, nil
}

// CustomerRefFromColumns 從資料表欄位還原身份標記
// 兩者皆 nil 回傳零值 CustomerRef
func CustomerRefFromColumns(userID *int, guestUserID *int) CustomerRef {
	if userID != nil {
		return NewRegisteredCustomer(*userID)
	}
	if guestUserID != nil {
		return NewGuestCustomer(*guestUserID)
	}
	return CustomerRef{}
}
