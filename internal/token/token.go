package token

import (
	"errors"
	"time"
)

var (
	// ErrInvalidToken token 無法解析或簽章不符
	ErrInvalidToken = errors.New("token is invalid")
	// ErrExpiredToken token 已過期
	ErrExpiredToken = errors.New("token has expired")
)

// Payload 解出來的會員身份
// 過期驗證在 Decode 時完成，拿到 Payload 即代表有效
type Payload struct {
	CustomerID int       `json:"customer_id"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiredAt  time.Time `json:"expired_at"`
}

// Decoder 驗證並解析 auth token
// 發token是外部auth center的事，這裡只消費
type Decoder interface {
	Decode(token string) (*Payload, error)
}
