package token

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const minSecretKeySize = 32

// JWTMaker HMAC 簽章的 JWT 實作
// CreateToken 只給測試與本地開發用，正式簽發在外部auth center
type JWTMaker struct {
	secretKey string
}

func NewJWTMaker(secretKey string) (*JWTMaker, error) {
	if len(secretKey) < minSecretKeySize {
		return nil, errors.New("invalid key size: must be at least 32 characters")
	}
	return &JWTMaker{secretKey: secretKey}, nil
}

type jwtClaims struct {
	CustomerID int `json:"customer_id"`
	jwt.StandardClaims
}

func (m *JWTMaker) CreateToken(customerID int, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		CustomerID: customerID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(duration).Unix(),
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jwtToken.SignedString([]byte(m.secretKey))
}

// Decode 驗證簽章並解析
// 錯誤:
//   - ErrExpiredToken: token 已過期
//   - ErrInvalidToken: 其他所有解析/驗證失敗
func (m *JWTMaker) Decode(tokenStr string) (*Payload, error) {
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.secretKey), nil
	}

	jwtToken, err := jwt.ParseWithClaims(tokenStr, &jwtClaims{}, keyFunc)
	if err != nil {
		var verr *jwt.ValidationError
		if errors.As(err, &verr) && verr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := jwtToken.Claims.(*jwtClaims)
	if !ok || !jwtToken.Valid {
		return nil, ErrInvalidToken
	}

	return &Payload{
		CustomerID: claims.CustomerID,
		IssuedAt:   time.Unix(claims.IssuedAt, 0),
		ExpiredAt:  time.Unix(claims.ExpiresAt, 0),
	}, nil
}

var _ Decoder = (*JWTMaker)(nil)
