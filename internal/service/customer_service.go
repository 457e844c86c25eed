package service

import (
	"context"
	"errors"
	"regexp"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/shop/internal/token"
)

var (
	ErrInvalidEmail       = errors.New("guest email is missing or malformed")
	ErrCustomerUnresolved = errors.New("customer is neither registered nor guest")
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// GuestInput 訪客結帳帶入的聯絡資訊
type GuestInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

type ICustomerService interface {
	ResolveCustomer(ctx context.Context, authToken string, guest GuestInput) (model.CustomerRef, error)
}

// 會員/訪客身份統一走這裡解析
// token 有效 => 會員，訪客欄位忽略；否則走 email 去重的訪客流程
type CustomerService struct {
	customerRepo db.ICustomerRepository
	tokenDecoder token.Decoder
}

func NewCustomerService(customerRepo db.ICustomerRepository, tokenDecoder token.Decoder) *CustomerService {
	return &CustomerService{customerRepo: customerRepo, tokenDecoder: tokenDecoder}
}

// ResolveCustomer 解析結帳身份
// token 解析失敗或過期時靜默退回訪客流程，不報錯
// 訪客以 email 去重：已存在則沿用，本次帶入的姓名電話不覆寫
// 錯誤:
//   - ErrInvalidEmail: token 無效且訪客 email 缺漏或格式錯誤
//   - db.ErrUserNotFound: token 有效但會員不存在
func (s *CustomerService) ResolveCustomer(ctx context.Context, authToken string, guest GuestInput) (model.CustomerRef, error) {
	if authToken != "" {
		payload, err := s.tokenDecoder.Decode(authToken)
		if err == nil {
			user, err := s.customerRepo.GetUserByID(ctx, payload.CustomerID)
			if err != nil {
				return model.CustomerRef{}, err
			}
			return model.NewRegisteredCustomer(user.UserID), nil
		}
		// token 無效或過期 => 退回訪客流程
	}

	if !emailRegex.MatchString(guest.Email) {
		return model.CustomerRef{}, ErrInvalidEmail
	}

	guestUser, err := s.customerRepo.GetOrCreateGuestByEmail(ctx, &model.GuestUser{
		FirstName: guest.FirstName,
		LastName:  guest.LastName,
		Email:     guest.Email,
		Phone:     guest.Phone,
	})
	if err != nil {
		return model.CustomerRef{}, err
	}

	return model.NewGuestCustomer(guestUser.GuestUserID), nil
}

var _ ICustomerService = (*CustomerService)(nil)
