package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrUserNotFound 會員不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrGuestUserNotFound 訪客不存在
	ErrGuestUserNotFound = errors.New("guest user not found")
)

type CustomerRepo struct {
	db *DbDao
}

func NewCustomerRepo(db *DbDao) *CustomerRepo {
	return &CustomerRepo{db: db}
}

func (s *CustomerRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	err := s.db.WithContext(ctx).Create(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// 錯誤:
//   - ErrUserNotFound: 會員不存在
func (s *CustomerRepo) GetUserByID(ctx context.Context, userID int) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// 錯誤:
//   - ErrGuestUserNotFound: 訪客不存在
func (s *CustomerRepo) GetGuestUserByID(ctx context.Context, guestUserID int) (*model.GuestUser, error) {
	var guest model.GuestUser
	err := s.db.WithContext(ctx).First(&guest, "guest_user_id = ?", guestUserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuestUserNotFound
		}
		return nil, err
	}
	return &guest, nil
}

// GetOrCreateGuestByEmail 以 email 去重的訪客 resolve-or-create
// 已存在則沿用既有訪客，本次帶入的姓名電話不覆寫
// 並發重複建立由 unique 約束吸收（OnConflict DoNothing 後重查），不回傳衝突
func (s *CustomerRepo) GetOrCreateGuestByEmail(ctx context.Context, guest *model.GuestUser) (*model.GuestUser, error) {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(guest).Error
	if err != nil {
		return nil, err
	}

	var found model.GuestUser
	if err := s.db.WithContext(ctx).Where("email = ?", guest.Email).First(&found).Error; err != nil {
		return nil, err
	}
	return &found, nil
}
