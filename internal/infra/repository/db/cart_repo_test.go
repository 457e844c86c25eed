package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type CartRepoTestSuite struct {
	suite.Suite
	db          *gorm.DB
	cartRepo    *CartRepo
	productRepo *ProductRepo
	ctx         context.Context
}

func (suite *CartRepoTestSuite) SetupSuite() {
	suite.db = setupTestDB(&suite.Suite)
	dbDao := NewDbDao(suite.db)
	suite.cartRepo = NewCartRepo(dbDao)
	suite.productRepo = NewProductRepo(dbDao)
	suite.ctx = context.Background()
}

func (suite *CartRepoTestSuite) SetupTest() {
	cleanTables(suite.db)
}

func (suite *CartRepoTestSuite) TearDownSuite() {
	if suite.db == nil {
		return
	}
	sqlDB, _ := suite.db.DB()
	sqlDB.Close()
}

func (suite *CartRepoTestSuite) createTestProduct(stock uint) *model.Product {
	category, err := suite.productRepo.GetOrCreateCategory(suite.ctx, "Electronics", "Consumer electronics")
	require.NoError(suite.T(), err)

	product := &model.Product{
		Name:       "Smartphone",
		Price:      decimal.NewFromFloat(699.99),
		Stock:      stock,
		CategoryID: category.CategoryID,
	}
	require.NoError(suite.T(), suite.productRepo.CreateProduct(suite.ctx, product))
	return product
}

func (suite *CartRepoTestSuite) TestAddItem() {
	product := suite.createTestProduct(10)

	item, err := suite.cartRepo.AddItem(suite.ctx, "session-a", product.ProductID, 3)

	require.NoError(suite.T(), err)
	require.NotZero(suite.T(), item.CartItemID)
	require.Equal(suite.T(), 3, item.Quantity)
	require.True(suite.T(), item.Price.Equal(decimal.NewFromFloat(699.99)))
	require.True(suite.T(), item.LineTotal.Equal(decimal.NewFromFloat(2099.97)))

	stock, err := suite.productRepo.GetProductStock(suite.ctx, product.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 7, stock)
}

func (suite *CartRepoTestSuite) TestAddItem_MergesAtFirstPrice() {
	product := suite.createTestProduct(10)

	first, err := suite.cartRepo.AddItem(suite.ctx, "session-a", product.ProductID, 2)
	require.NoError(suite.T(), err)

	// 改價後再加入，合併明細沿用首次快照價
	product.Price = decimal.NewFromFloat(999.99)
	require.NoError(suite.T(), suite.productRepo.UpdateProduct(suite.ctx, product))

	second, err := suite.cartRepo.AddItem(suite.ctx, "session-a", product.ProductID, 3)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), first.CartItemID, second.CartItemID)
	require.Equal(suite.T(), 5, second.Quantity)
	require.True(suite.T(), second.Price.Equal(decimal.NewFromFloat(699.99)))

	items, err := suite.cartRepo.ListByCartKey(suite.ctx, "session-a")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), items, 1)
}

func (suite *CartRepoTestSuite) TestAddItem_StockNotEnough() {
	product := suite.createTestProduct(2)

	_, err := suite.cartRepo.AddItem(suite.ctx, "session-a", product.ProductID, 3)

	require.ErrorIs(suite.T(), err, ErrProductStockNotEnough)

	stock, err := suite.productRepo.GetProductStock(suite.ctx, product.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 2, stock)
}

func (suite *CartRepoTestSuite) TestAddItem_ProductNotFound() {
	_, err := suite.cartRepo.AddItem(suite.ctx, "session-a", 99999, 1)

	require.ErrorIs(suite.T(), err, ErrProductNotFound)
}

func (suite *CartRepoTestSuite) TestRemoveItem_RestoresStock() {
	product := suite.createTestProduct(10)

	item, err := suite.cartRepo.AddItem(suite.ctx, "session-a", product.ProductID, 4)
	require.NoError(suite.T(), err)

	err = suite.cartRepo.RemoveItem(suite.ctx, "session-a", item.CartItemID)
	require.NoError(suite.T(), err)

	stock, err := suite.productRepo.GetProductStock(suite.ctx, product.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 10, stock)

	items, err := suite.cartRepo.ListByCartKey(suite.ctx, "session-a")
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), items)
}

func (suite *CartRepoTestSuite) TestRemoveItem_WrongCartKey() {
	product := suite.createTestProduct(10)

	item, err := suite.cartRepo.AddItem(suite.ctx, "session-a", product.ProductID, 4)
	require.NoError(suite.T(), err)

	err = suite.cartRepo.RemoveItem(suite.ctx, "session-b", item.CartItemID)
	require.ErrorIs(suite.T(), err, ErrCartItemNotFound)
}

func (suite *CartRepoTestSuite) TestListByCartKey_ScopedPerKey() {
	product := suite.createTestProduct(10)

	_, err := suite.cartRepo.AddItem(suite.ctx, "session-a", product.ProductID, 2)
	require.NoError(suite.T(), err)
	_, err = suite.cartRepo.AddItem(suite.ctx, "session-b", product.ProductID, 3)
	require.NoError(suite.T(), err)

	itemsA, err := suite.cartRepo.ListByCartKey(suite.ctx, "session-a")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), itemsA, 1)
	require.Equal(suite.T(), 2, itemsA[0].Quantity)

	itemsB, err := suite.cartRepo.ListByCartKey(suite.ctx, "session-b")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), itemsB, 1)
	require.Equal(suite.T(), 3, itemsB[0].Quantity)
}

// 並發加入購物車不能把庫存扣成負數
// FOR UPDATE 鎖定商品列，後到的事務會看到已扣減的庫存
func (suite *CartRepoTestSuite) TestAddItem_ConcurrentLastUnit() {
	product := suite.createTestProduct(1)

	const workers = 2
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		cartKey := fmt.Sprintf("session-%d", i)
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			_, err := suite.cartRepo.AddItem(context.Background(), key, product.ProductID, 1)
			errs <- err
		}(cartKey)
	}
	wg.Wait()
	close(errs)

	var succeeded, rejected int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrProductStockNotEnough):
			rejected++
		default:
			suite.T().Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(suite.T(), 1, succeeded)
	require.Equal(suite.T(), 1, rejected)

	stock, err := suite.productRepo.GetProductStock(suite.ctx, product.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 0, stock)
}

func (suite *CartRepoTestSuite) TestGetUnattachedByIDs_MissingID() {
	product := suite.createTestProduct(10)

	item, err := suite.cartRepo.AddItem(suite.ctx, "session-a", product.ProductID, 1)
	require.NoError(suite.T(), err)

	_, err = suite.cartRepo.GetUnattachedByIDs(suite.ctx, []uint{item.CartItemID, 99999})
	require.ErrorIs(suite.T(), err, ErrCartItemNotFound)
}

func TestCartRepoTestSuite(t *testing.T) {
	suite.Run(t, new(CartRepoTestSuite))
}
