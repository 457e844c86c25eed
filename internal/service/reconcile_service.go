package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultOrderStaleness Pending 訂單逾期門檻
const DefaultOrderStaleness = time.Minute

// 單次掃描的並發回滾上限
const rollbackConcurrency = 4

type IReconcileService interface {
	ReconcilePendingOrders(ctx context.Context, staleness time.Duration) (int, error)
}

// 逾期 Pending 訂單的補償回收
// 純函數式掃描持久化的 created_at/status，自己不排程、不保留任何狀態
// 由外部 trigger（timer/cron/手動）呼叫
type ReconcileService struct {
	orderRepo db.IOrderRepository
}

func NewReconcileService(orderRepo db.IOrderRepository) *ReconcileService {
	return &ReconcileService{orderRepo: orderRepo}
}

// ReconcilePendingOrders 回滾逾期的 Pending 訂單
// staleness 未帶（<=0）用預設 1 分鐘
// 每張訂單獨立事務：還原預留庫存 + 刪除訂單，中途掛掉不會留下半回滾狀態
// 沒有符合的訂單時為空跑，冪等
// 回傳實際回滾的張數
func (s *ReconcileService) ReconcilePendingOrders(ctx context.Context, staleness time.Duration) (int, error) {
	if staleness <= 0 {
		staleness = DefaultOrderStaleness
	}

	before := time.Now().UTC().Add(-staleness)
	orders, err := s.orderRepo.GetStalePendingOrders(ctx, before)
	if err != nil {
		return 0, err
	}
	if len(orders) == 0 {
		return 0, nil
	}

	var rolledBack atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rollbackConcurrency)

	for _, order := range orders {
		orderID := order.OrderID
		g.Go(func() error {
			err := s.orderRepo.RollbackOrder(gctx, orderID)
			switch {
			case err == nil:
				rolledBack.Add(1)
				log.Info().Str("order_id", orderID).Msg("stale pending order rolled back")
			case errors.Is(err, db.ErrOrderNotFound):
				// 已被其他批次處理或已付款，跳過
			default:
				// 單筆失敗不中斷整批，留給下一輪掃描補償
				log.Error().Err(err).Str("order_id", orderID).Msg("rollback stale order failed")
			}
			return nil
		})
	}

	// worker 不回傳錯誤，Wait 只等收尾
	_ = g.Wait()

	return int(rolledBack.Load()), nil
}

var _ IReconcileService = (*ReconcileService)(nil)
