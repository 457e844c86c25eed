package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/appcontext"
	"github.com/RoyceAzure/lab/shop/internal/config"
	"github.com/rs/zerolog/log"
)

func main() {
	app, err := appcontext.NewApplicationContext(config.GetConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("init application context failed")
	}
	defer app.Close()

	if app.Cf.SeedOnStart {
		if err := app.ProductService.SeedCatalog(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("seed catalog failed")
		}
	}

	// 設置訊號監聽
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 逾期 Pending 訂單的外部 trigger
	// 回收本身是冪等的純掃描，這裡只是固定間隔去按它
	ticker := time.NewTicker(app.Cf.SweepInterval)
	defer ticker.Stop()

	log.Info().
		Dur("interval", app.Cf.SweepInterval).
		Dur("staleness", app.Cf.OrderStaleness).
		Msg("order lifecycle sweep started")

	for {
		select {
		case <-ticker.C:
			count, err := app.ReconcileService.ReconcilePendingOrders(ctx, app.Cf.OrderStaleness)
			if err != nil {
				log.Error().Err(err).Msg("reconcile pending orders failed")
				continue
			}
			if count > 0 {
				log.Info().Int("rolled_back", count).Msg("reconcile pending orders done")
			}
		case <-sigChan:
			log.Info().Msg("received shutdown signal")
			return
		}
	}
}
