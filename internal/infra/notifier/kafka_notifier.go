package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// ErrNotifierClosed 通知器已關閉，不再接受發送
var ErrNotifierClosed = errors.New("notifier is closed")

// Notifier 訂單確認通知
// best effort，呼叫端不得因通知失敗回滾訂單
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order *model.Order) error
	Close() error
}

// OrderConfirmationMessage 發佈給外部寄信服務的訂單確認訊息
type OrderConfirmationMessage struct {
	OrderID    string          `json:"order_id"`
	TrackingID string          `json:"tracking_id"`
	UserID     *int            `json:"user_id,omitempty"`
	GuestID    *int            `json:"guest_user_id,omitempty"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

type KafkaNotifier struct {
	writer *kafka.Writer
	closed atomic.Bool
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,

		// 重連機制設置
		Transport: &kafka.Transport{
			Dial: func(ctx context.Context, network string, address string) (net.Conn, error) {
				dialer := &kafka.Dialer{
					Timeout:   10 * time.Second, // 連接超時
					DualStack: true,             // 支援 IPv4/IPv6
					KeepAlive: 30 * time.Second, // TCP keepalive
				}
				return dialer.DialContext(ctx, network, address)
			},
		},

		// 錯誤處理
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error().Msgf("kafka notifier error: "+msg, args...)
		}),

		// 壓縮設置
		Compression: kafka.Snappy,
	}

	return &KafkaNotifier{writer: writer}
}

func (n *KafkaNotifier) SendOrderConfirmation(ctx context.Context, order *model.Order) error {
	if n.closed.Load() {
		return ErrNotifierClosed
	}

	msg := OrderConfirmationMessage{
		OrderID:    order.OrderID,
		TrackingID: order.TrackingID,
		UserID:     order.UserID,
		GuestID:    order.GuestUserID,
		TotalPrice: order.TotalPrice,
		Status:     order.Status,
		CreatedAt:  order.CreatedAt,
	}
	value, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.OrderID),
		Value: value,
	})
}

func (n *KafkaNotifier) Close() error {
	if n.closed.CompareAndSwap(false, true) {
		return n.writer.Close()
	}
	return nil
}

var _ Notifier = (*KafkaNotifier)(nil)
