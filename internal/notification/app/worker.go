package app

import (
	"context"
	"encoding/json"
	"log"

	"subtitle_platform_service/internal/notification/domain"
	"subtitle_platform_service/pkg/logger"

	"github.com/streadway/amqp"
)

// Consumer 消費 delivery queue，逐筆執行 webhook 發送
type Consumer struct {
	rabbitChannel *amqp.Channel
	delivery      DeliveryUseCase
	queueName     string
}

// NewConsumer 建構 Consumer 實例
func NewConsumer(rabbitChannel *amqp.Channel, delivery DeliveryUseCase, queueName string) *Consumer {
	return &Consumer{
		rabbitChannel: rabbitChannel,
		delivery:      delivery,
		queueName:     queueName,
	}
}

// StartConsumer 開始消費訊息。Deliveries run one at a time per consumer, the
// repository's numbering loop resolves races between parallel workers.
func (c *Consumer) StartConsumer(ctx context.Context) {
	msgs, err := c.rabbitChannel.Consume(
		c.queueName,
		"",    // consumer tag，留空由系統分配
		false, // autoAck 為 false，使用手動確認
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // arguments
	)
	if err != nil {
		log.Fatalf("unable to consume delivery queue: %v", err)
	}

	log.Println("notification consumer started, waiting for delivery jobs...")

	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				log.Println("delivery queue channel closed")
				return
			}

			var job domain.DeliveryJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				logger.Log.Errorf("decode delivery job failed:", err)
				// 無法解析的訊息直接丟棄，requeue 只會無限循環
				if err := d.Nack(false, false); err != nil {
					log.Printf("Nack failed: %v", err)
				}
				continue
			}

			// DoHTTPPost 只會在 storage 出錯時回傳 error，
			// webhook 本身的失敗已記錄在 ledger，不 requeue
			if err := c.delivery.DoHTTPPost(ctx, job.TeamID, job.URL, job.Data); err != nil {
				logger.Log.Errorf("record delivery attempt failed:", err)
				if err := d.Nack(false, true); err != nil {
					log.Printf("Nack failed: %v", err)
				}
				continue
			}

			if err := d.Ack(false); err != nil {
				log.Printf("Ack failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("notification consumer stopped")
			return
		}
	}
}
