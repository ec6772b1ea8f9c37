package app

import (
	"encoding/json"

	"subtitle_platform_service/internal/notification/domain"
	"subtitle_platform_service/pkg/database"
	"subtitle_platform_service/pkg/logger"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// amqpSender enqueues delivery jobs on RabbitMQ. Delivery runs in the
// notification worker, decoupled from the request that raised the event.
type amqpSender struct {
	rabbit database.RabbitRepo
	queue  string
}

// NewAMQPSender create a Sender publishing to the delivery queue
func NewAMQPSender(rabbit database.RabbitRepo, queue string) Sender {
	return &amqpSender{rabbit: rabbit, queue: queue}
}

func (s *amqpSender) SendNotification(teamID uint, url string, data map[string]interface{}) {
	job := domain.DeliveryJob{
		TeamID: teamID,
		URL:    url,
		Data:   data,
	}
	body, err := json.Marshal(job)
	if err != nil {
		logger.Log.Errorf("marshal delivery job failed:", err)
		return
	}

	err = s.rabbit.Publish(
		"",      // 預設 exchange
		s.queue, // queue 名稱
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		logger.Log.Error("publish delivery job failed",
			zap.Uint("team_id", teamID), zap.Error(err))
	}
}
