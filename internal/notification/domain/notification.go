package domain

import (
	"errors"
	"time"
)

// QueueName default delivery job queue name on RabbitMQ
const QueueName = "notification_delivery"

// DeliveryQueue queue name from config, falling back to the default. Producer
// and consumer must resolve the name the same way or jobs go nowhere.
func DeliveryQueue(configured string) string {
	if configured != "" {
		return configured
	}
	return QueueName
}

// Classified transport failure messages recorded on the ledger row.
const (
	ErrMsgConnection       = "Connection error"
	ErrMsgTimeout          = "Request timeout"
	ErrMsgTooManyRedirects = "Too many redirects"
)

// ErrNoSettings no notification settings registered for the team
var ErrNoSettings = errors.New("no notification settings for team")

// ErrNotificationNotFound ledger row not found
var ErrNotificationNotFound = errors.New("notification not found")

// TeamNotificationSettings 每個 team 最多一筆，決定 handler 與 webhook endpoint
type TeamNotificationSettings struct {
	ID     int64
	TeamID uint
	Type   string
	URL    string
}

// TeamNotification is one row of the append-only delivery ledger.
// Number is assigned lazily when the delivery attempt starts, never at
// construction time, so unsent notifications do not burn sequence numbers.
type TeamNotification struct {
	ID             int64
	TeamID         uint
	Number         *int
	URL            string
	Data           string
	Timestamp      time.Time
	ResponseStatus *int
	ErrorMessage   *string
}

// DeliveryJob queued payload consumed by the notification worker
type DeliveryJob struct {
	TeamID uint                   `json:"team_id"`
	URL    string                 `json:"url"`
	Data   map[string]interface{} `json:"data"`
}
