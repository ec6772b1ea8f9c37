package app

import (
	"context"
	"encoding/json"
	"strconv"

	"subtitle_platform_service/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ReindexMessage is the payload carried on the reindex topic
type ReindexMessage struct {
	VideoID uint `json:"video_id"`
}

// KafkaMessageWriter is the subset of kafka.Writer the publisher needs
type KafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// ReindexPublisher 把「這支影片要重建索引」丟到 kafka,索引工作由
// search_indexer 非同步處理。失敗只記 log,不影響原本的操作。
type ReindexPublisher struct {
	writer KafkaMessageWriter
}

// NewReindexPublisher create a ReindexPublisher
func NewReindexPublisher(writer KafkaMessageWriter) *ReindexPublisher {
	return &ReindexPublisher{writer: writer}
}

// ReindexVideo publish a reindex request for one video
func (p *ReindexPublisher) ReindexVideo(ctx context.Context, videoID uint) {
	body, err := json.Marshal(ReindexMessage{VideoID: videoID})
	if err != nil {
		logger.Log.Error("marshal reindex message failed", zap.String("err", err.Error()))
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(videoID), 10)),
		Value: body,
	})
	if err != nil {
		logger.Log.Error("publish reindex message failed",
			zap.Uint("video_id", videoID), zap.String("err", err.Error()))
	}
}
