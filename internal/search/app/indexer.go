package app

import (
	"context"
	"encoding/json"
	"fmt"

	videorepo "subtitle_platform_service/internal/video/repository"
	"subtitle_platform_service/pkg/database"
	"subtitle_platform_service/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// SearchDoc is the denormalized document stored per video
type SearchDoc struct {
	VideoID  string `json:"video_id"`
	Title    string `json:"title"`
	Language string `json:"language"`
	IsPublic bool   `json:"is_public"`
}

// KafkaMessageReader is the subset of kafka.Reader the indexer needs
type KafkaMessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Indexer consumes reindex requests and refreshes the redis search doc
type Indexer struct {
	reader    KafkaMessageReader
	videoRepo videorepo.VideoRepo
	docs      database.RedisRepository[SearchDoc]
}

// NewIndexer create an Indexer
func NewIndexer(reader KafkaMessageReader,
	videoRepo videorepo.VideoRepo,
	docs database.RedisRepository[SearchDoc],
) *Indexer {
	return &Indexer{reader: reader, videoRepo: videoRepo, docs: docs}
}

func docKey(videoID uint) string {
	return fmt.Sprintf("search:video:%d", videoID)
}

// HandleMessage index one video. Unknown payloads are dropped.
func (i *Indexer) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var req ReindexMessage
	if err := json.Unmarshal(msg.Value, &req); err != nil || req.VideoID == 0 {
		// 連線探測用的 ping 訊息也會走到這裡,直接略過
		return nil
	}

	video, err := i.videoRepo.GetByID(req.VideoID)
	if err != nil {
		// 影片不存在就把索引清掉
		i.docs.Del(ctx, docKey(req.VideoID))
		return nil
	}

	doc := SearchDoc{
		VideoID:  video.VideoID,
		Title:    video.Title,
		Language: video.Language,
		IsPublic: video.IsPublic,
	}
	return i.docs.Set(ctx, docKey(video.ID), doc, 0)
}

// Run consume until the context is cancelled
func (i *Indexer) Run(ctx context.Context) error {
	logger.Log.Info("search indexer started")
	for {
		msg, err := i.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Log.Info("search indexer stopped")
				return nil
			}
			return err
		}

		if err := i.HandleMessage(ctx, msg); err != nil {
			logger.Log.Error("index video failed", zap.String("err", err.Error()))
		}
	}
}
