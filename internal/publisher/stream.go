// Package publisher 将派生数据发布到 Redis Streams，供平台实时消费
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"holter-processor/internal/models"
)

// StreamPublisher Redis Streams 发布器
type StreamPublisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewStreamPublisher 创建发布器
func NewStreamPublisher(client *redis.Client, stream string, logger *zap.Logger) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream, logger: logger}
}

// rowMessage 发布到 Stream 的单行负载
type rowMessage struct {
	RunID      string    `json:"run_id"`
	SourceFile string    `json:"source_file"`
	Timestamp  time.Time `json:"timestamp"`
	RR         *float64  `json:"rr"`
	HR         *float64  `json:"hr"`
	PosIndex   *int      `json:"pos_index"`
	Position   *string   `json:"position"`
	Tilt       *float64  `json:"tilt"`
	Rotation   *float64  `json:"rotation"`
}

// PublishRows 将一个文件的输出行逐条 XADD 到 Stream
// 用 pipeline 减少往返；任何一条失败整体报错
func (p *StreamPublisher) PublishRows(ctx context.Context, runID, sourceFile string, rows []models.OutputRow) error {
	pipe := p.client.Pipeline()
	for _, row := range rows {
		payload, err := json.Marshal(rowMessage{
			RunID:      runID,
			SourceFile: sourceFile,
			Timestamp:  row.Timestamp,
			RR:         row.RR,
			HR:         row.HR,
			PosIndex:   row.PosIndex,
			Position:   row.Position,
			Tilt:       row.Tilt,
			Rotation:   row.Rotation,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal row: %w", err)
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			Values: map[string]interface{}{
				"data":      string(payload),
				"timestamp": row.Timestamp.Unix(),
			},
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", p.stream, err)
	}

	p.logger.Info("Published derived rows to stream",
		zap.String("stream", p.stream),
		zap.String("source_file", sourceFile),
		zap.Int("rows", len(rows)),
	)
	return nil
}
