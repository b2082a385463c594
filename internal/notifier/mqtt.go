// Package notifier 在每个文件处理完成后向 MQTT 发布一条通知
package notifier

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"holter-processor/internal/config"
)

// Summary 单个文件的处理结果摘要
type Summary struct {
	RunID      string    `json:"run_id"`
	SourceFile string    `json:"source_file"`
	OutputFile string    `json:"output_file,omitempty"`
	Rows       int       `json:"rows"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Error      string    `json:"error,omitempty"`
}

// Notifier MQTT完成通知器
type Notifier struct {
	client mqtt.Client
	cfg    *config.MQTTConfig
	logger *zap.Logger
}

// NewNotifier 连接MQTT broker并创建通知器
func NewNotifier(cfg *config.MQTTConfig, logger *zap.Logger) (*Notifier, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &Notifier{client: client, cfg: cfg, logger: logger}, nil
}

// Publish 发布一条处理完成通知
func (n *Notifier) Publish(summary Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	token := n.client.Publish(n.cfg.Topic, n.cfg.QoS, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", n.cfg.Topic, token.Error())
	}

	n.logger.Debug("Published completion notice",
		zap.String("topic", n.cfg.Topic),
		zap.String("source_file", summary.SourceFile),
	)
	return nil
}

// Disconnect 断开连接
func (n *Notifier) Disconnect() {
	n.client.Disconnect(250)
}
