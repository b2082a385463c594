package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Stream   string // 派生数据发布到的 Stream 名称
}

// MQTTConfig MQTT配置
type MQTTConfig struct {
	Enabled  bool
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
	Topic    string // 处理完成通知发布的主题
}

// EngineConfig 信号估计引擎配置
// 窗口/间隔对应原工具的 window_length / calc_every 参数
type EngineConfig struct {
	HRWindow     time.Duration // 心率滑动窗口长度
	HRInterval   time.Duration // 心率重算间隔
	RRWindow     time.Duration // 呼吸率滑动窗口长度
	RRInterval   time.Duration // 呼吸率重算间隔
	SmoothWindow time.Duration // 重力分量平滑窗口（1-5s 合理）
	SmoothStep   time.Duration // 体位估计输出步长

	HRMinBPM float64 // 心率生理下限
	HRMaxBPM float64 // 心率生理上限
	RRMinBPM float64 // 呼吸率生理下限
	RRMaxBPM float64 // 呼吸率生理上限

	OutputFrequency float64 // 输出行间隔频率（Hz）
}

// Config Holter处理服务配置
type Config struct {
	Input struct {
		Dir     string // EDF 文件所在目录
		Workers int    // 并行处理的文件数
	}
	Output struct {
		Dir string // CSV 输出目录，空则与输入目录相同
	}
	Engine   EngineConfig
	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig
	Log      struct {
		Level  string
		Format string
	}
}

// Load 加载配置
// 优先读取环境变量，支持 .env 文件（不存在则忽略）
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Input.Dir = getEnv("INPUT_DIR", ".")
	cfg.Input.Workers = getEnvInt("WORKERS", 1)
	cfg.Output.Dir = getEnv("OUTPUT_DIR", "")

	cfg.Engine.HRWindow = getEnvDuration("HR_WINDOW", 15*time.Second)
	cfg.Engine.HRInterval = getEnvDuration("HR_INTERVAL", 5*time.Second)
	cfg.Engine.RRWindow = getEnvDuration("RR_WINDOW", 25*time.Second)
	cfg.Engine.RRInterval = getEnvDuration("RR_INTERVAL", 5*time.Second)
	cfg.Engine.SmoothWindow = getEnvDuration("SMOOTH_WINDOW", 2*time.Second)
	cfg.Engine.SmoothStep = getEnvDuration("SMOOTH_STEP", time.Second)
	cfg.Engine.HRMinBPM = getEnvFloat("HR_MIN_BPM", 20)
	cfg.Engine.HRMaxBPM = getEnvFloat("HR_MAX_BPM", 250)
	cfg.Engine.RRMinBPM = getEnvFloat("RR_MIN_BPM", 6)
	cfg.Engine.RRMaxBPM = getEnvFloat("RR_MAX_BPM", 30)
	cfg.Engine.OutputFrequency = getEnvFloat("OUTPUT_FREQUENCY", 1.0)

	if cfg.Engine.OutputFrequency < 0.1 || cfg.Engine.OutputFrequency > 10 {
		return nil, fmt.Errorf("OUTPUT_FREQUENCY out of range [0.1, 10]: %g", cfg.Engine.OutputFrequency)
	}
	if cfg.Input.Workers < 1 {
		cfg.Input.Workers = 1
	}

	cfg.Database.Enabled = getEnvBool("DB_ENABLED", false)
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "owlrd")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 4)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 2)

	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", false)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.Stream = getEnv("REDIS_STREAM", "holter:vitals:stream")

	cfg.MQTT.Enabled = getEnvBool("MQTT_ENABLED", false)
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "holter-processor")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = byte(getEnvInt("MQTT_QOS", 1))
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "holter/processing/done")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration 支持 "15s" 形式，也接受纯数字（按秒解释）
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(n * float64(time.Second))
	}
	return defaultValue
}
