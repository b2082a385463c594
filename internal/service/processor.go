// Package service 组装估计引擎并驱动逐文件的批处理
package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"holter-processor/internal/aligner"
	"holter-processor/internal/config"
	"holter-processor/internal/database"
	"holter-processor/internal/dsp"
	"holter-processor/internal/edf"
	"holter-processor/internal/estimator"
	"holter-processor/internal/models"
	"holter-processor/internal/notifier"
	"holter-processor/internal/publisher"
	"holter-processor/internal/redisx"
	"holter-processor/internal/repository"
	"holter-processor/internal/writer"
)

// Processor 单文件处理流水线
//
// 每个文件是独立批任务：加载通道 → 三个估计器各自跑完 →
// 对齐到输出节拍 → 写出。文件之间不共享任何可变状态
type Processor struct {
	cfg    *config.Config
	logger *zap.Logger

	orientation *estimator.OrientationEstimator
	heartRate   *estimator.HeartRateEstimator
	respiration *estimator.RespirationRateEstimator
	align       *aligner.Aligner
	csv         *writer.CSVWriter

	// 可选的平台侧输出，未启用时为 nil
	db        *sql.DB
	vitals    *repository.VitalsRepository
	redisClient *redis.Client
	stream    *publisher.StreamPublisher
	notify    *notifier.Notifier
}

// Result 单个文件的处理结果
type Result struct {
	SourceFile string
	OutputFile string
	Rows       int
}

// NewProcessor 创建处理器并按配置连接可选的输出端
func NewProcessor(cfg *config.Config, logger *zap.Logger) (*Processor, error) {
	eng := cfg.Engine
	p := &Processor{
		cfg:    cfg,
		logger: logger,
		orientation: estimator.NewOrientationEstimator(eng.SmoothWindow, eng.SmoothStep),
		heartRate: estimator.NewHeartRateEstimator(
			eng.HRWindow, eng.HRInterval, eng.HRMinBPM, eng.HRMaxBPM, logger),
		respiration: estimator.NewRespirationRateEstimator(
			eng.RRWindow, eng.RRInterval, eng.RRMinBPM, eng.RRMaxBPM, logger),
		align: aligner.NewAligner(eng.OutputFrequency),
	}

	outDir := cfg.Output.Dir
	if outDir == "" {
		outDir = cfg.Input.Dir
	}
	p.csv = writer.NewCSVWriter(outDir)

	if cfg.Database.Enabled {
		db, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		p.db = db
		p.vitals = repository.NewVitalsRepository(db, logger)
	}

	if cfg.Redis.Enabled {
		client := redisx.NewClient(&cfg.Redis)
		if err := redisx.Ping(context.Background(), client); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		p.redisClient = client
		p.stream = publisher.NewStreamPublisher(client, cfg.Redis.Stream, logger)
	}

	if cfg.MQTT.Enabled {
		n, err := notifier.NewNotifier(&cfg.MQTT, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
		}
		p.notify = n
	}

	return p, nil
}

// Close 释放外部连接
func (p *Processor) Close() {
	if p.db != nil {
		if err := database.Close(p.db); err != nil {
			p.logger.Error("Error closing database connection", zap.Error(err))
		}
	}
	if p.redisClient != nil {
		if err := p.redisClient.Close(); err != nil {
			p.logger.Error("Error closing Redis client", zap.Error(err))
		}
	}
	if p.notify != nil {
		p.notify.Disconnect()
	}
}

// ProcessFile 对一个 EDF 文件跑完整条流水线
func (p *Processor) ProcessFile(ctx context.Context, runID, path string) (*Result, error) {
	recording, err := p.loadRecording(path)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Recording loaded",
		zap.String("file", path),
		zap.Time("start", recording.StartTime),
		zap.Time("end", recording.EndTime()),
		zap.Float64("ecg_rate", recording.ECG.SampleRate),
		zap.Float64("accel_rate", recording.AccelRate()),
	)

	accel := recording.AccelSamples()
	accelRate := recording.AccelRate()

	// 三个估计器互不依赖，按顺序执行（文件间另行并行）
	orientEstimates := p.orientation.Estimate(accel, accelRate, recording.StartTime)
	hrEstimates := p.heartRate.Estimate(recording.ECG)
	rrEstimates := p.respiration.Estimate(accel, accelRate, recording.StartTime)

	rows := p.align.Align(recording.StartTime, recording.EndTime(),
		orientEstimates, hrEstimates, rrEstimates)

	outPath, err := p.csv.Write(path, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to write output for %s: %w", path, err)
	}

	if p.vitals != nil {
		if err := p.vitals.InsertRows(runID, path, rows); err != nil {
			return nil, fmt.Errorf("failed to store rows for %s: %w", path, err)
		}
	}
	if p.stream != nil {
		if err := p.stream.PublishRows(ctx, runID, path, rows); err != nil {
			return nil, fmt.Errorf("failed to publish rows for %s: %w", path, err)
		}
	}

	return &Result{SourceFile: path, OutputFile: outPath, Rows: len(rows)}, nil
}

// loadRecording 读取 EDF 并校验引擎的输入契约
func (p *Processor) loadRecording(path string) (*models.Recording, error) {
	file, err := edf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	required := []string{
		models.ChannelECG,
		models.ChannelAccelX,
		models.ChannelAccelY,
		models.ChannelAccelZ,
	}
	channels := make(map[string]*models.Channel, len(required))
	for _, label := range required {
		sig := file.SignalByLabel(label)
		if sig == nil {
			return nil, fmt.Errorf("missing required channel %q in %s", label, path)
		}
		if sig.SampleRate < models.MinSampleRate {
			return nil, fmt.Errorf("channel %q sample rate %.2f Hz below minimum %.1f Hz",
				label, sig.SampleRate, models.MinSampleRate)
		}
		channels[label] = &models.Channel{
			Label:      label,
			SampleRate: sig.SampleRate,
			StartTime:  file.StartTime,
			Samples:    sig.Samples,
		}
	}

	recording := &models.Recording{
		SourceFile: path,
		StartTime:  file.StartTime,
		ECG:        channels[models.ChannelECG],
		AccelX:     channels[models.ChannelAccelX],
		AccelY:     channels[models.ChannelAccelY],
		AccelZ:     channels[models.ChannelAccelZ],
	}
	normalizeGravity(recording)
	return recording, nil
}

// normalizeGravity 用整段录制的加速度模长中位数归一化三轴
// 归一化后静止时模长约为 1，分类阈值与物理单位解耦
func normalizeGravity(r *models.Recording) {
	n := len(r.AccelX.Samples)
	if len(r.AccelY.Samples) < n {
		n = len(r.AccelY.Samples)
	}
	if len(r.AccelZ.Samples) < n {
		n = len(r.AccelZ.Samples)
	}
	if n == 0 {
		return
	}

	mags := make([]float64, n)
	for i := 0; i < n; i++ {
		x := r.AccelX.Samples[i]
		y := r.AccelY.Samples[i]
		z := r.AccelZ.Samples[i]
		mags[i] = math.Sqrt(x*x + y*y + z*z)
	}
	grav := dsp.Median(mags)
	if grav <= 0 || math.IsNaN(grav) {
		// 整段平线：保持原样，分类器会报告 undefined
		return
	}
	for i := range r.AccelX.Samples {
		r.AccelX.Samples[i] /= grav
	}
	for i := range r.AccelY.Samples {
		r.AccelY.Samples[i] /= grav
	}
	for i := range r.AccelZ.Samples {
		r.AccelZ.Samples[i] /= grav
	}
}
