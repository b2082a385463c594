package estimator

import (
	"time"

	"go.uber.org/zap"

	"holter-processor/internal/dsp"
	"holter-processor/internal/models"
)

// minSpectralProminence 呼吸谱峰的最低突出度（峰值/带内均值）
// 低于该值说明带内没有主导的呼吸分量（通常是运动伪影），报告 undefined
const minSpectralProminence = 2.0

// RespirationRateEstimator 从加速度估计呼吸率
//
// 三轴求和得到与胸壁运动相关的信号，窗口内去中位数后做幅度谱，
// 只在呼吸频带内找主峰。该估计的置信度天然低于心率，
// 弱峰一律输出 undefined，不做任何截断或回填
type RespirationRateEstimator struct {
	window slidingWindow
	minBPM float64
	maxBPM float64
	logger *zap.Logger
}

// NewRespirationRateEstimator 创建呼吸率估计器
func NewRespirationRateEstimator(window, interval time.Duration, minBPM, maxBPM float64, logger *zap.Logger) *RespirationRateEstimator {
	return &RespirationRateEstimator{
		window: slidingWindow{Window: window, Interval: interval},
		minBPM: minBPM,
		maxBPM: maxBPM,
		logger: logger,
	}
}

// Estimate 对整段加速度样本滚动估计呼吸率
func (e *RespirationRateEstimator) Estimate(accel []models.AccelSample, sampleRate float64, start time.Time) []models.RateEstimate {
	total := make([]float64, len(accel))
	for i, s := range accel {
		total[i] = s.X + s.Y + s.Z
	}

	return e.window.run(total, sampleRate, start, func(segment []float64, fs float64) *float64 {
		return e.estimateWindow(segment, fs)
	})
}

func (e *RespirationRateEstimator) estimateWindow(segment []float64, fs float64) *float64 {
	if len(segment) < 8 {
		return nil
	}

	// 去中位数消除重力直流分量
	med := dsp.Median(segment)
	detrended := make([]float64, len(segment))
	for i, x := range segment {
		detrended[i] = x - med
	}

	minHz := e.minBPM / 60
	maxHz := e.maxBPM / 60
	freq, prominence := dsp.DominantFrequency(detrended, fs, minHz, maxHz)
	if freq == 0 || prominence < minSpectralProminence {
		return nil
	}

	bpm := freq * 60
	if bpm < e.minBPM || bpm > e.maxBPM {
		return nil
	}
	return &bpm
}
