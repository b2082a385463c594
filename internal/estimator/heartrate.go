package estimator

import (
	"math"
	"time"

	"go.uber.org/zap"

	"holter-processor/internal/dsp"
	"holter-processor/internal/models"
)

// ECG 预处理参数
// 通带去除基线漂移和高频噪声，突出 QRS 波群；
// 高采样率的 ECG 先抽取到该上限附近再检测
const (
	ecgBandLowHz  = 3.0
	ecgBandHighHz = 33.3
	ecgMaxRate    = 100.0
)

// HeartRateEstimator 从 ECG 估计心率
//
// 规范方法：窗口内检出的 R 峰取平均峰间间隔换算为 bpm
// （不是峰计数折算；两者在整窗下近似，但平均间隔对窗口边界不敏感）
type HeartRateEstimator struct {
	window   slidingWindow
	minBPM   float64
	maxBPM   float64
	logger   *zap.Logger
}

// NewHeartRateEstimator 创建心率估计器
func NewHeartRateEstimator(window, interval time.Duration, minBPM, maxBPM float64, logger *zap.Logger) *HeartRateEstimator {
	return &HeartRateEstimator{
		window: slidingWindow{Window: window, Interval: interval},
		minBPM: minBPM,
		maxBPM: maxBPM,
		logger: logger,
	}
}

// Estimate 对整条 ECG 通道滚动估计心率
func (e *HeartRateEstimator) Estimate(ecg *models.Channel) []models.RateEstimate {
	rate := ecg.SampleRate
	samples := ecg.Samples

	// 高采样率先按块均值抽取，QRS 频带远低于抽取后的奈奎斯特频率
	if rate > ecgMaxRate*1.5 {
		factor := int(math.Ceil(rate / ecgMaxRate))
		samples = dsp.Decimate(samples, factor)
		rate = rate / float64(factor)
		e.logger.Debug("Decimated ECG before beat detection",
			zap.Float64("native_rate", ecg.SampleRate),
			zap.Float64("effective_rate", rate),
		)
	}

	// 带通 + 负差分：R 波变成窄而高的正向尖峰
	filtered := dsp.NewBandPass(rate, ecgBandLowHz, ecgBandHighHz).ApplyAll(samples)
	processed := dsp.NegDiff(filtered)

	return e.window.run(processed, rate, ecg.StartTime, func(segment []float64, fs float64) *float64 {
		return e.estimateWindow(segment, fs)
	})
}

// estimateWindow 单个窗口内的检峰与心率换算
func (e *HeartRateEstimator) estimateWindow(segment []float64, fs float64) *float64 {
	if len(segment) < 2 {
		return nil
	}

	// 阈值取窗口 99 分位的 75%，随信号幅度自适应
	threshold := dsp.Percentile(segment, 99) * 0.75
	if threshold <= 0 {
		// 平坦或全负的窗口不产生可信的峰
		return nil
	}

	// 上穿阈值记一次心搏；不应期抑制同一 QRS 的重复计数
	refractory := int(60 / e.maxBPM * fs)
	var beats []int
	lastBeat := -refractory
	for j := 0; j < len(segment)-1; j++ {
		if segment[j] < threshold && segment[j+1] >= threshold {
			if j-lastBeat >= refractory {
				beats = append(beats, j)
				lastBeat = j
			}
		}
	}

	// 少于 2 个峰无法得出间隔
	if len(beats) < 2 {
		return nil
	}

	meanInterval := float64(beats[len(beats)-1]-beats[0]) / float64(len(beats)-1) / fs
	bpm := 60 / meanInterval

	// 超出生理范围按 undefined 处理，绝不截断到边界
	if bpm < e.minBPM || bpm > e.maxBPM {
		return nil
	}
	return &bpm
}
