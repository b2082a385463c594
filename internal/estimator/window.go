// Package estimator 实现信号估计引擎：
// 体位/倾角估计、心率估计、呼吸率估计，以及它们共用的滑动窗口调度
package estimator

import (
	"time"

	"holter-processor/internal/models"
)

// windowFunc 对一个尾随窗口的样本段计算估计值
// 返回 nil 表示该窗口无法得出可靠估计
type windowFunc func(segment []float64, sampleRate float64) *float64

// slidingWindow 尾随窗口 + 周期重算的调度器
//
// 心率与呼吸率估计共用同一机制：每隔 Interval 对最近 Window 时长的
// 样本重算一次。录制开头窗口不足时收缩到可用样本（统一的预热策略）
type slidingWindow struct {
	Window   time.Duration
	Interval time.Duration
}

// run 在整段信号上滚动计算，返回按时间递增的估计序列
// 每个估计的时间戳是其窗口的右端点
func (w *slidingWindow) run(samples []float64, sampleRate float64, start time.Time, compute windowFunc) []models.RateEstimate {
	if sampleRate <= 0 || len(samples) == 0 {
		return nil
	}

	windowSamples := int(w.Window.Seconds() * sampleRate)
	stepSamples := int(w.Interval.Seconds() * sampleRate)
	if stepSamples < 1 {
		stepSamples = 1
	}

	var estimates []models.RateEstimate
	for end := stepSamples; end <= len(samples); end += stepSamples {
		begin := end - windowSamples
		if begin < 0 {
			begin = 0 // 预热期：收缩窗口
		}
		ts := start.Add(time.Duration(float64(end) / sampleRate * float64(time.Second)))
		estimates = append(estimates, models.RateEstimate{
			Timestamp: ts,
			BPM:       compute(samples[begin:end], sampleRate),
		})
	}
	return estimates
}
