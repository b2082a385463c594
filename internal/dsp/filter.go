// Package dsp 提供估计引擎用到的基础信号处理：
// 带通滤波、滑动平均、抽取和窗口统计
package dsp

import "math"

// Biquad 二阶 IIR 滤波器（直接 I 型）
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	x1, x2     float64
	y1, y2     float64
}

// NewBandPass 构造带通滤波器
// 中心频率取通带的几何均值，Q 由带宽决定；系数按 a0 归一化
func NewBandPass(sampleRate, lowHz, highHz float64) *Biquad {
	f0 := math.Sqrt(lowHz * highHz)
	q := f0 / (highHz - lowHz)
	w0 := 2 * math.Pi * f0 / sampleRate
	sinw0 := math.Sin(w0)
	cosw0 := math.Cos(w0)
	alpha := sinw0 / (2 * q)

	a0 := 1 + alpha
	return &Biquad{
		b0: alpha / a0,
		b1: 0,
		b2: -alpha / a0,
		a1: -2 * cosw0 / a0,
		a2: (1 - alpha) / a0,
	}
}

// Apply 处理单个样本
func (f *Biquad) Apply(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// ApplyAll 处理整段信号，返回等长输出
func (f *Biquad) ApplyAll(src []float64) []float64 {
	dst := make([]float64, len(src))
	for i, x := range src {
		dst[i] = f.Apply(x)
	}
	return dst
}

// Reset 清空滤波器状态
func (f *Biquad) Reset() {
	f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
}

// NegDiff 负一阶差分：dst[i] = src[i] - src[i+1]
// 输出比输入短 1
func NegDiff(src []float64) []float64 {
	if len(src) < 2 {
		return nil
	}
	dst := make([]float64, len(src)-1)
	for i := 0; i < len(src)-1; i++ {
		dst[i] = src[i] - src[i+1]
	}
	return dst
}

// Decimate 按块均值抽取，factor 为抽取倍数
// 尾部不足一块的样本丢弃
func Decimate(src []float64, factor int) []float64 {
	if factor <= 1 {
		out := make([]float64, len(src))
		copy(out, src)
		return out
	}
	n := len(src) / factor
	dst := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < factor; j++ {
			sum += src[i*factor+j]
		}
		dst[i] = sum / float64(factor)
	}
	return dst
}
