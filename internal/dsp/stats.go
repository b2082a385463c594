package dsp

import (
	"math"
	"sort"
)

// MovingAverage 尾随滑动平均，输出与输入等长
// 前 window-1 个位置用可用样本的收缩窗口
func MovingAverage(src []float64, window int) []float64 {
	if window <= 1 {
		out := make([]float64, len(src))
		copy(out, src)
		return out
	}
	dst := make([]float64, len(src))
	sum := 0.0
	for i, x := range src {
		sum += x
		if i >= window {
			sum -= src[i-window]
			dst[i] = sum / float64(window)
		} else {
			dst[i] = sum / float64(i+1)
		}
	}
	return dst
}

// Median 中位数；空切片返回 NaN
func Median(src []float64) float64 {
	if len(src) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(src))
	copy(sorted, src)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Percentile 线性插值分位数，p 取 [0,100]
func Percentile(src []float64, p float64) float64 {
	if len(src) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(src))
	copy(sorted, src)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Mean 算术平均；空切片返回 NaN
func Mean(src []float64) float64 {
	if len(src) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range src {
		sum += x
	}
	return sum / float64(len(src))
}
