package dsp

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// DominantFrequency 在 [minHz, maxHz] 频带内寻找幅度谱的峰值
//
// 返回峰值频率（Hz）和突出度（峰值幅度与带内平均幅度之比）。
// 频带内无有效点或信号过短时返回 (0, 0)。
// 突出度供调用方判断峰是否可信；弱峰应报告 undefined 而不是硬用
func DominantFrequency(sig []float64, sampleRate, minHz, maxHz float64) (float64, float64) {
	if len(sig) < 4 || sampleRate <= 0 {
		return 0, 0
	}

	fft := fourier.NewFFT(len(sig))
	coeffs := fft.Coefficients(nil, sig)

	peakFreq := 0.0
	peakMag := 0.0
	sumMag := 0.0
	count := 0
	for i, c := range coeffs {
		freq := fft.Freq(i) * sampleRate
		if freq < minHz || freq > maxHz {
			continue
		}
		mag := cmplx.Abs(c)
		sumMag += mag
		count++
		if mag > peakMag {
			peakMag = mag
			peakFreq = freq
		}
	}
	if count == 0 || peakMag == 0 {
		return 0, 0
	}

	meanMag := sumMag / float64(count)
	if meanMag == 0 || math.IsNaN(meanMag) {
		return 0, 0
	}
	return peakFreq, peakMag / meanMag
}
