package dsp

import (
	"math"
	"testing"
)

func TestBandPassRejectsDC(t *testing.T) {
	f := NewBandPass(100, 3.0, 33.3)
	var last float64
	for i := 0; i < 500; i++ {
		last = f.Apply(1.0)
	}
	if math.Abs(last) > 0.05 {
		t.Errorf("DC not rejected: steady-state output %.4f", last)
	}
}

func TestBandPassPassesMidBand(t *testing.T) {
	const fs = 100.0
	f := NewBandPass(fs, 3.0, 33.3)

	// 通带几何中心正好是 10 Hz
	n := 400
	in := make([]float64, n)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		in[i] = math.Sin(2 * math.Pi * 10 * float64(i) / fs)
		out[i] = f.Apply(in[i])
	}

	// 跳过暂态，比较后半段 RMS
	rmsIn, rmsOut := rms(in[n/2:]), rms(out[n/2:])
	ratio := rmsOut / rmsIn
	if ratio < 0.8 || ratio > 1.2 {
		t.Errorf("mid-band gain = %.3f, want ~1.0", ratio)
	}
}

func TestNegDiff(t *testing.T) {
	got := NegDiff([]float64{3, 1, 4, 1})
	want := []float64{2, -3, 3}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NegDiff[%d] = %g, want %g", i, got[i], want[i])
		}
	}
	if NegDiff([]float64{1}) != nil {
		t.Error("single-sample input should return nil")
	}
}

func TestDecimate(t *testing.T) {
	got := Decimate([]float64{1, 3, 2, 4, 10, 20, 5}, 2)
	want := []float64{2, 3, 15}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Decimate[%d] = %g, want %g", i, got[i], want[i])
		}
	}
}

func rms(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(v)))
}
