package estimator

import (
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"holter-processor/internal/models"
)

func TestRespirationRateFromChestMotion(t *testing.T) {
	const fs = 10.0
	start := time.Date(2020, 5, 13, 8, 0, 0, 0, time.UTC)

	// 仰卧 + 0.25 Hz（15 次/分）的胸壁起伏叠加在 Z 轴上
	n := int(120 * fs)
	accel := make([]models.AccelSample, n)
	for i := range accel {
		tSec := float64(i) / fs
		accel[i] = models.AccelSample{
			X: 0,
			Y: 0,
			Z: 1 + 0.05*math.Sin(2*math.Pi*0.25*tSec),
		}
	}

	est := NewRespirationRateEstimator(25*time.Second, 5*time.Second, 6, 30, zap.NewNop())
	estimates := est.Estimate(accel, fs, start)
	if len(estimates) == 0 {
		t.Fatal("no estimates produced")
	}

	warmedUp := start.Add(30 * time.Second)
	checked := 0
	for _, e := range estimates {
		if e.Timestamp.Before(warmedUp) {
			continue
		}
		checked++
		if e.BPM == nil {
			t.Fatalf("estimate at %s undefined after warm-up", e.Timestamp)
		}
		if math.Abs(*e.BPM-15) > 2.5 {
			t.Fatalf("estimate at %s = %.1f bpm, want ~15", e.Timestamp, *e.BPM)
		}
	}
	if checked == 0 {
		t.Fatal("no post-warm-up estimates checked")
	}
}

func TestRespirationRateStillBodyUndefined(t *testing.T) {
	const fs = 10.0
	accel := make([]models.AccelSample, int(60*fs))
	for i := range accel {
		accel[i] = models.AccelSample{X: 0, Y: 0, Z: 1}
	}

	est := NewRespirationRateEstimator(25*time.Second, 5*time.Second, 6, 30, zap.NewNop())
	estimates := est.Estimate(accel, fs, time.Now())
	for _, e := range estimates {
		if e.BPM != nil {
			t.Fatalf("motionless signal produced a rate: %.1f", *e.BPM)
		}
	}
}
