package estimator

import (
	"math"
	"testing"
	"time"

	"holter-processor/internal/models"
)

func TestClassifySupine(t *testing.T) {
	tilt, rotation, pos := Classify(0, 0, 1)
	if tilt == nil || math.Abs(*tilt) > 1e-9 {
		t.Fatalf("tilt = %v, want 0", ptrVal(tilt))
	}
	if rotation == nil || math.Abs(math.Abs(*rotation)-180) > 1e-9 {
		t.Fatalf("rotation = %v, want ±180", ptrVal(rotation))
	}
	if pos == nil || *pos != models.PositionSupine {
		t.Fatalf("position = %v, want SUPINE", pos)
	}
}

func TestClassifyUpright(t *testing.T) {
	tilt, rotation, pos := Classify(0, 1, 0)
	if tilt == nil || math.Abs(*tilt-90) > 1e-9 {
		t.Fatalf("tilt = %v, want 90", ptrVal(tilt))
	}
	if rotation != nil {
		t.Fatalf("rotation should be undefined near upright, got %v", *rotation)
	}
	if pos == nil || *pos != models.PositionUpright {
		t.Fatalf("position = %v, want UPRIGHT", pos)
	}
}

func TestClassifySensorFault(t *testing.T) {
	tilt, rotation, pos := Classify(0, 0, 0)
	if tilt != nil || rotation != nil || pos != nil {
		t.Fatal("flatline must yield undefined, not a guessed class")
	}
}

// 在 tilt=0 平面上连续旋转重力向量一整圈：
// rotation 单调扫过 [-180,180]，依次且仅经过四个命名类别
func TestClassifyRotationSweep(t *testing.T) {
	expectedBand := func(r float64) models.Position {
		switch {
		case r >= 135 || r < -135:
			return models.PositionSupine
		case r >= 45:
			return models.PositionLeftSide
		case r >= -45:
			return models.PositionProne
		default:
			return models.PositionRightSide
		}
	}

	var order []models.Position
	prev := math.Inf(1)
	for deg := 179; deg >= -180; deg-- {
		rad := float64(deg) * math.Pi / 180
		gx := math.Sin(rad)
		gz := -math.Cos(rad)
		tilt, rotation, pos := Classify(gx, 0, gz)
		if tilt == nil || *tilt > 1e-6 {
			t.Fatalf("deg=%d: tilt = %v, want 0", deg, ptrVal(tilt))
		}
		if rotation == nil {
			t.Fatalf("deg=%d: rotation undefined at tilt=0", deg)
		}
		if math.Abs(*rotation-float64(deg)) > 1e-6 {
			t.Fatalf("deg=%d: rotation = %.4f", deg, *rotation)
		}
		if *rotation >= prev {
			t.Fatalf("deg=%d: rotation not monotonically decreasing", deg)
		}
		prev = *rotation
		if pos == nil {
			t.Fatalf("deg=%d: no class assigned", deg)
		}
		if want := expectedBand(*rotation); *pos != want {
			t.Fatalf("deg=%d: position = %v, want %v", deg, *pos, want)
		}
		if len(order) == 0 || order[len(order)-1] != *pos {
			order = append(order, *pos)
		}
	}

	want := []models.Position{
		models.PositionSupine,
		models.PositionLeftSide,
		models.PositionProne,
		models.PositionRightSide,
		models.PositionSupine,
	}
	if len(order) != len(want) {
		t.Fatalf("class sequence = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("class sequence = %v, want %v", order, want)
		}
	}
}

func TestOrientationEstimatorConstantSupine(t *testing.T) {
	const fs = 10.0
	start := time.Date(2020, 5, 13, 8, 0, 0, 0, time.UTC)
	accel := make([]models.AccelSample, int(60*fs))
	for i := range accel {
		accel[i] = models.AccelSample{X: 0, Y: 0, Z: 1}
	}

	est := NewOrientationEstimator(2*time.Second, time.Second)
	estimates := est.Estimate(accel, fs, start)
	if len(estimates) != 60 {
		t.Fatalf("estimate count = %d, want 60", len(estimates))
	}
	for i, e := range estimates {
		if e.Position == nil || *e.Position != models.PositionSupine {
			t.Fatalf("estimate %d: position = %v, want SUPINE", i, e.Position)
		}
		if e.Tilt == nil || math.Abs(*e.Tilt) > 1e-6 {
			t.Fatalf("estimate %d: tilt = %v, want 0", i, ptrVal(e.Tilt))
		}
	}
}

func ptrVal(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
