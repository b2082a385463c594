package estimator

import (
	"math"
	"time"

	"holter-processor/internal/dsp"
	"holter-processor/internal/models"
)

// 轴约定（设备固定在胸前）：
//   Y = 纵轴（头-脚方向，直立时重力沿 +Y）
//   Z = 背腹轴（仰卧时重力沿 +Z）
//   X = 横轴（左侧卧时重力沿 +X）
//
// tilt	 = asin(|gy|)，度，[0,90]：0 = 平躺平面，90 = 完全直立
// rotation = atan2(gx, -gz)，度，[-180,180]：
//   +180/-180 = 仰卧，+90 = 左侧卧，0 = 俯卧，-90 = 右侧卧，
//   随 rotation 递减依次经过 仰卧 → 左侧卧 → 俯卧 → 右侧卧 → 仰卧

// 分类阈值表。边界一侧闭一侧开，保证任意 (tilt, rotation)
// 恰好落入一个类别，既无重叠也无缝隙：
//
//	幅值 < faultMagnitude          → undefined（传感器故障）
//	tilt >= uprightTiltDeg          → UPRIGHT
//	tiltClassDeg <= tilt < upright  → TILT
//	tilt < tiltClassDeg，按 rotation r 分带：
//	  r >= 135 或 r < -135          → SUPINE
//	  45 <= r < 135                 → LEFT_SIDE
//	  -45 <= r < 45                 → PRONE
//	  -135 <= r < -45               → RIGHT_SIDE
const (
	faultMagnitude     = 0.25 // g，低于该值视为传感器掉线/平线
	uprightTiltDeg     = 75.0
	tiltClassDeg       = 30.0
	rotationDegenerate = 45.0 // tilt 超过此值时旋转角投影退化，不再报告
)

// OrientationEstimator 从加速度推断体位与角度
//
// 先用滑动平均分离出重力分量（抑制步态和瞬态加速度），
// 再按固定步长对平滑后的重力向量做几何换算与分类
type OrientationEstimator struct {
	SmoothWindow time.Duration // 平滑窗口，1-5s 合理
	Step         time.Duration // 输出步长，可比最终输出节拍更细
}

// NewOrientationEstimator 创建体位估计器
func NewOrientationEstimator(smoothWindow, step time.Duration) *OrientationEstimator {
	return &OrientationEstimator{SmoothWindow: smoothWindow, Step: step}
}

// Estimate 对整段加速度样本生成体位估计序列，每个平滑步长一条
func (e *OrientationEstimator) Estimate(accel []models.AccelSample, sampleRate float64, start time.Time) []models.OrientationEstimate {
	if len(accel) == 0 || sampleRate <= 0 {
		return nil
	}

	xs := make([]float64, len(accel))
	ys := make([]float64, len(accel))
	zs := make([]float64, len(accel))
	for i, s := range accel {
		xs[i] = s.X
		ys[i] = s.Y
		zs[i] = s.Z
	}

	windowSamples := int(e.SmoothWindow.Seconds() * sampleRate)
	if windowSamples < 1 {
		windowSamples = 1
	}
	gx := dsp.MovingAverage(xs, windowSamples)
	gy := dsp.MovingAverage(ys, windowSamples)
	gz := dsp.MovingAverage(zs, windowSamples)

	stepSamples := int(e.Step.Seconds() * sampleRate)
	if stepSamples < 1 {
		stepSamples = 1
	}

	var estimates []models.OrientationEstimate
	for i := 0; i < len(accel); i += stepSamples {
		ts := start.Add(time.Duration(float64(i) / sampleRate * float64(time.Second)))
		tilt, rotation, pos := Classify(gx[i], gy[i], gz[i])
		estimates = append(estimates, models.OrientationEstimate{
			Timestamp: ts,
			Tilt:      tilt,
			Rotation:  rotation,
			Position:  pos,
		})
	}
	return estimates
}

// Classify 将一个重力向量映射为 (tilt, rotation, position)
//
// 对 (tilt, rotation) 全域是全函数：要么三者都是 nil（故障哨兵），
// 要么 tilt 与体位必定有值。分类只依赖阈值表，确定且可审计
func Classify(gx, gy, gz float64) (*float64, *float64, *models.Position) {
	mag := math.Sqrt(gx*gx + gy*gy + gz*gz)
	if mag < faultMagnitude {
		// 三轴近零：不猜测体位
		return nil, nil, nil
	}
	gx /= mag
	gy /= mag
	gz /= mag

	tilt := math.Asin(clamp(math.Abs(gy), 0, 1)) * 180 / math.Pi
	rotation := math.Atan2(gx, -gz) * 180 / math.Pi

	var pos models.Position
	switch {
	case tilt >= uprightTiltDeg:
		pos = models.PositionUpright
	case tilt >= tiltClassDeg:
		pos = models.PositionTilt
	case rotation >= 135 || rotation < -135:
		pos = models.PositionSupine
	case rotation >= 45:
		pos = models.PositionLeftSide
	case rotation >= -45:
		pos = models.PositionProne
	default:
		pos = models.PositionRightSide
	}

	var rotOut *float64
	if tilt <= rotationDegenerate {
		rotOut = &rotation
	}
	return &tilt, rotOut, &pos
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
