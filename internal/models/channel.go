package models

import "time"

// 引擎要求的通道名称（EDF 信号标签）
const (
	ChannelECG    = "ECG"
	ChannelAccelX = "Accelerometer_X"
	ChannelAccelY = "Accelerometer_Y"
	ChannelAccelZ = "Accelerometer_Z"
)

// MinSampleRate 引擎接受的最低采样率（Hz）
// 低于该值的通道在上游被拒绝，引擎不会静默接受
const MinSampleRate = 12.5

// Channel 均匀采样的单通道信号
type Channel struct {
	Label      string    // 通道标签，如 "ECG"
	SampleRate float64   // 采样率（Hz）
	StartTime  time.Time // 录制开始的绝对时间
	Samples    []float64 // 物理单位的样本序列
}

// Duration 通道覆盖的时长
func (c *Channel) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(c.Samples)) / c.SampleRate * float64(time.Second))
}

// EndTime 最后一个样本之后的时间点
func (c *Channel) EndTime() time.Time {
	return c.StartTime.Add(c.Duration())
}

// TimeAt 第 i 个样本的绝对时间
func (c *Channel) TimeAt(i int) time.Time {
	return c.StartTime.Add(time.Duration(float64(i) / c.SampleRate * float64(time.Second)))
}

// AccelSample 同一时刻的三轴加速度（索引对齐）
type AccelSample struct {
	X float64
	Y float64
	Z float64
}

// Recording 单个文件解码后的全部引擎输入
// 所有派生数据都只在处理该文件期间存活，跨文件不保留任何状态
type Recording struct {
	SourceFile string
	StartTime  time.Time
	ECG        *Channel
	AccelX     *Channel
	AccelY     *Channel
	AccelZ     *Channel
}

// AccelSamples 将三个加速度通道按索引合并为三元组序列
// 长度取三者的最小值（理论上相同，防御尾部截断的录制）
func (r *Recording) AccelSamples() []AccelSample {
	n := len(r.AccelX.Samples)
	if len(r.AccelY.Samples) < n {
		n = len(r.AccelY.Samples)
	}
	if len(r.AccelZ.Samples) < n {
		n = len(r.AccelZ.Samples)
	}
	samples := make([]AccelSample, n)
	for i := 0; i < n; i++ {
		samples[i] = AccelSample{
			X: r.AccelX.Samples[i],
			Y: r.AccelY.Samples[i],
			Z: r.AccelZ.Samples[i],
		}
	}
	return samples
}

// AccelRate 加速度通道的采样率
func (r *Recording) AccelRate() float64 {
	return r.AccelX.SampleRate
}

// EndTime 录制结束时间（取 ECG 与加速度通道中较晚者）
func (r *Recording) EndTime() time.Time {
	end := r.ECG.EndTime()
	if accEnd := r.AccelX.EndTime(); accEnd.After(end) {
		end = accEnd
	}
	return end
}
