// Package aligner 将三条各自节奏的估计流重采样到统一的输出节拍
package aligner

import (
	"time"

	"holter-processor/internal/models"
)

// Aligner 前向填充重采样器
//
// 每个输出时刻取每类估计中最近一条时间戳不晚于该时刻的值：
// 窗口型估计在下次重算前一直保持（last-known-value）。
// 某类估计尚不存在时对应字段为 undefined，不做任何外推
type Aligner struct {
	Frequency float64 // 输出频率（Hz）
}

// NewAligner 创建重采样器
func NewAligner(frequency float64) *Aligner {
	return &Aligner{Frequency: frequency}
}

// Align 生成从 start 到 end（含）的等间隔输出行
//
// 输入流必须各自按时间递增；输出行严格递增且间隔恒为 1/Frequency，
// 即使估计器因采样抖动在不规则的真实时刻发出估计
func (a *Aligner) Align(start, end time.Time, orient []models.OrientationEstimate, hr, rr []models.RateEstimate) []models.OutputRow {
	if a.Frequency <= 0 || end.Before(start) {
		return nil
	}
	period := time.Duration(float64(time.Second) / a.Frequency)

	var rows []models.OutputRow
	oi, hi, ri := 0, 0, 0
	var lastOrient *models.OrientationEstimate
	var lastHR, lastRR *models.RateEstimate

	for tick := 0; ; tick++ {
		ts := start.Add(time.Duration(tick) * period)
		if ts.After(end) {
			break
		}

		for oi < len(orient) && !orient[oi].Timestamp.After(ts) {
			lastOrient = &orient[oi]
			oi++
		}
		for hi < len(hr) && !hr[hi].Timestamp.After(ts) {
			lastHR = &hr[hi]
			hi++
		}
		for ri < len(rr) && !rr[ri].Timestamp.After(ts) {
			lastRR = &rr[ri]
			ri++
		}

		row := models.OutputRow{Timestamp: ts}
		if lastHR != nil {
			row.HR = lastHR.BPM
		}
		if lastRR != nil {
			row.RR = lastRR.BPM
		}
		if lastOrient != nil {
			row.Tilt = lastOrient.Tilt
			row.Rotation = lastOrient.Rotation
			if lastOrient.Position != nil {
				idx := int(*lastOrient.Position)
				name := lastOrient.Position.String()
				row.PosIndex = &idx
				row.Position = &name
			}
		}
		rows = append(rows, row)
	}
	return rows
}
