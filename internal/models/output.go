package models

import "time"

// OutputRow 最终派生序列的一行，每个输出节拍一行
// 字段顺序与导出表格的列顺序一一对应（见 writer 包的列定义）
type OutputRow struct {
	Timestamp time.Time
	RR        *float64 // 呼吸率 bpm，nil = undefined
	HR        *float64 // 心率 bpm，nil = undefined
	PosIndex  *int     // 体位索引 0-5，nil = undefined
	Position  *string  // 体位名称，nil = undefined
	Tilt      *float64 // 倾角，度
	Rotation  *float64 // 旋转角，度
}
