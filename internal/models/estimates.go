package models

import "time"

// Position 体位分类
// 索引值与下游表格约定一致，不可改变顺序
type Position int

const (
	PositionSupine    Position = 0 // 仰卧
	PositionProne     Position = 1 // 俯卧
	PositionTilt      Position = 2 // 倾斜（介于平躺与直立之间）
	PositionUpright   Position = 3 // 直立/坐位
	PositionLeftSide  Position = 4 // 左侧卧
	PositionRightSide Position = 5 // 右侧卧
)

var positionNames = map[Position]string{
	PositionSupine:    "SUPINE",
	PositionProne:     "PRONE",
	PositionTilt:      "TILT",
	PositionUpright:   "UPRIGHT",
	PositionLeftSide:  "LEFT_SIDE",
	PositionRightSide: "RIGHT_SIDE",
}

func (p Position) String() string {
	if name, ok := positionNames[p]; ok {
		return name
	}
	return "UNKNOWN"
}

// OrientationEstimate 某一时刻的体位估计
// 传感器故障（三轴全零）时所有字段为 nil，绝不猜测一个默认体位；
// 接近直立时旋转角的投影退化，Rotation 单独为 nil
type OrientationEstimate struct {
	Timestamp time.Time
	Tilt      *float64  // 倾角，度，[0,90]
	Rotation  *float64  // 旋转角，度，[-180,180]
	Position  *Position // 六类体位之一
}

// RateEstimate 滑动窗口得到的速率估计（心率或呼吸率共用）
// BPM 为 nil 表示该窗口无法得出可靠估计（峰不足、超出生理范围、预热期）
// nil 是合法且预期的输出，下游不得用 0 或 -1 之类的魔数代替
type RateEstimate struct {
	Timestamp time.Time
	BPM       *float64
}
