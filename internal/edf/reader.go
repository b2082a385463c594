// Package edf 实现 EDF（European Data Format）容器的最小读取器
//
// 只解析引擎需要的内容：每个信号的标签、采样率、起始时间和物理单位样本。
// 注释（EDF+ annotations）信号原样跳过
package edf

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

const headerBaseSize = 256

// Signal 单个信号的头信息与解码后的样本
type Signal struct {
	Label             string
	TransducerType    string
	PhysicalDimension string
	PhysicalMin       float64
	PhysicalMax       float64
	DigitalMin        int
	DigitalMax        int
	Prefiltering      string
	SamplesPerRecord  int
	SampleRate        float64 // 由 SamplesPerRecord / 记录时长得出
	Samples           []float64
}

// File 解码后的 EDF 文件
type File struct {
	Version            string
	PatientID          string
	RecordingID        string
	StartTime          time.Time
	DataRecords        int
	DataRecordDuration float64 // 秒
	Signals            []Signal
}

// SignalByLabel 按标签查找信号，找不到返回 nil
func (f *File) SignalByLabel(label string) *Signal {
	for i := range f.Signals {
		if f.Signals[i].Label == label {
			return &f.Signals[i]
		}
	}
	return nil
}

// ReadFile 读取并解码一个 EDF 文件
func ReadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open edf file: %w", err)
	}
	defer fh.Close()
	return Read(fh)
}

// Read 从流中解码 EDF 内容
func Read(r io.Reader) (*File, error) {
	header := make([]byte, headerBaseSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("failed to read edf header: %w", err)
	}

	f := &File{}
	cursor := 0
	next := func(n int) string {
		field := strings.TrimSpace(string(header[cursor : cursor+n]))
		cursor += n
		return field
	}

	f.Version = next(8)
	f.PatientID = next(80)
	f.RecordingID = next(80)
	startDate := next(8)
	startTime := next(8)
	next(8)  // header bytes，按字段自身推导，不信任文件内的数值
	next(44) // reserved

	records, err := strconv.Atoi(next(8))
	if err != nil {
		return nil, fmt.Errorf("invalid data record count: %w", err)
	}
	f.DataRecords = records

	duration, err := strconv.ParseFloat(next(8), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid data record duration: %w", err)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("non-positive data record duration: %g", duration)
	}
	f.DataRecordDuration = duration

	ns, err := strconv.Atoi(next(4))
	if err != nil || ns <= 0 {
		return nil, fmt.Errorf("invalid signal count: %q", string(header[252:256]))
	}

	f.StartTime, err = parseStartTime(startDate, startTime)
	if err != nil {
		return nil, err
	}

	if err := readSignalHeaders(r, f, ns); err != nil {
		return nil, err
	}
	if err := readDataRecords(r, f); err != nil {
		return nil, err
	}
	return f, nil
}

// parseStartTime 解析 dd.mm.yy / hh.mm.ss
// EDF 的世纪规则：yy >= 85 属于 1900 年代，否则属于 2000 年代
func parseStartTime(date, clock string) (time.Time, error) {
	d := strings.FieldsFunc(date, isDotOrColon)
	t := strings.FieldsFunc(clock, isDotOrColon)
	if len(d) != 3 || len(t) != 3 {
		return time.Time{}, fmt.Errorf("invalid start timestamp: %q %q", date, clock)
	}
	day, err1 := strconv.Atoi(d[0])
	month, err2 := strconv.Atoi(d[1])
	year, err3 := strconv.Atoi(d[2])
	hour, err4 := strconv.Atoi(t[0])
	minute, err5 := strconv.Atoi(t[1])
	second, err6 := strconv.Atoi(t[2])
	for _, err := range []error{err1, err2, err3, err4, err5, err6} {
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid start timestamp: %q %q", date, clock)
		}
	}
	if year >= 85 {
		year += 1900
	} else {
		year += 2000
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

func isDotOrColon(r rune) bool { return r == '.' || r == ':' }

// readSignalHeaders 读取按字段分组存放的信号头（每个字段连续 ns 份）
func readSignalHeaders(r io.Reader, f *File, ns int) error {
	size := ns * (16 + 80 + 8 + 8 + 8 + 8 + 8 + 80 + 8 + 32)
	block := make([]byte, size)
	if _, err := io.ReadFull(r, block); err != nil {
		return fmt.Errorf("failed to read signal headers: %w", err)
	}

	cursor := 0
	column := func(width int) []string {
		fields := make([]string, ns)
		for i := 0; i < ns; i++ {
			fields[i] = strings.TrimSpace(string(block[cursor : cursor+width]))
			cursor += width
		}
		return fields
	}

	labels := column(16)
	transducers := column(80)
	dims := column(8)
	physMins := column(8)
	physMaxs := column(8)
	digMins := column(8)
	digMaxs := column(8)
	prefilters := column(80)
	sampleCounts := column(8)
	column(32) // reserved

	f.Signals = make([]Signal, ns)
	for i := 0; i < ns; i++ {
		sig := &f.Signals[i]
		sig.Label = labels[i]
		sig.TransducerType = transducers[i]
		sig.PhysicalDimension = dims[i]
		sig.Prefiltering = prefilters[i]

		var err error
		if sig.PhysicalMin, err = strconv.ParseFloat(physMins[i], 64); err != nil {
			return fmt.Errorf("signal %q: invalid physical min: %w", sig.Label, err)
		}
		if sig.PhysicalMax, err = strconv.ParseFloat(physMaxs[i], 64); err != nil {
			return fmt.Errorf("signal %q: invalid physical max: %w", sig.Label, err)
		}
		if sig.DigitalMin, err = strconv.Atoi(digMins[i]); err != nil {
			return fmt.Errorf("signal %q: invalid digital min: %w", sig.Label, err)
		}
		if sig.DigitalMax, err = strconv.Atoi(digMaxs[i]); err != nil {
			return fmt.Errorf("signal %q: invalid digital max: %w", sig.Label, err)
		}
		if sig.SamplesPerRecord, err = strconv.Atoi(sampleCounts[i]); err != nil {
			return fmt.Errorf("signal %q: invalid samples per record: %w", sig.Label, err)
		}
		if sig.SamplesPerRecord <= 0 {
			return fmt.Errorf("signal %q: non-positive samples per record", sig.Label)
		}
		sig.SampleRate = float64(sig.SamplesPerRecord) / f.DataRecordDuration
	}
	return nil
}

// readDataRecords 读取全部数据记录并换算为物理单位
func readDataRecords(r io.Reader, f *File) error {
	scales := make([]float64, len(f.Signals))
	offsets := make([]float64, len(f.Signals))
	for i := range f.Signals {
		sig := &f.Signals[i]
		digRange := float64(sig.DigitalMax - sig.DigitalMin)
		if digRange == 0 {
			return fmt.Errorf("signal %q: zero digital range", sig.Label)
		}
		scales[i] = (sig.PhysicalMax - sig.PhysicalMin) / digRange
		offsets[i] = sig.PhysicalMin - float64(sig.DigitalMin)*scales[i]
		sig.Samples = make([]float64, 0, sig.SamplesPerRecord*maxInt(f.DataRecords, 0))
	}

	for rec := 0; f.DataRecords < 0 || rec < f.DataRecords; rec++ {
		for i := range f.Signals {
			sig := &f.Signals[i]
			raw := make([]int16, sig.SamplesPerRecord)
			if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
				if rec > 0 && i == 0 && err == io.EOF && f.DataRecords < 0 {
					// 记录数未知的文件以 EOF 结束
					return nil
				}
				return fmt.Errorf("failed to read data record %d: %w", rec, err)
			}
			for _, v := range raw {
				sig.Samples = append(sig.Samples, float64(v)*scales[i]+offsets[i])
			}
		}
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
