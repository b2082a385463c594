package edf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"testing"
	"time"
)

// testSignal 测试用信号定义，gen 返回第 i 个样本的物理值
type testSignal struct {
	label string
	sps   int
	gen   func(i int) float64
}

const (
	testPhysMin = -4.0
	testPhysMax = 4.0
	testDigMin  = -32768
	testDigMax  = 32767
)

// buildEDF 按 EDF 规范拼出一个完整文件的字节流
// 记录时长固定 1 秒
func buildEDF(t *testing.T, startDate, startTime string, records int, signals []testSignal) []byte {
	t.Helper()
	var buf bytes.Buffer
	ns := len(signals)
	headerBytes := 256 + ns*256

	fixed := func(width int, format string, args ...interface{}) {
		s := fmt.Sprintf(format, args...)
		if len(s) > width {
			t.Fatalf("field %q exceeds %d bytes", s, width)
		}
		buf.WriteString(s)
		for len(s) < width {
			buf.WriteByte(' ')
			s += " "
		}
	}

	fixed(8, "0")
	fixed(80, "X X X X")
	fixed(80, "Startdate X X X X")
	fixed(8, "%s", startDate)
	fixed(8, "%s", startTime)
	fixed(8, "%d", headerBytes)
	fixed(44, "")
	fixed(8, "%d", records)
	fixed(8, "1")
	fixed(4, "%d", ns)

	for _, s := range signals {
		fixed(16, "%s", s.label)
	}
	for range signals {
		fixed(80, "")
	}
	for range signals {
		fixed(8, "g")
	}
	for range signals {
		fixed(8, "%g", testPhysMin)
	}
	for range signals {
		fixed(8, "%g", testPhysMax)
	}
	for range signals {
		fixed(8, "%d", testDigMin)
	}
	for range signals {
		fixed(8, "%d", testDigMax)
	}
	for range signals {
		fixed(80, "")
	}
	for _, s := range signals {
		fixed(8, "%d", s.sps)
	}
	for range signals {
		fixed(32, "")
	}

	scale := (testPhysMax - testPhysMin) / float64(testDigMax-testDigMin)
	for rec := 0; rec < records; rec++ {
		for _, s := range signals {
			for i := 0; i < s.sps; i++ {
				phys := s.gen(rec*s.sps + i)
				dig := int16(math.Round((phys - testPhysMin) / scale + float64(testDigMin)))
				if err := binary.Write(&buf, binary.LittleEndian, dig); err != nil {
					t.Fatalf("failed to encode sample: %v", err)
				}
			}
		}
	}
	return buf.Bytes()
}

func TestReadHeaderAndSignals(t *testing.T) {
	signals := []testSignal{
		{label: "ECG", sps: 100, gen: func(i int) float64 { return math.Sin(float64(i) / 10) }},
		{label: "Accelerometer_X", sps: 25, gen: func(i int) float64 { return 0.5 }},
	}
	data := buildEDF(t, "13.05.20", "11.45.32", 3, signals)

	f, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	wantStart := time.Date(2020, 5, 13, 11, 45, 32, 0, time.UTC)
	if !f.StartTime.Equal(wantStart) {
		t.Errorf("start time = %s, want %s", f.StartTime, wantStart)
	}
	if f.DataRecords != 3 {
		t.Errorf("data records = %d, want 3", f.DataRecords)
	}
	if len(f.Signals) != 2 {
		t.Fatalf("signal count = %d, want 2", len(f.Signals))
	}

	ecg := f.SignalByLabel("ECG")
	if ecg == nil {
		t.Fatal("ECG signal not found")
	}
	if ecg.SampleRate != 100 {
		t.Errorf("ECG sample rate = %g, want 100", ecg.SampleRate)
	}
	if len(ecg.Samples) != 300 {
		t.Errorf("ECG sample count = %d, want 300", len(ecg.Samples))
	}

	accel := f.SignalByLabel("Accelerometer_X")
	if accel == nil {
		t.Fatal("Accelerometer_X signal not found")
	}
	if accel.SampleRate != 25 {
		t.Errorf("accel sample rate = %g, want 25", accel.SampleRate)
	}
	// 量化误差在一个数字刻度以内
	scale := (testPhysMax - testPhysMin) / float64(testDigMax-testDigMin)
	for i, v := range accel.Samples {
		if math.Abs(v-0.5) > scale {
			t.Fatalf("accel sample %d = %g, want ~0.5", i, v)
		}
	}
}

func TestReadCenturyRule(t *testing.T) {
	signals := []testSignal{
		{label: "ECG", sps: 16, gen: func(i int) float64 { return 0 }},
	}
	data := buildEDF(t, "01.02.99", "00.00.00", 1, signals)
	f, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if f.StartTime.Year() != 1999 {
		t.Errorf("year = %d, want 1999", f.StartTime.Year())
	}
}

func TestReadTruncatedFile(t *testing.T) {
	signals := []testSignal{
		{label: "ECG", sps: 16, gen: func(i int) float64 { return 0 }},
	}
	data := buildEDF(t, "01.02.20", "00.00.00", 2, signals)
	_, err := Read(bytes.NewReader(data[:len(data)-8]))
	if err == nil {
		t.Fatal("truncated file should fail")
	}
}

func TestSignalByLabelMissing(t *testing.T) {
	f := &File{Signals: []Signal{{Label: "ECG"}}}
	if f.SignalByLabel("Accelerometer_Z") != nil {
		t.Fatal("missing label should return nil")
	}
}
