// Package writer 将派生序列写成下游表格兼容的 CSV
package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"holter-processor/internal/models"
)

// Columns 输出列的唯一权威定义
// 顺序与存在性必须与下游表格完全一致，不可调整
var Columns = []string{"Timestamp", "RR", "HR", "Pos_Index", "Position", "Tilt", "Rotation"}

const timestampLayout = "2006-01-02 15:04:05.000"

// CSVWriter CSV 输出器
type CSVWriter struct {
	dir string
}

// NewCSVWriter 创建 CSV 输出器，dir 为输出目录
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

// Write 写出一个文件的全部输出行，返回生成的文件路径
// sourceFile 用于派生输出文件名（.edf → .csv）
func (w *CSVWriter) Write(sourceFile string, rows []models.OutputRow) (string, error) {
	base := filepath.Base(sourceFile)
	ext := filepath.Ext(base)
	if strings.EqualFold(ext, ".edf") {
		base = base[:len(base)-len(ext)]
	}
	outPath := filepath.Join(w.dir, base+".csv")

	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(Columns); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Timestamp.Format(timestampLayout),
			formatFloat(row.RR),
			formatFloat(row.HR),
			formatInt(row.PosIndex),
			formatString(row.Position),
			formatFloat(row.Tilt),
			formatFloat(row.Rotation),
		}
		if err := cw.Write(record); err != nil {
			return "", fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to flush output: %w", err)
	}
	return outPath, nil
}

// undefined 值写成空单元格，绝不写 0 或 -1 之类的魔数
func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
