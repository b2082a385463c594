// Package repository 将派生序列落库（可选的回填通道）
package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"holter-processor/internal/models"
)

// VitalsRepository vitals_timeseries 表仓库
//
// 每个输出节拍一行；undefined 字段写 NULL。
// 表结构见 scripts/schema.sql
type VitalsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVitalsRepository 创建仓库
func NewVitalsRepository(db *sql.DB, logger *zap.Logger) *VitalsRepository {
	return &VitalsRepository{db: db, logger: logger}
}

// InsertRows 批量插入一个文件的全部输出行
// 单事务执行：要么整个文件入库，要么一行不留
func (r *VitalsRepository) InsertRows(runID, sourceFile string, rows []models.OutputRow) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO vitals_timeseries (
			run_id,
			source_file,
			timestamp,
			respiratory_rate,
			heart_rate,
			position_index,
			position,
			tilt,
			rotation
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(
			runID,
			sourceFile,
			row.Timestamp,
			row.RR,
			row.HR,
			row.PosIndex,
			row.Position,
			row.Tilt,
			row.Rotation,
		); err != nil {
			return fmt.Errorf("failed to insert row at %s: %w", row.Timestamp, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	r.logger.Info("Inserted derived rows",
		zap.String("source_file", sourceFile),
		zap.Int("rows", len(rows)),
	)
	return nil
}
