package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"holter-processor/internal/notifier"
)

// Run 处理输入目录下的全部 EDF 文件
//
// 文件之间无共享状态，可安全并行；单个文件失败只记录并继续，
// 不影响批次中的其他文件
func (p *Processor) Run(ctx context.Context) error {
	files, err := discoverEDFFiles(p.cfg.Input.Dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		p.logger.Warn("No EDF files found", zap.String("dir", p.cfg.Input.Dir))
		return nil
	}

	runID := uuid.New().String()
	p.logger.Info("Starting batch run",
		zap.String("run_id", runID),
		zap.Int("files", len(files)),
		zap.Int("workers", p.cfg.Input.Workers),
	)

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Input.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				p.processOne(ctx, runID, path)
			}
		}()
	}

feed:
	for _, path := range files {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- path:
		}
	}
	close(jobs)
	wg.Wait()

	p.logger.Info("Batch run finished", zap.String("run_id", runID))
	return ctx.Err()
}

// processOne 处理单个文件并发布完成通知；错误只隔离记录
func (p *Processor) processOne(ctx context.Context, runID, path string) {
	started := time.Now()
	result, err := p.ProcessFile(ctx, runID, path)

	summary := notifier.Summary{
		RunID:      runID,
		SourceFile: path,
		Start:      started,
		End:        time.Now(),
	}
	if err != nil {
		p.logger.Error("Failed to process file",
			zap.String("file", path),
			zap.Error(err),
		)
		summary.Error = err.Error()
	} else {
		p.logger.Info("Processed file",
			zap.String("file", path),
			zap.String("output", result.OutputFile),
			zap.Int("rows", result.Rows),
			zap.Duration("elapsed", time.Since(started)),
		)
		summary.OutputFile = result.OutputFile
		summary.Rows = result.Rows
	}

	if p.notify != nil {
		if err := p.notify.Publish(summary); err != nil {
			p.logger.Error("Failed to publish completion notice", zap.Error(err))
		}
	}
}

// discoverEDFFiles 列出目录下的 .edf / .EDF 文件
func discoverEDFFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input dir %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".edf") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}
