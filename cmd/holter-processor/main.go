package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"holter-processor/internal/config"
	"holter-processor/internal/logger"
	"holter-processor/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化Logger
	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "holter-processor")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting holter-processor",
		zap.String("input_dir", cfg.Input.Dir),
		zap.Float64("output_frequency", cfg.Engine.OutputFrequency),
		zap.Duration("hr_window", cfg.Engine.HRWindow),
		zap.Duration("rr_window", cfg.Engine.RRWindow),
	)

	processor, err := service.NewProcessor(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create processor", zap.Error(err))
	}
	defer processor.Close()

	// Ctrl-C / SIGTERM 时在文件边界停止
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		zapLogger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := processor.Run(ctx); err != nil && err != context.Canceled {
		zapLogger.Fatal("Batch run failed", zap.Error(err))
	}

	zapLogger.Info("Done")
}
