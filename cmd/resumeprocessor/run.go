package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"resume-processor/internal/logger"
	"resume-processor/internal/orchestrator"
	"resume-processor/internal/storage"
)

// handleRunCommand 启动目录轮询守护进程
func handleRunCommand() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc, err := buildProcessor(ctx, cfg, *strategy)
	if err != nil {
		return err
	}

	var options []orchestrator.OrchestratorOption
	if cfg.MinIO.Enabled {
		archive, err := storage.NewMinIO(ctx, &cfg.MinIO)
		if err != nil {
			return err
		}
		options = append(options, orchestrator.WithArchive(archive))
	}
	if cfg.Redis.Enabled {
		dedup, err := storage.NewRedisAdapter(&cfg.Redis)
		if err != nil {
			return err
		}
		defer dedup.Close()
		options = append(options, orchestrator.WithDeduplicator(dedup))
	}

	orch, err := orchestrator.NewOrchestrator(&cfg.Pipeline, proc, options...)
	if err != nil {
		return err
	}

	if *runOnce {
		return orch.RunOnce(ctx)
	}

	err = orch.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info().Msg("收到退出信号，守护进程结束")
		return nil
	}
	return err
}
