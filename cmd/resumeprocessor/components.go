package main

import (
	"context"
	"fmt"
	"time"

	"resume-processor/internal/config"
	"resume-processor/internal/llm"
	"resume-processor/internal/logger"
	"resume-processor/internal/parser"
	"resume-processor/internal/processor"
)

// loadConfig 加载配置并初始化全局日志
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Logger)
	return cfg, nil
}

// buildTextExtractor 按配置构建文本提取器
// 默认走光栅化+OCR链路；use_native_pdf开启时直接读取PDF文本层
func buildTextExtractor(ctx context.Context, cfg *config.Config) (processor.TextExtractor, error) {
	if cfg.Pipeline.UseNativePDF {
		return parser.NewEinoPDFTextExtractor(ctx)
	}
	return parser.NewOCRTextExtractor(
		parser.WithOCRBinaries(cfg.OCR.Pdftoppm, cfg.OCR.Tesseract),
		parser.WithOCRLanguage(cfg.OCR.Language),
		parser.WithOCRDPI(cfg.OCR.DPI),
		parser.WithOCRMaxPages(cfg.OCR.MaxPages),
	), nil
}

// buildRecordExtractor 按策略名构建记录提取器
func buildRecordExtractor(cfg *config.Config, strategyName string) (processor.RecordExtractor, error) {
	if strategyName == "" {
		strategyName = cfg.Pipeline.Strategy
	}

	switch strategyName {
	case "heuristic":
		return parser.NewHeuristicExtractor(), nil
	case "llm":
		chatModel, err := llm.NewOpenRouterChatModel(
			cfg.OpenRouter.APIKey,
			cfg.OpenRouter.Model,
			cfg.OpenRouter.APIURL,
			llm.WithAttribution(cfg.OpenRouter.Referer, cfg.OpenRouter.Title),
		)
		if err != nil {
			return nil, fmt.Errorf("创建OpenRouter客户端失败: %w", err)
		}
		return parser.NewModelAssistedExtractor(chatModel,
			parser.WithLLMTimeout(time.Duration(cfg.OpenRouter.TimeoutSeconds)*time.Second),
			parser.WithLLMRetries(cfg.OpenRouter.MaxRetries, time.Duration(cfg.OpenRouter.RetryWaitSeconds)*time.Second),
		)
	default:
		return nil, fmt.Errorf("未知的提取策略 '%s'，支持: heuristic, llm", strategyName)
	}
}

// buildProcessor 组装完整的处理器
func buildProcessor(ctx context.Context, cfg *config.Config, strategyName string) (*processor.ResumeProcessor, error) {
	textExtractor, err := buildTextExtractor(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("创建文本提取器失败: %w", err)
	}
	recordExtractor, err := buildRecordExtractor(cfg, strategyName)
	if err != nil {
		return nil, err
	}
	return processor.NewResumeProcessor(
		processor.WithTextExtractor(textExtractor),
		processor.WithRecordExtractor(recordExtractor),
	), nil
}
