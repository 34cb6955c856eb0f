package processor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	applog "resume-processor/internal/logger"
)

// ResumeProcessor 组合文本提取与记录解析两个阶段
// 每次调用自包含，调用之间不共享可变状态，不同文档可以并发处理
type ResumeProcessor struct {
	textExtractor   TextExtractor
	recordExtractor RecordExtractor
	logger          zerolog.Logger
}

// Option 处理器的配置选项
type Option func(*ResumeProcessor)

// WithTextExtractor 设置文本提取器组件
func WithTextExtractor(extractor TextExtractor) Option {
	return func(p *ResumeProcessor) {
		p.textExtractor = extractor
	}
}

// WithRecordExtractor 设置记录提取策略组件
func WithRecordExtractor(extractor RecordExtractor) Option {
	return func(p *ResumeProcessor) {
		p.recordExtractor = extractor
	}
}

// WithProcessorLogger 设置自定义日志记录器
func WithProcessorLogger(logger zerolog.Logger) Option {
	return func(p *ResumeProcessor) {
		p.logger = logger
	}
}

// NewResumeProcessor 创建处理器，组件通过选项注入
func NewResumeProcessor(options ...Option) *ResumeProcessor {
	p := &ResumeProcessor{
		logger: applog.Logger.With().Str("component", "resume_processor").Logger(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// ExtractText 仅执行文本提取阶段
func (p *ResumeProcessor) ExtractText(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	if p.textExtractor == nil {
		return "", nil, fmt.Errorf("未配置文本提取器")
	}
	text, metadata, err := p.textExtractor.ExtractFromFile(ctx, filePath)
	if err != nil {
		return "", nil, NewExtractError(filePath, err)
	}
	return text, metadata, nil
}

// ParseText 仅执行记录解析阶段
func (p *ResumeProcessor) ParseText(ctx context.Context, text string) (*ProcessResult, error) {
	if p.recordExtractor == nil {
		return nil, fmt.Errorf("未配置记录提取策略")
	}
	record, err := p.recordExtractor.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	return &ProcessResult{Text: text, Record: record}, nil
}

// ProcessFile 完整执行文档到记录的两段流水线
func (p *ResumeProcessor) ProcessFile(ctx context.Context, filePath string) (*ProcessResult, error) {
	text, metadata, err := p.ExtractText(ctx, filePath)
	if err != nil {
		return nil, err
	}

	if p.recordExtractor == nil {
		return nil, fmt.Errorf("未配置记录提取策略")
	}
	record, err := p.recordExtractor.Parse(ctx, text)
	if err != nil {
		return nil, NewParseError(filePath, err)
	}

	p.logger.Info().
		Str("file", filePath).
		Int("education", len(record.Education)).
		Int("experience", len(record.Experience)).
		Int("projects", len(record.Projects)).
		Msg("文档处理完成")

	return &ProcessResult{Text: text, Metadata: metadata, Record: record}, nil
}
