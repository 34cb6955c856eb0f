package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	applog "resume-processor/internal/logger"
	"resume-processor/internal/types"
)

// ModelAssistedExtractor 把提取工作委托给外部文本补全服务
// 与规则解析器共享同一套输出结构；与规则解析器尽力而为的策略不同，
// 服务调用失败、超时或回复无法通过校验时直接报错，不返回半成品记录
type ModelAssistedExtractor struct {
	llmModel model.ToolCallingChatModel

	// 解析标题分隔的markdown回复时复用规则解析器的章节逻辑
	heuristic *HeuristicExtractor

	// 回复JSON形态的校验Schema，构造时编译一次
	recordSchema *jsonschema.Schema

	callTimeout time.Duration
	maxRetries  int
	retryWait   time.Duration

	logger zerolog.Logger
}

// LLMExtractorOption 模型辅助提取器的配置选项
type LLMExtractorOption func(*ModelAssistedExtractor)

// WithLLMTimeout 设置单次补全调用的超时
func WithLLMTimeout(d time.Duration) LLMExtractorOption {
	return func(e *ModelAssistedExtractor) {
		if d > 0 {
			e.callTimeout = d
		}
	}
}

// WithLLMRetries 设置网络类错误的重试次数与首次等待时间
func WithLLMRetries(max int, wait time.Duration) LLMExtractorOption {
	return func(e *ModelAssistedExtractor) {
		if max >= 0 {
			e.maxRetries = max
		}
		if wait > 0 {
			e.retryWait = wait
		}
	}
}

// WithLLMLogger 配置自定义日志记录器
func WithLLMLogger(logger zerolog.Logger) LLMExtractorOption {
	return func(e *ModelAssistedExtractor) {
		e.logger = logger
	}
}

// WithReplyHeuristic 替换解析markdown回复用的规则解析器
func WithReplyHeuristic(h *HeuristicExtractor) LLMExtractorOption {
	return func(e *ModelAssistedExtractor) {
		if h != nil {
			e.heuristic = h
		}
	}
}

// NewModelAssistedExtractor 创建模型辅助提取器
func NewModelAssistedExtractor(llmModel model.ToolCallingChatModel, options ...LLMExtractorOption) (*ModelAssistedExtractor, error) {
	if llmModel == nil {
		return nil, fmt.Errorf("LLM模型不能为空")
	}

	recordSchema, err := jsonschema.CompileString("resume_record.json", resumeRecordSchemaJSON)
	if err != nil {
		return nil, fmt.Errorf("编译记录校验Schema失败: %w", err)
	}

	extractor := &ModelAssistedExtractor{
		llmModel:     llmModel,
		heuristic:    NewHeuristicExtractor(),
		recordSchema: recordSchema,
		callTimeout:  60 * time.Second,
		maxRetries:   2,
		retryWait:    2 * time.Second,
		logger:       applog.Logger.With().Str("component", "llm_extractor").Logger(),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor, nil
}

// Parse 通过补全服务将简历文本提取为规范记录
func (e *ModelAssistedExtractor) Parse(ctx context.Context, text string) (*types.ResumeRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	reply, err := e.callLLM(ctx, extractionSystemPrompt, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceFailure, err)
	}

	record, err := e.parseReply(ctx, reply)
	if err != nil {
		e.logger.Error().Err(err).Int("reply_len", len(reply)).Msg("补全回复无法解析为记录")
		return nil, err
	}
	return record, nil
}

// parseReply 解析补全回复
// 优先按JSON形态处理；JSON缺失或未通过校验、但回复带有可识别章节标题时
// 回退到markdown路径——markdown正文里夹带的花括号片段不应让整个回复失败
func (e *ModelAssistedExtractor) parseReply(ctx context.Context, reply string) (*types.ResumeRecord, error) {
	var jsonErr error
	if jsonStr := extractJSON(reply); jsonStr != "" {
		record, err := e.decodeJSONReply(jsonStr)
		if err == nil {
			return record, nil
		}
		jsonErr = err
	}

	if !hasAnySectionHeader(reply) {
		if jsonErr != nil {
			return nil, jsonErr
		}
		return nil, fmt.Errorf("%w: 回复既不含JSON也不含可识别的章节标题", ErrServiceFailure)
	}

	if jsonErr != nil {
		e.logger.Warn().Err(jsonErr).Msg("回复中的JSON未通过校验，回退到markdown解析")
	}
	record, err := e.heuristic.Parse(ctx, reply)
	if err != nil {
		return nil, fmt.Errorf("%w: 解析markdown回复失败: %v", ErrServiceFailure, err)
	}
	return record, nil
}

// decodeJSONReply 校验并解码JSON形态的回复
func (e *ModelAssistedExtractor) decodeJSONReply(jsonStr string) (*types.ResumeRecord, error) {
	var payload interface{}
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, fmt.Errorf("%w: 回复JSON无法解码: %v", ErrServiceFailure, err)
	}
	if err := e.recordSchema.Validate(payload); err != nil {
		return nil, fmt.Errorf("%w: 回复JSON未通过Schema校验: %v", ErrServiceFailure, err)
	}

	record := types.NewResumeRecord()
	if err := json.Unmarshal([]byte(jsonStr), record); err != nil {
		return nil, fmt.Errorf("%w: 回复JSON无法映射到记录结构: %v", ErrServiceFailure, err)
	}
	record.Normalize()
	return record, nil
}

// hasAnySectionHeader 检查文本中是否存在可识别的章节标题
func hasAnySectionHeader(text string) bool {
	for _, line := range splitLogicalLines(text) {
		if _, ok := matchSectionHeader(line); ok {
			return true
		}
	}
	return false
}

// callLLM 调用补全服务，网络类错误按退避重试
func (e *ModelAssistedExtractor) callLLM(ctx context.Context, systemContent, userContent string) (string, error) {
	messages := []*einoschema.Message{
		{Role: "system", Content: systemContent},
		{Role: "user", Content: userContent},
	}

	retryDelay := e.retryWait
	var response *einoschema.Message
	var err error

	for retry := 0; retry <= e.maxRetries; retry++ {
		if retry > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("上下文已取消: %w", ctx.Err())
			case <-time.After(retryDelay):
				retryDelay *= 2
				e.logger.Warn().Int("attempt", retry).Msg("重试补全调用")
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
		response, err = e.llmModel.Generate(callCtx, messages)
		cancel()

		if err == nil {
			break
		}
		if !isRetryableError(err) || retry >= e.maxRetries {
			return "", fmt.Errorf("补全调用失败: %w", err)
		}
	}
	if response == nil {
		return "", fmt.Errorf("补全服务返回了空消息")
	}

	e.logger.Debug().Int("reply_len", len(response.Content)).Msg("补全调用完成")
	return response.Content, nil
}

// isRetryableError 判断错误是否为可重试的网络类错误
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host")
}

var reJSONFence = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// extractJSON 从回复文本中提取JSON部分
// 先尝试 ```json 代码块，再按花括号配对回退查找
func extractJSON(text string) string {
	matches := reJSONFence.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	level := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			level++
		case '}':
			level--
			if level == 0 {
				return strings.TrimSpace(text[start : i+1])
			}
		}
	}
	return ""
}
