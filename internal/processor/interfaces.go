package processor

import (
	"context"

	"resume-processor/internal/types"
)

// TextExtractor 文档到原始文本的提取器接口
// OCR链路与原生PDF文本层链路都实现此接口
type TextExtractor interface {
	// ExtractFromFile 从文档文件提取清洗后的文本与元数据
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)
}

// RecordExtractor 文本到规范记录的提取策略接口
// 规则解析与模型辅助解析为两种可互换的策略，共享同一输出结构
type RecordExtractor interface {
	// Parse 将简历文本解析为规范记录
	Parse(ctx context.Context, text string) (*types.ResumeRecord, error)
}

// ProcessResult 单个文档的处理结果
type ProcessResult struct {
	// 提取的文本
	Text string

	// 提取阶段的元数据（页数、耗时等）
	Metadata map[string]interface{}

	// 解析出的规范记录
	Record *types.ResumeRecord
}
