package parser

import "errors"

// 提取阶段的基础错误类型
// 错误针对单个文档，上层编排器负责捕获并继续处理批次中的其余文档
var (
	// ErrUnsupportedDocument 文档无法被光栅化（损坏或非PDF），该文档处理终止
	ErrUnsupportedDocument = errors.New("文档无法解码为可光栅化的PDF")

	// ErrPageRecognition 单页OCR失败，仅在局部恢复时用于包装页级错误
	ErrPageRecognition = errors.New("页面OCR识别失败")

	// ErrEmptyInput 输入文本为空或仅含空白，无内容可解析
	ErrEmptyInput = errors.New("输入文本为空")

	// ErrServiceFailure LLM提取服务调用失败、超时或返回无法通过校验的数据
	ErrServiceFailure = errors.New("模型提取服务调用失败")
)
