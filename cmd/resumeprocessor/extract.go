package main

import (
	"context"
	"fmt"
)

// handleExtractCommand 仅执行文本提取并打印结果
func handleExtractCommand() error {
	if *pdfFilePath == "" {
		return fmt.Errorf("extract命令需要 --pdf 参数")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	extractor, err := buildTextExtractor(ctx, cfg)
	if err != nil {
		return err
	}

	text, metadata, err := extractor.ExtractFromFile(ctx, *pdfFilePath)
	if err != nil {
		return err
	}

	fmt.Printf("=== 提取文本 (%d 字符) ===\n%s\n", len(text), text)
	fmt.Println("=== 元数据 ===")
	for key, value := range metadata {
		fmt.Printf("%s: %v\n", key, value)
	}
	return nil
}
