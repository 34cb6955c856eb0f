package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// handleParseCommand 仅执行文本到记录的解析并打印JSON
func handleParseCommand() error {
	if *textFilePath == "" {
		return fmt.Errorf("parse命令需要 --text 参数")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(*textFilePath)
	if err != nil {
		return fmt.Errorf("读取文本文件失败: %w", err)
	}

	extractor, err := buildRecordExtractor(cfg, *strategy)
	if err != nil {
		return err
	}

	record, err := extractor.Parse(context.Background(), string(data))
	if err != nil {
		return err
	}

	recordJSON, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化记录失败: %w", err)
	}
	fmt.Println(string(recordJSON))
	return nil
}
