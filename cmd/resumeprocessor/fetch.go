package main

import (
	"context"
	"fmt"
	"os"

	"resume-processor/internal/storage"
)

// fetchObject 按对象类型从归档存储下载对象
func fetchObject(ctx context.Context, archive storage.ObjectStorage, kind, objectKey string) ([]byte, error) {
	switch kind {
	case "original":
		return archive.GetOriginal(ctx, objectKey)
	case "parsed":
		return archive.GetParsedRecord(ctx, objectKey)
	default:
		return nil, fmt.Errorf("未知的对象类型 '%s'，支持: original, parsed", kind)
	}
}

// handleFetchCommand 从MinIO归档中取回原始文件或解析结果
func handleFetchCommand() error {
	if *objectKey == "" {
		return fmt.Errorf("fetch命令需要 --object 参数")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.MinIO.Enabled {
		return fmt.Errorf("fetch命令需要在配置中启用MinIO归档")
	}

	ctx := context.Background()
	archive, err := storage.NewMinIO(ctx, &cfg.MinIO)
	if err != nil {
		return err
	}

	data, err := fetchObject(ctx, archive, *objectKind, *objectKey)
	if err != nil {
		return err
	}

	if *outputPath != "" {
		return os.WriteFile(*outputPath, data, 0o644)
	}
	_, err = os.Stdout.Write(data)
	return err
}
