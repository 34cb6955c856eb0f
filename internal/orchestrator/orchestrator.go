package orchestrator

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"resume-processor/internal/config"
	applog "resume-processor/internal/logger"
	"resume-processor/internal/processor"
	"resume-processor/internal/storage"
)

// Deduplicator 文档去重检查接口
// 原始文件与提取文本分开去重: 同一PDF改名重投会被原始MD5拦截，
// 不同PDF提取出相同文本时由文本MD5拦截
type Deduplicator interface {
	// CheckAndAddRawFileMD5 原子地检查并登记原始文件MD5，返回true表示已处理过
	CheckAndAddRawFileMD5(ctx context.Context, md5Hex string) (bool, error)

	// CheckAndAddParsedTextMD5 原子地检查并登记提取文本MD5
	CheckAndAddParsedTextMD5(ctx context.Context, md5Hex string) (bool, error)

	// RemoveRawFileMD5 回滚原始文件MD5登记，允许该文件重新处理
	RemoveRawFileMD5(ctx context.Context, md5Hex string) error
}

// Orchestrator 目录轮询编排器
// 监视输入目录并驱动两段流水线:
//
//	resumes/ -> processing/ -> 提取文本 -> tobeprocessed/*.txt -> processed/
//	tobeprocessed/*.txt -> 解析记录 -> parsed/*.json
//
// 单个文件的失败记录日志后继续处理批次中的其余文件，失败文件移入failed目录
type Orchestrator struct {
	cfg       *config.PipelineConfig
	processor *processor.ResumeProcessor
	archive   storage.ObjectStorage
	dedup     Deduplicator
	interval  time.Duration
	logger    zerolog.Logger
}

// OrchestratorOption 编排器的配置选项
type OrchestratorOption func(*Orchestrator)

// WithArchive 启用对象存储归档
func WithArchive(archive storage.ObjectStorage) OrchestratorOption {
	return func(o *Orchestrator) {
		o.archive = archive
	}
}

// WithDeduplicator 启用MD5去重检查
func WithDeduplicator(dedup Deduplicator) OrchestratorOption {
	return func(o *Orchestrator) {
		o.dedup = dedup
	}
}

// WithOrchestratorLogger 设置自定义日志记录器
func WithOrchestratorLogger(logger zerolog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator 创建编排器并确保工作目录存在
func NewOrchestrator(cfg *config.PipelineConfig, proc *processor.ResumeProcessor, options ...OrchestratorOption) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("流水线配置不能为空")
	}
	if proc == nil {
		return nil, fmt.Errorf("处理器不能为空")
	}

	interval, err := time.ParseDuration(cfg.CheckInterval)
	if err != nil || interval <= 0 {
		interval = 5 * time.Second
	}

	o := &Orchestrator{
		cfg:       cfg,
		processor: proc,
		interval:  interval,
		logger:    applog.Logger.With().Str("component", "orchestrator").Logger(),
	}
	for _, option := range options {
		option(o)
	}

	dirs := []string{
		cfg.InputDir, cfg.ProcessingDir, cfg.TextDir,
		cfg.ParsedDir, cfg.ProcessedDir, cfg.FailedDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("创建工作目录 %s 失败: %w", dir, err)
		}
	}
	return o, nil
}

// Run 按配置的间隔轮询，直到上下文取消
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info().
		Str("input_dir", o.cfg.InputDir).
		Dur("interval", o.interval).
		Msg("编排器启动")

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		if err := o.RunOnce(ctx); err != nil {
			o.logger.Error().Err(err).Msg("轮询批次执行失败")
		}
		select {
		case <-ctx.Done():
			o.logger.Info().Msg("编排器停止")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce 执行一次完整的扫描: 先处理新PDF，再解析待处理文本
func (o *Orchestrator) RunOnce(ctx context.Context) error {
	if err := o.sweepInput(ctx); err != nil {
		return err
	}
	return o.sweepTexts(ctx)
}

// sweepInput 扫描输入目录，对每个PDF执行文本提取
func (o *Orchestrator) sweepInput(ctx context.Context) error {
	pdfs, err := filepath.Glob(filepath.Join(o.cfg.InputDir, "*.pdf"))
	if err != nil {
		return fmt.Errorf("扫描输入目录失败: %w", err)
	}

	for _, pdfPath := range pdfs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := o.handlePDF(ctx, pdfPath); err != nil {
			o.logger.Error().Err(err).Str("file", pdfPath).Msg("PDF处理失败，继续下一个文件")
		}
	}
	return nil
}

// handlePDF 处理单个PDF: 去重、提取文本、归档、落盘
func (o *Orchestrator) handlePDF(ctx context.Context, pdfPath string) error {
	// 先移入processing目录，避免下一轮扫描重复拾取
	workPath, err := moveFile(pdfPath, o.cfg.ProcessingDir)
	if err != nil {
		return fmt.Errorf("移入处理目录失败: %w", err)
	}

	data, err := os.ReadFile(workPath)
	if err != nil {
		o.moveToFailed(workPath)
		return fmt.Errorf("读取PDF失败: %w", err)
	}

	var rawMD5 string
	if o.dedup != nil {
		rawMD5 = fileMD5(data)
		seen, err := o.dedup.CheckAndAddRawFileMD5(ctx, rawMD5)
		if err != nil {
			o.logger.Warn().Err(err).Str("file", workPath).Msg("去重检查失败，继续处理")
		} else if seen {
			o.logger.Info().Str("file", workPath).Str("md5", rawMD5).Msg("重复文档，跳过处理")
			_, err := moveFile(workPath, o.cfg.ProcessedDir)
			return err
		}
	}

	text, _, err := o.processor.ExtractText(ctx, workPath)
	if err != nil {
		o.rollbackRawMD5(ctx, rawMD5)
		o.moveToFailed(workPath)
		return err
	}

	stem := strings.TrimSuffix(filepath.Base(workPath), filepath.Ext(workPath))
	txtPath := filepath.Join(o.cfg.TextDir, stem+".txt")
	if err := os.WriteFile(txtPath, []byte(text), 0o644); err != nil {
		o.rollbackRawMD5(ctx, rawMD5)
		o.moveToFailed(workPath)
		return fmt.Errorf("写入文本文件失败: %w", err)
	}

	if o.archive != nil {
		key, err := o.archive.ArchiveOriginal(ctx, filepath.Base(workPath),
			strings.NewReader(string(data)), int64(len(data)))
		if err != nil {
			o.logger.Warn().
				Err(processor.NewArchiveError(filepath.Base(workPath), err)).
				Msg("原始文件归档失败，继续处理")
		} else {
			o.logger.Debug().Str("object", key).Msg("原始文件已归档")
		}
	}

	if _, err := moveFile(workPath, o.cfg.ProcessedDir); err != nil {
		return fmt.Errorf("移入已处理目录失败: %w", err)
	}

	o.logger.Info().Str("file", filepath.Base(workPath)).Str("text", txtPath).Msg("文本提取完成")
	return nil
}

// sweepTexts 扫描文本目录，对每个txt执行记录解析
func (o *Orchestrator) sweepTexts(ctx context.Context) error {
	txts, err := filepath.Glob(filepath.Join(o.cfg.TextDir, "*.txt"))
	if err != nil {
		return fmt.Errorf("扫描文本目录失败: %w", err)
	}

	for _, txtPath := range txts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := o.handleText(ctx, txtPath); err != nil {
			o.logger.Error().Err(err).Str("file", txtPath).Msg("文本解析失败，继续下一个文件")
		}
	}
	return nil
}

// handleText 解析单个文本文件并输出JSON记录
func (o *Orchestrator) handleText(ctx context.Context, txtPath string) error {
	data, err := os.ReadFile(txtPath)
	if err != nil {
		o.moveToFailed(txtPath)
		return fmt.Errorf("读取文本文件失败: %w", err)
	}

	// 不同PDF可能提取出完全相同的文本，文本MD5拦截这一层的重复
	if o.dedup != nil {
		textMD5 := fileMD5(data)
		seen, err := o.dedup.CheckAndAddParsedTextMD5(ctx, textMD5)
		if err != nil {
			o.logger.Warn().Err(err).Str("file", txtPath).Msg("文本去重检查失败，继续处理")
		} else if seen {
			o.logger.Info().Str("file", txtPath).Str("md5", textMD5).Msg("重复文本，跳过解析")
			return os.Remove(txtPath)
		}
	}

	result, err := o.processor.ParseText(ctx, string(data))
	if err != nil {
		o.moveToFailed(txtPath)
		return processor.NewParseError(txtPath, err)
	}

	recordJSON, err := json.MarshalIndent(result.Record, "", "  ")
	if err != nil {
		o.moveToFailed(txtPath)
		return fmt.Errorf("序列化记录失败: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(txtPath), filepath.Ext(txtPath))
	jsonPath := uniquePath(filepath.Join(o.cfg.ParsedDir, stem+".json"))
	if err := os.WriteFile(jsonPath, recordJSON, 0o644); err != nil {
		o.moveToFailed(txtPath)
		return fmt.Errorf("写入记录文件失败: %w", err)
	}

	if o.archive != nil {
		key, err := o.archive.ArchiveParsedRecord(ctx, stem+".json", recordJSON)
		if err != nil {
			o.logger.Warn().
				Err(processor.NewArchiveError(filepath.Base(txtPath), err)).
				Msg("解析结果归档失败，继续处理")
		} else {
			o.logger.Debug().Str("object", key).Msg("解析结果已归档")
		}
	}

	if err := os.Remove(txtPath); err != nil {
		o.logger.Warn().Err(err).Str("file", txtPath).Msg("删除已解析文本失败")
	}

	o.logger.Info().Str("file", filepath.Base(txtPath)).Str("record", jsonPath).Msg("记录解析完成")
	return nil
}

// rollbackRawMD5 提取失败时回滚去重登记，同一份文件修复后可以重新投放
func (o *Orchestrator) rollbackRawMD5(ctx context.Context, md5Hex string) {
	if o.dedup == nil || md5Hex == "" {
		return
	}
	if err := o.dedup.RemoveRawFileMD5(ctx, md5Hex); err != nil {
		o.logger.Warn().Err(err).Str("md5", md5Hex).Msg("回滚去重登记失败")
	}
}

// moveToFailed 将失败文件移入failed目录，移动失败时仅记录日志
func (o *Orchestrator) moveToFailed(path string) {
	if _, err := moveFile(path, o.cfg.FailedDir); err != nil {
		o.logger.Error().Err(err).Str("file", path).Msg("移入失败目录失败")
	}
}

// moveFile 将文件移入目标目录，重名时追加时间戳后缀
func moveFile(srcPath, destDir string) (string, error) {
	destPath := uniquePath(filepath.Join(destDir, filepath.Base(srcPath)))
	if err := os.Rename(srcPath, destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

// uniquePath 目标路径已存在时追加时间戳后缀
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%d%s", stem, time.Now().UnixNano(), ext)
}

// fileMD5 计算数据的MD5十六进制串
func fileMD5(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
