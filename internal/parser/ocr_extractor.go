package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	applog "resume-processor/internal/logger"
)

// Runner 封装外部命令执行，测试中可以替换为桩实现
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// OCRTextExtractor 将PDF光栅化为逐页图像后通过OCR识别文本
// 光栅化使用poppler的pdftoppm，识别使用tesseract，均为外部命令
type OCRTextExtractor struct {
	pdftoppm  string
	tesseract string
	language  string
	dpi       int
	maxPages  int
	runner    Runner
	logger    zerolog.Logger
}

// OCROption OCR提取器的配置选项
type OCROption func(*OCRTextExtractor)

// WithOCRBinaries 指定pdftoppm与tesseract的二进制路径
func WithOCRBinaries(pdftoppm, tesseract string) OCROption {
	return func(e *OCRTextExtractor) {
		if pdftoppm != "" {
			e.pdftoppm = pdftoppm
		}
		if tesseract != "" {
			e.tesseract = tesseract
		}
	}
}

// WithOCRLanguage 设置tesseract识别语言
func WithOCRLanguage(lang string) OCROption {
	return func(e *OCRTextExtractor) {
		if lang != "" {
			e.language = lang
		}
	}
}

// WithOCRDPI 设置光栅化DPI
func WithOCRDPI(dpi int) OCROption {
	return func(e *OCRTextExtractor) {
		if dpi > 0 {
			e.dpi = dpi
		}
	}
}

// WithOCRMaxPages 限制最大处理页数，0表示不限制
func WithOCRMaxPages(n int) OCROption {
	return func(e *OCRTextExtractor) {
		e.maxPages = n
	}
}

// WithOCRRunner 替换命令执行器（测试用）
func WithOCRRunner(r Runner) OCROption {
	return func(e *OCRTextExtractor) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithOCRLogger 配置自定义日志记录器
func WithOCRLogger(logger zerolog.Logger) OCROption {
	return func(e *OCRTextExtractor) {
		e.logger = logger
	}
}

// NewOCRTextExtractor 初始化OCR文本提取器
func NewOCRTextExtractor(options ...OCROption) *OCRTextExtractor {
	extractor := &OCRTextExtractor{
		pdftoppm:  "pdftoppm",
		tesseract: "tesseract",
		language:  "eng",
		dpi:       300,
		runner:    execRunner{},
		logger:    applog.Logger.With().Str("component", "ocr_extractor").Logger(),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

// ExtractFromFile 从PDF文件提取清洗后的文本
// 页面按原始顺序识别并以换行符拼接；单页识别失败以空串占位，不中断整个文档
func (e *OCRTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	startTime := time.Now()
	e.logger.Info().Str("file", filePath).Msg("开始OCR处理PDF文件")

	pageImages, cleanup, err := e.rasterize(ctx, filePath)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		return "", nil, err
	}

	pageTexts := make([]string, 0, len(pageImages))
	var failedPages []int
	for i, img := range pageImages {
		text, pageErr := e.recognize(ctx, img)
		if pageErr != nil {
			// 页级失败局部恢复：该页以空串参与拼接，保持其余页的页序贡献
			failedPages = append(failedPages, i+1)
			e.logger.Warn().
				Err(fmt.Errorf("%w: 第%d页: %v", ErrPageRecognition, i+1, pageErr)).
				Str("file", filePath).
				Msg("单页OCR失败，跳过该页")
			text = ""
		}
		pageTexts = append(pageTexts, text)
	}

	cleaned := CleanText(strings.Join(pageTexts, "\n"))

	duration := time.Since(startTime)
	metadata := map[string]interface{}{
		"source_file_path":       filePath,
		"page_count":             len(pageImages),
		"failed_pages":           failedPages,
		"processing_duration_ms": duration.Milliseconds(),
		"text_length":            len(cleaned),
	}

	e.logger.Info().
		Str("file", filePath).
		Int("pages", len(pageImages)).
		Int("chars", len(cleaned)).
		Dur("duration", duration).
		Msg("OCR处理完成")
	return cleaned, metadata, nil
}

// rasterize 将PDF逐页渲染为PNG，返回按页序排列的图像路径
func (e *OCRTextExtractor) rasterize(ctx context.Context, filePath string) ([]string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "resume-ocr-*")
	if err != nil {
		return nil, nil, fmt.Errorf("创建临时目录失败: %w", err)
	}
	cleanup := func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn().Err(rmErr).Str("dir", tmpDir).Msg("清理临时目录失败")
		}
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.pdftoppm, "-r", fmt.Sprintf("%d", e.dpi), "-png", filePath, prefix)
	if err != nil {
		return nil, cleanup, fmt.Errorf("%w: pdftoppm: %v: %s", ErrUnsupportedDocument, err, truncateStderr(errb))
	}

	// pdftoppm按 page-1.png, page-2.png ... 命名，同一文档内页号宽度一致，
	// 字典序即页序
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, cleanup, fmt.Errorf("%w: pdftoppm未渲染出任何页面", ErrUnsupportedDocument)
	}
	if e.maxPages > 0 && len(matches) > e.maxPages {
		matches = matches[:e.maxPages]
	}
	return matches, cleanup, nil
}

// recognize 对单页图像执行OCR
func (e *OCRTextExtractor) recognize(ctx context.Context, imagePath string) (string, error) {
	// tesseract <img> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.tesseract, imagePath, "stdout", "-l", e.language)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncateStderr(errb))
	}
	return string(out), nil
}

func truncateStderr(b []byte) string {
	const max = 512
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(截断)"
}
