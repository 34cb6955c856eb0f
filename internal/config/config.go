package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenRouterConfig LLM提取服务配置
type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	APIURL  string `yaml:"api_url"`
	Model   string `yaml:"model"`
	Referer string `yaml:"referer"` // OpenRouter要求的HTTP-Referer头
	Title   string `yaml:"title"`   // OpenRouter的X-Title头
	// 超时与重试
	TimeoutSeconds   int `yaml:"timeout_seconds"`    // 单次调用超时(秒)
	MaxRetries       int `yaml:"max_retries"`        // 最大重试次数
	RetryWaitSeconds int `yaml:"retry_wait_seconds"` // 首次重试等待时间(秒)
}

// OCRConfig 光栅化与OCR外部命令配置
type OCRConfig struct {
	Pdftoppm  string `yaml:"pdftoppm"`  // pdftoppm二进制名或绝对路径，空则使用"pdftoppm"
	Tesseract string `yaml:"tesseract"` // tesseract二进制名或绝对路径，空则使用"tesseract"
	Language  string `yaml:"language"`  // OCR识别语言，默认"eng"
	DPI       int    `yaml:"dpi"`       // 光栅化DPI，默认300
	MaxPages  int    `yaml:"max_pages"` // 最大处理页数，0表示不限制
}

// PipelineConfig 目录流水线配置
type PipelineConfig struct {
	InputDir      string `yaml:"input_dir"`       // 新简历PDF投放目录
	ProcessingDir string `yaml:"processing_dir"`  // 处理中目录
	TextDir       string `yaml:"text_dir"`        // OCR文本待解析目录
	ParsedDir     string `yaml:"parsed_dir"`      // 解析结果JSON输出目录
	ProcessedDir  string `yaml:"processed_dir"`   // 已完成的PDF归档目录
	FailedDir     string `yaml:"failed_dir"`      // 处理失败的文件目录
	CheckInterval string `yaml:"check_interval"`  // 轮询间隔，例如 "5s"
	Strategy      string `yaml:"strategy"`        // 提取策略: "heuristic" 或 "llm"
	UseNativePDF  bool   `yaml:"use_native_pdf"`  // 对文本层PDF直接提取，跳过OCR
}

// MinIOConfig 对象存储归档配置
type MinIOConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl"`
	OriginalsBucket string `yaml:"originals_bucket"` // 原始简历存储桶
	ParsedBucket    string `yaml:"parsed_bucket"`    // 解析结果存储桶
}

// RedisConfig 去重用Redis配置
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// MD5记录过期时间(天)，过期后同一份简历允许重新处理
	MD5RecordExpireDays int `yaml:"md5_record_expire_days"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// Config 应用程序配置
type Config struct {
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	OCR        OCRConfig        `yaml:"ocr"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	MinIO      MinIOConfig      `yaml:"minio"`
	Redis      RedisConfig      `yaml:"redis"`
	Logger     LoggerConfig     `yaml:"logger"`
}

// LoadConfig 从文件加载配置，环境变量优先于文件内容
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		// 尝试在常见位置查找配置文件
		searchPaths := []string{
			"config.yaml",
			"./config.yaml",
			filepath.Join(os.Getenv("HOME"), ".resume-processor", "config.yaml"),
		}
		for _, path := range searchPaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}
		if configPath == "" {
			// 没有配置文件时使用默认配置，API密钥仍可从环境变量注入
			cfg := defaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := defaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	applyEnvOverrides(config)
	fillDefaults(config)
	return config, nil
}

// applyEnvOverrides 从环境变量覆盖配置（如果存在）
func applyEnvOverrides(config *Config) {
	if envKey := os.Getenv("OPENROUTER_API_KEY"); envKey != "" {
		config.OpenRouter.APIKey = envKey
	}
	if envURL := os.Getenv("OPENROUTER_API_URL"); envURL != "" {
		config.OpenRouter.APIURL = envURL
	}
	if envModel := os.Getenv("OPENROUTER_MODEL"); envModel != "" {
		config.OpenRouter.Model = envModel
	}
}

// fillDefaults 补齐未设置的字段
func fillDefaults(config *Config) {
	if config.OpenRouter.APIURL == "" {
		config.OpenRouter.APIURL = "https://openrouter.ai/api/v1"
	}
	if config.OpenRouter.Model == "" {
		config.OpenRouter.Model = "amazon/nova-micro-v1"
	}
	if config.OpenRouter.TimeoutSeconds <= 0 {
		config.OpenRouter.TimeoutSeconds = 60
	}
	if config.OpenRouter.MaxRetries < 0 {
		config.OpenRouter.MaxRetries = 0
	}
	if config.OpenRouter.RetryWaitSeconds <= 0 {
		config.OpenRouter.RetryWaitSeconds = 2
	}
	if config.OCR.Pdftoppm == "" {
		config.OCR.Pdftoppm = "pdftoppm"
	}
	if config.OCR.Tesseract == "" {
		config.OCR.Tesseract = "tesseract"
	}
	if config.OCR.Language == "" {
		config.OCR.Language = "eng"
	}
	if config.OCR.DPI <= 0 {
		config.OCR.DPI = 300
	}
	if config.Pipeline.InputDir == "" {
		config.Pipeline.InputDir = "resumes"
	}
	if config.Pipeline.ProcessingDir == "" {
		config.Pipeline.ProcessingDir = "processing"
	}
	if config.Pipeline.TextDir == "" {
		config.Pipeline.TextDir = "tobeprocessed"
	}
	if config.Pipeline.ParsedDir == "" {
		config.Pipeline.ParsedDir = "parsed"
	}
	if config.Pipeline.ProcessedDir == "" {
		config.Pipeline.ProcessedDir = "processed"
	}
	if config.Pipeline.FailedDir == "" {
		config.Pipeline.FailedDir = "failed"
	}
	if config.Pipeline.CheckInterval == "" {
		config.Pipeline.CheckInterval = "5s"
	}
	if config.Pipeline.Strategy == "" {
		config.Pipeline.Strategy = "heuristic"
	}
	if config.Redis.MD5RecordExpireDays <= 0 {
		config.Redis.MD5RecordExpireDays = 30
	}
	if config.MinIO.OriginalsBucket == "" {
		config.MinIO.OriginalsBucket = "resume-originals"
	}
	if config.MinIO.ParsedBucket == "" {
		config.MinIO.ParsedBucket = "resume-parsed"
	}
	if config.Logger.Level == "" {
		config.Logger.Level = "info"
	}
	if config.Logger.Format == "" {
		config.Logger.Format = "json"
	}
}

// defaultConfig 创建一份全默认配置
func defaultConfig() *Config {
	config := &Config{}
	fillDefaults(config)
	return config
}
