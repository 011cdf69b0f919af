// Package config 加载 YAML 配置文件，并允许环境变量覆盖。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config 配置结构
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Extract ExtractConfig `yaml:"extract"`
	Batch   BatchConfig   `yaml:"batch"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig HTTP 上传接口
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	UploadDir      string `yaml:"uploadDir"`
	MaxUploadBytes int64  `yaml:"maxUploadBytes"`
}

// ExtractConfig 文本提取
type ExtractConfig struct {
	OCRLanguage string        `yaml:"ocrLanguage"`
	KeepSource  bool          `yaml:"keepSource"`
	PageTimeout time.Duration `yaml:"pageTimeout"`
}

// BatchConfig 批量处理
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
	TopWords    int `yaml:"topWords"`
}

// LogConfig 日志
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default 返回默认配置
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			UploadDir:      filepath.Join(os.TempDir(), "docanalysis"),
			MaxUploadBytes: 20 << 20,
		},
		Extract: ExtractConfig{
			OCRLanguage: "eng",
			PageTimeout: 30 * time.Second,
		},
		Batch: BatchConfig{
			Concurrency: runtime.NumCPU(),
			TopWords:    20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load 读取配置文件并应用环境变量。
// path 为空或文件不存在时使用默认配置。
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// 没有配置文件，使用默认值
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DOCANALYSIS_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DOCANALYSIS_UPLOAD_DIR"); v != "" {
		c.Server.UploadDir = v
	}
	if v := os.Getenv("DOCANALYSIS_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: DOCANALYSIS_MAX_UPLOAD_BYTES: %v", ErrInvalidConfig, err)
		}
		c.Server.MaxUploadBytes = n
	}
	if v := os.Getenv("DOCANALYSIS_OCR_LANG"); v != "" {
		c.Extract.OCRLanguage = v
	}
	if v := os.Getenv("DOCANALYSIS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DOCANALYSIS_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

var (
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats = map[string]bool{"text": true, "json": true}
)

// Validate 检查配置是否可用
func (c Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return fmt.Errorf("%w: server.addr is empty", ErrInvalidConfig)
	case c.Server.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: server.maxUploadBytes must be positive", ErrInvalidConfig)
	case c.Extract.PageTimeout <= 0:
		return fmt.Errorf("%w: extract.pageTimeout must be positive", ErrInvalidConfig)
	case c.Batch.Concurrency <= 0:
		return fmt.Errorf("%w: batch.concurrency must be positive", ErrInvalidConfig)
	case !validLevels[c.Log.Level]:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level)
	case !validFormats[c.Log.Format]:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}
